// math/math_test.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"math"
	"testing"
)

func TestLatitudeCircleRadius(t *testing.T) {
	type testCase struct {
		lat      float32
		unit     AngleUnit
		expected float32
		tol      float32
	}

	for _, tc := range []testCase{
		{lat: 0, unit: UnitDegrees, expected: EarthRadiusM, tol: 0.5},
		{lat: 90, unit: UnitDegrees, expected: 0, tol: 1e-3},
		{lat: -90, unit: UnitDegrees, expected: 0, tol: 1e-3},
		{lat: 60, unit: UnitDegrees, expected: EarthRadiusM / 2, tol: 0.5},
		{lat: -60, unit: UnitDegrees, expected: EarthRadiusM / 2, tol: 0.5},
		{lat: 0, unit: UnitRadians, expected: EarthRadiusM, tol: 0.5},
		{lat: Pi() / 2, unit: UnitRadians, expected: 0, tol: 1},
	} {
		r := LatitudeCircleRadius(tc.lat, tc.unit)
		if Abs(r-tc.expected) > tc.tol {
			t.Errorf("LatitudeCircleRadius(%f, %d) = %f, expected %f", tc.lat, tc.unit, r, tc.expected)
		}
	}
}

func TestCornerToPoint(t *testing.T) {
	for _, p := range []Point2LL{{0, 0}, {-97.4856, 36.6051}, {130.891, -12.2457}, {179.9, 89.9}} {
		if d := CornerToPoint(p, p); d[0] != 0 || d[1] != 0 {
			t.Errorf("CornerToPoint(%v, %v) = %v, expected zero offset", p, p, d)
		}
	}

	degree := legacyPi * 2 * EarthRadiusM / 360

	type testCase struct {
		corner, point Point2LL
		expected      [2]float64
	}
	for _, tc := range []testCase{
		{corner: Point2LL{0, 0}, point: Point2LL{0, 1}, expected: [2]float64{0, degree}},
		{corner: Point2LL{0, 0}, point: Point2LL{1, 0}, expected: [2]float64{degree, 0}},
		{corner: Point2LL{10, 0}, point: Point2LL{9, -1}, expected: [2]float64{-degree, -degree}},
		// East-west scale comes from the corner's latitude.
		{corner: Point2LL{0, 60}, point: Point2LL{1, 60}, expected: [2]float64{degree * math.Sin(math.Pi/6), 0}},
	} {
		d := CornerToPoint(tc.corner, tc.point)
		if math.Abs(float64(d[0])-tc.expected[0]) > 0.5 || math.Abs(float64(d[1])-tc.expected[1]) > 0.5 {
			t.Errorf("CornerToPoint(%v, %v) = %v, expected %v", tc.corner, tc.point, d, tc.expected)
		}
	}
}

func TestRangeRing(t *testing.T) {
	for _, r := range []float32{0.5, 1, 50, 100, 250} {
		pts := RangeRing(r)
		if len(pts) != RingPoints {
			t.Fatalf("RangeRing(%f): got %d points, expected %d", r, len(pts), RingPoints)
		}
		for i, p := range pts {
			if d := Length2f(p); Abs(d-r) > 1e-5*r {
				t.Errorf("RangeRing(%f): point %d %v is at distance %f", r, i, p, d)
			}
		}
		if d := Length2f(Sub2f(pts[0], pts[len(pts)-1])); d > 1e-5*r {
			t.Errorf("RangeRing(%f): not closed; first %v last %v", r, pts[0], pts[len(pts)-1])
		}
		if pts[0][0] != 0 || pts[0][1] != r {
			t.Errorf("RangeRing(%f): expected to start due north, got %v", r, pts[0])
		}
	}
}

func TestCrossHair(t *testing.T) {
	r := float32(100)
	ch := CrossHair(r)
	vert, horiz := ch[0], ch[1]

	if len(vert) != RingPoints || len(horiz) != RingPoints {
		t.Fatalf("CrossHair: got %d/%d points, expected %d", len(vert), len(horiz), RingPoints)
	}
	for i := range vert {
		if vert[i][0] != 0 {
			t.Errorf("vertical arm point %d has x %f", i, vert[i][0])
		}
		if horiz[i][1] != 0 {
			t.Errorf("horizontal arm point %d has y %f", i, horiz[i][1])
		}
		if i > 0 && (vert[i][1] <= vert[i-1][1] || horiz[i][0] <= horiz[i-1][0]) {
			t.Errorf("arms not monotonic at point %d", i)
		}
	}
	if vert[0][1] != -r || vert[len(vert)-1][1] != r {
		t.Errorf("vertical arm spans [%f, %f], expected [%f, %f]", vert[0][1], vert[len(vert)-1][1], -r, r)
	}
	if horiz[0][0] != -r || horiz[len(horiz)-1][0] != r {
		t.Errorf("horizontal arm spans [%f, %f], expected [%f, %f]", horiz[0][0], horiz[len(horiz)-1][0], -r, r)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace[float32](0, 1, 5)
	expected := []float32{0, 0.25, 0.5, 0.75, 1}
	if len(got) != len(expected) {
		t.Fatalf("Linspace: got %v, expected %v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("Linspace[%d] = %f, expected %f", i, got[i], expected[i])
		}
	}

	if l := Linspace[float64](3, 7, 1); len(l) != 1 || l[0] != 3 {
		t.Errorf("Linspace n=1: got %v", l)
	}
	if l := Linspace[float64](3, 7, 0); l != nil {
		t.Errorf("Linspace n=0: got %v", l)
	}
}

func TestRadarToCartesian(t *testing.T) {
	if p := RadarToCartesian(0, 123, 4); p != [3]float32{} {
		t.Errorf("zero range: got %v", p)
	}

	// Due east, horizontal beam: the beam rises above the curved earth.
	p := RadarToCartesian(100000, 90, 0)
	if Abs(p[0]-100000) > 100 || Abs(p[1]) > 1 {
		t.Errorf("east: got ground position %v", p)
	}
	if p[2] < 550 || p[2] > 650 {
		t.Errorf("east: got height %f, expected ~590m", p[2])
	}

	// Due south: y negative.
	p = RadarToCartesian(50000, 180, 0.5)
	if p[1] > -49000 || Abs(p[0]) > 1 {
		t.Errorf("south: got %v", p)
	}

	// Vertical beam goes straight up.
	p = RadarToCartesian(10000, 0, 90)
	if Abs(p[2]-10000) > 1 || Abs(p[0]) > 1 || Abs(p[1]) > 1 {
		t.Errorf("vertical: got %v", p)
	}
}

func TestArray2D(t *testing.T) {
	a, err := Array2DFromRows([][]float32{{1, 2, 3}, {4, NaN(), -6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Rows != 2 || a.Cols != 3 || !a.Valid() {
		t.Errorf("unexpected shape %v", a.Shape())
	}
	if a.At(1, 2) != -6 {
		t.Errorf("At(1, 2) = %f", a.At(1, 2))
	}

	lo, hi, ok := a.MinMax()
	if !ok || lo != -6 || hi != 4 {
		t.Errorf("MinMax = %f, %f, %v; expected -6, 4, true", lo, hi, ok)
	}

	b := a.Map(func(v float32) float32 { return 2 * v })
	if b.At(0, 1) != 4 || a.At(0, 1) != 2 {
		t.Errorf("Map modified source or computed wrong value")
	}

	if _, err := Map2(a, MakeArray2D(3, 2), func(x, y float32) float32 { return x }); err == nil {
		t.Errorf("Map2: expected shape mismatch error")
	}

	if _, err := Array2DFromRows([][]float32{{1, 2}, {3}}); err == nil {
		t.Errorf("Array2DFromRows: expected ragged row error")
	}

	if _, _, ok := MakeArray2D(1, 1).Map(func(float32) float32 { return NaN() }).MinMax(); ok {
		t.Errorf("MinMax: expected !ok for all-NaN array")
	}
}
