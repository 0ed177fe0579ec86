// math/geom.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// point 2f

// Various useful functions for arithmetic with 2D points/vectors.
// Names are brief in order to avoid clutter when they're used.

// a+b
func Add2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] + b[0], a[1] + b[1]}
}

// a-b
func Sub2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] - b[0], a[1] - b[1]}
}

// a*s
func Scale2f(a [2]float32, s float32) [2]float32 {
	return [2]float32{s * a[0], s * a[1]}
}

// Length of v
func Length2f(v [2]float32) float32 {
	return Sqrt(v[0]*v[0] + v[1]*v[1])
}

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 [2]float32
}

// EmptyExtent2D returns an Extent2D representing an empty bounding box.
func EmptyExtent2D() Extent2D {
	return Extent2D{P0: [2]float32{1e30, 1e30}, P1: [2]float32{-1e30, -1e30}}
}

// Extent2DFromPoints returns an Extent2D that bounds all of the provided
// points.
func Extent2DFromPoints(pts [][2]float32) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		e = e.AddPoint(p)
	}
	return e
}

func (e Extent2D) IsEmpty() bool {
	return e.P0[0] > e.P1[0] || e.P0[1] > e.P1[1]
}

func (e Extent2D) Width() float32 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float32 {
	return e.P1[1] - e.P0[1]
}

// Inside returns true if the point is inside the extent, inclusive.
func (e Extent2D) Inside(p [2]float32) bool {
	return p[0] >= e.P0[0] && p[0] <= e.P1[0] && p[1] >= e.P0[1] && p[1] <= e.P1[1]
}

// AddPoint returns the extent grown to include p. NaN coordinates are
// ignored.
func (e Extent2D) AddPoint(p [2]float32) Extent2D {
	if IsNaN(p[0]) || IsNaN(p[1]) {
		return e
	}
	e.P0[0] = min(e.P0[0], p[0])
	e.P0[1] = min(e.P0[1], p[1])
	e.P1[0] = max(e.P1[0], p[0])
	e.P1[1] = max(e.P1[1], p[1])
	return e
}

// Union returns an Extent2D that bounds both of the provided extents.
func Union(e Extent2D, e2 Extent2D) Extent2D {
	if e.IsEmpty() {
		return e2
	} else if e2.IsEmpty() {
		return e
	}
	e.P0[0] = min(e.P0[0], e2.P0[0])
	e.P0[1] = min(e.P0[1], e2.P0[1])
	e.P1[0] = max(e.P1[0], e2.P1[0])
	e.P1[1] = max(e.P1[1], e2.P1[1])
	return e
}

///////////////////////////////////////////////////////////////////////////
// Annotation shapes

// RingPoints is the number of vertices used for range rings and
// cross-hair arms.
const RingPoints = 100

// RangeRing returns a closed polyline of RingPoints vertices on the circle
// of radius r around the origin. Angles are measured clockwise from north,
// so the first and last points are both (0, r).
func RangeRing(r float32) [][2]float32 {
	theta := Linspace(0, 2*gomath.Pi, RingPoints)
	pts := make([][2]float32, len(theta))
	for i, t := range theta {
		pts[i] = [2]float32{float32(float64(r) * gomath.Sin(t)), float32(float64(r) * gomath.Cos(t))}
	}
	return pts
}

// CrossHair returns two polylines through the origin with half-length r:
// first the vertical arm, then the horizontal one.
func CrossHair(r float32) [2][][2]float32 {
	s := Linspace(-r, r, RingPoints)
	vert := make([][2]float32, len(s))
	horiz := make([][2]float32, len(s))
	for i, v := range s {
		vert[i] = [2]float32{0, v}
		horiz[i] = [2]float32{v, 0}
	}
	return [2][][2]float32{vert, horiz}
}
