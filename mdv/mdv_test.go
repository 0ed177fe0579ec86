// mdv/mdv_test.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mdv

import (
	"bytes"
	"context"
	"errors"
	"io"
	fpath "path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mdvplot/mdvplot/math"
	"github.com/mdvplot/mdvplot/moment"
)

var testTime = time.Date(2010, 11, 3, 4, 5, 6, 0, time.UTC)

func mustArray(t *testing.T, rows [][]float32) math.Array2D {
	t.Helper()
	a, err := math.Array2DFromRows(rows)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func makeTestVolume(t *testing.T) *Volume {
	mv := float32(-1)
	grid := func() math.Array2D { return math.MakeArray2D(2, 3) }
	return &Volume{
		RadarInfo:    RadarInfo{RadarName: "TEST", UnambigVelMps: 20, Extra: map[string]any{"site": "here"}},
		Scan:         ScanPPI,
		TimeBegin:    testTime,
		TimeEnd:      testTime.Add(time.Minute),
		FieldHeaders: []FieldHeader{{Name: "DBZ", Units: "dBZ"}, {Name: "VEL_F", Units: "m/s", MissingValue: &mv}},
		Elevations:   []float32{0.5},
		Azimuths:     []float32{0},
		X:            []math.Array2D{grid()},
		Y:            []math.Array2D{grid()},
		Z:            []math.Array2D{grid()},
		Data: [][]math.Array2D{
			{mustArray(t, [][]float32{{1, 2, 3}, {4, 5, 6}})},
			{mustArray(t, [][]float32{{-1, 2, -1}, {3, -1, 4}})},
		},
	}
}

func TestVolumeAccessors(t *testing.T) {
	v := makeTestVolume(t)

	if err := v.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if f := v.Fields(); len(f) != 2 || f[0] != "DBZ" || f[1] != "VEL_F" {
		t.Errorf("Fields() = %v", f)
	}
	if i, err := v.FieldIndex("VEL_F"); err != nil || i != 1 {
		t.Errorf("FieldIndex(VEL_F) = %d, %v", i, err)
	}
	if _, err := v.FieldIndex("ZDR"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("FieldIndex(ZDR): expected ErrFieldNotFound, got %v", err)
	}
	if u, err := v.FieldUnits("DBZ"); err != nil || u != "dBZ" {
		t.Errorf("FieldUnits(DBZ) = %q, %v", u, err)
	}
	if _, err := v.ElevationDeg(1); !errors.Is(err, ErrSweepRange) {
		t.Errorf("ElevationDeg(1): expected ErrSweepRange, got %v", err)
	}
	if _, _, _, err := v.Carts(-1); !errors.Is(err, ErrSweepRange) {
		t.Errorf("Carts(-1): expected ErrSweepRange, got %v", err)
	}

	entries := v.Info().Entries()
	if entries[1].Key != "radar_name" || entries[1].Value != "TEST" {
		t.Errorf("unexpected second entry %+v", entries[1])
	}
	if last := entries[len(entries)-1]; last.Key != "site" || last.Value != "here" {
		t.Errorf("expected Extra entries last, got %+v", last)
	}
}

func TestReadField(t *testing.T) {
	v := makeTestVolume(t)

	d, err := v.ReadField(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	expected := []float32{math.NaN(), 2, math.NaN(), 3, math.NaN(), 4}
	for i, e := range expected {
		if math.IsNaN(e) != math.IsNaN(d.Data[i]) || (!math.IsNaN(e) && e != d.Data[i]) {
			t.Errorf("ReadField: element %d = %f, expected %f", i, d.Data[i], e)
		}
	}
	if v.Data[1][0].Data[0] != -1 {
		t.Errorf("ReadField modified the volume's data")
	}

	if _, err := v.ReadField(2, 0); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("ReadField(2, 0): expected ErrFieldNotFound, got %v", err)
	}
	if _, err := v.ReadField(0, 3); !errors.Is(err, ErrSweepRange) {
		t.Errorf("ReadField(0, 3): expected ErrSweepRange, got %v", err)
	}
}

func TestShortVolumeSlices(t *testing.T) {
	type testCase struct {
		name   string
		modify func(v *Volume)
		access func(v *Volume) error
		err    error
	}

	for _, tc := range []testCase{
		{name: "grids", modify: func(v *Volume) { v.X = nil },
			access: func(v *Volume) error { _, _, _, err := v.Carts(0); return err }, err: ErrSweepRange},
		{name: "azimuths", modify: func(v *Volume) { v.Azimuths = nil },
			access: func(v *Volume) error { _, err := v.AzimuthDeg(0); return err }, err: ErrSweepRange},
		{name: "sweep data", modify: func(v *Volume) { v.Data[1] = nil },
			access: func(v *Volume) error { _, err := v.ReadField(1, 0); return err }, err: ErrSweepRange},
		{name: "field data", modify: func(v *Volume) { v.Data = v.Data[:1] },
			access: func(v *Volume) error { _, err := v.ReadField(1, 0); return err }, err: ErrFieldNotFound},
	} {
		v := makeTestVolume(t)
		tc.modify(v)
		if err := tc.access(v); !errors.Is(err, tc.err) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
	}
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name   string
		modify func(v *Volume)
		errStr string
	}

	for _, tc := range []testCase{
		{name: "scan", modify: func(v *Volume) { v.Scan = "sector" }, errStr: "unknown scan type"},
		{name: "times", modify: func(v *Volume) { v.TimeEnd = testTime.Add(-time.Hour) }, errStr: "before begin time"},
		{name: "azimuths", modify: func(v *Volume) { v.Azimuths = nil }, errStr: "0 azimuths for 1 sweeps"},
		{name: "grids", modify: func(v *Volume) { v.Y[0] = math.MakeArray2D(3, 3) }, errStr: "coordinate grid shapes"},
		{name: "duplicate", modify: func(v *Volume) { v.FieldHeaders[1].Name = "DBZ" }, errStr: "duplicate field name"},
		{name: "data shape", modify: func(v *Volume) { v.Data[0][0] = math.MakeArray2D(4, 4) }, errStr: "incompatible with grid shape"},
		{name: "missing data", modify: func(v *Volume) { v.Data = v.Data[:1] }, errStr: "1 data arrays for 2 fields"},
	} {
		v := makeTestVolume(t)
		tc.modify(v)
		err := v.Validate()
		if !errors.Is(err, ErrInvalidVolume) {
			t.Errorf("%s: expected ErrInvalidVolume, got %v", tc.name, err)
		} else if !strings.Contains(err.Error(), tc.errStr) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.errStr)
		}
	}

	// Corner grids one larger than the data are fine.
	v := makeTestVolume(t)
	v.X[0], v.Y[0], v.Z[0] = math.MakeArray2D(3, 4), math.MakeArray2D(3, 4), math.MakeArray2D(3, 4)
	if err := v.Validate(); err != nil {
		t.Errorf("corner grids: unexpected error %v", err)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	v := makeTestVolume(t)

	var buf bytes.Buffer
	if err := v.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	dv, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if dv.RadarInfo.RadarName != "TEST" || dv.RadarInfo.Extra["site"] != "here" {
		t.Errorf("radar info not preserved: %+v", dv.RadarInfo)
	}
	if !dv.TimeBegin.Equal(v.TimeBegin) || !dv.TimeEnd.Equal(v.TimeEnd) {
		t.Errorf("times %s-%s, expected %s-%s", dv.TimeBegin, dv.TimeEnd, v.TimeBegin, v.TimeEnd)
	}
	if mv := dv.FieldHeaders[1].MissingValue; mv == nil || *mv != -1 {
		t.Errorf("missing value not preserved")
	}
	if dv.FieldHeaders[0].MissingValue != nil {
		t.Errorf("unexpected missing value for DBZ")
	}
	if d := dv.Data[0][0]; d.At(1, 2) != 6 {
		t.Errorf("data not preserved: %+v", d)
	}

	if _, err := Decode(strings.NewReader("not a volume")); err == nil {
		t.Errorf("Decode of garbage: expected error")
	}
}

func TestSynthesize(t *testing.T) {
	for _, scan := range []string{ScanPPI, ScanRHI} {
		v := Synthesize(SynthOptions{Scan: scan, NumRays: 36, NumGates: 160})
		if err := v.Validate(); err != nil {
			t.Fatalf("%s: %v", scan, err)
		}
		if len(v.Fields()) != len(moment.All()) {
			t.Errorf("%s: %d fields, expected %d", scan, len(v.Fields()), len(moment.All()))
		}

		x, _, _, err := v.Carts(0)
		if err != nil {
			t.Fatal(err)
		}
		if x.Shape() != [2]int{37, 161} {
			t.Errorf("%s: grid shape %v", scan, x.Shape())
		}

		fi, err := v.FieldIndex("DBZ")
		if err != nil {
			t.Fatal(err)
		}
		dbz, _ := v.ReadField(fi, 0)
		if _, hi, ok := dbz.MinMax(); !ok || hi < 30 {
			t.Errorf("%s: expected a storm cell in DBZ, max %f", scan, hi)
		}

		fi, _ = v.FieldIndex("VEL")
		vel, _ := v.ReadField(fi, 0)
		if lo, hi, _ := vel.MinMax(); lo < -25 || hi > 25 {
			t.Errorf("%s: velocities [%f, %f] not folded into [-25, 25]", scan, lo, hi)
		}

		fi, _ = v.FieldIndex("DBZ_F")
		dbzf, _ := v.ReadField(fi, 0)
		nan := 0
		for _, d := range dbzf.Data {
			if math.IsNaN(d) {
				nan++
			}
		}
		if nan == 0 || nan == len(dbzf.Data) {
			t.Errorf("%s: %d of %d filtered cells missing", scan, nan, len(dbzf.Data))
		}
	}

	v := Synthesize(SynthOptions{Scan: ScanRHI, Angles: []float32{10}, Moments: []moment.Moment{moment.ZDR}})
	if az, _ := v.AzimuthDeg(0); az != 10 || v.NumSweeps() != 1 {
		t.Errorf("RHI: azimuth %f, %d sweeps", az, v.NumSweeps())
	}
	if f := v.Fields(); len(f) != 1 || f[0] != "ZDR" {
		t.Errorf("RHI: fields %v", f)
	}
}

func TestParseLocation(t *testing.T) {
	type testCase struct {
		loc        string
		root, path string
		err        bool
	}

	for _, tc := range []testCase{
		{loc: "vol.mdv.msgpack.zst", root: "", path: "vol.mdv.msgpack.zst"},
		{loc: "/data/radar/vol.mdv.msgpack.zst", root: "", path: "/data/radar/vol.mdv.msgpack.zst"},
		{loc: "gs://radar-bucket/2006/01/vol", root: "gs://radar-bucket", path: "2006/01/vol"},
		{loc: "s3://radar/vol", root: "s3://radar", path: "vol"},
		{loc: "gs:///vol", err: true},
		{loc: "ftp://host/vol", err: true},
	} {
		root, path, err := ParseLocation(tc.loc)
		if tc.err {
			if err == nil {
				t.Errorf("%s: expected error", tc.loc)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.loc, err)
		} else if root != tc.root || path != tc.path {
			t.Errorf("%s: got %q, %q, expected %q, %q", tc.loc, root, path, tc.root, tc.path)
		}
	}

	if _, _, err := ParseLocation("http://x/y"); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("expected ErrUnknownScheme, got %v", err)
	}
}

func TestLocalBackend(t *testing.T) {
	sb := LocalBackend{Root: t.TempDir()}

	for _, p := range []string{"a/one", "a/two", "b/three"} {
		if n, err := sb.Store(p, strings.NewReader(p)); err != nil || n != int64(len(p)) {
			t.Fatalf("Store(%s) = %d, %v", p, n, err)
		}
	}

	m, err := sb.List("a/")
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || m["a/one"] != 5 || m["a/two"] != 5 {
		t.Errorf("List(a/) = %v", m)
	}

	r, err := sb.OpenRead("b/three")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if b, err := io.ReadAll(r); err != nil || string(b) != "b/three" {
		t.Errorf("OpenRead returned %q, %v", b, err)
	}
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	v := Synthesize(SynthOptions{NumRays: 12, NumGates: 10, Angles: []float32{0.5}})
	if _, err := StoreVolume(LocalBackend{Root: dir}, "synth"+Extension, v); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(context.Background(), nil)
	defer l.Close()

	loc := fpath.Join(dir, "synth"+Extension)
	v1, err := l.Load(loc)
	if err != nil {
		t.Fatal(err)
	}
	if v1.RadarInfo.RadarName != v.RadarInfo.RadarName || v1.NumSweeps() != 1 {
		t.Errorf("loaded volume does not match stored one")
	}
	if v2, err := l.Load(loc); err != nil || v2 != v1 {
		t.Errorf("second Load should return the cached volume")
	}

	if _, err := l.Load(fpath.Join(dir, "missing")); err == nil {
		t.Errorf("expected error loading missing volume")
	}
	if _, err := l.Load("ftp://host/vol"); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("expected ErrUnknownScheme, got %v", err)
	}
}
