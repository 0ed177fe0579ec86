// mdv/volume.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package mdv holds decoded radar volumes: the radar's metadata, the
// sweep geometry, and one 2D grid of values per field and sweep, along
// with the ways of storing and loading them.
package mdv

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mdvplot/mdvplot/math"
	"github.com/mdvplot/mdvplot/util"
)

var (
	ErrFieldNotFound = errors.New("field not found")
	ErrSweepRange    = errors.New("sweep out of range")
	ErrInvalidVolume = errors.New("invalid volume")
)

const (
	ScanPPI = "ppi"
	ScanRHI = "rhi"
)

// RadarInfo is the radar-level metadata carried in a volume's header.
type RadarInfo struct {
	RadarID           int32   `msgpack:"radar_id"`
	RadarName         string  `msgpack:"radar_name"`
	LatitudeDeg       float32 `msgpack:"latitude_deg"`
	LongitudeDeg      float32 `msgpack:"longitude_deg"`
	AltitudeKm        float32 `msgpack:"altitude_km"`
	GateSpacingKm     float32 `msgpack:"gate_spacing_km"`
	StartRangeKm      float32 `msgpack:"start_range_km"`
	HorizBeamWidthDeg float32 `msgpack:"horiz_beam_width_deg"`
	VertBeamWidthDeg  float32 `msgpack:"vert_beam_width_deg"`
	PulseWidthUs      float32 `msgpack:"pulse_width_us"`
	PRFHz             float32 `msgpack:"prf_hz"`
	WavelengthCm      float32 `msgpack:"wavelength_cm"`
	UnambigVelMps     float32 `msgpack:"unambig_vel_mps"`
	UnambigRangeKm    float32 `msgpack:"unambig_range_km"`
	NGates            int32   `msgpack:"ngates"`
	NSamples          int32   `msgpack:"nsamples"`

	// Extra holds any further header entries, keyed by name.
	Extra map[string]any `msgpack:"extra,omitempty"`
}

// InfoEntry is a single named metadata value.
type InfoEntry struct {
	Key   string
	Value any
}

// Entries returns the scalar metadata fields in a fixed order followed by
// the Extra entries sorted by key. Values in Extra are returned as is and
// may be shared with the RadarInfo.
func (ri RadarInfo) Entries() []InfoEntry {
	e := []InfoEntry{
		{"radar_id", ri.RadarID},
		{"radar_name", ri.RadarName},
		{"latitude_deg", ri.LatitudeDeg},
		{"longitude_deg", ri.LongitudeDeg},
		{"altitude_km", ri.AltitudeKm},
		{"gate_spacing_km", ri.GateSpacingKm},
		{"start_range_km", ri.StartRangeKm},
		{"horiz_beam_width_deg", ri.HorizBeamWidthDeg},
		{"vert_beam_width_deg", ri.VertBeamWidthDeg},
		{"pulse_width_us", ri.PulseWidthUs},
		{"prf_hz", ri.PRFHz},
		{"wavelength_cm", ri.WavelengthCm},
		{"unambig_vel_mps", ri.UnambigVelMps},
		{"unambig_range_km", ri.UnambigRangeKm},
		{"ngates", ri.NGates},
		{"nsamples", ri.NSamples},
	}
	for _, k := range util.SortedMapKeys(ri.Extra) {
		e = append(e, InfoEntry{Key: k, Value: ri.Extra[k]})
	}
	return e
}

// Location returns the radar's position.
func (ri RadarInfo) Location() math.Point2LL {
	return math.Point2LL{ri.LongitudeDeg, ri.LatitudeDeg}
}

type FieldHeader struct {
	Name     string `msgpack:"name"`
	Units    string `msgpack:"units"`
	LongName string `msgpack:"long_name"`
	// If set, cells holding this value are missing.
	MissingValue *float32 `msgpack:"missing_value,omitempty"`
}

// Volume is a decoded radar volume. All per-sweep slices are indexed by
// sweep number; Data is indexed by field and then sweep. The coordinate
// grids give positions in meters relative to the radar (x east, y north,
// z up) and are either the same shape as the data, giving gate centers,
// or one larger in each dimension, giving cell corners.
type Volume struct {
	RadarInfo    RadarInfo        `msgpack:"radar_info"`
	Scan         string           `msgpack:"scan_type"`
	TimeBegin    time.Time        `msgpack:"time_begin"`
	TimeEnd      time.Time        `msgpack:"time_end"`
	FieldHeaders []FieldHeader    `msgpack:"field_headers"`
	Elevations   []float32        `msgpack:"el_deg"`
	Azimuths     []float32        `msgpack:"az_deg"`
	X            []math.Array2D   `msgpack:"x"`
	Y            []math.Array2D   `msgpack:"y"`
	Z            []math.Array2D   `msgpack:"z"`
	Data         [][]math.Array2D `msgpack:"data"`
}

func (v *Volume) Info() RadarInfo {
	return v.RadarInfo
}

func (v *Volume) ScanType() string {
	return v.Scan
}

func (v *Volume) Times() (begin, end time.Time) {
	return v.TimeBegin, v.TimeEnd
}

// Fields returns the names of the volume's fields, in storage order.
func (v *Volume) Fields() []string {
	return util.MapSlice(v.FieldHeaders, func(h FieldHeader) string { return h.Name })
}

// FieldIndex returns the index of the named field.
func (v *Volume) FieldIndex(name string) (int, error) {
	if i := slices.IndexFunc(v.FieldHeaders, func(h FieldHeader) bool { return h.Name == name }); i != -1 {
		return i, nil
	}
	return -1, fmt.Errorf("%q: %w", name, ErrFieldNotFound)
}

// FieldUnits returns the units recorded in the named field's header.
func (v *Volume) FieldUnits(name string) (string, error) {
	i, err := v.FieldIndex(name)
	if err != nil {
		return "", err
	}
	return v.FieldHeaders[i].Units, nil
}

func (v *Volume) NumSweeps() int {
	return len(v.Elevations)
}

// checkSweep returns an error if sweep is not one of the volume's sweeps
// or if only n sweeps of the data about to be accessed are stored.
func (v *Volume) checkSweep(sweep, n int) error {
	if sweep < 0 || sweep >= v.NumSweeps() {
		return fmt.Errorf("sweep %d of %d: %w", sweep, v.NumSweeps(), ErrSweepRange)
	} else if sweep >= n {
		return fmt.Errorf("sweep %d: only %d stored: %w", sweep, n, ErrSweepRange)
	}
	return nil
}

func (v *Volume) ElevationDeg(sweep int) (float32, error) {
	if err := v.checkSweep(sweep, len(v.Elevations)); err != nil {
		return 0, err
	}
	return v.Elevations[sweep], nil
}

func (v *Volume) AzimuthDeg(sweep int) (float32, error) {
	if err := v.checkSweep(sweep, len(v.Azimuths)); err != nil {
		return 0, err
	}
	return v.Azimuths[sweep], nil
}

// Carts returns the coordinate grids for the given sweep. The returned
// arrays share storage with the volume and must not be modified.
func (v *Volume) Carts(sweep int) (x, y, z math.Array2D, err error) {
	if err = v.checkSweep(sweep, min(len(v.X), len(v.Y), len(v.Z))); err != nil {
		return
	}
	return v.X[sweep], v.Y[sweep], v.Z[sweep], nil
}

// ReadField returns a copy of the given field's values for the sweep,
// with missing cells set to NaN.
func (v *Volume) ReadField(field, sweep int) (math.Array2D, error) {
	if field < 0 || field >= len(v.FieldHeaders) || field >= len(v.Data) {
		return math.Array2D{}, fmt.Errorf("field index %d: %w", field, ErrFieldNotFound)
	}
	if err := v.checkSweep(sweep, len(v.Data[field])); err != nil {
		return math.Array2D{}, err
	}

	d := v.Data[field][sweep].Clone()
	if mv := v.FieldHeaders[field].MissingValue; mv != nil {
		for i, val := range d.Data {
			if val == *mv {
				d.Data[i] = math.NaN()
			}
		}
	}
	return d, nil
}

// Validate checks the volume for internal consistency, reporting all of
// the problems it finds.
func (v *Volume) Validate() error {
	var e util.ErrorLogger

	if s := strings.ToLower(v.Scan); s != ScanPPI && s != ScanRHI {
		e.ErrorString("unknown scan type %q", v.Scan)
	}
	if v.TimeEnd.Before(v.TimeBegin) {
		e.ErrorString("end time %s is before begin time %s", v.TimeEnd, v.TimeBegin)
	}

	n := v.NumSweeps()
	if len(v.Azimuths) != n {
		e.ErrorString("%d azimuths for %d sweeps", len(v.Azimuths), n)
	}
	if len(v.X) != n || len(v.Y) != n || len(v.Z) != n {
		e.ErrorString("coordinate grids for %d/%d/%d sweeps, expected %d", len(v.X), len(v.Y), len(v.Z), n)
	}

	for s := 0; s < min(n, len(v.X), len(v.Y), len(v.Z)); s++ {
		e.Push(fmt.Sprintf("sweep %d", s))
		if !v.X[s].Valid() || !v.Y[s].Valid() || !v.Z[s].Valid() {
			e.ErrorString("malformed coordinate grid")
		} else if !v.X[s].SameShape(v.Y[s]) || !v.X[s].SameShape(v.Z[s]) {
			e.ErrorString("coordinate grid shapes %v, %v, %v differ", v.X[s].Shape(), v.Y[s].Shape(), v.Z[s].Shape())
		}
		e.Pop()
	}

	seen := make(map[string]bool)
	if len(v.Data) != len(v.FieldHeaders) {
		e.ErrorString("%d data arrays for %d fields", len(v.Data), len(v.FieldHeaders))
	}
	for f, h := range v.FieldHeaders {
		e.Push(fmt.Sprintf("field %d %q", f, h.Name))

		if h.Name == "" {
			e.ErrorString("empty field name")
		} else if seen[h.Name] {
			e.ErrorString("duplicate field name")
		}
		seen[h.Name] = true

		if f < len(v.Data) {
			if len(v.Data[f]) != n {
				e.ErrorString("data for %d sweeps, expected %d", len(v.Data[f]), n)
			}
			for s := 0; s < min(n, len(v.Data[f]), len(v.X)); s++ {
				d, x := v.Data[f][s], v.X[s]
				if !d.Valid() {
					e.ErrorString("sweep %d: malformed data", s)
				} else if !d.SameShape(x) && (x.Rows != d.Rows+1 || x.Cols != d.Cols+1) {
					e.ErrorString("sweep %d: data shape %v incompatible with grid shape %v", s, d.Shape(), x.Shape())
				}
			}
		}

		e.Pop()
	}

	return e.Err(ErrInvalidVolume)
}
