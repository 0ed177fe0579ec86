// plot/plot.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package plot draws plan-position (PPI) and range-height (RHI) panels of
// radar moments. It reads sweeps from a Volume and issues drawing
// requests to a Canvas; it never rasterizes or writes anything itself.
package plot

import (
	"time"

	"github.com/mdvplot/mdvplot/math"
	"github.com/mdvplot/mdvplot/mdv"
)

// Volume is the read-only view of a radar volume that the panel
// renderers need; *mdv.Volume implements it.
type Volume interface {
	Info() mdv.RadarInfo
	ScanType() string
	Times() (begin, end time.Time)
	Fields() []string
	FieldUnits(field string) (string, error)
	NumSweeps() int
	ElevationDeg(sweep int) (float32, error)
	AzimuthDeg(sweep int) (float32, error)
	// Carts returns the sweep's coordinate grids in meters relative to
	// the radar.
	Carts(sweep int) (x, y, z math.Array2D, err error)
	// ReadField returns the values of the field with the given index
	// (into Fields) for the sweep, with missing values as NaN.
	ReadField(field, sweep int) (math.Array2D, error)
}

// Canvas receives drawing requests. Coordinates are in data units
// (kilometers); colors and styles are matplotlib-style strings.
// *renderer.Figure implements it.
type Canvas interface {
	PColorMesh(x, y, c math.Array2D, vmin, vmax float32) error
	Plot(pts [][2]float32, style string) error
	Text(p [2]float32, s string, color string) error
	SetXLabel(string)
	SetYLabel(string)
	SetXLim(lo, hi float32)
	SetYLim(lo, hi float32)
	ColorBar(label string)
	SetTitle(string)
}

var _ Volume = (*mdv.Volume)(nil)
