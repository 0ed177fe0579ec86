// plot/config.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package plot

import (
	"fmt"

	"github.com/mdvplot/mdvplot/moment"
	"github.com/mdvplot/mdvplot/renderer"
	"github.com/mdvplot/mdvplot/util"
)

// Mask suppresses cells where Moment's value is below Threshold.
type Mask struct {
	Moment    moment.Moment `json:"moment" yaml:"moment"`
	Threshold float32       `json:"threshold" yaml:"threshold"`
}

// PanelConfig holds the options shared by PPI and RHI panels. Zero values
// mean the option wasn't given.
type PanelConfig struct {
	// Range rings to draw, in km.
	RangeRings []float32   `json:"range_rings,omitempty" yaml:"range_rings,omitempty"`
	XLim       *[2]float32 `json:"xlim,omitempty" yaml:"xlim,omitempty"`
	YLim       *[2]float32 `json:"ylim,omitempty" yaml:"ylim,omitempty"`
	// Range overrides the moment's default colour scale.
	Range *[2]float32 `json:"range,omitempty" yaml:"range,omitempty"`
	Mask  *Mask       `json:"mask,omitempty" yaml:"mask,omitempty"`
	// Title overrides DefaultTitle.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

const (
	DefaultMarker     = "r+"
	DefaultLabelColor = "k"
	// Labels are drawn this many km west of their location's marker.
	LabelOffsetKm = 5
)

// Location is a point on the ground to mark on PPI panels.
type Location struct {
	Lat    float32 `json:"lat" yaml:"lat"`
	Lon    float32 `json:"lon" yaml:"lon"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty"`
	Marker string  `json:"marker,omitempty" yaml:"marker,omitempty"` // default DefaultMarker
}

type PPIConfig struct {
	PanelConfig `yaml:",inline"`
	// Cross is the half-length in km of a cross-hair centered on the
	// radar.
	Cross      float32    `json:"cross,omitempty" yaml:"cross,omitempty"`
	Locations  []Location `json:"locations,omitempty" yaml:"locations,omitempty"`
	LabelColor string     `json:"label_color,omitempty" yaml:"label_color,omitempty"` // default DefaultLabelColor
}

const (
	DefaultRHIXLabel = "Range (km)"
	DefaultRHIYLabel = "Distance above radar (km)"
)

type RHIConfig struct {
	PanelConfig `yaml:",inline"`
	XLabel      string `json:"xlabel,omitempty" yaml:"xlabel,omitempty"`
	YLabel      string `json:"ylabel,omitempty" yaml:"ylabel,omitempty"`
}

func checkInterval(e *util.ErrorLogger, what string, r *[2]float32) {
	if r != nil && !(r[0] < r[1]) {
		e.ErrorString("%s: [%g, %g] is not an increasing interval", what, r[0], r[1])
	}
}

// Check reports any invalid options to e.
func (c *PanelConfig) Check(e *util.ErrorLogger) {
	for _, r := range c.RangeRings {
		if r <= 0 {
			e.ErrorString("range ring %g: must be positive", r)
		}
	}
	checkInterval(e, "xlim", c.XLim)
	checkInterval(e, "ylim", c.YLim)
	checkInterval(e, "range", c.Range)
	if c.Mask != nil && c.Mask.Moment == moment.None {
		e.ErrorString("mask: no moment given")
	} else if c.Mask != nil && !c.Mask.Moment.Valid() {
		e.ErrorString("mask: invalid moment %d", int(c.Mask.Moment))
	}
}

func (c *PPIConfig) Check(e *util.ErrorLogger) {
	c.PanelConfig.Check(e)
	if c.Cross < 0 {
		e.ErrorString("cross %g: must not be negative", c.Cross)
	}
	if c.LabelColor != "" {
		if _, err := renderer.ParseColor(c.LabelColor); err != nil {
			e.Error(fmt.Errorf("label_color: %w", err))
		}
	}
	for i, loc := range c.Locations {
		e.Push(fmt.Sprintf("location %d", i))
		if loc.Lat < -90 || loc.Lat > 90 {
			e.ErrorString("latitude %g out of range", loc.Lat)
		}
		if loc.Lon < -180 || loc.Lon > 360 {
			e.ErrorString("longitude %g out of range", loc.Lon)
		}
		if loc.Marker != "" {
			if _, err := renderer.ParseStyle(loc.Marker); err != nil {
				e.Error(err)
			}
		}
		e.Pop()
	}
}

func (c *RHIConfig) Check(e *util.ErrorLogger) {
	c.PanelConfig.Check(e)
}
