// plot/rhi.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package plot

import (
	"fmt"

	"github.com/mdvplot/mdvplot/math"
	"github.com/mdvplot/mdvplot/moment"
	"github.com/mdvplot/mdvplot/renderer"
	"github.com/mdvplot/mdvplot/util"
)

// groundRange returns the signed horizontal distance in km of each grid
// node from the radar; nodes south of the radar are negative.
func groundRange(x, y math.Array2D) (math.Array2D, error) {
	gr, err := math.Map2(x, y, func(x, y float32) float32 {
		return math.Sign(y) * math.Sqrt(x*x+y*y) / 1000
	})
	if err != nil {
		return math.Array2D{}, fmt.Errorf("%v: %w", err, renderer.ErrShapeMismatch)
	}
	return gr, nil
}

// RHI draws sweep of a range-height volume as a vertical section, with
// signed ground range on the x axis and height above the radar on the y
// axis, both in km.
func RHI(c Canvas, vol Volume, sweep int, m moment.Moment, cfg RHIConfig) error {
	if !m.Valid() {
		return fmt.Errorf("%d: %w", int(m), moment.ErrUnknownMoment)
	}

	rng := colorRange(vol, m, cfg.Range)

	az, err := vol.AzimuthDeg(sweep)
	if err != nil {
		return err
	}
	info, err := MakeInfo(vol, m)
	if err != nil {
		return err
	}
	// Titles written for PPIs use "ele" for the sweep's fixed angle.
	info.Set("ele", az)
	info.Set("az", az)
	t, err := FormatTitle(titleTemplate(&cfg.PanelConfig), info)
	if err != nil {
		return err
	}

	x, y, z, err := vol.Carts(sweep)
	if err != nil {
		return err
	}
	gr, err := groundRange(x, y)
	if err != nil {
		return err
	}
	data, err := sweepData(vol, sweep, m, cfg.Mask)
	if err != nil {
		return err
	}
	if err := c.PColorMesh(gr, z.Map(km), data, rng[0], rng[1]); err != nil {
		return err
	}

	if err := drawRings(c, cfg.RangeRings); err != nil {
		return err
	}

	c.SetXLabel(util.Select(cfg.XLabel != "", cfg.XLabel, DefaultRHIXLabel))
	c.SetYLabel(util.Select(cfg.YLabel != "", cfg.YLabel, DefaultRHIYLabel))
	decorate(c, m, &cfg.PanelConfig, t)
	return nil
}
