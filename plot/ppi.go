// plot/ppi.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package plot

import (
	"fmt"

	"github.com/mdvplot/mdvplot/math"
	"github.com/mdvplot/mdvplot/moment"
	"github.com/mdvplot/mdvplot/util"
)

// PPI draws sweep of a plan-position volume as seen from above, with x
// east and y north of the radar in km.
func PPI(c Canvas, vol Volume, sweep int, m moment.Moment, cfg PPIConfig) error {
	if !m.Valid() {
		return fmt.Errorf("%d: %w", int(m), moment.ErrUnknownMoment)
	}

	rng := colorRange(vol, m, cfg.Range)

	el, err := vol.ElevationDeg(sweep)
	if err != nil {
		return err
	}
	info, err := MakeInfo(vol, m)
	if err != nil {
		return err
	}
	info.Set("ele", el)
	t, err := FormatTitle(titleTemplate(&cfg.PanelConfig), info)
	if err != nil {
		return err
	}

	x, y, _, err := vol.Carts(sweep)
	if err != nil {
		return err
	}
	data, err := sweepData(vol, sweep, m, cfg.Mask)
	if err != nil {
		return err
	}
	if err := c.PColorMesh(x.Map(km), y.Map(km), data, rng[0], rng[1]); err != nil {
		return err
	}

	radar := vol.Info().Location()
	labelColor := util.Select(cfg.LabelColor != "", cfg.LabelColor, DefaultLabelColor)
	for _, loc := range cfg.Locations {
		off := math.CornerToPoint(radar, math.Point2LL{loc.Lon, loc.Lat})
		p := [2]float32{km(off[0]), km(off[1])}
		if err := c.Plot([][2]float32{p}, util.Select(loc.Marker != "", loc.Marker, DefaultMarker)); err != nil {
			return err
		}
		if loc.Label != "" {
			if err := c.Text([2]float32{p[0] - LabelOffsetKm, p[1]}, loc.Label, labelColor); err != nil {
				return err
			}
		}
	}

	if err := drawRings(c, cfg.RangeRings); err != nil {
		return err
	}
	if cfg.Cross > 0 {
		for _, arm := range math.CrossHair(cfg.Cross) {
			if err := c.Plot(arm, crossStyle); err != nil {
				return err
			}
		}
	}

	c.SetXLabel("x (km)")
	c.SetYLabel("y (km)")
	decorate(c, m, &cfg.PanelConfig, t)
	return nil
}
