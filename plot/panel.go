// plot/panel.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package plot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mdvplot/mdvplot/log"
	"github.com/mdvplot/mdvplot/math"
	"github.com/mdvplot/mdvplot/mdv"
	"github.com/mdvplot/mdvplot/moment"
	"github.com/mdvplot/mdvplot/util"
)

var ErrUnknownKind = errors.New("unknown panel kind")

type Kind string

const (
	KindPPI Kind = mdv.ScanPPI
	KindRHI Kind = mdv.ScanRHI
)

// Panel describes a single panel to draw. If Kind is empty, it is taken
// from the volume's scan type. Only the configuration matching the kind
// is used.
type Panel struct {
	Kind   Kind          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Sweep  int           `json:"sweep" yaml:"sweep"`
	Moment moment.Moment `json:"moment" yaml:"moment"`
	PPI    PPIConfig     `json:"ppi,omitzero" yaml:"ppi,omitempty"`
	RHI    RHIConfig     `json:"rhi,omitzero" yaml:"rhi,omitempty"`
}

func (p Panel) String() string {
	return fmt.Sprintf("%s sweep %d %s", util.Select(p.Kind != "", string(p.Kind), "auto"), p.Sweep, p.Moment)
}

// Check reports any problems with the panel's description to e.
func (p *Panel) Check(e *util.ErrorLogger) {
	e.Push(p.String())
	defer e.Pop()

	if p.Kind != "" && p.Kind != KindPPI && p.Kind != KindRHI {
		e.ErrorString("%q: %v", p.Kind, ErrUnknownKind)
	}
	if p.Sweep < 0 {
		e.ErrorString("sweep %d: must not be negative", p.Sweep)
	}
	if p.Moment == moment.None {
		e.ErrorString("no moment given")
	} else if !p.Moment.Valid() {
		e.ErrorString("invalid moment %d", int(p.Moment))
	}
	if p.Kind != KindRHI {
		p.PPI.Check(e)
	}
	if p.Kind != KindPPI {
		p.RHI.Check(e)
	}
}

// Render draws the panel on c. The logger may be nil.
func Render(c Canvas, vol Volume, p Panel, lg *log.Logger) error {
	kind := p.Kind
	if kind == "" {
		kind = Kind(strings.ToLower(vol.ScanType()))
	}

	start := time.Now()
	var err error
	switch kind {
	case KindPPI:
		err = PPI(c, vol, p.Sweep, p.Moment, p.PPI)
	case KindRHI:
		err = RHI(c, vol, p.Sweep, p.Moment, p.RHI)
	default:
		err = fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}

	lg.Debug("rendered panel", "kind", kind, "sweep", p.Sweep, "moment", p.Moment.String(),
		"elapsed", time.Since(start))
	return nil
}

const (
	ringStyle  = "k-"
	crossStyle = "k-"
)

func km(v float32) float32 { return v / 1000 }

// colorRange returns the colour scale for moment m: the override if one
// is given and otherwise the moment's default.
func colorRange(vol Volume, m moment.Moment, override *[2]float32) [2]float32 {
	if override != nil {
		return *override
	}
	return m.DefaultRange(vol.Info().UnambigVelMps)
}

func titleTemplate(cfg *PanelConfig) string {
	return util.Select(cfg.Title != "", cfg.Title, DefaultTitle)
}

// decorate sets the axis limits, colour bar and title.
func decorate(c Canvas, m moment.Moment, cfg *PanelConfig, title string) {
	if cfg.YLim != nil {
		c.SetYLim(cfg.YLim[0], cfg.YLim[1])
	}
	if cfg.XLim != nil {
		c.SetXLim(cfg.XLim[0], cfg.XLim[1])
	}
	c.ColorBar(m.Units())
	c.SetTitle(title)
}

func drawRings(c Canvas, rings []float32) error {
	for _, r := range rings {
		if err := c.Plot(math.RangeRing(r), ringStyle); err != nil {
			return err
		}
	}
	return nil
}
