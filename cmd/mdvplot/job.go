// cmd/mdvplot/job.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mdvplot/mdvplot/moment"
	"github.com/mdvplot/mdvplot/plot"
	"github.com/mdvplot/mdvplot/renderer"
	"github.com/mdvplot/mdvplot/util"
)

var ErrInvalidJob = errors.New("invalid job")

// Job describes a set of panels to render from a single volume.
type Job struct {
	Volume   string     `json:"volume" yaml:"volume"`
	ColorMap string     `json:"colormap,omitempty" yaml:"colormap,omitempty"`
	Width    int        `json:"width,omitempty" yaml:"width,omitempty"`
	Height   int        `json:"height,omitempty" yaml:"height,omitempty"`
	Panels   []JobPanel `json:"panels" yaml:"panels"`
}

// JobPanel is a panel along with where to write it. Its ColorMap, if
// given, overrides the job's.
type JobPanel struct {
	plot.Panel `yaml:",inline"`
	Output     string `json:"output" yaml:"output"`
	ColorMap   string `json:"colormap,omitempty" yaml:"colormap,omitempty"`
}

const (
	defaultWidth  = 800
	defaultHeight = 600
)

func LoadJob(path string) (*Job, error) {
	var j Job
	if err := util.LoadConfigFile(path, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Resolve fills in defaults and checks the job, reporting every problem
// it finds.
func (j *Job) Resolve() error {
	var e util.ErrorLogger

	if j.Volume == "" {
		e.ErrorString("no volume given")
	}
	j.ColorMap = util.Select(j.ColorMap != "", j.ColorMap, renderer.DefaultColorMap)
	if _, err := renderer.LookupColorMap(j.ColorMap); err != nil {
		e.Error(err)
	}
	j.Width = util.Select(j.Width != 0, j.Width, defaultWidth)
	j.Height = util.Select(j.Height != 0, j.Height, defaultHeight)
	if j.Width < 0 || j.Height < 0 {
		e.ErrorString("%dx%d: invalid image size", j.Width, j.Height)
	}

	if len(j.Panels) == 0 {
		e.ErrorString("no panels given")
	}
	outputs := make(map[string]int)
	for i := range j.Panels {
		p := &j.Panels[i]
		e.Push(fmt.Sprintf("panel %d", i))

		p.Panel.Check(&e)
		if p.Output == "" {
			e.ErrorString("no output given")
		} else if prev, ok := outputs[p.Output]; ok {
			e.ErrorString("%s: output is also used by panel %d", p.Output, prev)
		}
		outputs[p.Output] = i

		p.ColorMap = util.Select(p.ColorMap != "", p.ColorMap, j.ColorMap)
		if _, err := renderer.LookupColorMap(p.ColorMap); err != nil {
			e.Error(err)
		}

		e.Pop()
	}

	return e.Err(ErrInvalidJob)
}

// PanelFlags holds the command-line description of a single panel.
type PanelFlags struct {
	Kind     string
	Sweep    int
	Moment   string
	Range    string
	Rings    string
	Cross    float64
	Mask     string
	Title    string
	XLim     string
	YLim     string
	ColorMap string
	Output   string
}

// Panel converts the flags to a JobPanel; settings that don't apply to
// the panel's kind are ignored.
func (f PanelFlags) Panel() (JobPanel, error) {
	m, err := moment.Parse(strings.ToUpper(f.Moment))
	if err != nil {
		return JobPanel{}, err
	}

	var cfg plot.PanelConfig
	if cfg.RangeRings, err = parseFloats(f.Rings, -1); err != nil {
		return JobPanel{}, fmt.Errorf("-rings: %w", err)
	}
	for _, iv := range []struct {
		name string
		s    string
		out  **[2]float32
	}{{"-range", f.Range, &cfg.Range}, {"-xlim", f.XLim, &cfg.XLim}, {"-ylim", f.YLim, &cfg.YLim}} {
		if iv.s == "" {
			continue
		}
		v, err := parseFloats(iv.s, 2)
		if err != nil {
			return JobPanel{}, fmt.Errorf("%s: %w", iv.name, err)
		}
		*iv.out = &[2]float32{v[0], v[1]}
	}
	if f.Mask != "" {
		if cfg.Mask, err = parseMask(f.Mask); err != nil {
			return JobPanel{}, fmt.Errorf("-mask: %w", err)
		}
	}
	cfg.Title = f.Title

	return JobPanel{
		Panel: plot.Panel{
			Kind:   plot.Kind(strings.ToLower(f.Kind)),
			Sweep:  f.Sweep,
			Moment: m,
			PPI:    plot.PPIConfig{PanelConfig: cfg, Cross: float32(f.Cross)},
			RHI:    plot.RHIConfig{PanelConfig: cfg},
		},
		Output:   f.Output,
		ColorMap: f.ColorMap,
	}, nil
}

// parseFloats parses a comma-separated list of numbers; if n >= 0, there
// must be exactly n of them.
func parseFloats(s string, n int) ([]float32, error) {
	if s == "" {
		if n > 0 {
			return nil, fmt.Errorf("expected %d values", n)
		}
		return nil, nil
	}

	var v []float32
	for _, f := range strings.Split(s, ",") {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, err
		}
		v = append(v, float32(x))
	}
	if n >= 0 && len(v) != n {
		return nil, fmt.Errorf("%q: got %d values, expected %d", s, len(v), n)
	}
	return v, nil
}

// parseMask parses MOMENT:threshold.
func parseMask(s string) (*plot.Mask, error) {
	name, thresh, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%q: expected MOMENT:threshold", s)
	}
	m, err := moment.Parse(strings.ToUpper(name))
	if err != nil {
		return nil, err
	}
	t, err := strconv.ParseFloat(thresh, 32)
	if err != nil {
		return nil, err
	}
	return &plot.Mask{Moment: m, Threshold: float32(t)}, nil
}
