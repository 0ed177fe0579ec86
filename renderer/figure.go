// renderer/figure.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mdvplot/mdvplot/log"
	"github.com/mdvplot/mdvplot/math"
)

var (
	ErrShapeMismatch = errors.New("array shape mismatch")
	ErrFigureSize    = errors.New("figure too small")
)

// Figure is a single set of 2D axes with an optional vertical color bar
// and title. Drawing calls record what is to be drawn; nothing is
// rasterized until Image or WritePNG is called, at which point the layout
// is computed from everything that was recorded.
type Figure struct {
	ColorMap   *ColorMap
	LineWidth  float32
	MarkerSize float32

	lg *log.Logger

	meshes []mesh
	lines  []polyline
	labels []label

	xlabel, ylabel, title string
	colorBar              bool
	colorBarLabel         string
	xlim, ylim            *[2]float32
}

type mesh struct {
	x, y, c    math.Array2D
	vmin, vmax float32
}

type polyline struct {
	pts   [][2]float32
	style Style
}

type label struct {
	p     [2]float32
	s     string
	color RGB
}

// NewFigure returns an empty Figure that uses the default color map.
func NewFigure(lg *log.Logger) *Figure {
	cm, _ := LookupColorMap(DefaultColorMap)
	return &Figure{ColorMap: cm, LineWidth: 1, MarkerSize: 9, lg: lg}
}

// PColorMesh adds a pseudocolor mesh. The x and y coordinate grids must
// have the same shape; it must either be one larger than c in both
// dimensions, giving the cell corners, or the same as c, in which case
// cells span adjacent grid nodes and take the value at their first
// corner, so that the last row and column of c are not shown.
func (f *Figure) PColorMesh(x, y, c math.Array2D, vmin, vmax float32) error {
	if !x.Valid() || !y.Valid() || !c.Valid() {
		return fmt.Errorf("malformed array: %w", ErrShapeMismatch)
	}
	if !x.SameShape(y) {
		return fmt.Errorf("x grid %v vs. y grid %v: %w", x.Shape(), y.Shape(), ErrShapeMismatch)
	}
	if !x.SameShape(c) && (x.Rows != c.Rows+1 || x.Cols != c.Cols+1) {
		return fmt.Errorf("grid %v vs. data %v: %w", x.Shape(), c.Shape(), ErrShapeMismatch)
	}

	f.meshes = append(f.meshes, mesh{x: x, y: y, c: c, vmin: vmin, vmax: vmax})
	return nil
}

// Plot adds a polyline through pts drawn according to the given
// matplotlib-style format string.
func (f *Figure) Plot(pts [][2]float32, style string) error {
	st, err := ParseStyle(style)
	if err != nil {
		return err
	}
	f.lines = append(f.lines, polyline{pts: pts, style: st})
	return nil
}

// Text adds s with its baseline starting at p, in data coordinates.
func (f *Figure) Text(p [2]float32, s string, color string) error {
	c, err := ParseColor(color)
	if err != nil {
		return err
	}
	f.labels = append(f.labels, label{p: p, s: s, color: c})
	return nil
}

func (f *Figure) SetXLabel(s string) { f.xlabel = s }
func (f *Figure) SetYLabel(s string) { f.ylabel = s }
func (f *Figure) SetTitle(s string)  { f.title = s }

func (f *Figure) SetXLim(lo, hi float32) { f.xlim = &[2]float32{lo, hi} }
func (f *Figure) SetYLim(lo, hi float32) { f.ylim = &[2]float32{lo, hi} }

// ColorBar adds a color bar for the most recently added mesh.
func (f *Figure) ColorBar(label string) {
	f.colorBar = true
	f.colorBarLabel = label
}

func (f *Figure) XLabel() string        { return f.xlabel }
func (f *Figure) YLabel() string        { return f.ylabel }
func (f *Figure) Title() string         { return f.title }
func (f *Figure) ColorBarLabel() string { return f.colorBarLabel }

// Limits returns the x and y axis limits: those that were set explicitly
// or else ones that bound the meshes and lines.
func (f *Figure) Limits() (x, y [2]float32) {
	e := math.EmptyExtent2D()
	for _, m := range f.meshes {
		for i := range m.x.Data {
			e = e.AddPoint([2]float32{m.x.Data[i], m.y.Data[i]})
		}
	}
	for _, l := range f.lines {
		e = math.Union(e, math.Extent2DFromPoints(l.pts))
	}
	if e.IsEmpty() {
		e = math.Extent2D{P1: [2]float32{1, 1}}
	}

	auto := func(lo, hi float32) [2]float32 {
		if lo == hi {
			return [2]float32{lo - 1, hi + 1}
		}
		return [2]float32{lo, hi}
	}
	x, y = auto(e.P0[0], e.P1[0]), auto(e.P0[1], e.P1[1])
	if f.xlim != nil {
		x = *f.xlim
	}
	if f.ylim != nil {
		y = *f.ylim
	}
	return
}

// colorRange returns the color scale of the last mesh.
func (f *Figure) colorRange() (float32, float32) {
	if len(f.meshes) == 0 {
		return 0, 1
	}
	m := f.meshes[len(f.meshes)-1]
	return m.vmin, m.vmax
}

///////////////////////////////////////////////////////////////////////////
// Layout and rendering

const (
	pad        = 6
	tickLength = 4
	barWidth   = 18
	barGap     = 15
)

// axes maps data coordinates to pixels within the plot area.
type axes struct {
	area       math.Extent2D // pixels
	xlim, ylim [2]float32
}

func (a axes) toPixel(p [2]float32) [2]float32 {
	u := math.InvLerp(p[0], a.xlim[0], a.xlim[1])
	v := math.InvLerp(p[1], a.ylim[0], a.ylim[1])
	return [2]float32{math.Lerp(u, a.area.P0[0], a.area.P1[0]), math.Lerp(v, a.area.P1[1], a.area.P0[1])}
}

func (f *Figure) titleLines() []string {
	var lines []string
	for _, l := range strings.Split(f.title, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Image lays out and rasterizes the figure at the given size in pixels.
func (f *Figure) Image(width, height int) (*image.RGBA, error) {
	xlim, ylim := f.Limits()
	xticks, yticks := NiceTicks(xlim[0], xlim[1], 8), NiceTicks(ylim[0], ylim[1], 8)
	vmin, vmax := f.colorRange()
	cticks := NiceTicks(vmin, vmax, 8)

	_, th := TextSize("0")
	maxWidth := func(v []float32) int {
		w := 0
		for _, s := range formatTicks(v) {
			tw, _ := TextSize(s)
			w = max(w, tw)
		}
		return w
	}

	top := pad + len(f.titleLines())*(th+2) + pad
	bottom := pad + th + pad + th + pad + tickLength
	left := pad + th + pad + maxWidth(yticks) + pad + tickLength
	right := 2 * pad
	if f.colorBar {
		right = barGap + barWidth + tickLength + pad + maxWidth(cticks) + pad + th + pad
	}
	if width-left-right < 10 || height-top-bottom < 10 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrFigureSize)
	}

	ax := axes{
		area: math.Extent2D{P0: [2]float32{float32(left), float32(top)},
			P1: [2]float32{float32(width - right), float32(height - bottom)}},
		xlim: xlim,
		ylim: ylim,
	}

	cb := GetCommandBuffer()
	defer ReturnCommandBuffer(cb)

	cb.ClearRGB(RGB{1, 1, 1})

	cb.SetScissorBounds(ax.area)
	f.drawMeshes(cb, ax)
	f.drawLines(cb, ax)
	f.drawLabels(cb, ax)
	cb.DisableScissor()

	f.drawAxes(cb, ax, xticks, yticks)
	if f.colorBar {
		f.drawColorBar(cb, ax, vmin, vmax, cticks)
	}
	f.drawTitle(cb, ax)

	r := NewRasterizer(width, height, f.lg)
	stats := r.RenderCommandBuffer(cb)
	f.lg.Debug("rendered figure", slog.Any("stats", stats))

	return r.Image(), nil
}

// WritePNG renders the figure at the given size and writes it to w as a
// PNG.
func (f *Figure) WritePNG(w io.Writer, width, height int) error {
	img, err := f.Image(width, height)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func (f *Figure) drawMeshes(cb *CommandBuffer, ax axes) {
	td := GetColoredTrianglesDrawBuilder()
	defer ReturnColoredTrianglesDrawBuilder(td)

	for _, m := range f.meshes {
		rows, cols := m.x.Rows-1, m.x.Cols-1
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				c, ok := f.ColorMap.Lookup(m.c.At(i, j), m.vmin, m.vmax)
				if !ok {
					continue
				}
				node := func(r, c int) [2]float32 {
					return [2]float32{m.x.At(r, c), m.y.At(r, c)}
				}
				q := [4][2]float32{node(i, j), node(i+1, j), node(i+1, j+1), node(i, j+1)}
				if isNaN2(q[0]) || isNaN2(q[1]) || isNaN2(q[2]) || isNaN2(q[3]) {
					continue
				}
				td.AddQuad(ax.toPixel(q[0]), ax.toPixel(q[1]), ax.toPixel(q[2]), ax.toPixel(q[3]), c)
			}
		}
	}
	td.GenerateCommands(cb)
}

func (f *Figure) drawLines(cb *CommandBuffer, ax axes) {
	for _, l := range f.lines {
		pts := make([][2]float32, len(l.pts))
		for i, p := range l.pts {
			pts[i] = ax.toPixel(p)
		}

		cb.SetRGB(l.style.Color)
		cb.LineWidth(f.LineWidth)

		if l.style.Line != LineNone {
			ld := GetLinesDrawBuilder()
			ld.AddLineStrip(pts)
			cb.DashPattern(dashPatterns[l.style.Line])
			ld.GenerateCommands(cb)
			ReturnLinesDrawBuilder(ld)
		}

		if l.style.Marker != 0 {
			ld := GetLinesDrawBuilder()
			td := GetTrianglesDrawBuilder()
			for _, p := range pts {
				AddMarker(l.style.Marker, p, f.MarkerSize, ld, td)
			}
			cb.DashPattern(nil)
			cb.LineWidth(max(f.LineWidth, 1.5))
			ld.GenerateCommands(cb)
			td.GenerateCommands(cb)
			ReturnLinesDrawBuilder(ld)
			ReturnTrianglesDrawBuilder(td)
		}
	}
	cb.DashPattern(nil)
}

func (f *Figure) drawLabels(cb *CommandBuffer, ax axes) {
	ascent := float32(Face.Metrics().Ascent.Ceil())
	for _, l := range f.labels {
		p := ax.toPixel(l.p)
		td := GetTextDrawBuilder()
		td.AddText(l.s, [2]float32{p[0], p[1] - ascent})
		cb.SetRGB(l.color)
		td.GenerateCommands(cb)
		ReturnTextDrawBuilder(td)
	}
}

func (f *Figure) drawAxes(cb *CommandBuffer, ax axes, xticks, yticks []float32) {
	black := RGB{}
	ld := GetLinesDrawBuilder()
	defer ReturnLinesDrawBuilder(ld)
	td := GetTextDrawBuilder()
	defer ReturnTextDrawBuilder(td)

	a := ax.area
	ld.AddLineLoop([][2]float32{a.P0, {a.P1[0], a.P0[1]}, a.P1, {a.P0[0], a.P1[1]}})

	_, th := TextSize("0")
	for i, s := range formatTicks(xticks) {
		x := ax.toPixel([2]float32{xticks[i], 0})[0]
		ld.AddLine([2]float32{x, a.P1[1]}, [2]float32{x, a.P1[1] + tickLength})
		tw, _ := TextSize(s)
		td.AddText(s, [2]float32{x - float32(tw)/2, a.P1[1] + tickLength + pad/2})
	}
	for i, s := range formatTicks(yticks) {
		y := ax.toPixel([2]float32{0, yticks[i]})[1]
		ld.AddLine([2]float32{a.P0[0] - tickLength, y}, [2]float32{a.P0[0], y})
		tw, _ := TextSize(s)
		td.AddText(s, [2]float32{a.P0[0] - tickLength - pad/2 - float32(tw), y - float32(th)/2})
	}

	if f.xlabel != "" {
		tw, _ := TextSize(f.xlabel)
		cx := (a.P0[0] + a.P1[0]) / 2
		td.AddText(f.xlabel, [2]float32{cx - float32(tw)/2, a.P1[1] + tickLength + pad + float32(th) + pad})
	}
	if f.ylabel != "" {
		tw, _ := TextSize(f.ylabel)
		cy := (a.P0[1] + a.P1[1]) / 2
		td.AddVerticalText(f.ylabel, [2]float32{pad, cy - float32(tw)/2})
	}

	cb.SetRGB(black)
	cb.LineWidth(1)
	ld.GenerateCommands(cb)
	td.GenerateCommands(cb)
}

func (f *Figure) drawColorBar(cb *CommandBuffer, ax axes, vmin, vmax float32, ticks []float32) {
	x0 := ax.area.P1[0] + barGap
	x1 := x0 + barWidth
	y0, y1 := ax.area.P0[1], ax.area.P1[1]

	const n = 256
	ctd := GetColoredTrianglesDrawBuilder()
	defer ReturnColoredTrianglesDrawBuilder(ctd)
	for i := 0; i < n; i++ {
		ya := math.Lerp(float32(i)/n, y1, y0)
		yb := math.Lerp(float32(i+1)/n, y1, y0)
		c := f.ColorMap.At((float32(i) + 0.5) / n)
		ctd.AddQuad([2]float32{x0, yb}, [2]float32{x1, yb}, [2]float32{x1, ya}, [2]float32{x0, ya}, c)
	}
	ctd.GenerateCommands(cb)

	ld := GetLinesDrawBuilder()
	defer ReturnLinesDrawBuilder(ld)
	td := GetTextDrawBuilder()
	defer ReturnTextDrawBuilder(td)

	ld.AddLineLoop([][2]float32{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}})

	_, th := TextSize("0")
	labelX := x1 + tickLength + pad/2
	maxW := 0
	for i, s := range formatTicks(ticks) {
		u := math.InvLerp(ticks[i], vmin, vmax)
		if u < -1e-4 || u > 1+1e-4 {
			continue
		}
		y := math.Lerp(u, y1, y0)
		ld.AddLine([2]float32{x1, y}, [2]float32{x1 + tickLength, y})
		td.AddText(s, [2]float32{labelX, y - float32(th)/2})
		tw, _ := TextSize(s)
		maxW = max(maxW, tw)
	}

	if f.colorBarLabel != "" {
		tw, _ := TextSize(f.colorBarLabel)
		td.AddVerticalText(f.colorBarLabel, [2]float32{labelX + float32(maxW) + pad, (y0+y1)/2 - float32(tw)/2})
	}

	cb.SetRGB(RGB{})
	cb.LineWidth(1)
	ld.GenerateCommands(cb)
	td.GenerateCommands(cb)
}

func (f *Figure) drawTitle(cb *CommandBuffer, ax axes) {
	td := GetTextDrawBuilder()
	defer ReturnTextDrawBuilder(td)

	_, th := TextSize("0")
	cx := (ax.area.P0[0] + ax.area.P1[0]) / 2
	y := float32(pad)
	for _, l := range f.titleLines() {
		tw, _ := TextSize(l)
		td.AddText(l, [2]float32{cx - float32(tw)/2, y})
		y += float32(th + 2)
	}

	cb.SetRGB(RGB{})
	td.GenerateCommands(cb)
}

///////////////////////////////////////////////////////////////////////////
// Ticks

// NiceTicks returns at most maxTicks round values in [lo, hi], spaced by
// 1, 2 or 5 times a power of ten.
func NiceTicks(lo, hi float32, maxTicks int) []float32 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi || maxTicks < 2 || math.IsNaN(lo) || math.IsNaN(hi) {
		return []float32{lo}
	}

	step := tickStep(lo, hi, maxTicks)
	var ticks []float32
	for k := math.Ceil(lo/step - 1e-4); k*step <= hi+1e-4*step; k++ {
		v := k * step
		if v == 0 {
			v = 0 // no -0
		}
		ticks = append(ticks, v)
	}
	return ticks
}

func tickStep(lo, hi float32, maxTicks int) float32 {
	raw := (hi - lo) / float32(maxTicks-1)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float32{1, 2, 5, 10} {
		if m*mag >= raw*(1-1e-4) {
			return m * mag
		}
	}
	return 10 * mag
}

// formatTicks formats tick values with just enough decimal places to
// distinguish them.
func formatTicks(ticks []float32) []string {
	decimals := 0
	if len(ticks) > 1 {
		step := ticks[1] - ticks[0]
		decimals = max(0, int(math.Ceil(-math.Log10(step)-1e-4)))
	}
	s := make([]string, len(ticks))
	for i, v := range ticks {
		s[i] = strconv.FormatFloat(float64(v), 'f', decimals, 32)
		if s[i] == "-0" || strings.Trim(s[i], "-0.") == "" {
			s[i] = strings.TrimPrefix(s[i], "-")
		}
	}
	return s
}
