// renderer/builders.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	gomath "math"
	"sync"

	"github.com/mdvplot/mdvplot/math"

	"github.com/mmp/earcut-go"
)

///////////////////////////////////////////////////////////////////////////
// DrawBuilders

// The various *DrawBuilder classes provide capabilities for specifying a
// number of independent things of the same type to draw and then
// generating corresponding buffer storage and draw commands in a
// CommandBuffer. This allows batching up many things to be drawn all in a
// single draw command.

// LinesDrawBuilder accumulates lines to be drawn together. Note that it
// does not allow specifying the colors of the lines; instead, whatever
// the current color is (as set via the CommandBuffer SetRGB method) is
// used when drawing them.
type LinesDrawBuilder struct {
	p       [][2]float32
	indices []int32
}

// Reset resets the internal arrays used for accumulating lines,
// maintaining the initial allocations.
func (l *LinesDrawBuilder) Reset() {
	l.p = l.p[:0]
	l.indices = l.indices[:0]
}

// AddLine adds a lines with the specified vertex positions to the set of
// lines to be drawn.
func (l *LinesDrawBuilder) AddLine(p0, p1 [2]float32) {
	idx := int32(len(l.p))
	l.p = append(l.p, p0, p1)
	l.indices = append(l.indices, idx, idx+1)
}

// AddLineStrip adds multiple lines to the lines draw builder where each
// line is given by a successive pair of points, a la GL_LINE_STRIP.
// Segments with a NaN endpoint are skipped, which breaks the strip.
func (l *LinesDrawBuilder) AddLineStrip(p [][2]float32) {
	idx := int32(len(l.p))
	l.p = append(l.p, p...)
	for i := 0; i < len(p)-1; i++ {
		if isNaN2(p[i]) || isNaN2(p[i+1]) {
			continue
		}
		l.indices = append(l.indices, idx+int32(i), idx+int32(i+1))
	}
}

// Adds a line loop, like a line strip but where the last vertex connects
// to the first, a la GL_LINE_LOOP.
func (l *LinesDrawBuilder) AddLineLoop(p [][2]float32) {
	idx := int32(len(l.p))
	l.p = append(l.p, p...)
	for i := range p {
		l.indices = append(l.indices, idx+int32(i), idx+int32((i+1)%len(p)))
	}
}

// Bounds returns the 2D bounding box of the specified lines.
func (l *LinesDrawBuilder) Bounds() math.Extent2D {
	return math.Extent2DFromPoints(l.p)
}

// GenerateCommands adds commands to the specified command buffer to draw
// the lines stored in the LinesDrawBuilder.
func (l *LinesDrawBuilder) GenerateCommands(cb *CommandBuffer) {
	if len(l.indices) == 0 {
		return
	}

	// Add the vertex positions to the command buffer.
	p := cb.Float2Buffer(l.p)
	cb.VertexArray(p)

	// Add the vertex indices and issue the draw command.
	ind := cb.IntBuffer(l.indices)
	cb.DrawLines(ind, len(l.indices))

	// Clean up
	cb.DisableVertexArray()
}

// LinesDrawBuilders are managed using a sync.Pool so that their buf slice
// allocations persist across multiple uses.
var linesDrawBuilderPool = sync.Pool{New: func() any { return &LinesDrawBuilder{} }}

func GetLinesDrawBuilder() *LinesDrawBuilder {
	return linesDrawBuilderPool.Get().(*LinesDrawBuilder)
}

func ReturnLinesDrawBuilder(ld *LinesDrawBuilder) {
	ld.Reset()
	linesDrawBuilderPool.Put(ld)
}

// TrianglesDrawBuilder collects triangles to be batched up in a single
// draw call. Note that it does not allow specifying per-vertex or
// per-triangle color; rather, the current color as specified by a call to
// the CommandBuffer SetRGB method is used for all triangles.
type TrianglesDrawBuilder struct {
	p       [][2]float32
	indices []int32
}

func (t *TrianglesDrawBuilder) Reset() {
	t.p = t.p[:0]
	t.indices = t.indices[:0]
}

// AddTriangle adds a triangle with the specified three vertices to be
// drawn.
func (t *TrianglesDrawBuilder) AddTriangle(p0, p1, p2 [2]float32) {
	idx := int32(len(t.p))
	t.p = append(t.p, p0, p1, p2)
	t.indices = append(t.indices, idx, idx+1, idx+2)
}

// AddQuad adds a quadrilateral with the specified four vertices to be
// drawn; the quad is split into two triangles for drawing.
func (t *TrianglesDrawBuilder) AddQuad(p0, p1, p2, p3 [2]float32) {
	idx := int32(len(t.p))
	t.p = append(t.p, p0, p1, p2, p3)
	t.indices = append(t.indices, idx, idx+1, idx+2, idx, idx+2, idx+3)
}

// AddPolygon adds the filled interior of the simple polygon given by loop,
// which may be non-convex.
func (t *TrianglesDrawBuilder) AddPolygon(loop [][2]float32) {
	if len(loop) < 3 {
		return
	}

	vertices := make([]earcut.Vertex, len(loop))
	for i, v := range loop {
		vertices[i].P = [2]float64{float64(v[0]), float64(v[1])}
	}

	for _, tri := range earcut.Triangulate(earcut.Polygon{Rings: [][]earcut.Vertex{vertices}}) {
		var v32 [3][2]float32
		for i, v64 := range tri.Vertices {
			v32[i] = [2]float32{float32(v64.P[0]), float32(v64.P[1])}
		}
		t.AddTriangle(v32[0], v32[1], v32[2])
	}
}

func (t *TrianglesDrawBuilder) Bounds() math.Extent2D {
	return math.Extent2DFromPoints(t.p)
}

func (t *TrianglesDrawBuilder) GenerateCommands(cb *CommandBuffer) {
	if len(t.indices) == 0 {
		return
	}

	p := cb.Float2Buffer(t.p)
	cb.VertexArray(p)

	ind := cb.IntBuffer(t.indices)
	cb.DrawTriangles(ind, len(t.indices))

	cb.DisableVertexArray()
}

// TrianglesDrawBuilders are managed using a sync.Pool so that their buf
// slice allocations persist across multiple uses.
var trianglesDrawBuilderPool = sync.Pool{New: func() any { return &TrianglesDrawBuilder{} }}

func GetTrianglesDrawBuilder() *TrianglesDrawBuilder {
	return trianglesDrawBuilderPool.Get().(*TrianglesDrawBuilder)
}

func ReturnTrianglesDrawBuilder(td *TrianglesDrawBuilder) {
	td.Reset()
	trianglesDrawBuilderPool.Put(td)
}

// ColoredTrianglesDrawBuilder is a TrianglesDrawBuilder that takes a
// color for each triangle; mesh cells and the color bar are drawn with
// it.
type ColoredTrianglesDrawBuilder struct {
	TrianglesDrawBuilder
	color []RGB
}

func (t *ColoredTrianglesDrawBuilder) Reset() {
	t.TrianglesDrawBuilder.Reset()
	t.color = t.color[:0]
}

// AddTriangle adds a triangle with the specified three vertices to be
// drawn.
func (t *ColoredTrianglesDrawBuilder) AddTriangle(p0, p1, p2 [2]float32, rgb RGB) {
	t.TrianglesDrawBuilder.AddTriangle(p0, p1, p2)
	t.color = append(t.color, rgb, rgb, rgb)
}

// AddQuad adds a quadrilateral with the specified four vertices to be
// drawn; the quad is split into two triangles for drawing.
func (t *ColoredTrianglesDrawBuilder) AddQuad(p0, p1, p2, p3 [2]float32, rgb RGB) {
	t.TrianglesDrawBuilder.AddQuad(p0, p1, p2, p3)
	t.color = append(t.color, rgb, rgb, rgb, rgb)
}

func (t *ColoredTrianglesDrawBuilder) GenerateCommands(cb *CommandBuffer) {
	if len(t.indices) == 0 {
		return
	}

	rgb := cb.RGBBuffer(t.color)
	cb.RGB32Array(rgb)

	t.TrianglesDrawBuilder.GenerateCommands(cb)

	cb.DisableColorArray()
}

// ColoredTrianglesDrawBuilders are managed using a sync.Pool so that their buf
// slice allocations persist across multiple uses.
var coloredTrianglesDrawBuilderPool = sync.Pool{New: func() any { return &ColoredTrianglesDrawBuilder{} }}

func GetColoredTrianglesDrawBuilder() *ColoredTrianglesDrawBuilder {
	return coloredTrianglesDrawBuilderPool.Get().(*ColoredTrianglesDrawBuilder)
}

func ReturnColoredTrianglesDrawBuilder(td *ColoredTrianglesDrawBuilder) {
	td.Reset()
	coloredTrianglesDrawBuilderPool.Put(td)
}

// TextDrawBuilder accumulates strings to be drawn in a single color.
type TextDrawBuilder struct {
	text []textItem
}

type textItem struct {
	s            string
	p            [2]float32
	quarterTurns int
}

func (t *TextDrawBuilder) Reset() {
	t.text = t.text[:0]
}

// AddText adds s to be drawn with the upper-left corner of its bounding
// box at p.
func (t *TextDrawBuilder) AddText(s string, p [2]float32) {
	t.text = append(t.text, textItem{s: s, p: p})
}

// AddVerticalText adds s to be drawn reading bottom to top, with the
// upper-left corner of its rotated bounding box at p.
func (t *TextDrawBuilder) AddVerticalText(s string, p [2]float32) {
	t.text = append(t.text, textItem{s: s, p: p, quarterTurns: 1})
}

func (t *TextDrawBuilder) GenerateCommands(cb *CommandBuffer) {
	for _, item := range t.text {
		if item.s == "" {
			continue
		}
		raw := cb.RawBuffer([]byte(item.s))
		cb.DrawText(item.p, raw, len(item.s), item.quarterTurns)
	}
}

var textDrawBuilderPool = sync.Pool{New: func() any { return &TextDrawBuilder{} }}

func GetTextDrawBuilder() *TextDrawBuilder {
	return textDrawBuilderPool.Get().(*TextDrawBuilder)
}

func ReturnTextDrawBuilder(td *TextDrawBuilder) {
	td.Reset()
	textDrawBuilderPool.Put(td)
}

///////////////////////////////////////////////////////////////////////////
// Markers

// AddMarker adds the marker shape m centered at p with the given size in
// pixels. Outline markers go to ld and filled ones to td.
func AddMarker(m Marker, p [2]float32, size float32, ld *LinesDrawBuilder, td *TrianglesDrawBuilder) {
	if isNaN2(p) {
		return
	}
	r := size / 2
	at := func(dx, dy float32) [2]float32 { return [2]float32{p[0] + dx, p[1] + dy} }

	switch m {
	case '+':
		ld.AddLine(at(-r, 0), at(r, 0))
		ld.AddLine(at(0, -r), at(0, r))
	case 'x':
		ld.AddLine(at(-r, -r), at(r, r))
		ld.AddLine(at(-r, r), at(r, -r))
	case '|':
		ld.AddLine(at(0, -r), at(0, r))
	case '_':
		ld.AddLine(at(-r, 0), at(r, 0))
	case '.':
		td.AddPolygon(circleLoop(p, r/2.5, 12))
	case 'o':
		td.AddPolygon(circleLoop(p, r, 24))
	case 's':
		td.AddQuad(at(-r, -r), at(r, -r), at(r, r), at(-r, r))
	case 'D':
		td.AddQuad(at(0, -r), at(r, 0), at(0, r), at(-r, 0))
	case '^': // pixel y is down
		td.AddTriangle(at(0, -r), at(r, r), at(-r, r))
	case 'v':
		td.AddTriangle(at(0, r), at(-r, -r), at(r, -r))
	case '*':
		td.AddPolygon(starLoop(p, r, 0.4*r))
	}
}

func circleLoop(p [2]float32, r float32, nsegs int) [][2]float32 {
	loop := make([][2]float32, nsegs)
	for i := range loop {
		a := float64(i) / float64(nsegs) * 2 * gomath.Pi
		loop[i] = [2]float32{p[0] + r*float32(gomath.Cos(a)), p[1] + r*float32(gomath.Sin(a))}
	}
	return loop
}

// starLoop returns the outline of a five-pointed star with one point up.
func starLoop(p [2]float32, outer, inner float32) [][2]float32 {
	loop := make([][2]float32, 10)
	for i := range loop {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := float64(i)/10*2*gomath.Pi - gomath.Pi/2
		loop[i] = [2]float32{p[0] + r*float32(gomath.Cos(a)), p[1] + r*float32(gomath.Sin(a))}
	}
	return loop
}

func isNaN2(p [2]float32) bool {
	return math.IsNaN(p[0]) || math.IsNaN(p[1])
}
