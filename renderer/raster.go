// renderer/raster.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	gomath "math"

	"github.com/mdvplot/mdvplot/log"
	"github.com/mdvplot/mdvplot/math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// RendererStats encapsulates assorted statistics from rendering.
type RendererStats struct {
	nBuffers, bufferBytes int
	nDrawCalls            int
	nLines, nTriangles    int
	nStrings              int
}

func (rs *RendererStats) String() string {
	return fmt.Sprintf("%d buffers (%.2f MB), %d draw calls: %d lines, %d tris, %d strings",
		rs.nBuffers, float32(rs.bufferBytes)/(1024*1024), rs.nDrawCalls, rs.nLines, rs.nTriangles, rs.nStrings)
}

func (rs *RendererStats) Merge(s RendererStats) {
	rs.nBuffers += s.nBuffers
	rs.bufferBytes += s.bufferBytes
	rs.nDrawCalls += s.nDrawCalls
	rs.nLines += s.nLines
	rs.nTriangles += s.nTriangles
	rs.nStrings += s.nStrings
}

func (rs RendererStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("buffers", rs.nBuffers),
		slog.Int("buffer_memory", rs.bufferBytes),
		slog.Int("draw_calls", rs.nDrawCalls),
		slog.Int("lines", rs.nLines),
		slog.Int("tris", rs.nTriangles),
		slog.Int("strings", rs.nStrings),
	)
}

// Face is the font used for all text.
var Face font.Face = basicfont.Face7x13

// TextSize returns the size in pixels of the unrotated bounding box of s.
func TextSize(s string) (w, h int) {
	return font.MeasureString(Face, s).Ceil(), Face.Metrics().Height.Ceil()
}

// Rasterizer executes CommandBuffers in software, drawing into an RGBA
// image. Per-vertex colored triangles are filled without antialiasing so
// that adjacent mesh cells meet without seams; lines, filled shapes in
// the current color, and text are antialiased.
type Rasterizer struct {
	img *image.RGBA
	lg  *log.Logger

	// Current state
	rgba      RGBA
	clip      image.Rectangle
	lineWidth float32
	dashes    []float32
	vertices  int // index into the command buffer; -1 if disabled
	colors    int
}

func NewRasterizer(w, h int, lg *log.Logger) *Rasterizer {
	r := &Rasterizer{img: image.NewRGBA(image.Rect(0, 0, w, h)), lg: lg}
	r.resetState()
	return r
}

func (r *Rasterizer) resetState() {
	r.rgba = RGBA{0, 0, 0, 1}
	r.clip = r.img.Bounds()
	r.lineWidth = 1
	r.dashes = nil
	r.vertices, r.colors = -1, -1
}

// Image returns the image that has been rendered into.
func (r *Rasterizer) Image() *image.RGBA {
	return r.img
}

// RenderCommandBuffer executes all of the commands encoded in the
// provided command buffer, returning statistics about what was
// rendered.
func (r *Rasterizer) RenderCommandBuffer(cb *CommandBuffer) RendererStats {
	var stats RendererStats
	stats.nBuffers++
	stats.bufferBytes += 4 * len(cb.Buf)

	i := 0
	ui32 := func() uint32 {
		v := cb.Buf[i]
		i++
		return v
	}
	i32 := func() int {
		return int(int32(ui32()))
	}
	float := func() float32 {
		return gomath.Float32frombits(ui32())
	}

	for i < len(cb.Buf) {
		cmd := cb.Buf[i]
		i++
		switch cmd {
		case RendererClearRGBA:
			c := RGBA{R: float(), G: float(), B: float(), A: float()}
			draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c.Color()), image.Point{}, draw.Src)

		case RendererScissor:
			x, y, w, h := i32(), i32(), i32(), i32()
			r.clip = image.Rect(x, y, x+w, y+h).Intersect(r.img.Bounds())

		case RendererDisableScissor:
			r.clip = r.img.Bounds()

		case RendererSetRGBA:
			r.rgba = RGBA{R: float(), G: float(), B: float(), A: float()}

		case RendererFloatBuffer, RendererIntBuffer, RendererRawBuffer:
			// Nothing to do but skip ahead
			i += int(ui32())

		case RendererVertexArray:
			r.vertices = i32()

		case RendererDisableVertexArray:
			r.vertices = -1

		case RendererRGB32Array:
			r.colors = i32()

		case RendererDisableColorArray:
			r.colors = -1

		case RendererLineWidth:
			r.lineWidth = float()

		case RendererDashPattern:
			n := i32()
			r.dashes = r.dashes[:0]
			for range n {
				r.dashes = append(r.dashes, float())
			}

		case RendererDrawLines:
			offset, count := i32(), i32()
			r.drawLines(cb, offset, count)
			stats.nDrawCalls++
			stats.nLines += count / 2

		case RendererDrawTriangles:
			offset, count := i32(), i32()
			if r.colors >= 0 {
				r.fillColoredTriangles(cb, offset, count)
			} else {
				r.fillTriangles(cb, offset, count)
			}
			stats.nDrawCalls++
			stats.nTriangles += count / 3

		case RendererDrawText:
			p := [2]float32{float(), float()}
			offset, length, turns := i32(), i32(), i32()
			r.drawText(string(cb.rawBytes(offset, length)), p, turns)
			stats.nDrawCalls++
			stats.nStrings++

		default:
			r.lg.Errorf("%d: unhandled command", cmd)
			return stats
		}
	}

	return stats
}

func (r *Rasterizer) vertex(cb *CommandBuffer, idx uint32) [2]float32 {
	o := r.vertices + 2*int(idx)
	return [2]float32{gomath.Float32frombits(cb.Buf[o]), gomath.Float32frombits(cb.Buf[o+1])}
}

func (r *Rasterizer) vertexColor(cb *CommandBuffer, idx uint32) RGB {
	o := r.colors + 3*int(idx)
	return RGB{R: gomath.Float32frombits(cb.Buf[o]), G: gomath.Float32frombits(cb.Buf[o+1]),
		B: gomath.Float32frombits(cb.Buf[o+2])}
}

// newPathRasterizer returns a vector.Rasterizer covering the current clip
// rectangle and a function that maps image coordinates into it.
func (r *Rasterizer) newPathRasterizer() (*vector.Rasterizer, func([2]float32) [2]float32) {
	z := vector.NewRasterizer(r.clip.Dx(), r.clip.Dy())
	z.DrawOp = draw.Over
	o := [2]float32{float32(r.clip.Min.X), float32(r.clip.Min.Y)}
	return z, func(p [2]float32) [2]float32 { return math.Sub2f(p, o) }
}

func (r *Rasterizer) drawPath(z *vector.Rasterizer) {
	z.Draw(r.img, r.clip, image.NewUniform(r.rgba.Color()), image.Point{})
}

func (r *Rasterizer) drawLines(cb *CommandBuffer, offset, count int) {
	if r.vertices < 0 || r.clip.Empty() {
		return
	}

	z, xf := r.newPathRasterizer()
	hw := max(r.lineWidth, 1) / 2
	// Dash phase carries across connected segments.
	var phase float32
	var prev [2]float32
	for j := 0; j+1 < count; j += 2 {
		p0 := r.vertex(cb, cb.Buf[offset+j])
		p1 := r.vertex(cb, cb.Buf[offset+j+1])
		if p0 != prev {
			phase = 0
		}
		prev = p1
		if isNaN2(p0) || isNaN2(p1) {
			continue
		}
		if len(r.dashes) == 0 {
			addSegment(z, xf(p0), xf(p1), hw)
		} else {
			phase = r.addDashedSegment(z, xf(p0), xf(p1), hw, phase)
		}
	}
	r.drawPath(z)
}

// addSegment adds a quad of half-width hw covering the segment p0-p1.
func addSegment(z *vector.Rasterizer, p0, p1 [2]float32, hw float32) {
	d := math.Sub2f(p1, p0)
	l := math.Length2f(d)
	if l == 0 {
		return
	}
	d = math.Scale2f(d, hw/l)
	n := [2]float32{-d[1], d[0]}
	// Extend by half the width so that joins and caps are square.
	p0, p1 = math.Sub2f(p0, d), math.Add2f(p1, d)

	q := [4][2]float32{math.Add2f(p0, n), math.Add2f(p1, n), math.Sub2f(p1, n), math.Sub2f(p0, n)}
	z.MoveTo(q[0][0], q[0][1])
	for _, v := range q[1:] {
		z.LineTo(v[0], v[1])
	}
	z.ClosePath()
}

func (r *Rasterizer) addDashedSegment(z *vector.Rasterizer, p0, p1 [2]float32, hw, phase float32) float32 {
	var period float32
	for _, d := range r.dashes {
		period += d
	}
	if period <= 0 {
		addSegment(z, p0, p1, hw)
		return phase
	}

	l := math.Length2f(math.Sub2f(p1, p0))
	for t := float32(0); t < l; {
		// Find where in the pattern we are.
		ph := float32(gomath.Mod(float64(phase), float64(period)))
		k, start := 0, float32(0)
		for ; k < len(r.dashes)-1 && start+r.dashes[k] <= ph; k++ {
			start += r.dashes[k]
		}
		step := min(start+r.dashes[k]-ph, l-t)
		if k%2 == 0 && step > 0 {
			u0, u1 := t/l, (t+step)/l
			q0 := [2]float32{math.Lerp(u0, p0[0], p1[0]), math.Lerp(u0, p0[1], p1[1])}
			q1 := [2]float32{math.Lerp(u1, p0[0], p1[0]), math.Lerp(u1, p0[1], p1[1])}
			addSegment(z, q0, q1, hw)
		}
		t += max(step, 1e-3)
		phase += max(step, 1e-3)
	}
	return phase
}

func (r *Rasterizer) fillTriangles(cb *CommandBuffer, offset, count int) {
	if r.vertices < 0 || r.clip.Empty() {
		return
	}

	z, xf := r.newPathRasterizer()
	for j := 0; j+2 < count; j += 3 {
		p0 := xf(r.vertex(cb, cb.Buf[offset+j]))
		p1 := xf(r.vertex(cb, cb.Buf[offset+j+1]))
		p2 := xf(r.vertex(cb, cb.Buf[offset+j+2]))
		// Consistent winding so that overlapping triangles don't cancel.
		if cross(p0, p1, p2) < 0 {
			p1, p2 = p2, p1
		}
		z.MoveTo(p0[0], p0[1])
		z.LineTo(p1[0], p1[1])
		z.LineTo(p2[0], p2[1])
		z.ClosePath()
	}
	r.drawPath(z)
}

func cross(p0, p1, p2 [2]float32) float32 {
	return (p1[0]-p0[0])*(p2[1]-p0[1]) - (p1[1]-p0[1])*(p2[0]-p0[0])
}

// fillColoredTriangles fills each triangle with the color of its first
// vertex, covering the pixels whose centers are inside it.
func (r *Rasterizer) fillColoredTriangles(cb *CommandBuffer, offset, count int) {
	if r.vertices < 0 || r.clip.Empty() {
		return
	}

	for j := 0; j+2 < count; j += 3 {
		i0 := cb.Buf[offset+j]
		v := [3][2]float32{r.vertex(cb, i0), r.vertex(cb, cb.Buf[offset+j+1]), r.vertex(cb, cb.Buf[offset+j+2])}
		if isNaN2(v[0]) || isNaN2(v[1]) || isNaN2(v[2]) {
			continue
		}
		area := cross(v[0], v[1], v[2])
		if area == 0 {
			continue
		}
		c := r.vertexColor(cb, i0).Color()

		b := math.Extent2DFromPoints(v[:])
		x0 := max(int(math.Floor(b.P0[0])), r.clip.Min.X)
		y0 := max(int(math.Floor(b.P0[1])), r.clip.Min.Y)
		x1 := min(int(math.Ceil(b.P1[0])), r.clip.Max.X-1)
		y1 := min(int(math.Ceil(b.P1[1])), r.clip.Max.Y-1)

		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				p := [2]float32{float32(x) + 0.5, float32(y) + 0.5}
				// Edge functions, normalized so that inside is positive
				// regardless of winding.
				e0 := cross(v[0], v[1], p) * area
				e1 := cross(v[1], v[2], p) * area
				e2 := cross(v[2], v[0], p) * area
				if e0 >= 0 && e1 >= 0 && e2 >= 0 {
					r.img.SetRGBA(x, y, c)
				}
			}
		}
	}
}

func (r *Rasterizer) drawText(s string, p [2]float32, quarterTurns int) {
	w, h := TextSize(s)
	if w == 0 || r.clip.Empty() {
		return
	}

	// Draw into a scratch image and then composite it, rotated as needed.
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(r.rgba.Color()),
		Face: Face,
		Dot:  fixed.P(0, Face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	x0, y0 := int(math.Floor(p[0]+0.5)), int(math.Floor(p[1]+0.5))
	if quarterTurns%4 == 0 {
		dr := image.Rect(x0, y0, x0+w, y0+h)
		draw.Draw(r.img, dr.Intersect(r.clip), scratch, dr.Intersect(r.clip).Min.Sub(dr.Min), draw.Over)
		return
	}

	// One counter-clockwise quarter turn: text reads upward and the
	// rotated bounding box is h wide and w tall.
	rot := image.NewRGBA(image.Rect(0, 0, h, w))
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			rot.SetRGBA(ty, w-1-tx, scratch.RGBAAt(tx, ty))
		}
	}
	dr := image.Rect(x0, y0, x0+h, y0+w)
	draw.Draw(r.img, dr.Intersect(r.clip), rot, dr.Intersect(r.clip).Min.Sub(dr.Min), draw.Over)
}
