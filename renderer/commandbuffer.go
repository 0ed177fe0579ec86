// renderer/commandbuffer.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	gomath "math"
	"sync"

	"github.com/mdvplot/mdvplot/math"
)

// The command buffer stores a series of rendering commands, represented by
// the following values. Each one is followed in the buffer by a number of
// command arguments, after which the next command follows. Comments
// after each command briefly describe its arguments.
//
// Vertex, index, color and text data are stored directly in the
// CommandBuffer, following RendererFloatBuffer, RendererIntBuffer and
// RendererRawBuffer commands; the first argument after those commands is
// the length of the buffer and then its values follow directly. Commands
// that use buffers refer to them by the index in Buf where their values
// start, so one CommandBuffer cannot refer to a buffer in another.
//
// All coordinates are in image pixels with the origin at the upper left.

const (
	RendererClearRGBA          = iota // 4 float32: RGBA
	RendererScissor                   // 4 int32: x, y, width, height
	RendererDisableScissor            // no args
	RendererSetRGBA                   // 4 float32: RGBA
	RendererFloatBuffer               // int32 size, then size*float32 values
	RendererIntBuffer                 // int32: size, then size*int32 values
	RendererRawBuffer                 // int32: n, then n int32 values holding packed bytes
	RendererVertexArray               // int32: index of 2-component vertex positions
	RendererDisableVertexArray        // no args
	RendererRGB32Array                // int32: index of 3-component float32 colors
	RendererDisableColorArray         // no args
	RendererLineWidth                 // float32
	RendererDashPattern               // int32 n, then n float32 lengths; n == 0 disables
	RendererDrawLines                 // 2 int32: index of the index buffer, count
	RendererDrawTriangles             // 2 int32: index of the index buffer, count
	RendererDrawText                  // 2 float32: upper-left, 2 int32: raw buffer index, length, int32: quarter turns
)

// CommandBuffer encodes a sequence of rendering commands in a
// backend-agnostic manner so that figure layout can be "baked" once and
// then executed by a Rasterizer.
type CommandBuffer struct {
	Buf []uint32
}

// CommandBuffers are managed using a sync.Pool so that their buf slice
// allocations persist across multiple uses.
var commandBufferPool = sync.Pool{New: func() any { return &CommandBuffer{} }}

func GetCommandBuffer() *CommandBuffer {
	return commandBufferPool.Get().(*CommandBuffer)
}

func ReturnCommandBuffer(cb *CommandBuffer) {
	cb.Reset()
	commandBufferPool.Put(cb)
}

// Reset resets the command buffer's length to zero so that it can be
// reused.
func (cb *CommandBuffer) Reset() {
	cb.Buf = cb.Buf[:0]
}

func (cb *CommandBuffer) appendFloats(floats ...float32) {
	for _, f := range floats {
		// Convert each one to a uint32 since that's the type that is
		// actually stored...
		cb.Buf = append(cb.Buf, gomath.Float32bits(f))
	}
}

func (cb *CommandBuffer) appendInts(ints ...int) {
	for _, i := range ints {
		if i != int(int32(i)) {
			panic(fmt.Sprintf("%d: attempting to add non-32-bit value to CommandBuffer", i))
		}
		cb.Buf = append(cb.Buf, uint32(int32(i)))
	}
}

// ClearRGB adds a command to the command buffer to clear the image to the
// specified RGB color.
func (cb *CommandBuffer) ClearRGB(color RGB) {
	cb.appendInts(RendererClearRGBA)
	cb.appendFloats(color.R, color.G, color.B, 1)
}

// Scissor adds a command to the command buffer to set the scissor
// rectangle as specified; subsequent drawing is clipped to it.
func (cb *CommandBuffer) Scissor(x, y, w, h int) {
	cb.appendInts(RendererScissor, x, y, w, h)
}

// SetScissorBounds sets the scissor rectangle to the given extent,
// rounded outward to whole pixels.
func (cb *CommandBuffer) SetScissorBounds(b math.Extent2D) {
	x0, y0 := int(math.Floor(b.P0[0])), int(math.Floor(b.P0[1]))
	x1, y1 := int(math.Ceil(b.P1[0])), int(math.Ceil(b.P1[1]))
	cb.Scissor(x0, y0, max(x1-x0, 0), max(y1-y0, 0))
}

func (cb *CommandBuffer) DisableScissor() {
	cb.appendInts(RendererDisableScissor)
}

// SetRGBA adds a command to the command buffer to set the current RGBA
// color. Subsequent draw commands will inherit this color unless they
// specify per-vertex colors themselves.
func (cb *CommandBuffer) SetRGBA(rgba RGBA) {
	cb.appendInts(RendererSetRGBA)
	cb.appendFloats(rgba.R, rgba.G, rgba.B, rgba.A)
}

// SetRGB adds a command to the command buffer to set the current RGB
// color (alpha is set to 1).
func (cb *CommandBuffer) SetRGB(rgb RGB) {
	cb.appendInts(RendererSetRGBA)
	cb.appendFloats(rgb.R, rgb.G, rgb.B, 1)
}

// Float2Buffer stores the provided slice of [2]float32 values in the
// CommandBuffer and returns the index where the first value of the slice
// is stored; this index can then be passed to commands like VertexArray
// to specify this array.
func (cb *CommandBuffer) Float2Buffer(buf [][2]float32) int {
	cb.appendInts(RendererFloatBuffer, 2*len(buf))
	offset := len(cb.Buf)
	for _, p := range buf {
		cb.appendFloats(p[0], p[1])
	}
	return offset
}

// RGBBuffer stores the provided slice of RGB values in the command buffer
// and returns the index where the first value of the slice is stored.
func (cb *CommandBuffer) RGBBuffer(buf []RGB) int {
	cb.appendInts(RendererFloatBuffer, 3*len(buf))
	offset := len(cb.Buf)
	for _, c := range buf {
		cb.appendFloats(c.R, c.G, c.B)
	}
	return offset
}

// IntBuffer stores the provided slice of int32 values in the command
// buffer and returns the index where the first value of the slice is
// stored.
func (cb *CommandBuffer) IntBuffer(buf []int32) int {
	cb.appendInts(RendererIntBuffer, len(buf))
	offset := len(cb.Buf)
	for _, v := range buf {
		cb.Buf = append(cb.Buf, uint32(v))
	}
	return offset
}

// RawBuffer stores the provided bytes, without further interpretation, in
// the command buffer and returns the index where they begin.
func (cb *CommandBuffer) RawBuffer(buf []byte) int {
	nints := (len(buf) + 3) / 4
	cb.appendInts(RendererRawBuffer, nints)
	offset := len(cb.Buf)
	for i := 0; i < nints; i++ {
		var v uint32
		for j := 0; j < 4 && 4*i+j < len(buf); j++ {
			v |= uint32(buf[4*i+j]) << (8 * j)
		}
		cb.Buf = append(cb.Buf, v)
	}
	return offset
}

// rawBytes returns n bytes stored by RawBuffer at the given index.
func (cb *CommandBuffer) rawBytes(offset, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(cb.Buf[offset+i/4] >> (8 * (i % 4)))
	}
	return b
}

// VertexArray adds a command to the command buffer that specifies an
// array of vertex coordinates to use for a subsequent draw command; offset
// is as returned by Float2Buffer.
func (cb *CommandBuffer) VertexArray(offset int) {
	cb.appendInts(RendererVertexArray, offset)
}

// DisableVertexArray adds a command to the command buffer to disable the
// current vertex array.
func (cb *CommandBuffer) DisableVertexArray() {
	cb.appendInts(RendererDisableVertexArray)
}

// RGB32Array adds a command to the command buffer that specifies an array
// of float32 RGB per-vertex colors to use for a subsequent draw command.
func (cb *CommandBuffer) RGB32Array(offset int) {
	cb.appendInts(RendererRGB32Array, offset)
}

// DisableColorArray adds a command to the command buffer that disables
// the current array of RGB per-vertex colors.
func (cb *CommandBuffer) DisableColorArray() {
	cb.appendInts(RendererDisableColorArray)
}

// LineWidth adds a command to the command buffer that sets the width in
// pixels of subsequent lines that are drawn.
func (cb *CommandBuffer) LineWidth(w float32) {
	cb.appendInts(RendererLineWidth)
	cb.appendFloats(w)
}

// DashPattern sets alternating on/off lengths in pixels for subsequent
// lines; an empty pattern draws solid lines.
func (cb *CommandBuffer) DashPattern(pattern []float32) {
	cb.appendInts(RendererDashPattern, len(pattern))
	cb.appendFloats(pattern...)
}

// DrawLines adds a command to the command buffer to draw a number of
// lines; each line is specified by two indices in the index buffer.
// offset gives the index in the current command buffer where the index
// buffer is (e.g., as returned by IntBuffer), and count gives the total
// number of indices.
func (cb *CommandBuffer) DrawLines(offset, count int) {
	cb.appendInts(RendererDrawLines, offset, count)
}

// DrawTriangles adds a command to the command buffer to draw a number of
// triangles; each is specified by three vertices in the index
// buffer. offset gives the start of the index buffer in the current
// command buffer and count gives the total number of indices.
func (cb *CommandBuffer) DrawTriangles(offset, count int) {
	cb.appendInts(RendererDrawTriangles, offset, count)
}

// DrawText adds a command to draw the text stored by RawBuffer at offset,
// rotated by the given number of quarter turns counter-clockwise, so that
// the upper-left corner of its (rotated) bounding box is at p.
func (cb *CommandBuffer) DrawText(p [2]float32, offset, length int, quarterTurns int) {
	cb.appendInts(RendererDrawText)
	cb.appendFloats(p[0], p[1])
	cb.appendInts(offset, length, quarterTurns)
}
