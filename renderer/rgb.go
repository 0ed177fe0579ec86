// renderer/rgb.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/mdvplot/mdvplot/math"
)

///////////////////////////////////////////////////////////////////////////
// RGB

type RGB struct {
	R, G, B float32
}

type RGBA struct {
	R, G, B, A float32
}

func LerpRGB(x float32, a, b RGB) RGB {
	return RGB{R: math.Lerp(x, a.R, b.R), G: math.Lerp(x, a.G, b.G), B: math.Lerp(x, a.B, b.B)}
}

func (r RGB) Equals(other RGB) bool {
	return r.R == other.R && r.G == other.G && r.B == other.B
}

func (r RGB) Scale(v float32) RGB {
	return RGB{R: r.R * v, G: r.G * v, B: r.B * v}
}

// RGBFromHex converts a packed integer color value to an RGB where the low
// 8 bits give blue, the next 8 give green, and then the next 8 give red.
func RGBFromHex(c int) RGB {
	r, g, b := (c>>16)&255, (c>>8)&255, c&255
	return RGB{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255}
}

func RGBFromUInt8(r uint8, g uint8, b uint8) RGB {
	return RGB{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255}
}

// Color returns the color as an 8-bit image/color value.
func (r RGB) Color() color.RGBA {
	return RGBA{R: r.R, G: r.G, B: r.B, A: 1}.Color()
}

// Color returns the premultiplied 8-bit image/color equivalent.
func (r RGBA) Color() color.RGBA {
	q := func(v float32) uint8 {
		return uint8(math.Clamp(v, 0, 1)*255 + 0.5)
	}
	a := math.Clamp(r.A, 0, 1)
	return color.RGBA{R: q(r.R * a), G: q(r.G * a), B: q(r.B * a), A: q(a)}
}

///////////////////////////////////////////////////////////////////////////
// Named colors

var ErrBadColor = errors.New("invalid color")

// Single-letter colors follow matplotlib's "base" colors.
var namedColors = map[string]RGB{
	"b":     {0, 0, 1},
	"g":     {0, 0.5, 0},
	"r":     {1, 0, 0},
	"c":     {0, 0.75, 0.75},
	"m":     {0.75, 0, 0.75},
	"y":     {0.75, 0.75, 0},
	"k":     {0, 0, 0},
	"w":     {1, 1, 1},
	"blue":  {0, 0, 1},
	"green": {0, 0.5, 0},
	"red":   {1, 0, 0},
	"cyan":  {0, 1, 1},
	"black": {0, 0, 0},
	"white": {1, 1, 1},
	"gray":  {0.5, 0.5, 0.5},
	"grey":  {0.5, 0.5, 0.5},
}

// ParseColor returns the color corresponding to a matplotlib-style color
// name: one of the single-letter base colors, a handful of common names,
// or a #rrggbb hex triple.
func ParseColor(s string) (RGB, error) {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return RGBFromHex(int(v)), nil
		}
	}
	return RGB{}, fmt.Errorf("%q: %w", s, ErrBadColor)
}
