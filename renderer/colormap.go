// renderer/colormap.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/mdvplot/mdvplot/math"
)

var ErrUnknownColorMap = errors.New("unknown color map")

// cpoint is a breakpoint in a piecewise-linear channel ramp: at x in
// [0,1] the channel has value y.
type cpoint struct {
	x, y float32
}

// ColorMap maps scalar values to colors. Each of the three channels is an
// independent piecewise-linear function over [0,1], as with matplotlib's
// segmented color maps. If Levels is non-zero, the input is first
// quantized to that many equal bins.
type ColorMap struct {
	Name    string
	r, g, b []cpoint
	Levels  int
}

// Lookup returns the color for v given the color scale [vmin, vmax].
// Values outside the scale saturate at the ends; ok is false if v is NaN.
func (cm *ColorMap) Lookup(v, vmin, vmax float32) (RGB, bool) {
	if math.IsNaN(v) {
		return RGB{}, false
	}
	return cm.At(math.Clamp(math.InvLerp(v, vmin, vmax), 0, 1)), true
}

// At returns the color at t in [0,1].
func (cm *ColorMap) At(t float32) RGB {
	if cm.Levels > 0 {
		n := float32(cm.Levels)
		bin := math.Clamp(math.Floor(t*n), 0, n-1)
		if cm.Levels > 1 {
			t = bin / (n - 1)
		} else {
			t = 0
		}
	}
	return RGB{R: evalChannel(cm.r, t), G: evalChannel(cm.g, t), B: evalChannel(cm.b, t)}
}

func evalChannel(ch []cpoint, t float32) float32 {
	i := sort.Search(len(ch), func(i int) bool { return ch[i].x >= t })
	switch {
	case i == 0:
		return ch[0].y
	case i == len(ch):
		return ch[len(ch)-1].y
	default:
		p0, p1 := ch[i-1], ch[i]
		return math.Lerp(math.InvLerp(t, p0.x, p1.x), p0.y, p1.y)
	}
}

// colorMapFromHex returns a ColorMap that interpolates between the given
// colors, which are evenly spaced over [0,1].
func colorMapFromHex(name string, levels int, hex ...int) *ColorMap {
	cm := &ColorMap{Name: name, Levels: levels}
	for i, h := range hex {
		x := float32(i) / float32(len(hex)-1)
		c := RGBFromHex(h)
		cm.r = append(cm.r, cpoint{x, c.R})
		cm.g = append(cm.g, cpoint{x, c.G})
		cm.b = append(cm.b, cpoint{x, c.B})
	}
	return cm
}

var colorMaps = map[string]*ColorMap{
	"jet": {
		Name: "jet",
		r:    []cpoint{{0, 0}, {0.35, 0}, {0.66, 1}, {0.89, 1}, {1, 0.5}},
		g:    []cpoint{{0, 0}, {0.125, 0}, {0.375, 1}, {0.64, 1}, {0.91, 0}, {1, 0}},
		b:    []cpoint{{0, 0.5}, {0.11, 1}, {0.34, 1}, {0.65, 0}, {1, 0}},
	},
	"gray": {
		Name: "gray",
		r:    []cpoint{{0, 0}, {1, 1}},
		g:    []cpoint{{0, 0}, {1, 1}},
		b:    []cpoint{{0, 0}, {1, 1}},
	},
	"rdbu": colorMapFromHex("rdbu", 0,
		0x67001f, 0xb2182b, 0xd6604d, 0xf4a582, 0xfddbc7, 0xf7f7f7,
		0xd1e5f0, 0x92c5de, 0x4393c3, 0x2166ac, 0x053061),
	// The familiar NWS reflectivity steps, 5 dBZ apart from -10 to 70
	// when used with a [-16, 64] scale.
	"nws_reflectivity": colorMapFromHex("nws_reflectivity", 16,
		0x646464, 0xccffff, 0xcc99cc, 0x996699, 0x663366, 0x04e9e7,
		0x019ff4, 0x0300f4, 0x02fd02, 0x01c501, 0x008e00, 0xfdf802,
		0xe5bc00, 0xfd9500, 0xfd0000, 0xbc0000),
}

// DefaultColorMap is used when no other color map has been specified.
const DefaultColorMap = "jet"

// LookupColorMap returns the named color map.
func LookupColorMap(name string) (*ColorMap, error) {
	if cm, ok := colorMaps[name]; ok {
		return cm, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownColorMap)
}

// ColorMapNames returns the names of all available color maps.
func ColorMapNames() []string {
	var n []string
	for name := range colorMaps {
		n = append(n, name)
	}
	slices.Sort(n)
	return n
}
