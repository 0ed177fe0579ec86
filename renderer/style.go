// renderer/style.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadStyle = errors.New("invalid style string")

type LineStyle int

const (
	LineNone LineStyle = iota
	LineSolid
	LineDashed
	LineDashDot
	LineDotted
)

// Dash pattern lengths in pixels, alternating on and off.
var dashPatterns = map[LineStyle][]float32{
	LineDashed:  {7, 4},
	LineDashDot: {7, 3, 2, 3},
	LineDotted:  {2, 3},
}

// Marker identifies a marker shape by its matplotlib format character; 0
// means no marker.
type Marker byte

const markerChars = ".o+xs^vD*|_"

// Style describes how a polyline is drawn, as given by a matplotlib-style
// format string like "r+", "k--", or "bo-".
type Style struct {
	Color  RGB
	Marker Marker
	Line   LineStyle
}

// ParseStyle parses a matplotlib format string: an optional color, marker
// and line style in any order. If only a marker is given, no line is
// drawn; if neither is given, the line is solid. The default color is
// blue.
func ParseStyle(s string) (Style, error) {
	st := Style{Color: namedColors["b"]}
	haveColor := false
	bad := func(why string) (Style, error) {
		return Style{}, fmt.Errorf("%q: %s: %w", s, why, ErrBadStyle)
	}

	for i := 0; i < len(s); i++ {
		switch rest := s[i:]; {
		case strings.HasPrefix(rest, "--"), strings.HasPrefix(rest, "-."):
			if st.Line != LineNone {
				return bad("multiple line styles")
			}
			st.Line = LineDashed
			if rest[1] == '.' {
				st.Line = LineDashDot
			}
			i++
		case rest[0] == '-' || rest[0] == ':':
			if st.Line != LineNone {
				return bad("multiple line styles")
			}
			st.Line = LineSolid
			if rest[0] == ':' {
				st.Line = LineDotted
			}
		case strings.IndexByte(markerChars, rest[0]) != -1:
			if st.Marker != 0 {
				return bad("multiple markers")
			}
			st.Marker = Marker(rest[0])
		default:
			c, ok := namedColors[rest[:1]]
			if !ok {
				return bad(fmt.Sprintf("unexpected %q", rest[:1]))
			}
			if haveColor {
				return bad("multiple colors")
			}
			st.Color, haveColor = c, true
		}
	}

	if st.Marker == 0 && st.Line == LineNone {
		st.Line = LineSolid
	}
	return st, nil
}
