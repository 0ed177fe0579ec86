// math/core.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float32) float32 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians(d float32) float32 {
	return d / 180 * gomath.Pi
}

func Pi() float32 {
	return float32(gomath.Pi)
}

// A number of utility functions for evaluating transcendentals and the like follow;
// since radar grids are float32, it's handy to be able to call these directly rather than
// with all of the casts that are required when using the math package.

func Sin(a float32) float32 {
	return float32(gomath.Sin(float64(a)))
}

func Cos(a float32) float32 {
	return float32(gomath.Cos(float64(a)))
}

func Asin(a float32) float32 {
	return float32(gomath.Asin(float64(Clamp(a, -1, 1))))
}

func Sqrt(a float32) float32 {
	return float32(gomath.Sqrt(float64(a)))
}

func Sign(v float32) float32 {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

func Floor(v float32) float32 {
	return float32(gomath.Floor(float64(v)))
}

func Ceil(v float32) float32 {
	return float32(gomath.Ceil(float64(v)))
}

func Log10(v float32) float32 {
	return float32(gomath.Log10(float64(v)))
}

func Pow(a, b float32) float32 {
	return float32(gomath.Pow(float64(a), float64(b)))
}

func Exp(x float32) float32 {
	return float32(gomath.Exp(float64(x)))
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

func Lerp(x, a, b float32) float32 {
	return (1-x)*a + x*b
}

// InvLerp returns the fraction of the way v is between a and b; it is
// the inverse of Lerp. a == b returns 0.
func InvLerp(v, a, b float32) float32 {
	if a == b {
		return 0
	}
	return (v - a) / (b - a)
}

// NaN returns a float32 not-a-number; it marks missing and masked cells
// in radar grids.
func NaN() float32 {
	return float32(gomath.NaN())
}

func IsNaN(v float32) bool {
	return v != v
}

// Linspace returns n values evenly spaced over [a, b], inclusive of both
// endpoints.
func Linspace[F constraints.Float](a, b F, n int) []F {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []F{a}
	}

	r := make([]F, n)
	step := (b - a) / F(n-1)
	for i := range r {
		r[i] = a + F(i)*step
	}
	// Avoid accumulated round-off at the far end.
	r[n-1] = b
	return r
}
