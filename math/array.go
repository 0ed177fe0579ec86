// math/array.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "fmt"

// Array2D is a dense row-major 2D grid of float32 values. Radar sweeps
// are stored with one row per ray and one column per range gate. NaN
// entries are missing or masked.
type Array2D struct {
	Rows, Cols int
	Data       []float32
}

func MakeArray2D(rows, cols int) Array2D {
	return Array2D{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// Array2DFromRows returns an Array2D holding a copy of the given rows,
// which must all have the same length.
func Array2DFromRows(rows [][]float32) (Array2D, error) {
	if len(rows) == 0 {
		return Array2D{}, nil
	}
	a := MakeArray2D(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != a.Cols {
			return Array2D{}, fmt.Errorf("row %d: %d columns, expected %d", i, len(r), a.Cols)
		}
		copy(a.Data[i*a.Cols:], r)
	}
	return a, nil
}

func (a Array2D) At(row, col int) float32 {
	return a.Data[row*a.Cols+col]
}

func (a Array2D) Set(row, col int, v float32) {
	a.Data[row*a.Cols+col] = v
}

func (a Array2D) Shape() [2]int {
	return [2]int{a.Rows, a.Cols}
}

func (a Array2D) SameShape(b Array2D) bool {
	return a.Rows == b.Rows && a.Cols == b.Cols
}

// Valid reports whether the length of Data matches the shape.
func (a Array2D) Valid() bool {
	return a.Rows >= 0 && a.Cols >= 0 && len(a.Data) == a.Rows*a.Cols
}

// Clone returns a deep copy of the array.
func (a Array2D) Clone() Array2D {
	return Array2D{Rows: a.Rows, Cols: a.Cols, Data: append([]float32(nil), a.Data...)}
}

// Map returns a new array with f applied to each element.
func (a Array2D) Map(f func(float32) float32) Array2D {
	r := Array2D{Rows: a.Rows, Cols: a.Cols, Data: make([]float32, len(a.Data))}
	for i, v := range a.Data {
		r.Data[i] = f(v)
	}
	return r
}

// Map2 returns a new array whose elements are f applied to corresponding
// elements of a and b, which must have the same shape.
func Map2(a, b Array2D, f func(float32, float32) float32) (Array2D, error) {
	if !a.SameShape(b) {
		return Array2D{}, fmt.Errorf("shape %v does not match %v", a.Shape(), b.Shape())
	}
	r := Array2D{Rows: a.Rows, Cols: a.Cols, Data: make([]float32, len(a.Data))}
	for i := range a.Data {
		r.Data[i] = f(a.Data[i], b.Data[i])
	}
	return r, nil
}

// MinMax returns the smallest and largest non-NaN values in the array; ok
// is false if there are none.
func (a Array2D) MinMax() (lo, hi float32, ok bool) {
	for _, v := range a.Data {
		if IsNaN(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
		} else {
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	return
}
