// plot/mask.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package plot

import (
	"fmt"
	"slices"

	"github.com/mdvplot/mdvplot/math"
	"github.com/mdvplot/mdvplot/mdv"
	"github.com/mdvplot/mdvplot/moment"
	"github.com/mdvplot/mdvplot/renderer"
)

// ApplyMask returns a copy of data with NaN in each cell where mask is
// below threshold or missing; data and mask must have the same shape.
// A NaN mask cell is missing, so its data cell is masked even though
// NaN < threshold is false. Cells with mask >= threshold keep their value.
func ApplyMask(data, mask math.Array2D, threshold float32) (math.Array2D, error) {
	r, err := math.Map2(data, mask, func(d, m float32) float32 {
		if math.IsNaN(m) || m < threshold {
			return math.NaN()
		}
		return d
	})
	if err != nil {
		return math.Array2D{}, fmt.Errorf("mask: %v: %w", err, renderer.ErrShapeMismatch)
	}
	return r, nil
}

// readMoment returns the sweep's values for moment m.
func readMoment(vol Volume, sweep int, m moment.Moment) (math.Array2D, error) {
	if !m.Valid() {
		return math.Array2D{}, fmt.Errorf("%s: %w", m, moment.ErrUnknownMoment)
	}
	f := slices.Index(vol.Fields(), m.String())
	if f == -1 {
		return math.Array2D{}, fmt.Errorf("%q: %w", m.String(), mdv.ErrFieldNotFound)
	}
	return vol.ReadField(f, sweep)
}

// sweepData returns the values to plot for moment m, masked if a mask is
// given.
func sweepData(vol Volume, sweep int, m moment.Moment, mask *Mask) (math.Array2D, error) {
	data, err := readMoment(vol, sweep, m)
	if err != nil {
		return math.Array2D{}, err
	}
	if mask == nil {
		return data, nil
	}

	md, err := readMoment(vol, sweep, mask.Moment)
	if err != nil {
		return math.Array2D{}, fmt.Errorf("mask: %w", err)
	}
	return ApplyMask(data, md, mask.Threshold)
}
