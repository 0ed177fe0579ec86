// moment/moment.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package moment enumerates the radar moments that can be plotted along
// with their display metadata: a descriptive name, the label used for
// colour bars, and a default colour-scale range. The token names are
// those written by TITAN into MDV files; the _F variants are the
// filtered versions of each moment.
package moment

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMoment = errors.New("unknown moment")

type Moment int

const (
	// None is the zero value; it is not a valid moment.
	None Moment = iota
	DBMHC
	DBMVC
	DBZ
	DBZ_F
	DBZVC
	DBZVC_F
	VEL
	VEL_F
	WIDTH
	WIDTH_F
	ZDR
	ZDR_F
	RHOHV
	RHOHV_F
	PHIDP
	PHIDP_F
	KDP
	KDP_F
	NCP
	NCP_F
	NumMoments
)

type info struct {
	token    string
	longName string
	units    string
	// Velocity ranges scale with the radar's Nyquist velocity; for those
	// the default range is [-v, v] and rng is unused.
	nyquist bool
	rng     [2]float32
}

var moments = [NumMoments]info{
	DBMHC:   {token: "DBMHC", longName: "Horizontal received power", units: "H Rec Power (dBm)", rng: [2]float32{-100, 0}},
	DBMVC:   {token: "DBMVC", longName: "Vertical received power", units: "V Rec Power (dBm)", rng: [2]float32{-100, 0}},
	DBZ:     {token: "DBZ", longName: "Horizontal equivalent reflectivity factor", units: "Hz Eq. Ref. Fac (dBz)", rng: [2]float32{-16, 64}},
	DBZ_F:   {token: "DBZ_F", longName: "Horizontal equivalent reflectivity factor", units: "Hz Eq. Ref. Fac (dBz)", rng: [2]float32{-16, 64}},
	DBZVC:   {token: "DBZVC", longName: "Vertical equivalent reflectivity factor", units: "V Eq. Ref. Fac (dBz)", rng: [2]float32{-16, 64}},
	DBZVC_F: {token: "DBZVC_F", longName: "Vertical equivalent reflectivity factor", units: "V Eq. Ref. Fac (dBz)", rng: [2]float32{-16, 64}},
	VEL:     {token: "VEL", longName: "Radial velocity of scatterers (positive away)", units: "Rad. Vel. (m/s, +away)", nyquist: true},
	VEL_F:   {token: "VEL_F", longName: "Radial velocity of scatterers (positive away)", units: "Rad. Vel. (m/s, +away)", nyquist: true},
	WIDTH:   {token: "WIDTH", longName: "Spectral Width", units: "Spec. Width (m/s)", rng: [2]float32{0, 10}},
	WIDTH_F: {token: "WIDTH_F", longName: "Spectral Width", units: "Spec. Width (m/s)", rng: [2]float32{0, 10}},
	ZDR:     {token: "ZDR", longName: "Differential reflectivity", units: "Dif Refl (dB)", rng: [2]float32{-3, 6}},
	ZDR_F:   {token: "ZDR_F", longName: "Differential reflectivity", units: "Dif Refl (dB)", rng: [2]float32{-3, 6}},
	RHOHV:   {token: "RHOHV", longName: "Co-Polar correlation coefficient", units: "Cor. Coef (frac)", rng: [2]float32{0.6, 1}},
	RHOHV_F: {token: "RHOHV_F", longName: "Co-Polar Correlation Coefficient", units: "Cor. Coef (frac)", rng: [2]float32{0.6, 1}},
	PHIDP:   {token: "PHIDP", longName: "Differential propagation phase", units: "Dif Phase (deg)", rng: [2]float32{0, 180}},
	PHIDP_F: {token: "PHIDP_F", longName: "Differential propagation phase", units: "Dif Phase (deg)", rng: [2]float32{-180, 180}},
	KDP:     {token: "KDP", longName: "Specific differential phase", units: "Spec Dif Ph. (deg/km)", rng: [2]float32{-2, 6}},
	KDP_F:   {token: "KDP_F", longName: "Specific differential phase", units: "Spec Dif Ph. (deg/km)", rng: [2]float32{-2, 6}},
	NCP:     {token: "NCP", longName: "Normalized coherent power", units: "Norm. Coh. Power (frac)", rng: [2]float32{0, 1}},
	NCP_F:   {token: "NCP_F", longName: "Normalized coherent power", units: "Norm. Coh. Power (frac)", rng: [2]float32{0, 1}},
}

var byToken = func() map[string]Moment {
	m := make(map[string]Moment, NumMoments)
	for i, mi := range moments[DBMHC:] {
		m[mi.token] = DBMHC + Moment(i)
	}
	return m
}()

// Parse returns the Moment for the given token, e.g. "DBZ_F".
func Parse(token string) (Moment, error) {
	if m, ok := byToken[token]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%q: %w", token, ErrUnknownMoment)
}

// All returns all of the known moments, in declaration order.
func All() []Moment {
	r := make([]Moment, NumMoments-DBMHC)
	for i := range r {
		r[i] = DBMHC + Moment(i)
	}
	return r
}

func (m Moment) Valid() bool {
	return m > None && m < NumMoments
}

// String returns the moment's token, which is also the name of the
// corresponding field in a radar volume.
func (m Moment) String() string {
	if m == None {
		return "None"
	} else if !m.Valid() {
		return fmt.Sprintf("Moment(%d)", int(m))
	}
	return moments[m].token
}

// LongName returns a human-readable description of the moment, used in
// plot titles.
func (m Moment) LongName() string {
	if !m.Valid() {
		return m.String()
	}
	return moments[m].longName
}

// Units returns the short name-and-units label used for colour bars.
func (m Moment) Units() string {
	if !m.Valid() {
		return m.String()
	}
	return moments[m].units
}

// DefaultRange returns the default [min, max] colour scale for the
// moment. Velocities span the radar's unambiguous velocity interval.
func (m Moment) DefaultRange(unambigVelMps float32) [2]float32 {
	if !m.Valid() {
		return [2]float32{0, 1}
	}
	if moments[m].nyquist {
		return [2]float32{-1 * unambigVelMps, unambigVelMps}
	}
	return moments[m].rng
}

// IsFiltered reports whether this is the filtered variant of a moment.
func (m Moment) IsFiltered() bool {
	return m.Valid() && strings.HasSuffix(moments[m].token, "_F")
}

func (m Moment) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%d: %w", int(m), ErrUnknownMoment)
	}
	return []byte(m.String()), nil
}

func (m *Moment) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
