// moment/moment_test.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package moment

import (
	"errors"
	"testing"
)

func TestAllMomentsHaveTables(t *testing.T) {
	if len(All()) != int(NumMoments-DBMHC) {
		t.Fatalf("All() returned %d moments, expected %d", len(All()), NumMoments-DBMHC)
	}

	for _, m := range All() {
		if m.LongName() == "" {
			t.Errorf("%s: empty long name", m)
		}
		if m.Units() == "" {
			t.Errorf("%s: empty units", m)
		}
		if r := m.DefaultRange(10); r[0] >= r[1] {
			t.Errorf("%s: invalid default range %v", m, r)
		}

		p, err := Parse(m.String())
		if err != nil {
			t.Errorf("%s: Parse failed: %v", m, err)
		} else if p != m {
			t.Errorf("%s: Parse returned %s", m, p)
		}
	}
}

func TestZeroValue(t *testing.T) {
	var m Moment
	if m != None || m.Valid() {
		t.Errorf("zero Moment: got %s, valid %v; expected None, invalid", m, m.Valid())
	}
	if _, err := m.MarshalText(); !errors.Is(err, ErrUnknownMoment) {
		t.Errorf("MarshalText(None): expected ErrUnknownMoment, got %v", err)
	}
	if _, err := Parse("None"); !errors.Is(err, ErrUnknownMoment) {
		t.Errorf("Parse(None): expected ErrUnknownMoment, got %v", err)
	}
	for _, m := range All() {
		if m == None {
			t.Errorf("All() includes None")
		}
	}
}

func TestParseUnknown(t *testing.T) {
	for _, tok := range []string{"", "dbz", "DBZ_", "SNR", "REF"} {
		if _, err := Parse(tok); !errors.Is(err, ErrUnknownMoment) {
			t.Errorf("Parse(%q): expected ErrUnknownMoment, got %v", tok, err)
		}
	}
}

func TestLookups(t *testing.T) {
	type testCase struct {
		m        Moment
		longName string
		units    string
		rng      [2]float32
	}

	for _, tc := range []testCase{
		{m: DBMHC, longName: "Horizontal received power", units: "H Rec Power (dBm)", rng: [2]float32{-100, 0}},
		{m: PHIDP, longName: "Differential propagation phase", units: "Dif Phase (deg)", rng: [2]float32{0, 180}},
		{m: DBZ, longName: "Horizontal equivalent reflectivity factor", units: "Hz Eq. Ref. Fac (dBz)", rng: [2]float32{-16, 64}},
		{m: VEL, longName: "Radial velocity of scatterers (positive away)", units: "Rad. Vel. (m/s, +away)", rng: [2]float32{-25, 25}},
		{m: VEL_F, longName: "Radial velocity of scatterers (positive away)", units: "Rad. Vel. (m/s, +away)", rng: [2]float32{-25, 25}},
		{m: RHOHV, longName: "Co-Polar correlation coefficient", units: "Cor. Coef (frac)", rng: [2]float32{0.6, 1}},
		{m: NCP_F, longName: "Normalized coherent power", units: "Norm. Coh. Power (frac)", rng: [2]float32{0, 1}},
		{m: PHIDP_F, longName: "Differential propagation phase", units: "Dif Phase (deg)", rng: [2]float32{-180, 180}},
	} {
		if got := tc.m.LongName(); got != tc.longName {
			t.Errorf("%s: LongName() = %q, expected %q", tc.m, got, tc.longName)
		}
		if got := tc.m.Units(); got != tc.units {
			t.Errorf("%s: Units() = %q, expected %q", tc.m, got, tc.units)
		}
		if got := tc.m.DefaultRange(25); got != tc.rng {
			t.Errorf("%s: DefaultRange(25) = %v, expected %v", tc.m, got, tc.rng)
		}
	}
}

func TestIsFiltered(t *testing.T) {
	for _, m := range All() {
		expected := len(m.String()) > 2 && m.String()[len(m.String())-2:] == "_F"
		if m.IsFiltered() != expected {
			t.Errorf("%s: IsFiltered() = %v", m, m.IsFiltered())
		}
	}
	if DBMVC.IsFiltered() {
		t.Errorf("DBMVC should not be filtered")
	}
}

func TestTextRoundTrip(t *testing.T) {
	var m Moment
	if err := m.UnmarshalText([]byte("ZDR_F")); err != nil || m != ZDR_F {
		t.Errorf("UnmarshalText(ZDR_F): got %s, %v", m, err)
	}
	if err := m.UnmarshalText([]byte("bogus")); err == nil {
		t.Errorf("UnmarshalText(bogus): expected error")
	}
	if b, err := KDP.MarshalText(); err != nil || string(b) != "KDP" {
		t.Errorf("MarshalText(KDP) = %q, %v", b, err)
	}
	if _, err := Moment(-1).MarshalText(); err == nil {
		t.Errorf("MarshalText on invalid moment: expected error")
	}
}
