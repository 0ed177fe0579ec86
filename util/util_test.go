// util/util_test.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestErrorLogger(t *testing.T) {
	var e ErrorLogger
	if e.HaveErrors() || e.Err(errors.New("base")) != nil {
		t.Fatalf("fresh ErrorLogger reports errors")
	}

	e.Push("panel 0")
	e.Push("locations")
	if e.CurrentDepth() != 2 {
		t.Errorf("CurrentDepth() = %d, expected 2", e.CurrentDepth())
	}
	e.ErrorString("bad marker %q", "Q")
	e.Pop()
	e.Error(errors.New("no field"))
	e.Pop()
	e.ErrorString("top level")

	expected := "panel 0 / locations: bad marker \"Q\"\npanel 0: no field\ntop level"
	if e.String() != expected {
		t.Errorf("String() = %q, expected %q", e.String(), expected)
	}

	base := errors.New("invalid job")
	err := e.Err(base)
	if !errors.Is(err, base) {
		t.Errorf("Err() does not wrap the base error")
	}
	if !strings.HasSuffix(err.Error(), expected) {
		t.Errorf("Err() = %q", err)
	}
}

type testConfig struct {
	Name   string    `json:"name" yaml:"name"`
	Sweep  int       `json:"sweep" yaml:"sweep"`
	Limits []float32 `json:"limits" yaml:"limits"`
}

func TestUnmarshalJSON(t *testing.T) {
	var c testConfig
	if err := UnmarshalJSONBytes([]byte(`{"name": "ppi", "sweep": 2, "limits": [-1, 1]}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Name != "ppi" || c.Sweep != 2 || len(c.Limits) != 2 {
		t.Errorf("unexpected result %+v", c)
	}

	type testCase struct {
		json   string
		errStr string
	}
	for _, tc := range []testCase{
		{json: "{\n  \"name\": \"ppi\",\n  \"sweep\": \"two\"\n}", errStr: "line 3"},
		{json: "{\n  \"name\": \"ppi\"\n  \"sweep\": 2\n}", errStr: "line 3"},
		{json: `{"nmae": "ppi"}`, errStr: "unknown field"},
	} {
		var c testConfig
		err := UnmarshalJSONBytes([]byte(tc.json), &c)
		if err == nil {
			t.Errorf("%q: expected error", tc.json)
		} else if !strings.Contains(err.Error(), tc.errStr) {
			t.Errorf("%q: error %q does not mention %q", tc.json, err, tc.errStr)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, contents string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	var c testConfig
	if err := LoadConfigFile(write("job.yaml", "name: rhi\nsweep: 1\nlimits: [0, 50]\n"), &c); err != nil {
		t.Fatal(err)
	}
	if c.Name != "rhi" || c.Sweep != 1 || c.Limits[1] != 50 {
		t.Errorf("unexpected YAML result %+v", c)
	}

	c = testConfig{}
	if err := LoadConfigFile(write("job.json", `{"name": "ppi"}`), &c); err != nil || c.Name != "ppi" {
		t.Errorf("JSON: got %+v, %v", c, err)
	}

	p := write("bad.yml", "name: rhi\nswep: 1\n")
	if err := LoadConfigFile(p, &c); err == nil || !strings.Contains(err.Error(), p) {
		t.Errorf("expected error naming %s for unknown YAML key, got %v", p, err)
	}

	if err := LoadConfigFile(filepath.Join(dir, "missing.yaml"), &c); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestGeneric(t *testing.T) {
	if Select(true, 1, 2) != 1 || Select(false, "a", "b") != "b" {
		t.Errorf("Select returned the wrong value")
	}

	sq := MapSlice([]int{1, 2, 3}, func(i int) int { return i * i })
	if len(sq) != 3 || sq[2] != 9 {
		t.Errorf("MapSlice = %v", sq)
	}

	keys := SortedMapKeys(map[string]int{"zdr": 1, "dbz": 2, "vel": 3})
	if strings.Join(keys, ",") != "dbz,vel,zdr" {
		t.Errorf("SortedMapKeys = %v", keys)
	}
}
