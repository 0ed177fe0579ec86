// plot/info.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package plot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mdvplot/mdvplot/moment"

	"github.com/brunoga/deep"
	"github.com/iancoleman/orderedmap"
)

// Info is the flat, ordered mapping of metadata used to fill title
// templates.
type Info struct {
	m *orderedmap.OrderedMap
}

func NewInfo() *Info {
	m := orderedmap.New()
	m.SetEscapeHTML(false)
	return &Info{m: m}
}

func (i *Info) Set(key string, value any) {
	i.m.Set(key, value)
}

func (i *Info) Get(key string) (any, bool) {
	return i.m.Get(key)
}

// Keys returns the keys in the order in which they were first set.
func (i *Info) Keys() []string {
	return i.m.Keys()
}

// MarshalJSON encodes the mapping as a compact JSON object with its keys
// in order.
func (i *Info) MarshalJSON() ([]byte, error) {
	b, err := i.m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	// orderedmap terminates each encoded key and value with a newline.
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var timeFieldNames = [...]string{"year", "month", "day", "hour", "minute", "second"}

// TimeFields decomposes t into calendar fields keyed <prefix><field>, for
// year, month, day, hour, minute and second. t's location is used as is.
func TimeFields(t time.Time, prefix string) map[string]int {
	v := [len(timeFieldNames)]int{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()}
	m := make(map[string]int, len(v))
	for i, name := range timeFieldNames {
		m[prefix+name] = v[i]
	}
	return m
}

func (i *Info) setTime(t time.Time, prefix string) {
	tf := TimeFields(t, prefix)
	for _, name := range timeFieldNames {
		i.Set(prefix+name, tf[prefix+name])
	}
}

// MakeInfo assembles the title mapping for moment m of vol: the radar
// metadata, the upper-cased scan type, the begin_ and end_ time fields,
// the moment's colour-bar label as "name", the field's units as "units"
// and its descriptive name as "fancy_name". The result shares no storage
// with the volume. Callers add the sweep angle as "ele".
func MakeInfo(vol Volume, m moment.Moment) (*Info, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%d: %w", int(m), moment.ErrUnknownMoment)
	}
	units, err := vol.FieldUnits(m.String())
	if err != nil {
		return nil, err
	}

	ri := vol.Info()
	if ri.Extra, err = deep.Copy(ri.Extra); err != nil {
		return nil, fmt.Errorf("copying radar info: %w", err)
	}

	info := NewInfo()
	for _, e := range ri.Entries() {
		info.Set(e.Key, e.Value)
	}
	info.Set("scan_type", strings.ToUpper(vol.ScanType()))
	begin, end := vol.Times()
	info.setTime(begin, "begin_")
	info.setTime(end, "end_")
	info.Set("name", m.Units())
	info.Set("units", units)
	info.Set("fancy_name", m.LongName())

	return info, nil
}
