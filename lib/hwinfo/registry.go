// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// Device is one registry entry of a device class and its property
// bag. Property values are kept as the registry reported them; use
// Int or Float to interpret them.
type Device struct {
	Class      string
	Name       string
	Properties map[string]string
}

// Registry enumerates the devices of a class. An unknown class or a
// class with no instances yields an empty slice and no error.
type Registry interface {
	Devices(ctx context.Context, class string) ([]Device, error)
}

// Int parses the named property as a base-10 integer.
func (d Device) Int(name string) (int64, bool) {
	raw, ok := d.Properties[name]
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Float parses the named property as a decimal number.
func (d Device) Float(name string) (float64, bool) {
	raw, ok := d.Properties[name]
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// PropertyNames returns the device's property names in sorted order,
// so scans over a property bag are deterministic.
func (d Device) PropertyNames() []string {
	names := make([]string, 0, len(d.Properties))
	for name := range d.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// emptyRegistry is the registry on platforms without one.
type emptyRegistry struct{}

func (emptyRegistry) Devices(context.Context, string) ([]Device, error) { return nil, nil }
