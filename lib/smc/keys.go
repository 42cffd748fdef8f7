// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package smc

// Family is the CPU architecture family, which decides the sensor key
// naming scheme.
type Family int

const (
	// FamilyUnknown probes both key tables, Apple Silicon first.
	FamilyUnknown Family = iota
	FamilyAppleSilicon
	FamilyIntel
)

// String returns the family label reported by the helper's
// platform-info action.
func (f Family) String() string {
	switch f {
	case FamilyAppleSilicon:
		return "apple-silicon"
	case FamilyIntel:
		return "intel"
	default:
		return "unknown"
	}
}

// KeyGroup is a named set of sensor keys probed together.
type KeyGroup struct {
	Name string
	Keys []Key
}

func keyList(codes ...string) []Key {
	keys := make([]Key, len(codes))
	for i, code := range codes {
		keys[i] = MustParseKey(code)
	}
	return keys
}

var appleSiliconGroups = []KeyGroup{
	{Name: "performance-core", Keys: keyList(
		"Tp01", "Tp05", "Tp09", "Tp0D", "Tp0H", "Tp0L", "Tp0P",
		"Tp0T", "Tp0X", "Tp0b", "Tp0f", "Tp0j", "Tp0n", "Tp0r",
	)},
	{Name: "efficiency-core", Keys: keyList(
		"Tp02", "Tp06", "Tp0A", "Tp0E", "Tp0I", "Tp0M", "Tp0Q", "Tp0U", "Tp0Y", "Tp0c",
	)},
	{Name: "die", Keys: keyList("Tc0a", "Tc0b", "Tc0c", "Tc0d")},
	{Name: "soc", Keys: keyList("Ts0P", "Ts0S", "Ts1P", "Ts1S", "Tw0P", "TW0P")},
}

var intelGroups = []KeyGroup{
	{Name: "proximity", Keys: keyList("TC0P", "TC0H", "TC0D", "TC0E", "TC0F")},
	{Name: "core", Keys: keyList("TC1C", "TC2C", "TC3C", "TC4C", "TC5C", "TC6C", "TC7C", "TC8C")},
	{Name: "package", Keys: keyList("TCAD", "TCGC", "TCSA", "TCTD")},
}

// KeyGroups returns the temperature key groups for family in probe
// order. An unknown family gets the Apple Silicon groups followed by
// the Intel groups.
func KeyGroups(family Family) []KeyGroup {
	switch family {
	case FamilyAppleSilicon:
		return appleSiliconGroups
	case FamilyIntel:
		return intelGroups
	default:
		groups := make([]KeyGroup, 0, len(appleSiliconGroups)+len(intelGroups))
		groups = append(groups, appleSiliconGroups...)
		return append(groups, intelGroups...)
	}
}

// KeysFor flattens KeyGroups(family) into a single probe list.
func KeysFor(family Family) []Key {
	var keys []Key
	for _, group := range KeyGroups(family) {
		keys = append(keys, group.Keys...)
	}
	return keys
}

// GroupOf returns the name of the group key belongs to, or "" if it
// is not a known temperature key.
func GroupOf(key Key) string {
	for _, group := range KeyGroups(FamilyUnknown) {
		for _, candidate := range group.Keys {
			if candidate == key {
				return group.Name
			}
		}
	}
	return ""
}
