// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package smc

// familyFromArch maps a uname machine string to a family.
func familyFromArch(arch string) Family {
	switch arch {
	case "arm64", "aarch64":
		return FamilyAppleSilicon
	case "x86_64", "amd64", "i386", "i686":
		return FamilyIntel
	default:
		return FamilyUnknown
	}
}
