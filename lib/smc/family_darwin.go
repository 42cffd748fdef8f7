// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package smc

import "golang.org/x/sys/unix"

// DetectFamily reports the hardware's architecture family.
// hw.optional.arm64 describes the machine rather than the process, so
// an Intel binary running under Rosetta still sees Apple Silicon.
func DetectFamily() Family {
	arm64, err := unix.SysctlUint32("hw.optional.arm64")
	if err != nil {
		// The sysctl does not exist on Intel-only kernels.
		return FamilyIntel
	}
	if arm64 == 1 {
		return FamilyAppleSilicon
	}
	return FamilyIntel
}
