// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin

package smc

import "github.com/shirou/gopsutil/v4/host"

// DetectFamily reports the architecture family from the kernel's
// machine type.
func DetectFamily() Family {
	arch, err := host.KernelArch()
	if err != nil {
		return FamilyUnknown
	}
	return familyFromArch(arch)
}
