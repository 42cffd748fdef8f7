// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package hwinfo

import "log/slog"

// NewRegistry returns the sysfs device registry.
func NewRegistry(logger *slog.Logger) Registry {
	return NewSysfsRegistry(DefaultSysfsRoot, logger)
}

// GPUClasses lists the accelerator classes to probe, in priority
// order.
func GPUClasses() []string { return []string{"drm"} }
