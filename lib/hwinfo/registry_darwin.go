// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package hwinfo

import "log/slog"

// NewRegistry returns the I/O Registry reader.
func NewRegistry(logger *slog.Logger) Registry {
	return NewIORegistry(ExecOutput, logger)
}

// GPUClasses lists the accelerator classes to probe, in priority
// order: the Apple integrated GPU driver first, then the generic
// accelerator class that discrete and older GPUs register under.
func GPUClasses() []string { return []string{"AGXAccelerator", "IOAccelerator"} }
