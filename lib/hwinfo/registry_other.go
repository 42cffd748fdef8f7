// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux && !darwin

package hwinfo

import "log/slog"

// NewRegistry returns a registry with no devices.
func NewRegistry(logger *slog.Logger) Registry { return emptyRegistry{} }

// GPUClasses returns no classes on this platform.
func GPUClasses() []string { return nil }
