// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin

package smc

import "log/slog"

// Open reports ErrUnsupported; only macOS has a controller.
func Open(logger *slog.Logger) (*Client, error) {
	return nil, ErrUnsupported
}
