// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux && !darwin

package install

// DefaultPlatform returns systemd; other platforms have no supported
// service manager and installation fails at activation.
func DefaultPlatform() Platform { return Systemd{} }

// DefaultInstallDir is where the helper binary is installed.
const DefaultInstallDir = "/usr/local/libexec/sysstats"
