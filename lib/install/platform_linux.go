// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package install

// DefaultPlatform returns the service manager for this platform.
func DefaultPlatform() Platform { return Systemd{} }

// DefaultInstallDir is where the helper binary is installed.
const DefaultInstallDir = "/usr/local/libexec/sysstats"
