// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"errors"
	"path/filepath"
)

// HelperBinaryName is the file name of the installed helper.
const HelperBinaryName = "sysstats-helper"

// Layout is where an installed helper lives.
type Layout struct {
	// ServiceName names the systemd unit or launchd job.
	ServiceName string
	// InstallDir holds the helper binary.
	InstallDir string
	// SocketPath is passed to the helper's --socket flag.
	SocketPath string
	// DefinitionDir overrides the platform's unit or plist directory.
	// Empty uses the platform default.
	DefinitionDir string
}

// BinaryPath is the installed helper binary.
func (l Layout) BinaryPath() string {
	return filepath.Join(l.InstallDir, HelperBinaryName)
}

// DefinitionPath is the service definition file for platform.
func (l Layout) DefinitionPath(platform Platform) string {
	directory := l.DefinitionDir
	if directory == "" {
		directory = platform.DefinitionDir()
	}
	return filepath.Join(directory, platform.DefinitionFile(l.ServiceName))
}

// Validate reports missing fields.
func (l Layout) Validate() error {
	var errs []error
	if l.ServiceName == "" {
		errs = append(errs, errors.New("install layout: service name is required"))
	}
	if !filepath.IsAbs(l.InstallDir) {
		errs = append(errs, errors.New("install layout: install directory must be absolute"))
	}
	if !filepath.IsAbs(l.SocketPath) {
		errs = append(errs, errors.New("install layout: socket path must be absolute"))
	}
	return errors.Join(errs...)
}

// templateData is what definition templates see.
type templateData struct {
	ServiceName string
	BinaryPath  string
	SocketPath  string
}

func (l Layout) templateData() templateData {
	return templateData{
		ServiceName: l.ServiceName,
		BinaryPath:  l.BinaryPath(),
		SocketPath:  l.SocketPath,
	}
}
