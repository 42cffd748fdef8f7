// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sysstats/sysstats/lib/binhash"
)

// Status is the installation state of the helper.
type Status int

const (
	// StatusNotRegistered means the definition or the binary is
	// missing.
	StatusNotRegistered Status = iota
	// StatusEnabled means both are installed and current.
	StatusEnabled
	// StatusStale means the installed binary differs from the bundled
	// one.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusEnabled:
		return "enabled"
	case StatusStale:
		return "stale"
	default:
		return "not-registered"
	}
}

// ErrNotVisible is returned by Install when escalation succeeded but
// the installed files are not there afterwards.
var ErrNotVisible = errors.New("install: helper not registered after installation")

// Installer installs the helper from the unprivileged main process.
type Installer struct {
	layout        Layout
	platform      Platform
	runner        Runner
	bundledBinary string
	logger        *slog.Logger
}

// NewInstaller returns an installer. bundledBinary is the helper
// executable shipped alongside the main binary; it is what gets
// installed and what installed copies are compared against.
func NewInstaller(layout Layout, platform Platform, runner Runner, bundledBinary string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Installer{
		layout:        layout,
		platform:      platform,
		runner:        runner,
		bundledBinary: bundledBinary,
		logger:        logger,
	}
}

// Layout returns the install layout.
func (i *Installer) Layout() Layout { return i.layout }

// Status inspects the installed files. The digest comparison is
// skipped when no bundled binary is configured or it cannot be read.
func (i *Installer) Status(ctx context.Context) (Status, error) {
	for _, path := range []string{i.layout.DefinitionPath(i.platform), i.layout.BinaryPath()} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return StatusNotRegistered, nil
			}
			return StatusNotRegistered, fmt.Errorf("checking %s: %w", path, err)
		}
	}

	if i.bundledBinary == "" {
		return StatusEnabled, nil
	}
	match, err := binhash.FilesMatch(i.bundledBinary, i.layout.BinaryPath())
	if err != nil {
		i.logger.Debug("skipping helper digest comparison", "error", err)
		return StatusEnabled, nil
	}
	if !match {
		return StatusStale, nil
	}
	return StatusEnabled, nil
}

// InstalledDigest returns the hex BLAKE3 digest of the installed
// helper binary.
func (i *Installer) InstalledDigest() (string, error) {
	digest, err := binhash.HashFile(i.layout.BinaryPath())
	if err != nil {
		return "", err
	}
	return binhash.FormatDigest(digest), nil
}

// Registered reports whether the helper is installed and current.
func (i *Installer) Registered(ctx context.Context) bool {
	status, err := i.Status(ctx)
	if err != nil {
		i.logger.Warn("checking helper installation failed", "error", err)
		return false
	}
	return status == StatusEnabled
}

// Install escalates and runs the bundled helper's --install mode,
// then verifies the result. It is not retried.
func (i *Installer) Install(ctx context.Context) error {
	if i.bundledBinary == "" {
		return errors.New("install: no bundled helper binary configured")
	}
	if err := i.layout.Validate(); err != nil {
		return err
	}

	argv := []string{
		i.bundledBinary, "--install",
		"--service-name", i.layout.ServiceName,
		"--install-dir", i.layout.InstallDir,
		"--socket", i.layout.SocketPath,
	}
	name, args := i.platform.Escalate(argv)
	i.logger.Info("requesting administrator privileges to install helper", "command", name)
	if _, err := i.runner.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("installing helper: %w", err)
	}

	status, err := i.Status(ctx)
	if err != nil {
		return fmt.Errorf("verifying helper installation: %w", err)
	}
	if status != StatusEnabled {
		return fmt.Errorf("%w (status %s)", ErrNotVisible, status)
	}
	return nil
}
