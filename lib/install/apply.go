// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Apply installs the helper. It runs with administrator privileges,
// inside the escalated helper process. sourceBinary is the helper
// executable to copy, normally the running binary itself.
//
// Files are replaced atomically, so a helper that is running keeps a
// consistent binary until Activate restarts it.
func Apply(ctx context.Context, layout Layout, platform Platform, runner Runner, sourceBinary string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := layout.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(layout.InstallDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", layout.InstallDir, err)
	}
	if err := copyFileAtomic(sourceBinary, layout.BinaryPath(), 0755); err != nil {
		return err
	}

	definition, err := platform.Render(layout)
	if err != nil {
		return err
	}
	definitionPath := layout.DefinitionPath(platform)
	if err := os.MkdirAll(filepath.Dir(definitionPath), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(definitionPath), err)
	}
	if err := writeFileAtomic(definitionPath, definition, 0644); err != nil {
		return err
	}

	if err := platform.Activate(ctx, runner, layout); err != nil {
		return err
	}
	logger.Info("helper installed",
		"service_manager", platform.Name(),
		"binary", layout.BinaryPath(),
		"definition", definitionPath,
	)
	return nil
}

// Remove deactivates the helper and deletes its files. Every step is
// attempted; the errors are joined.
func Remove(ctx context.Context, layout Layout, platform Platform, runner Runner, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var errs []error
	if err := platform.Deactivate(ctx, runner, layout); err != nil {
		errs = append(errs, err)
	}
	for _, path := range []string{layout.DefinitionPath(platform), layout.BinaryPath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing %s: %w", path, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Info("helper removed", "service_manager", platform.Name())
	return nil
}

// writeFileAtomic writes data to a temporary file beside path and
// renames it into place.
func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	tempPath := path + ".new"
	os.Remove(tempPath) // leftover from an interrupted install
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tempPath, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("writing %s: %w", tempPath, err)
	}
	return commitTemp(file, tempPath, path, mode)
}

// copyFileAtomic copies source to target through a temporary file.
func copyFileAtomic(source, target string, mode os.FileMode) error {
	input, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening helper binary %s: %w", source, err)
	}
	defer input.Close()

	tempPath := target + ".new"
	os.Remove(tempPath)
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tempPath, err)
	}
	if _, err := io.Copy(file, input); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("copying %s to %s: %w", source, tempPath, err)
	}
	return commitTemp(file, tempPath, target, mode)
}

// commitTemp syncs and closes file, fixes its mode against the umask,
// and renames it over target.
func commitTemp(file *os.File, tempPath, target string, mode os.FileMode) error {
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("syncing %s: %w", tempPath, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing %s: %w", tempPath, err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("setting mode on %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename %s -> %s: %w", tempPath, target, err)
	}
	return nil
}
