// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSysfsRoot is where device classes live on Linux.
const DefaultSysfsRoot = "/sys/class"

// maxAttributeSize bounds a single attribute read. sysfs attributes
// are at most one page.
const maxAttributeSize = 4096

// sysfsAttributeFilters selects which attribute files become
// properties, per class. Device directories contain write-only
// triggers and binary blobs (PCI config space, option ROMs) that must
// not be read.
var sysfsAttributeFilters = map[string]func(name string) bool{
	"drm": func(name string) bool {
		return strings.HasSuffix(name, "_percent")
	},
	"hwmon": func(name string) bool {
		return name == "name" || strings.HasPrefix(name, "temp")
	},
	"thermal": func(name string) bool {
		switch name {
		case "type", "temp", "cur_state", "max_state":
			return true
		}
		return false
	},
}

// SysfsRegistry reads device classes from a sysfs tree. Each entry
// under <root>/<class> is a device; its attribute files, and those of
// its device/ link, are its properties.
type SysfsRegistry struct {
	root   string
	logger *slog.Logger
}

// NewSysfsRegistry returns a registry rooted at root. Tests point it
// at a synthetic tree.
func NewSysfsRegistry(root string, logger *slog.Logger) *SysfsRegistry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SysfsRegistry{root: root, logger: logger}
}

// Devices lists the devices of class in name order. DRM connector and
// render node entries are skipped; only cards carry utilization.
func (r *SysfsRegistry) Devices(ctx context.Context, class string) ([]Device, error) {
	classDirectory := filepath.Join(r.root, class)
	entries, err := os.ReadDir(classDirectory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", classDirectory, err)
	}

	filter := sysfsAttributeFilters[class]
	var devices []Device
	for _, entry := range entries {
		if ctx.Err() != nil {
			return devices, ctx.Err()
		}
		name := entry.Name()
		if class == "drm" && !IsCardDevice(name) {
			continue
		}

		devicePath := filepath.Join(classDirectory, name)
		properties := make(map[string]string)
		r.readAttributes(devicePath, filter, properties)
		r.readAttributes(filepath.Join(devicePath, "device"), filter, properties)

		devices = append(devices, Device{Class: class, Name: name, Properties: properties})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}

// readAttributes adds the regular files of directory to properties.
// Names already present are kept, so a device's own attributes win
// over its parent device's.
func (r *SysfsRegistry) readAttributes(directory string, filter func(string) bool, properties map[string]string) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || name == "uevent" {
			continue
		}
		if filter != nil && !filter(name) {
			continue
		}
		if _, exists := properties[name]; exists {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Mode().Perm()&0o444 == 0 || info.Size() > maxAttributeSize {
			continue
		}
		value, ok := readSysfsString(filepath.Join(directory, name))
		if !ok {
			continue
		}
		properties[name] = value
	}
}

// IsCardDevice reports whether name is a DRM card (card0, card1, ...)
// rather than a connector (card0-DP-1) or render node (renderD128).
func IsCardDevice(name string) bool {
	suffix, found := strings.CutPrefix(name, "card")
	if !found || suffix == "" {
		return false
	}
	for _, character := range suffix {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}

// readSysfsString reads a single-value attribute file. Some
// attributes fail on read (EIO, ENODATA) when the device does not
// support them; those report ok=false.
func readSysfsString(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}
