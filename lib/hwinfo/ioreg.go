// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"howett.net/plist"
)

// CommandRunner runs a command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecOutput is the CommandRunner backed by os/exec.
func ExecOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Keys ioreg adds to every archived object. The name becomes
// Device.Name; children are other objects, not properties.
const (
	ioregEntryName     = "IORegistryEntryName"
	ioregEntryChildren = "IORegistryEntryChildren"
)

// IORegistry reads the macOS I/O Registry through the ioreg tool.
// Devices of a class are the objects that are instances of the class
// or derive from it.
type IORegistry struct {
	run    CommandRunner
	logger *slog.Logger
}

// NewIORegistry returns a registry that invokes ioreg through run.
func NewIORegistry(run CommandRunner, logger *slog.Logger) *IORegistry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IORegistry{run: run, logger: logger}
}

// Devices runs `ioreg -a -r -l -c class` and decodes the matched
// objects.
func (r *IORegistry) Devices(ctx context.Context, class string) ([]Device, error) {
	output, err := r.run(ctx, "ioreg", "-a", "-r", "-l", "-c", class)
	if err != nil {
		return nil, fmt.Errorf("querying I/O Registry class %s: %w", class, err)
	}
	devices, err := ParseIORegistry(class, output)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("queried I/O Registry", "class", class, "devices", len(devices))
	return devices, nil
}

// ParseIORegistry decodes the property list printed by `ioreg -a -r`.
// Each element of the top-level array is a matched object and becomes
// a Device; its IORegistryEntryChildren are not instances of the class
// and are dropped. Dictionary-valued properties are flattened into the
// device's property bag, so PerformanceStatistics {"Device Utilization
// %" = 12} yields the property "Device Utilization %" with value "12".
// Empty output means no object matched.
func ParseIORegistry(class string, output []byte) ([]Device, error) {
	if len(output) == 0 {
		return nil, nil
	}
	var objects []map[string]any
	if _, err := plist.Unmarshal(output, &objects); err != nil {
		return nil, fmt.Errorf("decoding I/O Registry class %s: %w", class, err)
	}

	devices := make([]Device, 0, len(objects))
	for _, object := range objects {
		device := Device{
			Class:      class,
			Properties: make(map[string]string),
		}
		if name, ok := object[ioregEntryName].(string); ok {
			device.Name = name
		}
		delete(object, ioregEntryChildren)
		delete(object, ioregEntryName)
		flattenIORegDictionary(object, device.Properties)
		devices = append(devices, device)
	}
	return devices, nil
}

// flattenIORegDictionary adds the scalar entries of dictionary to
// properties, recursing into nested dictionaries. Keys at a shallower
// level win over the same key found deeper. Arrays and data values are
// not representable as a single property and are skipped.
func flattenIORegDictionary(dictionary map[string]any, properties map[string]string) {
	var nested []map[string]any
	for key, value := range dictionary {
		if inner, ok := value.(map[string]any); ok {
			nested = append(nested, inner)
			continue
		}
		formatted, ok := formatIORegValue(value)
		if !ok {
			continue
		}
		properties[key] = formatted
	}
	for _, inner := range nested {
		scratch := make(map[string]string)
		flattenIORegDictionary(inner, scratch)
		for key, value := range scratch {
			if _, exists := properties[key]; !exists {
				properties[key] = value
			}
		}
	}
}

func formatIORegValue(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case uint64:
		return strconv.FormatUint(typed, 10), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}
