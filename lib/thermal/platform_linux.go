// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package thermal

import (
	"log/slog"

	"github.com/sysstats/sysstats/lib/hwinfo"
)

// SensorClasses are the registry classes carrying temperature
// sensors, in priority order.
func SensorClasses() []string { return []string{"hwmon", "thermal"} }

// NewPlatformReader builds the chain for this platform. Linux has no
// controller; hwmon and thermal zones come first, cooling device
// state last.
func NewPlatformReader(logger *slog.Logger) *Reader {
	registry := hwinfo.NewRegistry(logger)
	return NewReader(logger,
		NewRegistryProbe(registry, SensorClasses(), logger),
		NewPressureSource(CoolingDeviceLevel(registry, logger), logger),
	)
}
