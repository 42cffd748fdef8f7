// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package thermal

import (
	"context"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/sysstats/sysstats/lib/hwinfo"
	"github.com/sysstats/sysstats/lib/smc"
)

// SensorClasses are the registry classes carrying temperature
// sensors, in priority order.
func SensorClasses() []string { return []string{"AppleSmartBattery", "IOPMPowerSource"} }

// NewPlatformReader builds the chain for this platform: controller
// keys for the detected architecture, battery and power-source
// sensors, then the kernel's CPU thermal level.
func NewPlatformReader(logger *slog.Logger) *Reader {
	registry := hwinfo.NewRegistry(logger)
	return NewReader(logger,
		NewSMCSource(smc.Open, smc.KeysFor(smc.DetectFamily()), logger),
		NewRegistryProbe(registry, SensorClasses(), logger),
		NewPressureSource(sysctlThermalLevel(logger), logger),
	)
}

// sysctlThermalLevel reads machdep.xcpm.cpu_thermal_level, which
// Intel kernels publish. Apple Silicon kernels do not, and the source
// stays silent there.
func sysctlThermalLevel(logger *slog.Logger) PressureLevel {
	return func(context.Context) (float64, bool) {
		level, err := unix.SysctlUint32("machdep.xcpm.cpu_thermal_level")
		if err != nil {
			logger.Debug("thermal level unavailable", "error", err)
			return 0, false
		}
		return float64(level), true
	}
}
