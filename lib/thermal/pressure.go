// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package thermal

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sysstats/sysstats/lib/hwinfo"
)

// Pressure mapping: level 0 is 35 °C and level 100 is 100 °C.
const (
	pressureBaseCelsius  = 35.0
	pressureCelsiusSlope = 0.65
)

// PressureToCelsius maps a 0-100 thermal pressure level to an
// approximate temperature. Levels outside the range are clamped.
func PressureToCelsius(level float64) float64 {
	switch {
	case level < 0:
		level = 0
	case level > 100:
		level = 100
	}
	return pressureBaseCelsius + level*pressureCelsiusSlope
}

// PressureLevel reads a 0-100 thermal pressure level.
type PressureLevel func(ctx context.Context) (level float64, ok bool)

// PressureSource estimates temperature from thermal pressure. It is
// the last resort of the chain.
type PressureSource struct {
	level  PressureLevel
	logger *slog.Logger
}

// NewPressureSource returns a source over level.
func NewPressureSource(level PressureLevel, logger *slog.Logger) *PressureSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PressureSource{level: level, logger: logger}
}

func (s *PressureSource) Name() string { return "pressure" }

func (s *PressureSource) Temperature(ctx context.Context) (float64, bool) {
	level, ok := s.level(ctx)
	if !ok {
		return 0, false
	}
	s.logger.Debug("estimating temperature from thermal pressure", "level", level)
	return PressureToCelsius(level), true
}

// CoolingDeviceLevel returns a PressureLevel that reports the busiest
// cooling device in the registry's thermal class: the maximum of
// 100 × cur_state / max_state over cooling_device entries.
func CoolingDeviceLevel(registry hwinfo.Registry, logger *slog.Logger) PressureLevel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(ctx context.Context) (float64, bool) {
		devices, err := registry.Devices(ctx, "thermal")
		if err != nil {
			logger.Debug("enumerating cooling devices failed", "error", err)
			return 0, false
		}
		found := false
		highest := 0.0
		for _, device := range devices {
			if !strings.HasPrefix(device.Name, "cooling_device") {
				continue
			}
			current, ok := device.Int("cur_state")
			if !ok {
				continue
			}
			maximum, ok := device.Int("max_state")
			if !ok || maximum <= 0 {
				continue
			}
			level := 100 * float64(current) / float64(maximum)
			if !found || level > highest {
				highest = level
				found = true
			}
		}
		return highest, found
	}
}
