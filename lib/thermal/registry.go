// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package thermal

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sysstats/sysstats/lib/hwinfo"
	"github.com/sysstats/sysstats/lib/smc"
)

// excludedFragments mark properties that carry limits, labels or
// configuration rather than a current temperature.
var excludedFragments = []string{
	"crit", "max", "min", "alarm", "hyst", "label", "trip",
	"emul", "offset", "type", "lowest", "highest", "policy",
}

// temperatureScales are tried in order: whole degrees, centidegrees,
// millidegrees.
var temperatureScales = []float64{1, 100, 1000}

// RegistryProbe reads temperature properties of thermal sensor
// devices from the device registry.
type RegistryProbe struct {
	registry hwinfo.Registry
	classes  []string
	logger   *slog.Logger
}

// NewRegistryProbe returns a probe over classes in priority order.
func NewRegistryProbe(registry hwinfo.Registry, classes []string, logger *slog.Logger) *RegistryProbe {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RegistryProbe{registry: registry, classes: classes, logger: logger}
}

func (p *RegistryProbe) Name() string { return "registry" }

// Temperature returns the first plausible temperature property.
// Classes are tried in order, devices in registry order, properties
// in sorted name order.
func (p *RegistryProbe) Temperature(ctx context.Context) (float64, bool) {
	for _, class := range p.classes {
		devices, err := p.registry.Devices(ctx, class)
		if err != nil {
			p.logger.Debug("enumerating sensor class failed", "class", class, "error", err)
			continue
		}
		for _, device := range devices {
			for _, name := range device.PropertyNames() {
				if !IsTemperatureProperty(name) {
					continue
				}
				raw, ok := device.Int(name)
				if !ok {
					continue
				}
				if celsius, ok := ScaleTemperature(raw); ok {
					p.logger.Debug("registry sensor matched",
						"class", class, "device", device.Name, "property", name)
					return celsius, true
				}
			}
		}
	}
	return 0, false
}

// IsTemperatureProperty reports whether a property name looks like a
// current temperature reading.
func IsTemperatureProperty(name string) bool {
	lower := strings.ToLower(name)
	if !strings.Contains(lower, "temp") {
		return false
	}
	for _, fragment := range excludedFragments {
		if strings.Contains(lower, fragment) {
			return false
		}
	}
	return true
}

// ScaleTemperature interprets a raw integer as whole degrees,
// centidegrees or millidegrees, returning the first plausible scale.
func ScaleTemperature(raw int64) (float64, bool) {
	for _, divisor := range temperatureScales {
		celsius := float64(raw) / divisor
		if smc.Plausible(celsius) {
			return celsius, true
		}
	}
	return 0, false
}
