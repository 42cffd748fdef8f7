// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import "time"

// Sample is one coherent set of readings from a single cycle. A
// metric whose Valid flag is false was unavailable that cycle and its
// value is zero.
type Sample struct {
	// Cycle counts published samples, starting at 1.
	Cycle uint64 `json:"cycle"`
	// Time is when the cycle started.
	Time time.Time `json:"time"`

	CPUPercent int  `json:"cpu_percent"`
	CPUValid   bool `json:"cpu_valid"`

	GPUPercent int  `json:"gpu_percent"`
	GPUValid   bool `json:"gpu_valid"`

	RAMPercent int  `json:"ram_percent"`
	RAMValid   bool `json:"ram_valid"`

	// TemperatureCelsius is either plausible or 0.
	TemperatureCelsius float64 `json:"temperature_celsius"`
	TemperatureValid   bool    `json:"temperature_valid"`
}

// LogAttrs returns the sample as slog key/value pairs.
func (s Sample) LogAttrs() []any {
	attrs := []any{"cycle", s.Cycle}
	if s.CPUValid {
		attrs = append(attrs, "cpu_percent", s.CPUPercent)
	}
	if s.GPUValid {
		attrs = append(attrs, "gpu_percent", s.GPUPercent)
	}
	if s.RAMValid {
		attrs = append(attrs, "ram_percent", s.RAMPercent)
	}
	if s.TemperatureValid {
		attrs = append(attrs, "temperature_celsius", s.TemperatureCelsius)
	}
	return attrs
}
