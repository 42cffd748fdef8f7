// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"log/slog"
)

// GPUUtilizationKeys are the property names that carry accelerator
// utilization, in preference order. Which one is present depends on
// the GPU vendor and driver version.
var GPUUtilizationKeys = []string{
	"Device Utilization %",
	"GPU Activity(%)",
	"GPU Core Utilization",
	"gpu_busy_percent",
}

// GPUProbe reads accelerator utilization from the device registry.
type GPUProbe struct {
	registry Registry
	classes  []string
	keys     []string
	logger   *slog.Logger
}

// NewGPUProbe returns a probe over the given classes, tried in order.
func NewGPUProbe(registry Registry, classes []string, logger *slog.Logger) *GPUProbe {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GPUProbe{
		registry: registry,
		classes:  classes,
		keys:     GPUUtilizationKeys,
		logger:   logger,
	}
}

// Read returns the first utilization value in [0,100] found on any
// instance of any class. ok is false when no device exposes a known
// key; callers report that as unavailable, not as idle.
func (p *GPUProbe) Read(ctx context.Context) (float64, bool) {
	for _, class := range p.classes {
		devices, err := p.registry.Devices(ctx, class)
		if err != nil {
			p.logger.Debug("enumerating accelerator class failed", "class", class, "error", err)
			continue
		}
		for _, device := range devices {
			for _, key := range p.keys {
				value, ok := device.Float(key)
				if !ok || value < 0 || value > 100 {
					continue
				}
				return value, true
			}
		}
	}
	return 0, false
}
