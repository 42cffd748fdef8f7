// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux && !darwin

package hwinfo

import (
	"context"
	"log/slog"
	"math"
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// NewCounterReader returns a CounterReader backed entirely by
// gopsutil.
func NewCounterReader(logger *slog.Logger) CounterReader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &gopsutilReader{logger: logger}
}

type gopsutilReader struct {
	logger *slog.Logger
}

func (r *gopsutilReader) SnapshotCPU(ctx context.Context) (CounterSnapshot, bool) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(times) == 0 {
		r.logger.Debug("reading CPU counters failed", "error", err)
		return CounterSnapshot{}, false
	}
	ticks := func(seconds float64) uint64 { return uint64(math.Round(math.Max(seconds, 0) * 100)) }
	return CounterSnapshot{
		User:   ticks(times[0].User),
		System: ticks(times[0].System + times[0].Irq + times[0].Softirq + times[0].Steal),
		Idle:   ticks(times[0].Idle + times[0].Iowait),
		Nice:   ticks(times[0].Nice),
	}, true
}

func (r *gopsutilReader) SnapshotMemory(ctx context.Context) (MemorySnapshot, bool) {
	stat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		r.logger.Debug("reading memory counters failed", "error", err)
		return MemorySnapshot{}, false
	}
	pageSize := uint64(os.Getpagesize())
	var used uint64
	if stat.Total > stat.Available {
		used = stat.Total - stat.Available
	}
	return MemorySnapshot{Active: used / pageSize, PageSize: pageSize, Total: stat.Total}, true
}
