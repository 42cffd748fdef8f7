// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package hwinfo

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/mem"
)

// NewCounterReader returns the CounterReader for this platform.
func NewCounterReader(logger *slog.Logger) CounterReader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &procReader{procStatPath: "/proc/stat", logger: logger}
}

type procReader struct {
	procStatPath string
	logger       *slog.Logger
}

func (r *procReader) SnapshotCPU(ctx context.Context) (CounterSnapshot, bool) {
	snapshot, ok := readProcStat(r.procStatPath)
	if !ok {
		r.logger.Debug("reading CPU counters failed", "path", r.procStatPath)
	}
	return snapshot, ok
}

func (r *procReader) SnapshotMemory(ctx context.Context) (MemorySnapshot, bool) {
	stat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		r.logger.Debug("reading memory counters failed", "error", err)
		return MemorySnapshot{}, false
	}
	return memorySnapshotFromBytes(stat.Total, stat.Available, uint64(os.Getpagesize())), true
}

// memorySnapshotFromBytes expresses Linux memory accounting in pages.
// Page cache is reclaimable and Linux has no separate compressor
// count, so everything not available is reported as active.
func memorySnapshotFromBytes(total, available, pageSize uint64) MemorySnapshot {
	var used uint64
	if total > available {
		used = total - available
	}
	return MemorySnapshot{
		Active:   used / pageSize,
		PageSize: pageSize,
		Total:    total,
	}
}

// readProcStat parses the aggregate line of /proc/stat:
//
//	cpu  user nice system idle iowait irq softirq steal [guest guest_nice]
//
// irq, softirq and steal are time the CPU was not available to idle
// and count as system; iowait counts as idle. guest time is already
// included in user and nice.
func readProcStat(path string) (CounterSnapshot, bool) {
	file, err := os.Open(path)
	if err != nil {
		return CounterSnapshot{}, false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return CounterSnapshot{}, false
	}

	fields := strings.Fields(scanner.Text())
	if len(fields) < 9 || fields[0] != "cpu" {
		return CounterSnapshot{}, false
	}

	var values [8]uint64
	for i := range values {
		parsed, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return CounterSnapshot{}, false
		}
		values[i] = parsed
	}

	return CounterSnapshot{
		User:   values[0],
		Nice:   values[1],
		System: values[2] + values[5] + values[6] + values[7],
		Idle:   values[3] + values[4],
	}, true
}
