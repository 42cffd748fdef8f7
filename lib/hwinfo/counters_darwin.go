// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package hwinfo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/shirou/gopsutil/v4/cpu"
	"golang.org/x/sys/unix"
)

const libSystemPath = "/usr/lib/libSystem.B.dylib"

// hostVMInfo64 is the HOST_VM_INFO64 flavor of host_statistics64.
const hostVMInfo64 = 4

// NewCounterReader returns the CounterReader for this platform.
func NewCounterReader(logger *slog.Logger) CounterReader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &machReader{logger: logger}
}

type machReader struct {
	logger *slog.Logger

	loadOnce         sync.Once
	loadErr          error
	machHostSelf     func() uint32
	hostStatistics64 func(host uint32, flavor int32, info unsafe.Pointer, count *uint32) int32
}

func (r *machReader) SnapshotCPU(ctx context.Context) (CounterSnapshot, bool) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(times) == 0 {
		r.logger.Debug("reading CPU counters failed", "error", err)
		return CounterSnapshot{}, false
	}
	total := times[0]
	return CounterSnapshot{
		User:   secondsToTicks(total.User),
		System: secondsToTicks(total.System),
		Idle:   secondsToTicks(total.Idle),
		Nice:   secondsToTicks(total.Nice),
	}, true
}

// secondsToTicks undoes gopsutil's tick to seconds conversion. Only
// ratios of deltas are used, so the tick rate itself does not matter.
func secondsToTicks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(math.Round(seconds * 100))
}

func (r *machReader) SnapshotMemory(ctx context.Context) (MemorySnapshot, bool) {
	r.loadOnce.Do(func() { r.loadErr = r.load() })
	if r.loadErr != nil {
		r.logger.Debug("host statistics unavailable", "error", r.loadErr)
		return MemorySnapshot{}, false
	}

	var info [vmStatistics64Size]byte
	count := uint32(vmStatistics64Size / 4)
	if result := r.hostStatistics64(r.machHostSelf(), hostVMInfo64, unsafe.Pointer(&info[0]), &count); result != 0 {
		r.logger.Debug("host_statistics64 failed", "kern_return", result)
		return MemorySnapshot{}, false
	}

	pageSize, err := unix.SysctlUint32("vm.pagesize")
	if err != nil {
		r.logger.Debug("reading vm.pagesize failed", "error", err)
		return MemorySnapshot{}, false
	}
	total, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		r.logger.Debug("reading hw.memsize failed", "error", err)
		return MemorySnapshot{}, false
	}

	active, wired, compressed := parseVMStatistics64(info[:])
	return MemorySnapshot{
		Active:     active,
		Wired:      wired,
		Compressed: compressed,
		PageSize:   uint64(pageSize),
		Total:      total,
	}, true
}

func (r *machReader) load() error {
	library, err := purego.Dlopen(libSystemPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("loading %s: %w", libSystemPath, err)
	}
	for name, target := range map[string]any{
		"mach_host_self":    &r.machHostSelf,
		"host_statistics64": &r.hostStatistics64,
	} {
		symbol, err := purego.Dlsym(library, name)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", name, err)
		}
		purego.RegisterFunc(target, symbol)
	}
	return nil
}
