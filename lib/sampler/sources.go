// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sysstats/sysstats/lib/hwinfo"
	"github.com/sysstats/sysstats/lib/smc"
)

// Source produces one metric. ok is false when the metric is
// unavailable this cycle.
type Source interface {
	Read(ctx context.Context) (value float64, ok bool)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (float64, bool)

func (f SourceFunc) Read(ctx context.Context) (float64, bool) { return f(ctx) }

// CPUSource derives CPU load from successive counter snapshots. The
// previous snapshot lives here rather than in the loop, so restarting
// the loop does not reset the baseline.
type CPUSource struct {
	reader hwinfo.CounterReader

	mu       sync.Mutex
	previous *hwinfo.CounterSnapshot
}

// NewCPUSource returns a CPU source with no baseline. Its first
// reading is 0.
func NewCPUSource(reader hwinfo.CounterReader) *CPUSource {
	return &CPUSource{reader: reader}
}

// Read takes a snapshot and returns the load since the previous one.
// Reads are serialized. A failed snapshot leaves the baseline as it
// was.
func (s *CPUSource) Read(ctx context.Context) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.reader.SnapshotCPU(ctx)
	if !ok {
		return 0, false
	}
	percent := hwinfo.CPUPercent(s.previous, current)
	s.previous = &current
	return percent, true
}

// MemorySource reports the in-use share of physical memory.
type MemorySource struct {
	reader hwinfo.CounterReader
}

func NewMemorySource(reader hwinfo.CounterReader) *MemorySource {
	return &MemorySource{reader: reader}
}

func (s *MemorySource) Read(ctx context.Context) (float64, bool) {
	snapshot, ok := s.reader.SnapshotMemory(ctx)
	if !ok {
		return 0, false
	}
	return hwinfo.MemoryPercent(snapshot), true
}

// DefaultTemperatureTimeout bounds one temperature refresh.
const DefaultTemperatureTimeout = 10 * time.Second

// TemperatureSource serves the last temperature fetched and starts a
// new fetch on every read. At most one fetch runs at a time, so a
// slow helper call delays readings instead of piling up requests.
// A reading therefore reflects the fetch that finished before the
// read, typically one cycle old.
type TemperatureSource struct {
	fetch   func(ctx context.Context) float64
	timeout time.Duration
	logger  *slog.Logger

	inFlight atomic.Bool
	// cached holds the float64 bits of the last plausible reading, or
	// 0 when the last fetch had none.
	cached atomic.Uint64
}

// NewTemperatureSource returns a source over fetch, which returns 0
// for unavailable. The main process passes the helper supervisor's
// GetTemperature.
func NewTemperatureSource(fetch func(ctx context.Context) float64, timeout time.Duration, logger *slog.Logger) *TemperatureSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = DefaultTemperatureTimeout
	}
	return &TemperatureSource{fetch: fetch, timeout: timeout, logger: logger}
}

// Read starts a refresh and returns the cached reading. ok is false
// until a refresh has produced a plausible value.
func (s *TemperatureSource) Read(ctx context.Context) (float64, bool) {
	s.Refresh()
	celsius := s.Cached()
	return celsius, celsius != 0
}

// Cached returns the last plausible reading, or 0.
func (s *TemperatureSource) Cached() float64 {
	return math.Float64frombits(s.cached.Load())
}

// Refresh starts a fetch unless one is already running. The fetch
// outlives the caller's cycle, so it runs under its own timeout.
func (s *TemperatureSource) Refresh() {
	if !s.inFlight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.inFlight.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		celsius := s.fetch(ctx)
		if !smc.Plausible(celsius) {
			if celsius != 0 {
				s.logger.Debug("discarding implausible temperature", "celsius", celsius)
			}
			celsius = 0
		}
		s.cached.Store(math.Float64bits(celsius))
	}()
}
