// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package thermal

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sysstats/sysstats/lib/smc"
)

// Source is one temperature strategy. ok is false when the source has
// no reading; the Reader then tries the next one.
type Source interface {
	Name() string
	Temperature(ctx context.Context) (celsius float64, ok bool)
}

// Reader walks its sources in order. Reads are serialized: the
// controller connection and the registry tools are not shared
// concurrently.
type Reader struct {
	mu      sync.Mutex
	sources []Source
	logger  *slog.Logger
}

// NewReader returns a Reader over sources in priority order.
func NewReader(logger *slog.Logger, sources ...Source) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{sources: sources, logger: logger}
}

// Temperature returns the first plausible reading from the chain, or
// 0 if no source produced one.
func (r *Reader) Temperature(ctx context.Context) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, source := range r.sources {
		if ctx.Err() != nil {
			return 0
		}
		celsius, ok := source.Temperature(ctx)
		if !ok || !smc.Plausible(celsius) {
			continue
		}
		r.logger.Debug("temperature read", "strategy", source.Name(), "celsius", celsius)
		return celsius
	}
	r.logger.Debug("no temperature source produced a reading")
	return 0
}

// Close releases sources that hold resources.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, source := range r.sources {
		closer, ok := source.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
