// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sysstats/sysstats/lib/clock"
	"github.com/sysstats/sysstats/lib/hwinfo"
	"github.com/sysstats/sysstats/lib/smc"
)

// DefaultInterval is the sampling interval when none is configured.
const DefaultInterval = 2 * time.Second

// Config configures a Sampler. A nil source leaves its metric
// permanently unavailable.
type Config struct {
	CPU         Source
	GPU         Source
	RAM         Source
	Temperature Source

	// Clock drives the inter-cycle sleep. Nil means the real clock.
	Clock  clock.Clock
	Logger *slog.Logger
}

// Sampler runs the metrics loop. Its methods are safe for concurrent
// use, except that subscribers must not call back into the sampler.
type Sampler struct {
	cpu         Source
	gpu         Source
	ram         Source
	temperature Source
	clock       clock.Clock
	logger      *slog.Logger

	latest atomic.Pointer[Sample]

	// mu guards the loop lifecycle fields.
	mu       sync.Mutex
	parent   context.Context
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}

	// publishMu orders publication against Stop and guards the
	// subscriber list and cycle counter.
	publishMu      sync.Mutex
	subscribers    []subscriber
	nextSubscriber uint64
	cycle          uint64
}

type subscriber struct {
	id uint64
	fn func(Sample)
}

// New returns an idle sampler.
func New(config Config) *Sampler {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	return &Sampler{
		cpu:         config.CPU,
		gpu:         config.GPU,
		ram:         config.RAM,
		temperature: config.Temperature,
		clock:       config.Clock,
		logger:      config.Logger,
		interval:    DefaultInterval,
	}
}

// Start cancels any running loop and starts a new one that samples
// immediately and then every interval. The loop ends when ctx is
// cancelled or Stop is called.
func (s *Sampler) Start(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.parent = ctx
	if interval > 0 {
		s.interval = interval
	}
	s.startLocked()
}

// Stop cancels the loop. No sample is published and no subscriber is
// called after Stop returns. Reads still in flight finish in the
// background and their results are dropped.
func (s *Sampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	// A publish that checked the context before cancellation holds
	// publishMu until its subscribers return.
	s.publishMu.Lock()
	s.publishMu.Unlock() //nolint:staticcheck // barrier
}

// SetInterval changes the sampling interval. A running loop is
// restarted so the new interval applies to the next sleep.
func (s *Sampler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval == interval {
		return
	}
	s.interval = interval
	if s.cancel == nil {
		return
	}
	s.logger.Info("sampling interval changed, restarting loop", "interval", interval)
	s.stopLocked()
	s.startLocked()
}

// Interval returns the configured interval.
func (s *Sampler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Running reports whether the loop is active.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Latest returns the most recently published sample. ok is false
// before the first publish.
func (s *Sampler) Latest() (Sample, bool) {
	sample := s.latest.Load()
	if sample == nil {
		return Sample{}, false
	}
	return *sample, true
}

// Subscribe registers fn to be called with every published sample,
// synchronously and in publish order. The returned function
// unsubscribes.
func (s *Sampler) Subscribe(fn func(Sample)) (cancel func()) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.nextSubscriber++
	id := s.nextSubscriber
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.publishMu.Lock()
			defer s.publishMu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// startLocked launches the loop. The caller holds mu.
func (s *Sampler) startLocked() {
	parent := s.parent
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	interval := s.interval
	go func() {
		defer close(done)
		s.run(ctx, interval)
	}()
}

// stopLocked cancels the loop and waits for it to leave. The loop
// never blocks on a read once cancelled, so the wait is short. The
// caller holds mu.
func (s *Sampler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func (s *Sampler) run(ctx context.Context, interval time.Duration) {
	s.logger.Debug("sampling loop started", "interval", interval)
	defer s.logger.Debug("sampling loop stopped")

	for {
		sample, err := s.collect(ctx)
		if err != nil {
			return
		}
		s.publish(ctx, sample)

		timer := s.clock.NewTimer(interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

type reading struct {
	value float64
	ok    bool
}

func (s *Sampler) read(ctx context.Context, source Source) *Future[reading] {
	return Async(func() reading {
		if source == nil {
			return reading{}
		}
		value, ok := source.Read(ctx)
		return reading{value: value, ok: ok}
	})
}

// collect reads every source concurrently and assembles a sample. It
// returns ctx's error if the loop was cancelled while waiting.
func (s *Sampler) collect(ctx context.Context) (Sample, error) {
	started := s.clock.Now()
	cpuFuture := s.read(ctx, s.cpu)
	gpuFuture := s.read(ctx, s.gpu)
	ramFuture := s.read(ctx, s.ram)
	temperatureFuture := s.read(ctx, s.temperature)

	cpu, err := cpuFuture.Await(ctx)
	if err != nil {
		return Sample{}, err
	}
	gpu, err := gpuFuture.Await(ctx)
	if err != nil {
		return Sample{}, err
	}
	ram, err := ramFuture.Await(ctx)
	if err != nil {
		return Sample{}, err
	}
	temperature, err := temperatureFuture.Await(ctx)
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{Time: started}
	if cpu.ok {
		sample.CPUPercent, sample.CPUValid = hwinfo.ClampPercent(cpu.value), true
	}
	if gpu.ok {
		sample.GPUPercent, sample.GPUValid = hwinfo.ClampPercent(gpu.value), true
	}
	if ram.ok {
		sample.RAMPercent, sample.RAMValid = hwinfo.ClampPercent(ram.value), true
	}
	if temperature.ok && smc.Plausible(temperature.value) {
		sample.TemperatureCelsius, sample.TemperatureValid = temperature.value, true
	}
	return sample, nil
}

// publish stores sample and notifies subscribers unless ctx was
// cancelled. The check and the notification happen under publishMu,
// which Stop acquires after cancelling.
func (s *Sampler) publish(ctx context.Context, sample Sample) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	s.cycle++
	sample.Cycle = s.cycle
	s.latest.Store(&sample)
	for _, sub := range s.subscribers {
		sub.fn(sample)
	}
}
