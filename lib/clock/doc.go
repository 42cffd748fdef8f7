// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the
// sampling loop.
//
// Production code takes a [Clock] and is handed [Real]. Tests hand it
// a [FakeClock] from [Fake], which only moves when the test calls
// Advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	sampler := sampler.New(sources, c, logger)
//	sampler.Start(2 * time.Second)
//	c.WaitForTimers(1)         // the loop is now sleeping
//	c.Advance(2 * time.Second) // run the next cycle
//
// WaitForTimers closes the race between a goroutine registering its
// sleep and the test advancing time.
package clock
