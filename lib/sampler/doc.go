// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package sampler runs the periodic metrics loop. Each cycle reads
// CPU, GPU, memory, and temperature concurrently, assembles one
// [Sample], and publishes it: the newest sample is always available
// from [Sampler.Latest], and subscribers are called with each one in
// publish order.
//
// Timing goes through [clock.Clock] so tests drive cycles with a fake
// clock. Stopping or restarting the loop never publishes a sample
// from the cancelled run.
package sampler
