// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import "context"

// Future is the result of a function running on its own goroutine.
type Future[T any] struct {
	done  chan struct{}
	value T
}

// Async starts fn and returns its future.
func Async[T any](fn func() T) *Future[T] {
	future := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(future.done)
		future.value = fn()
	}()
	return future
}

// Await returns the value once fn has returned. If ctx ends first it
// returns ctx's error; fn keeps running and its value is dropped.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
