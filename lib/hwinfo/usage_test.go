// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"math"
	"testing"
)

func TestCPUPercent(t *testing.T) {
	tests := []struct {
		name     string
		previous *CounterSnapshot
		current  CounterSnapshot
		expected float64
	}{
		{
			name:     "cold start has no baseline",
			previous: nil,
			current:  CounterSnapshot{User: 100, System: 50, Idle: 850},
			expected: 0,
		},
		{
			name:     "user system and idle deltas",
			previous: &CounterSnapshot{User: 100, System: 50, Idle: 850, Nice: 0},
			current:  CounterSnapshot{User: 150, System: 60, Idle: 870, Nice: 0},
			expected: 75,
		},
		{
			name:     "nice counts as used",
			previous: &CounterSnapshot{User: 0, System: 0, Idle: 0, Nice: 0},
			current:  CounterSnapshot{User: 10, System: 10, Idle: 60, Nice: 20},
			expected: 40,
		},
		{
			name:     "fully idle",
			previous: &CounterSnapshot{User: 5, System: 5, Idle: 5},
			current:  CounterSnapshot{User: 5, System: 5, Idle: 105},
			expected: 0,
		},
		{
			name:     "fully busy",
			previous: &CounterSnapshot{User: 5, System: 5, Idle: 5},
			current:  CounterSnapshot{User: 55, System: 55, Idle: 5},
			expected: 100,
		},
		{
			name:     "no ticks elapsed",
			previous: &CounterSnapshot{User: 7, System: 7, Idle: 7, Nice: 7},
			current:  CounterSnapshot{User: 7, System: 7, Idle: 7, Nice: 7},
			expected: 0,
		},
		{
			name:     "counter went backwards",
			previous: &CounterSnapshot{User: 500, System: 50, Idle: 850},
			current:  CounterSnapshot{User: 10, System: 60, Idle: 870},
			expected: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := CPUPercent(test.previous, test.current)
			if got != test.expected {
				t.Errorf("CPUPercent() = %f, want %f", got, test.expected)
			}
		})
	}
}

func TestCPUPercentStaysInRange(t *testing.T) {
	previous := CounterSnapshot{User: 1000, System: 1000, Idle: 1000, Nice: 1000}
	for used := uint64(0); used <= 200; used += 13 {
		for idle := uint64(0); idle <= 200; idle += 17 {
			current := CounterSnapshot{
				User:   previous.User + used/2,
				System: previous.System + used/3,
				Nice:   previous.Nice + used - used/2 - used/3,
				Idle:   previous.Idle + idle,
			}
			got := CPUPercent(&previous, current)
			if got < 0 || got > 100 {
				t.Fatalf("CPUPercent(used=%d, idle=%d) = %f, outside [0,100]", used, idle, got)
			}
		}
	}
}

func TestMemoryPercent(t *testing.T) {
	tests := []struct {
		name     string
		snapshot MemorySnapshot
		expected float64
	}{
		{
			name: "quarter in use",
			snapshot: MemorySnapshot{
				Active: 512, Wired: 256, Compressed: 256,
				PageSize: 4096, Total: 4096 * 4096,
			},
			expected: 25,
		},
		{
			name: "double counted pages clamp to 100",
			snapshot: MemorySnapshot{
				Active: 4096, Wired: 4096, Compressed: 4096,
				PageSize: 16384, Total: 16384 * 8192,
			},
			expected: 100,
		},
		{
			name:     "unknown total",
			snapshot: MemorySnapshot{Active: 10, PageSize: 4096},
			expected: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := MemoryPercent(test.snapshot)
			if math.Abs(got-test.expected) > 1e-9 {
				t.Errorf("MemoryPercent() = %f, want %f", got, test.expected)
			}
		})
	}
}

func TestClampPercent(t *testing.T) {
	tests := []struct {
		input    float64
		expected int
	}{
		{input: -3, expected: 0},
		{input: 0, expected: 0},
		{input: 42.9, expected: 42},
		{input: 100, expected: 100},
		{input: 180, expected: 100},
		{input: math.NaN(), expected: 0},
	}
	for _, test := range tests {
		if got := ClampPercent(test.input); got != test.expected {
			t.Errorf("ClampPercent(%f) = %d, want %d", test.input, got, test.expected)
		}
	}
}
