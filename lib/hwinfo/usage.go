// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

// CPUPercent returns the share of non-idle ticks between two
// snapshots, in [0,100]. It returns 0 when previous is nil (the first
// reading after start), when no ticks elapsed, or when any counter
// went backwards.
func CPUPercent(previous *CounterSnapshot, current CounterSnapshot) float64 {
	if previous == nil {
		return 0
	}
	if current.User < previous.User || current.System < previous.System ||
		current.Nice < previous.Nice || current.Idle < previous.Idle {
		return 0
	}

	usedDelta := (current.User - previous.User) +
		(current.System - previous.System) +
		(current.Nice - previous.Nice)
	totalDelta := usedDelta + (current.Idle - previous.Idle)
	if totalDelta == 0 {
		return 0
	}
	return 100 * float64(usedDelta) / float64(totalDelta)
}

// MemoryPercent returns the in-use share of physical memory, clamped
// to [0,100]. Active, wired and compressed pages can overlap on some
// kernels, so the raw ratio may exceed 100.
func MemoryPercent(snapshot MemorySnapshot) float64 {
	if snapshot.Total == 0 {
		return 0
	}
	usedBytes := float64(snapshot.Active+snapshot.Wired+snapshot.Compressed) * float64(snapshot.PageSize)
	percent := 100 * usedBytes / float64(snapshot.Total)
	if percent > 100 {
		return 100
	}
	return percent
}

// ClampPercent truncates a percentage to an integer in [0,100].
func ClampPercent(percent float64) int {
	switch {
	case percent != percent: // NaN
		return 0
	case percent <= 0:
		return 0
	case percent >= 100:
		return 100
	}
	return int(percent)
}
