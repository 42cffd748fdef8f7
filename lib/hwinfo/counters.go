// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import "context"

// CounterSnapshot is the host's cumulative CPU time in ticks at one
// instant. The values only grow while the system is up.
type CounterSnapshot struct {
	User   uint64
	System uint64
	Idle   uint64
	Nice   uint64
}

// MemorySnapshot is the host's memory page accounting at one instant.
type MemorySnapshot struct {
	// Active, Wired and Compressed are page counts. Their sum is the
	// memory considered in use.
	Active     uint64
	Wired      uint64
	Compressed uint64

	// PageSize is the size of one page in bytes.
	PageSize uint64

	// Total is the installed physical memory in bytes.
	Total uint64
}

// CounterReader takes snapshots of the kernel's host statistics. Both
// methods return ok=false when the underlying call fails.
type CounterReader interface {
	SnapshotCPU(ctx context.Context) (CounterSnapshot, bool)
	SnapshotMemory(ctx context.Context) (MemorySnapshot, bool)
}
