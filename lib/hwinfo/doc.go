// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwinfo reads host utilization counters and turns them into
// percentages.
//
// # Counters
//
// A [CounterReader] takes point-in-time snapshots of the kernel's CPU
// tick counters ([CounterSnapshot]) and memory page counters
// ([MemorySnapshot]). Snapshots never fail loudly: a failed read
// returns ok=false and the caller reports the metric as unavailable
// for that cycle.
//
//   - Linux: CPU ticks from the aggregate line of /proc/stat, memory
//     from gopsutil's VirtualMemory.
//   - macOS: CPU ticks from gopsutil's cpu.Times, memory from
//     host_statistics64(HOST_VM_INFO64) called through purego, with
//     page size and physical memory from sysctl.
//
// # Derivation
//
// [CPUPercent] differences two snapshots. The first reading after
// start has no baseline and is defined as 0. [MemoryPercent] works
// from a single snapshot since page counts are gauges.
//
// # Device registry
//
// A [Registry] enumerates devices of a class together with their
// property bags: sysfs attribute files on Linux ([SysfsRegistry]),
// ioreg output on macOS ([IORegistry]). [GPUProbe] walks accelerator
// classes in priority order looking for a utilization property. The
// thermal package uses the same registry for its temperature and
// pressure fallbacks.
package hwinfo
