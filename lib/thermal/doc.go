// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package thermal produces a single CPU temperature reading from an
// ordered chain of sources. The privileged helper serves it.
//
// The chain, most precise first:
//
//  1. [SMCSource]: the System Management Controller's sensor keys,
//     probed in per-architecture order (macOS only).
//  2. [RegistryProbe]: temperature properties of thermal sensor
//     devices in the device registry (battery and power-source
//     objects on macOS, hwmon and thermal zones on Linux).
//  3. [PressureSource]: a coarse 0-100 thermal pressure level mapped
//     linearly onto 35-100 °C. This is an estimate and is only used
//     when nothing better answers.
//
// [Reader.Temperature] returns the first plausible value, or 0 when
// no source has one. 0 means "no reading", never an error.
package thermal
