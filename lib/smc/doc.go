// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package smc speaks the System Management Controller's key/value
// protocol. Every request and reply is a fixed 80-byte [KeyData]
// record exchanged through one IOKit struct method. A read is two
// calls: a key-info lookup that returns the value's type tag and size,
// then the read itself.
//
// The transport is the [Conn] interface. On macOS [Open] binds it to
// the AppleSMC user client through IOKit, loaded at runtime with
// purego so the package builds without cgo. Tests substitute a fake
// Conn that answers from a key table.
//
// Values are decoded by type tag ([Decode]). Temperature probing walks
// a per-architecture key list ([KeysFor]) and keeps the first value
// that passes [Plausible].
package smc
