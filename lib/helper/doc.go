// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package helper is the contract between the main process and the
// privileged sensor helper: the service name, the protocol version
// both sides must agree on, the action names, and their reply types.
//
// The helper registers its handlers with [RegisterHandlers]. The main
// process talks to it through [Client], a typed wrapper over a
// persistent service connection.
package helper
