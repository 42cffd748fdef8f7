// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervisor owns the main process's relationship with the
// privileged helper: whether it is installed, whether the running
// helper speaks the expected protocol version, and the single
// persistent connection temperature requests travel over.
//
// The lifecycle is a small state machine. [Transition] is a pure
// function over [State] and [Event] so the rules can be read and
// tested without any I/O:
//
//	Uninstalled ──install──▶ InstalledUnverified ──handshake ok──▶ Connected
//	                                  ▲                               │
//	                          version mismatch                   invalidated
//	                                  │                               ▼
//	                                  └───────────────────────── Disconnected
//
// [Supervisor.GetTemperature] hides reconnection from callers: a
// missing or broken connection gets one reconnect attempt per call,
// and any failure degrades to 0 rather than an error.
package supervisor
