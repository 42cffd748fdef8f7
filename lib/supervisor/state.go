// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

// State is the supervisor's view of the helper.
type State int

const (
	// StateUninstalled means the helper is not registered with the
	// service manager.
	StateUninstalled State = iota

	// StateInstalledUnverified means the helper is registered but no
	// connection with a matching version has been made since.
	StateInstalledUnverified

	// StateConnected means a live connection passed the version
	// handshake.
	StateConnected

	// StateDisconnected means a verified connection broke. The next
	// temperature request reconnects.
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "uninstalled"
	case StateInstalledUnverified:
		return "installed-unverified"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is something that happened to the helper or its connection.
type Event int

const (
	// EventInstalled: installation (or a startup check) found the
	// helper registered.
	EventInstalled Event = iota
	// EventInstallFailed: escalation or registration failed.
	EventInstallFailed
	// EventHandshakeOK: a connection reported the expected version.
	EventHandshakeOK
	// EventHandshakeMismatch: a connection reported another version.
	EventHandshakeMismatch
	// EventConnectFailed: dialing or the version call failed.
	EventConnectFailed
	// EventInvalidated: the live connection broke.
	EventInvalidated
)

func (e Event) String() string {
	switch e {
	case EventInstalled:
		return "installed"
	case EventInstallFailed:
		return "install-failed"
	case EventHandshakeOK:
		return "handshake-ok"
	case EventHandshakeMismatch:
		return "handshake-mismatch"
	case EventConnectFailed:
		return "connect-failed"
	case EventInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Transition returns the state after event. Events that do not apply
// to state leave it unchanged.
func Transition(state State, event Event) State {
	switch event {
	case EventInstalled, EventHandshakeMismatch:
		return StateInstalledUnverified
	case EventHandshakeOK:
		return StateConnected
	case EventConnectFailed, EventInvalidated:
		if state == StateConnected {
			return StateDisconnected
		}
		return state
	default:
		return state
	}
}

// NeedsInstallation reports whether state calls for (re)installing
// the helper: no connection with a matching version has been made.
func (s State) NeedsInstallation() bool {
	return s == StateUninstalled || s == StateInstalledUnverified
}
