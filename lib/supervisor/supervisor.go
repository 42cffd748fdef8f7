// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sysstats/sysstats/lib/helper"
)

// DefaultCallTimeout bounds each helper call when Config.CallTimeout
// is zero.
const DefaultCallTimeout = 10 * time.Second

// ErrVersionMismatch is returned by a handshake with a helper that
// reports a different protocol version.
var ErrVersionMismatch = errors.New("supervisor: helper version mismatch")

// HelperConn is a connection to the helper.
type HelperConn interface {
	Version(ctx context.Context) (string, error)
	Temperature(ctx context.Context) (float64, error)
	Close() error
}

// Dialer opens helper connections. onInvalidate must be called at
// most once, when the connection breaks or is closed.
type Dialer interface {
	Dial(ctx context.Context, onInvalidate func(error)) (HelperConn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, onInvalidate func(error)) (HelperConn, error)

func (f DialerFunc) Dial(ctx context.Context, onInvalidate func(error)) (HelperConn, error) {
	return f(ctx, onInvalidate)
}

// HelperDialer dials the helper's unix socket.
func HelperDialer(socketPath string) Dialer {
	return DialerFunc(func(ctx context.Context, onInvalidate func(error)) (HelperConn, error) {
		client, err := helper.Dial(ctx, socketPath, onInvalidate)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}

// Installer registers the helper with the platform service manager.
type Installer interface {
	// Registered reports whether a current helper is installed.
	Registered(ctx context.Context) bool
	// Install escalates and installs the helper.
	Install(ctx context.Context) error
}

// Config configures a Supervisor.
type Config struct {
	Dialer    Dialer
	Installer Installer

	// ExpectedVersion is the protocol version a helper must report.
	// Empty means helper.Version.
	ExpectedVersion string

	// CallTimeout bounds each helper call. Zero means
	// DefaultCallTimeout.
	CallTimeout time.Duration

	Logger *slog.Logger
}

// Supervisor manages the helper lifecycle and connection. All methods
// are safe for concurrent use.
type Supervisor struct {
	dialer          Dialer
	installer       Installer
	expectedVersion string
	callTimeout     time.Duration
	logger          *slog.Logger

	// connectMu serializes connection attempts so concurrent callers
	// that find the connection broken produce one reconnect.
	connectMu sync.Mutex

	mu    sync.Mutex
	state State
	conn  HelperConn
	// generation identifies the newest connection attempt. Each
	// connection's invalidation callback carries the generation it
	// was dialed under and is ignored once a newer one exists.
	generation uint64
	// invalidatedGeneration is the generation of the last connection
	// that reported itself broken.
	invalidatedGeneration uint64
}

// New returns a supervisor in StateUninstalled. Call Start to pick up
// a helper that is already installed.
func New(config Config) *Supervisor {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.ExpectedVersion == "" {
		config.ExpectedVersion = helper.Version
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = DefaultCallTimeout
	}
	return &Supervisor{
		dialer:          config.Dialer,
		installer:       config.Installer,
		expectedVersion: config.ExpectedVersion,
		callTimeout:     config.CallTimeout,
		logger:          config.Logger,
		state:           StateUninstalled,
	}
}

// Start checks whether the helper is installed and, if so, connects
// and verifies its version. A helper that is registered but cannot
// be reached leaves the supervisor in StateInstalledUnverified;
// temperature requests keep trying to reconnect.
func (s *Supervisor) Start(ctx context.Context) {
	if s.installer == nil || !s.installer.Registered(ctx) {
		s.logger.Info("helper not installed")
		return
	}
	s.apply(EventInstalled)
	if err := s.connect(ctx); err != nil {
		s.logger.Warn("connecting to installed helper failed", "error", err)
	}
}

// Install installs the helper through the platform's privilege
// escalation and then connects to it. A failure leaves the state
// unchanged and is returned; it is not retried. A successful install
// returns nil even if the follow-up handshake fails, in which case
// NeedsInstallation stays true.
func (s *Supervisor) Install(ctx context.Context) error {
	if s.installer == nil {
		return errors.New("supervisor: no installer configured")
	}
	if err := s.installer.Install(ctx); err != nil {
		s.apply(EventInstallFailed)
		return err
	}

	// The service manager restarted the helper onto the new binary,
	// so any existing connection is to the old process.
	s.connectMu.Lock()
	s.dropConnection(nil)
	s.apply(EventInstalled)
	s.connectMu.Unlock()

	if err := s.connect(ctx); err != nil {
		s.logger.Warn("helper installed but handshake failed", "error", err)
	}
	return nil
}

// NeedsInstallation reports whether the user should be offered a
// helper install. It stays true until a live connection with the
// expected version exists, whatever earlier install attempts did.
func (s *Supervisor) NeedsInstallation() bool {
	return s.State().NeedsInstallation()
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetTemperature returns the helper's temperature reading. A missing
// or failed connection is reconnected once; if that or the retried
// call fails the result is 0, meaning unavailable.
func (s *Supervisor) GetTemperature(ctx context.Context) float64 {
	conn := s.current()
	if conn != nil {
		celsius, err := s.temperature(ctx, conn)
		if err == nil {
			return celsius
		}
		s.logger.Debug("helper temperature call failed, reconnecting", "error", err)
	}

	conn, err := s.reconnect(ctx, conn)
	if err != nil {
		s.logger.Debug("helper unavailable", "error", err)
		return 0
	}
	celsius, err := s.temperature(ctx, conn)
	if err != nil {
		s.logger.Debug("helper temperature call failed after reconnect", "error", err)
		return 0
	}
	return celsius
}

// Close drops the connection. The state is left as it is.
func (s *Supervisor) Close() error {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()
	s.dropConnection(nil)
	return nil
}

func (s *Supervisor) temperature(ctx context.Context, conn HelperConn) (float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return conn.Temperature(callCtx)
}

func (s *Supervisor) current() HelperConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// reconnect replaces failed with a new connection. If another caller
// already replaced it while this one waited on connectMu, that
// connection is used instead of dialing again.
func (s *Supervisor) reconnect(ctx context.Context, failed HelperConn) (HelperConn, error) {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()

	if conn := s.current(); conn != nil && conn != failed {
		return conn, nil
	}
	s.dropConnection(failed)
	if err := s.connectLocked(ctx); err != nil {
		return nil, err
	}
	if conn := s.current(); conn != nil {
		return conn, nil
	}
	return nil, errors.New("supervisor: connection lost during handshake")
}

func (s *Supervisor) connect(ctx context.Context) error {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()
	if s.current() != nil {
		return nil
	}
	return s.connectLocked(ctx)
}

// connectLocked dials and performs the version handshake. The caller
// holds connectMu.
func (s *Supervisor) connectLocked(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	conn, err := s.dialer.Dial(callCtx, func(cause error) {
		s.invalidated(generation, cause)
	})
	if err != nil {
		s.apply(EventConnectFailed)
		return fmt.Errorf("dialing helper: %w", err)
	}

	version, err := conn.Version(callCtx)
	if err != nil {
		conn.Close()
		s.apply(EventConnectFailed)
		return fmt.Errorf("helper version handshake: %w", err)
	}
	if version != s.expectedVersion {
		conn.Close()
		s.apply(EventHandshakeMismatch)
		s.logger.Warn("helper version mismatch, reinstall required",
			"helper_version", version,
			"expected_version", s.expectedVersion,
		)
		return fmt.Errorf("%w: helper reports %q, want %q", ErrVersionMismatch, version, s.expectedVersion)
	}

	s.mu.Lock()
	if s.invalidatedGeneration == generation {
		s.mu.Unlock()
		conn.Close()
		s.apply(EventConnectFailed)
		return errors.New("supervisor: helper connection broke during handshake")
	}
	previous := s.state
	s.conn = conn
	s.state = Transition(s.state, EventHandshakeOK)
	s.mu.Unlock()

	s.logger.Info("helper connected", "version", version, "previous_state", previous.String())
	return nil
}

// dropConnection closes and forgets the stored connection. With a
// non-nil only it does so only if the stored connection is that one.
// The caller holds connectMu.
func (s *Supervisor) dropConnection(only HelperConn) {
	s.mu.Lock()
	conn := s.conn
	if conn == nil || (only != nil && conn != only) {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.state = Transition(s.state, EventInvalidated)
	s.mu.Unlock()
	conn.Close()
}

// invalidated runs from a connection's broken-channel callback.
func (s *Supervisor) invalidated(generation uint64, cause error) {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return
	}
	s.invalidatedGeneration = generation
	hadConn := s.conn != nil
	s.conn = nil
	s.state = Transition(s.state, EventInvalidated)
	s.mu.Unlock()

	if hadConn {
		s.logger.Info("helper connection invalidated", "error", cause)
	}
}

func (s *Supervisor) apply(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Transition(s.state, event)
}
