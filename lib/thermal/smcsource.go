// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package thermal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sysstats/sysstats/lib/smc"
)

// ControllerOpener opens a controller client. smc.Open is the
// production opener.
type ControllerOpener func(logger *slog.Logger) (*smc.Client, error)

// SMCSource reads the controller's temperature keys. The controller
// is opened on first use and reopened after a failed open, so a
// helper started before the driver is ready recovers on a later read.
// A connection on which every key fails at the transport is closed
// and reopened on the next read.
type SMCSource struct {
	open   ControllerOpener
	keys   []smc.Key
	client *smc.Client
	logger *slog.Logger
}

// NewSMCSource returns a source probing keys in order.
func NewSMCSource(open ControllerOpener, keys []smc.Key, logger *slog.Logger) *SMCSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SMCSource{open: open, keys: keys, logger: logger}
}

func (s *SMCSource) Name() string { return "smc" }

func (s *SMCSource) Temperature(ctx context.Context) (float64, bool) {
	if s.client == nil {
		client, err := s.open(s.logger)
		if err != nil {
			s.logger.Debug("controller unavailable", "error", err)
			return 0, false
		}
		s.client = client
	}
	key, celsius, err := s.client.FirstPlausible(ctx, s.keys)
	if err != nil {
		if errors.Is(err, smc.ErrTransport) {
			s.logger.Warn("controller connection failed, reopening on next read", "error", err)
			s.Close()
		}
		return 0, false
	}
	s.logger.Debug("controller key matched", "key", key.String(), "group", smc.GroupOf(key))
	return celsius, true
}

// Close closes the controller connection if one is open.
func (s *SMCSource) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
