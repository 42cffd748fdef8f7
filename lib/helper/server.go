// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"

	"github.com/sysstats/sysstats/lib/service"
)

// Backend supplies the helper's answers.
type Backend interface {
	// Temperature returns the current temperature, or 0 for none.
	Temperature(ctx context.Context) float64
	// Platform returns the architecture family label.
	Platform() string
}

// RegisterHandlers installs the helper actions on server.
func RegisterHandlers(server *service.SocketServer, backend Backend) {
	server.Handle(ActionGetTemperature, func(ctx context.Context, raw []byte) (any, error) {
		return TemperatureReply{Celsius: backend.Temperature(ctx)}, nil
	})
	server.Handle(ActionGetVersion, func(ctx context.Context, raw []byte) (any, error) {
		return VersionReply{Version: Version}, nil
	})
	server.Handle(ActionGetPlatformInfo, func(ctx context.Context, raw []byte) (any, error) {
		return PlatformReply{Platform: backend.Platform()}, nil
	})
}
