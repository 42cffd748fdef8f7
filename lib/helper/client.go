// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"

	"github.com/sysstats/sysstats/lib/service"
)

// Client is a typed connection to the helper.
type Client struct {
	conn *service.Conn
}

// Dial connects to the helper at socketPath. onInvalidate fires once
// when the connection breaks; it may be nil.
func Dial(ctx context.Context, socketPath string, onInvalidate func(error)) (*Client, error) {
	conn, err := service.Dial(ctx, socketPath, onInvalidate)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Version asks the helper for its protocol version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var reply VersionReply
	if err := c.conn.Call(ctx, ActionGetVersion, nil, &reply); err != nil {
		return "", err
	}
	return reply.Version, nil
}

// Temperature asks the helper for the current temperature.
func (c *Client) Temperature(ctx context.Context) (float64, error) {
	var reply TemperatureReply
	if err := c.conn.Call(ctx, ActionGetTemperature, nil, &reply); err != nil {
		return 0, err
	}
	return reply.Celsius, nil
}

// Platform asks the helper for its architecture family label.
func (c *Client) Platform(ctx context.Context) (string, error) {
	var reply PlatformReply
	if err := c.conn.Call(ctx, ActionGetPlatformInfo, nil, &reply); err != nil {
		return "", err
	}
	return reply.Platform, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
