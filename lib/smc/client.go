// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package smc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrKeyNotFound is returned when the controller does not know a
	// key.
	ErrKeyNotFound = errors.New("smc: key not found")

	// ErrTransport wraps failures of the controller call itself, as
	// opposed to replies that reject a key. A connection that returns
	// it for every key is broken and should be reopened.
	ErrTransport = errors.New("smc: controller call failed")

	// ErrNoPlausibleKey is returned by FirstPlausible when no key
	// yields a plausible temperature.
	ErrNoPlausibleKey = errors.New("smc: no plausible temperature key")

	// ErrUnsupported is returned by Open on platforms without a
	// controller.
	ErrUnsupported = errors.New("smc: not supported on this platform")
)

// Conn is a controller connection: one struct-method call with a
// KeyDataSize input and output buffer.
type Conn interface {
	Call(selector uint32, input, output []byte) error
	Close() error
}

// Value is a key's raw reply: its type tag and the value bytes,
// trimmed to the reported size.
type Value struct {
	Key   Key
	Type  Key
	Bytes []byte
}

// Client reads keys over a Conn. Calls are serialized; the controller
// user client is not safe for concurrent struct-method calls.
type Client struct {
	mu     sync.Mutex
	conn   Conn
	logger *slog.Logger
}

// NewClient wraps an open connection.
func NewClient(conn Conn, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{conn: conn, logger: logger}
}

// Close releases the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// call sends one request record and decodes the reply. A non-zero
// result byte is a rejection.
func (c *Client) call(request *KeyData) (KeyData, error) {
	input := make([]byte, KeyDataSize)
	output := make([]byte, KeyDataSize)
	request.encode(input)

	if err := c.conn.Call(SelectorHandleYieldKey, input, output); err != nil {
		return KeyData{}, fmt.Errorf("%w for %s: %w", ErrTransport, request.Key, err)
	}

	var reply KeyData
	if err := reply.UnmarshalBinary(output); err != nil {
		return KeyData{}, err
	}
	switch reply.Result {
	case 0:
		return reply, nil
	case ResultKeyNotFound:
		return KeyData{}, fmt.Errorf("%w: %s", ErrKeyNotFound, request.Key)
	default:
		return KeyData{}, fmt.Errorf("smc: controller rejected %s with result 0x%02x", request.Key, reply.Result)
	}
}

// KeyInfo looks up the type and size of key.
func (c *Client) KeyInfo(key Key) (KeyInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyInfoLocked(key)
}

func (c *Client) keyInfoLocked(key Key) (KeyInfo, error) {
	reply, err := c.call(&KeyData{Key: key, Data8: CommandGetKeyInfo})
	if err != nil {
		return KeyInfo{}, err
	}
	return reply.Info, nil
}

// ReadKey performs the key-info lookup and the read for key. The type
// tag comes from the lookup; read replies do not repeat it.
func (c *Client) ReadKey(key Key) (Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := c.keyInfoLocked(key)
	if err != nil {
		return Value{}, err
	}
	reply, err := c.call(&KeyData{Key: key, Info: info, Data8: CommandReadKey})
	if err != nil {
		return Value{}, err
	}

	size := int(info.DataSize)
	if size > len(reply.Bytes) {
		size = len(reply.Bytes)
	}
	return Value{Key: key, Type: info.DataType, Bytes: append([]byte(nil), reply.Bytes[:size]...)}, nil
}

// ReadFloat reads key and decodes it by its type tag.
func (c *Client) ReadFloat(key Key) (float64, error) {
	value, err := c.ReadKey(key)
	if err != nil {
		return 0, err
	}
	decoded, err := Decode(value.Type, value.Bytes)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", key, err)
	}
	return decoded, nil
}

// FirstPlausible probes keys in order and returns the first one whose
// decoded value passes Plausible. Missing keys, rejections and decode
// failures move on to the next key. When no key yields a plausible
// temperature the error is ErrNoPlausibleKey, or wraps ErrTransport if
// every probed key failed at the transport. A done ctx returns its
// error.
func (c *Client) FirstPlausible(ctx context.Context, keys []Key) (Key, float64, error) {
	var transportErr error
	transportFailures := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		celsius, err := c.ReadFloat(key)
		if err != nil {
			if errors.Is(err, ErrTransport) {
				transportFailures++
				transportErr = err
			}
			if !errors.Is(err, ErrKeyNotFound) {
				c.logger.Debug("controller key unreadable", "key", key.String(), "error", err)
			}
			continue
		}
		if !Plausible(celsius) {
			c.logger.Debug("controller key implausible", "key", key.String(), "celsius", celsius)
			continue
		}
		return key, celsius, nil
	}
	if transportFailures > 0 && transportFailures == len(keys) {
		return 0, 0, transportErr
	}
	return 0, 0, ErrNoPlausibleKey
}
