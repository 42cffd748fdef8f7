// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sysstats/sysstats/lib/codec"
)

// ErrConnectionClosed is returned by Call once the connection has
// broken or been closed. The underlying cause is wrapped alongside it.
var ErrConnectionClosed = errors.New("service: connection closed")

// dialTimeout bounds the connect phase of Dial.
const dialTimeout = 5 * time.Second

// ServiceError is returned by Call when the server responds with
// ok=false.
type ServiceError struct {
	Action  string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error on %q: %s", e.Action, e.Message)
}

// InvalidationFunc is called once when a Conn breaks, with the cause.
type InvalidationFunc func(cause error)

// Conn is a persistent, multiplexed connection to a SocketServer.
// Call is safe for concurrent use.
type Conn struct {
	conn         net.Conn
	socketPath   string
	onInvalidate InvalidationFunc

	writeMu sync.Mutex
	encoder *codec.Encoder

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan Response
	err     error

	done chan struct{}
}

// Dial connects to the server at socketPath and starts the response
// reader. onInvalidate may be nil.
func Dial(ctx context.Context, socketPath string, onInvalidate InvalidationFunc) (*Conn, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", socketPath, err)
	}

	c := &Conn{
		conn:         conn,
		socketPath:   socketPath,
		onInvalidate: onInvalidate,
		encoder:      codec.NewEncoder(conn),
		pending:      make(map[uint64]chan Response),
		done:         make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Call sends a request and waits for its response.
//
// fields carries action-specific request fields; "id" and "action"
// are added here and must not be set by the caller. On success, if
// result is non-nil and the response has data, the data is decoded
// into result. A response with ok=false returns a *ServiceError.
//
// If ctx ends first, Call returns ctx.Err() and the late response is
// discarded; the connection stays usable.
func (c *Conn) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	reply := make(chan Response, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return fmt.Errorf("calling %q: %w", action, err)
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = reply
	c.mu.Unlock()

	request := make(map[string]any, len(fields)+2)
	for key, value := range fields {
		request[key] = value
	}
	request["id"] = id
	request["action"] = action

	if err := c.write(ctx, request); err != nil {
		c.forget(id)
		c.invalidate(err)
		return fmt.Errorf("calling %q on %s: %w", action, c.socketPath, c.closedError(err))
	}

	select {
	case response := <-reply:
		if !response.OK {
			return &ServiceError{Action: action, Message: response.Error}
		}
		if result != nil && len(response.Data) > 0 {
			if err := codec.Unmarshal(response.Data, result); err != nil {
				return fmt.Errorf("decoding response data for %q: %w", action, err)
			}
		}
		return nil
	case <-c.done:
		c.mu.Lock()
		err := c.err
		c.mu.Unlock()
		return fmt.Errorf("calling %q: %w", action, err)
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	}
}

func (c *Conn) write(ctx context.Context, request map[string]any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
	} else {
		c.conn.SetWriteDeadline(time.Time{})
	}
	return c.encoder.Encode(request)
}

func (c *Conn) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readLoop routes responses to pending calls until the connection
// fails.
func (c *Conn) readLoop() {
	decoder := codec.NewDecoder(c.conn)
	for {
		var response Response
		if err := decoder.Decode(&response); err != nil {
			c.invalidate(err)
			return
		}

		c.mu.Lock()
		reply, ok := c.pending[response.ID]
		delete(c.pending, response.ID)
		c.mu.Unlock()
		if ok {
			reply <- response
		}
	}
}

// closedError wraps cause with ErrConnectionClosed unless it already
// is one.
func (c *Conn) closedError(cause error) error {
	if errors.Is(cause, ErrConnectionClosed) {
		return cause
	}
	return fmt.Errorf("%w: %v", ErrConnectionClosed, cause)
}

// invalidate marks the connection broken, fails pending calls, and
// fires the callback. Only the first call has any effect.
func (c *Conn) invalidate(cause error) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return
	}
	c.err = c.closedError(cause)
	c.pending = make(map[uint64]chan Response)
	c.mu.Unlock()

	close(c.done)
	c.conn.Close()
	if c.onInvalidate != nil {
		c.onInvalidate(c.err)
	}
}

// Done is closed once the connection has broken.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns the invalidation cause, or nil while the connection is
// live.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close closes the connection. Pending calls fail and the
// invalidation callback fires if it has not already.
func (c *Conn) Close() error {
	c.invalidate(ErrConnectionClosed)
	return nil
}
