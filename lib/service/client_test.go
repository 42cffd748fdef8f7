// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sysstats/sysstats/lib/codec"
	"github.com/sysstats/sysstats/lib/testutil"
)

func TestConnCallDecodesFields(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testutil.Logger())
	server.Handle("greet", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			Name string `cbor:"name"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]string{"greeting": "hello " + request.Name}, nil
	})
	startServer(t, server, socketPath)

	conn, err := Dial(context.Background(), socketPath, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	for _, name := range []string{"alpha", "beta", "gamma"} {
		var result struct {
			Greeting string `cbor:"greeting"`
		}
		if err := conn.Call(context.Background(), "greet", map[string]any{"name": name}, &result); err != nil {
			t.Fatalf("Call(%s): %v", name, err)
		}
		if result.Greeting != "hello "+name {
			t.Errorf("greeting = %q, want %q", result.Greeting, "hello "+name)
		}
	}
}

func TestConnCallServiceError(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testutil.Logger())
	server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
		return nil, errors.New("sensor offline")
	})
	startServer(t, server, socketPath)

	conn, err := Dial(context.Background(), socketPath, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	err = conn.Call(context.Background(), "fail", nil, nil)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("Call error = %v (%T), want *ServiceError", err, err)
	}
	if serviceErr.Action != "fail" || serviceErr.Message != "sensor offline" {
		t.Errorf("ServiceError = %+v", serviceErr)
	}
	if conn.Err() != nil {
		t.Errorf("a service error broke the connection: %v", conn.Err())
	}
}

func TestConnConcurrentCallsRouteByID(t *testing.T) {
	socketPath := testSocketPath(t)
	release := make(chan struct{})
	server := NewSocketServer(socketPath, testutil.Logger())
	server.Handle("slow", func(ctx context.Context, raw []byte) (any, error) {
		<-release
		return map[string]string{"which": "slow"}, nil
	})
	server.Handle("fast", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]string{"which": "fast"}, nil
	})
	startServer(t, server, socketPath)
	var releaseOnce sync.Once
	releaseSlow := func() { releaseOnce.Do(func() { close(release) }) }
	defer releaseSlow()

	conn, err := Dial(context.Background(), socketPath, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	slowResult := make(chan string, 1)
	go func() {
		var result struct {
			Which string `cbor:"which"`
		}
		if err := conn.Call(context.Background(), "slow", nil, &result); err != nil {
			slowResult <- "error: " + err.Error()
			return
		}
		slowResult <- result.Which
	}()

	// The fast call completes while the slow one is still pending on
	// the same connection.
	var result struct {
		Which string `cbor:"which"`
	}
	if err := conn.Call(context.Background(), "fast", nil, &result); err != nil {
		t.Fatalf("fast Call: %v", err)
	}
	if result.Which != "fast" {
		t.Errorf("fast call got %q", result.Which)
	}

	releaseSlow()
	if got := testutil.RequireReceive(t, slowResult, 5*time.Second, "slow call"); got != "slow" {
		t.Errorf("slow call got %q", got)
	}
}

func TestConnCallContextCancelled(t *testing.T) {
	socketPath := testSocketPath(t)
	release := make(chan struct{})
	server := NewSocketServer(socketPath, testutil.Logger())
	server.Handle("hang", func(ctx context.Context, raw []byte) (any, error) {
		<-release
		return nil, nil
	})
	server.Handle("ping", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })
	startServer(t, server, socketPath)
	defer close(release)

	conn, err := Dial(context.Background(), socketPath, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := conn.Call(ctx, "hang", nil, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Call error = %v, want DeadlineExceeded", err)
	}

	if err := conn.Call(context.Background(), "ping", nil, nil); err != nil {
		t.Errorf("connection unusable after a cancelled call: %v", err)
	}
}

func TestConnInvalidatedWhenServerCloses(t *testing.T) {
	socketPath := testSocketPath(t)
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	// A server that reads one request and hangs up without replying.
	go func() {
		serverConn, err := listener.Accept()
		if err != nil {
			return
		}
		var raw codec.RawMessage
		codec.NewDecoder(serverConn).Decode(&raw)
		serverConn.Close()
	}()

	var invalidations atomic.Int32
	invalidated := make(chan error, 4)
	conn, err := Dial(context.Background(), socketPath, func(cause error) {
		invalidations.Add(1)
		invalidated <- cause
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	err = conn.Call(context.Background(), "get-temperature", nil, nil)
	if !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("pending Call error = %v, want ErrConnectionClosed", err)
	}

	cause := testutil.RequireReceive(t, invalidated, 5*time.Second, "invalidation callback")
	if !errors.Is(cause, ErrConnectionClosed) {
		t.Errorf("invalidation cause = %v, want ErrConnectionClosed", cause)
	}
	testutil.RequireClosed(t, conn.Done(), 5*time.Second, "Done after invalidation")

	if err := conn.Call(context.Background(), "get-version", nil, nil); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("Call after invalidation = %v, want ErrConnectionClosed", err)
	}
	conn.Close()
	testutil.RequireNoReceive(t, invalidated, 50*time.Millisecond, "second invalidation")
	if got := invalidations.Load(); got != 1 {
		t.Errorf("invalidation fired %d times, want 1", got)
	}
}

func TestConnCloseFiresInvalidationOnce(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testutil.Logger())
	startServer(t, server, socketPath)

	var invalidations atomic.Int32
	conn, err := Dial(context.Background(), socketPath, func(error) { invalidations.Add(1) })
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()
	conn.Close()
	testutil.RequireClosed(t, conn.Done(), 5*time.Second, "Done after Close")

	if got := invalidations.Load(); got != 1 {
		t.Errorf("invalidation fired %d times, want 1", got)
	}
	if !errors.Is(conn.Err(), ErrConnectionClosed) {
		t.Errorf("Err() = %v, want ErrConnectionClosed", conn.Err())
	}
}

func TestConnServerShutdownInvalidates(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testutil.Logger())
	server.Handle("ping", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })
	stop := startServer(t, server, socketPath)

	invalidated := make(chan struct{})
	conn, err := Dial(context.Background(), socketPath, func(error) { close(invalidated) })
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := conn.Call(context.Background(), "ping", nil, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	stop()
	testutil.RequireClosed(t, invalidated, 5*time.Second, "invalidation after server shutdown")
}

func TestDialMissingSocket(t *testing.T) {
	if _, err := Dial(context.Background(), testSocketPath(t), nil); err == nil {
		t.Error("Dial succeeded without a server")
	}
}
