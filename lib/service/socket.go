// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/sysstats/sysstats/lib/codec"
)

// ActionFunc processes one request. raw is the full CBOR request,
// including the "id" and "action" fields; the handler decodes its own
// fields from it.
//
// A nil result produces {ok: true}. A non-nil result is marshaled
// into the response's "data" field. An error produces {ok: false}
// with the error text.
type ActionFunc func(ctx context.Context, raw []byte) (any, error)

// Response is the wire envelope for every response.
type Response struct {
	ID    uint64           `cbor:"id"`
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

// requestHeader is the routing part of every request.
type requestHeader struct {
	ID     uint64 `cbor:"id"`
	Action string `cbor:"action"`
}

// idleTimeout closes a connection that has sent nothing for this
// long. The client notices through its invalidation callback and
// redials on its next call.
const idleTimeout = 10 * time.Minute

// writeTimeout bounds writing one response.
const writeTimeout = 10 * time.Second

// SocketServer serves the protocol on a Unix socket. Register actions
// with Handle before calling Serve; unknown actions receive an error
// response.
type SocketServer struct {
	socketPath string
	socketMode os.FileMode
	handlers   map[string]ActionFunc
	logger     *slog.Logger

	// activeConnections lets Serve wait for connection goroutines and
	// their in-flight handlers before returning.
	activeConnections sync.WaitGroup
}

// NewSocketServer creates a server that will listen on socketPath.
func NewSocketServer(socketPath string, logger *slog.Logger) *SocketServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SocketServer{
		socketPath: socketPath,
		handlers:   make(map[string]ActionFunc),
		logger:     logger,
	}
}

// SetSocketMode sets the permission bits applied to the socket file
// after it is created. Zero leaves the umask-derived mode. The helper
// runs as root and uses 0666 so unprivileged clients can connect.
func (s *SocketServer) SetSocketMode(mode os.FileMode) {
	s.socketMode = mode
}

// Handle registers a handler for action. It panics on a duplicate
// registration.
func (s *SocketServer) Handle(action string, handler ActionFunc) {
	if _, exists := s.handlers[action]; exists {
		panic(fmt.Sprintf("service.SocketServer: duplicate handler for action %q", action))
	}
	s.handlers[action] = handler
}

// Serve accepts connections until ctx is cancelled, then closes the
// listener and every open connection and waits for in-flight handlers.
// A stale socket file at the path is removed first, and the socket
// file is removed on return.
func (s *SocketServer) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	if s.socketMode != 0 {
		if err := os.Chmod(s.socketPath, s.socketMode); err != nil {
			return fmt.Errorf("setting mode on %s: %w", s.socketPath, err)
		}
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("socket server listening", "path", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// handleConnection reads requests until the peer disconnects, the
// connection idles out, or ctx is cancelled.
func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	var handlers sync.WaitGroup
	defer func() {
		handlers.Wait()
		conn.Close()
	}()

	// Unblock the decoder on shutdown.
	connectionDone := make(chan struct{})
	defer close(connectionDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.SetReadDeadline(time.Now())
		case <-connectionDone:
		}
	}()

	var writeMu sync.Mutex
	write := func(response Response) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := codec.NewEncoder(conn).Encode(response); err != nil {
			s.logger.Debug("failed to write response", "id", response.ID, "error", err)
		}
	}

	decoder := codec.NewDecoder(conn)
	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))

		var raw codec.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Debug("closing idle connection")
				return
			}
			// The stream cannot be resynchronized after a malformed
			// value. Report and drop the connection.
			write(Response{Error: fmt.Sprintf("invalid request: %v", err)})
			return
		}

		var header requestHeader
		if err := codec.Unmarshal(raw, &header); err != nil {
			s.logMalformed(raw, err.Error())
			write(Response{Error: fmt.Sprintf("invalid request: %v", err)})
			continue
		}
		if header.Action == "" {
			s.logMalformed(raw, "missing action")
			write(Response{ID: header.ID, Error: "missing required field: action"})
			continue
		}
		handler, exists := s.handlers[header.Action]
		if !exists {
			write(Response{ID: header.ID, Error: fmt.Sprintf("unknown action %q", header.Action)})
			continue
		}

		handlers.Add(1)
		go func() {
			defer handlers.Done()
			write(s.dispatch(ctx, header, handler, raw))
		}()
	}
}

// dispatch runs a handler and wraps its outcome in a Response.
func (s *SocketServer) dispatch(ctx context.Context, header requestHeader, handler ActionFunc, raw codec.RawMessage) Response {
	result, err := handler(ctx, []byte(raw))
	if err != nil {
		s.logger.Debug("action failed", "action", header.Action, "error", err)
		return Response{ID: header.ID, Error: err.Error()}
	}

	response := Response{ID: header.ID, OK: true}
	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			return Response{ID: header.ID, Error: fmt.Sprintf("internal: marshaling response: %v", err)}
		}
		response.Data = data
	}
	return response
}

// logMalformed logs a request that decoded as CBOR but is not a valid
// envelope, in diagnostic notation.
func (s *SocketServer) logMalformed(raw codec.RawMessage, reason string) {
	if !s.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	notation, err := codec.Diagnose(raw)
	if err != nil {
		notation = fmt.Sprintf("%x", []byte(raw))
	}
	s.logger.Debug("malformed request", "reason", reason, "request", notation)
}
