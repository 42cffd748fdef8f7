// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package service carries a CBOR request/response protocol over
// persistent Unix socket connections. The privileged helper serves it
// and the main process dials it.
//
// Every request is a CBOR map with an "id" and an "action" plus any
// action-specific fields. Every response echoes the id:
//
//	request:  {id: 7, action: "get-temperature"}
//	response: {id: 7, ok: true, data: {celsius: 52.5}}
//	response: {id: 8, ok: false, error: "unknown action \"bogus\""}
//
// A connection stays open across calls. [Conn] writes requests from
// any goroutine and a single reader goroutine routes each response to
// the waiting call by id, so calls may overlap. When the connection
// breaks, every pending call fails with [ErrConnectionClosed] and the
// invalidation callback passed to [Dial] fires exactly once. A broken
// Conn is never reused; the owner dials a new one.
//
// [SocketServer] dispatches requests to registered [ActionFunc]
// handlers. Handlers for one connection run concurrently and their
// responses are written whole, in completion order.
package service
