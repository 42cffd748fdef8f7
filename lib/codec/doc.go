// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by the helper
// protocol. The main process and the privileged helper both encode
// through this package so the two sides of the socket always agree on
// map key ordering, integer widths and how untyped maps decode.
//
// Stream use, one value per request or response:
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Buffer use, for re-decoding a routed request into an action-specific
// type:
//
//	err := codec.Unmarshal(raw, &request)
//
// Wire types carry `cbor` struct tags. They are never marshaled as
// JSON.
package codec
