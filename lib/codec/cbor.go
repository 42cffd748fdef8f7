// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so a request
// always has the same bytes regardless of map iteration order.
var encMode cbor.EncMode

// decMode ignores unknown fields, which lets a newer helper add reply
// fields without breaking an older main process.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Requests are decoded into map[string]any while routing. The
		// CBOR default of map[interface{}]interface{} is awkward for
		// every consumer and the protocol never uses non-string keys.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// A single request or reply never needs more than a handful of
		// fields; bound what a misbehaving peer can make us allocate.
		MaxMapPairs:      1024,
		MaxArrayElements: 1024,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder is a CBOR stream encoder.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder.
type Decoder = cbor.Decoder

// RawMessage is an undecoded CBOR value, used to defer decoding of a
// request body until its action is known.
type RawMessage = cbor.RawMessage

// NewEncoder returns a stream encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a stream decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// Diagnose returns the RFC 8949 diagnostic notation for data. Used in
// debug logging of malformed requests.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
