// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package smc

import "fmt"

// Key is a four-character controller code packed big-endian into 32
// bits: "TC0P" is 0x54433050. Type tags ("flt ", "sp78") use the same
// encoding.
type Key uint32

// ParseKey packs a four-character code. Every character must be
// printable ASCII.
func ParseKey(code string) (Key, error) {
	if len(code) != 4 {
		return 0, fmt.Errorf("smc: key %q is not four characters", code)
	}
	var key Key
	for i := 0; i < 4; i++ {
		character := code[i]
		if character < 0x20 || character > 0x7e {
			return 0, fmt.Errorf("smc: key %q contains non-printable byte 0x%02x", code, character)
		}
		key = key<<8 | Key(character)
	}
	return key, nil
}

// MustParseKey is ParseKey for compile-time constants. It panics on
// a malformed code.
func MustParseKey(code string) Key {
	key, err := ParseKey(code)
	if err != nil {
		panic(err)
	}
	return key
}

// String returns the four-character form. Non-printable bytes are
// shown as '?'.
func (k Key) String() string {
	var buffer [4]byte
	for i := range buffer {
		character := byte(k >> (24 - 8*i))
		if character < 0x20 || character > 0x7e {
			character = '?'
		}
		buffer[i] = character
	}
	return string(buffer[:])
}

// Type tags reported by key-info lookups.
var (
	TypeFlt  = MustParseKey("flt ")
	TypeSP78 = MustParseKey("sp78")
	TypeFPE2 = MustParseKey("fpe2")
	TypeUI8  = MustParseKey("ui8 ")
	TypeUI16 = MustParseKey("ui16")
)
