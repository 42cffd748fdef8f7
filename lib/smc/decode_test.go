// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package smc

import (
	"errors"
	"math"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		dataType Key
		data     []byte
		expected float64
	}{
		{name: "flt little-endian", dataType: TypeFlt, data: []byte{0x00, 0x00, 0x80, 0x41}, expected: 16.0},
		{name: "flt byte-swapped firmware", dataType: TypeFlt, data: []byte{0x42, 0x34, 0x00, 0xc0}, expected: 45.000732421875},
		{name: "flt negative retried big-endian", dataType: TypeFlt, data: []byte{0x41, 0xc8, 0x00, 0x80}, expected: 25.000244140625},
		{name: "sp78 small", dataType: TypeSP78, data: []byte{0x00, 0x37}, expected: 0.21484375},
		{name: "sp78 whole", dataType: TypeSP78, data: []byte{0x37, 0x00}, expected: 55.0},
		{name: "sp78 negative", dataType: TypeSP78, data: []byte{0xff, 0x00}, expected: -1.0},
		{name: "fpe2", dataType: TypeFPE2, data: []byte{0x00, 0xc8}, expected: 50.0},
		{name: "ui8", dataType: TypeUI8, data: []byte{42}, expected: 42},
		{name: "ui16 big-endian", dataType: TypeUI16, data: []byte{0x01, 0x02}, expected: 258},
		{name: "extra bytes ignored", dataType: TypeSP78, data: []byte{0x37, 0x80, 0xff, 0xff}, expected: 55.5},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Decode(test.dataType, test.data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if math.Abs(got-test.expected) > 1e-9 {
				t.Errorf("Decode = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestDecodeSwapOnlyForFlt(t *testing.T) {
	// 0xff 0x00 as sp78 is -1.0; no byte-swap retry applies even
	// though the value is out of range.
	got, err := Decode(TypeSP78, []byte{0xff, 0x00})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != -1.0 {
		t.Errorf("Decode = %v, want -1.0", got)
	}
}

func TestDecodeFltNaNNotRetried(t *testing.T) {
	// A little-endian NaN is neither below 0 nor above 150, so it is
	// returned as is and rejected later by Plausible.
	got, err := Decode(TypeFlt, []byte{0x00, 0x00, 0xc0, 0x7f})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("Decode = %v, want NaN", got)
	}
	if Plausible(got) {
		t.Error("NaN reported as plausible")
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name     string
		dataType Key
		data     []byte
		expected error
	}{
		{name: "unknown type", dataType: MustParseKey("ch8*"), data: []byte("abcd"), expected: ErrUnknownType},
		{name: "short flt", dataType: TypeFlt, data: []byte{0, 0, 0x80}, expected: ErrShortValue},
		{name: "short sp78", dataType: TypeSP78, data: []byte{0x37}, expected: ErrShortValue},
		{name: "empty ui8", dataType: TypeUI8, data: nil, expected: ErrShortValue},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(test.dataType, test.data)
			if !errors.Is(err, test.expected) {
				t.Errorf("Decode error = %v, want %v", err, test.expected)
			}
		})
	}
}

func TestPlausible(t *testing.T) {
	tests := []struct {
		celsius  float64
		expected bool
	}{
		{celsius: 0, expected: false},
		{celsius: 0.21484375, expected: false},
		{celsius: 10, expected: false},
		{celsius: 10.01, expected: true},
		{celsius: 55, expected: true},
		{celsius: 119.9, expected: true},
		{celsius: 120, expected: false},
		{celsius: 150, expected: false},
	}
	for _, test := range tests {
		if got := Plausible(test.celsius); got != test.expected {
			t.Errorf("Plausible(%v) = %v, want %v", test.celsius, got, test.expected)
		}
	}
}
