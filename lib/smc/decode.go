// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package smc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownType is returned by Decode for a type tag it has no
	// rule for.
	ErrUnknownType = errors.New("smc: unknown value type")

	// ErrShortValue is returned by Decode when fewer bytes arrived
	// than the type needs.
	ErrShortValue = errors.New("smc: value shorter than its type")
)

// Temperature plausibility bounds in degrees Celsius, both exclusive.
const (
	MinPlausibleCelsius = 10.0
	MaxPlausibleCelsius = 120.0
)

// fltSwapLimit is the range outside which a little-endian flt is
// assumed to be byte-swapped firmware output.
const fltSwapLimit = 150.0

// Plausible reports whether celsius is a believable component
// temperature. Readings at or below 10 °C are unpowered or absent
// sensors; 120 °C and above are garbage.
func Plausible(celsius float64) bool {
	return celsius > MinPlausibleCelsius && celsius < MaxPlausibleCelsius
}

// Decode interprets raw value bytes according to their type tag.
//
//	flt   IEEE 754 float32, little-endian; retried big-endian when the
//	      little-endian value is outside [0,150]
//	sp78  signed 16-bit big-endian, 8 fractional bits
//	fpe2  unsigned 16-bit big-endian, 2 fractional bits
//	ui8   unsigned byte
//	ui16  unsigned 16-bit big-endian
func Decode(dataType Key, data []byte) (float64, error) {
	need := 0
	switch dataType {
	case TypeFlt:
		need = 4
	case TypeSP78, TypeFPE2, TypeUI16:
		need = 2
	case TypeUI8:
		need = 1
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownType, dataType)
	}
	if len(data) < need {
		return 0, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortValue, dataType, need, len(data))
	}

	switch dataType {
	case TypeFlt:
		value := float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
		if value < 0 || value > fltSwapLimit {
			value = float64(math.Float32frombits(binary.BigEndian.Uint32(data)))
		}
		return value, nil
	case TypeSP78:
		return float64(int16(binary.BigEndian.Uint16(data))) / 256, nil
	case TypeFPE2:
		return float64(binary.BigEndian.Uint16(data)) / 4, nil
	case TypeUI16:
		return float64(binary.BigEndian.Uint16(data)), nil
	default:
		return float64(data[0]), nil
	}
}
