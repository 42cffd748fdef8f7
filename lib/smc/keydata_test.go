// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package smc

import (
	"encoding/binary"
	"testing"
)

func TestKeyDataLayout(t *testing.T) {
	record := KeyData{
		Key:         MustParseKey("TC0P"),
		Version:     Version{Major: 1, Minor: 2, Build: 3, Reserved: 4, Release: 0x0506},
		PowerLimits: PowerLimits{Version: 0x0708, Length: 0x090a, CPU: 11, GPU: 12, Memory: 13},
		Info:        KeyInfo{DataSize: 2, DataType: TypeSP78, Attributes: 0x80},
		Result:      0x84,
		Status:      0x01,
		Data8:       CommandReadKey,
		Data32:      0xdeadbeef,
	}
	record.Bytes[0] = 0x37
	record.Bytes[31] = 0xff

	buffer, err := record.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(buffer) != KeyDataSize {
		t.Fatalf("len = %d, want %d", len(buffer), KeyDataSize)
	}

	le := binary.LittleEndian
	checks := []struct {
		name     string
		got      uint64
		expected uint64
	}{
		{"key", uint64(le.Uint32(buffer[0:])), 0x54433050},
		{"major", uint64(buffer[4]), 1},
		{"reserved", uint64(buffer[7]), 4},
		{"release", uint64(le.Uint16(buffer[8:])), 0x0506},
		{"limit version", uint64(le.Uint16(buffer[12:])), 0x0708},
		{"limit length", uint64(le.Uint16(buffer[14:])), 0x090a},
		{"cpu limit", uint64(le.Uint32(buffer[16:])), 11},
		{"gpu limit", uint64(le.Uint32(buffer[20:])), 12},
		{"mem limit", uint64(le.Uint32(buffer[24:])), 13},
		{"data size", uint64(le.Uint32(buffer[28:])), 2},
		{"data type", uint64(le.Uint32(buffer[32:])), uint64(TypeSP78)},
		{"attributes", uint64(buffer[36]), 0x80},
		{"result", uint64(buffer[40]), 0x84},
		{"status", uint64(buffer[41]), 0x01},
		{"data8", uint64(buffer[42]), 5},
		{"data32", uint64(le.Uint32(buffer[44:])), 0xdeadbeef},
		{"bytes[0]", uint64(buffer[48]), 0x37},
		{"bytes[31]", uint64(buffer[79]), 0xff},
		{"padding after release", uint64(le.Uint16(buffer[10:])), 0},
		{"padding after attributes", uint64(buffer[37]) | uint64(buffer[38]) | uint64(buffer[39]), 0},
		{"padding after data8", uint64(buffer[43]), 0},
	}
	for _, check := range checks {
		if check.got != check.expected {
			t.Errorf("%s = 0x%x, want 0x%x", check.name, check.got, check.expected)
		}
	}

	var decoded KeyData
	if err := decoded.UnmarshalBinary(buffer); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if decoded != record {
		t.Errorf("decoded record differs:\n got %+v\nwant %+v", decoded, record)
	}
}

func TestKeyDataUnmarshalShort(t *testing.T) {
	var record KeyData
	if err := record.UnmarshalBinary(make([]byte, KeyDataSize-1)); err == nil {
		t.Error("UnmarshalBinary accepted a short record")
	}
}
