// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"encoding/binary"
	"testing"
)

func TestParseVMStatistics64(t *testing.T) {
	buffer := make([]byte, vmStatistics64Size)
	binary.LittleEndian.PutUint32(buffer[0:], 999) // free_count, ignored
	binary.LittleEndian.PutUint32(buffer[vmActiveCountOffset:], 120000)
	binary.LittleEndian.PutUint32(buffer[vmWireCountOffset:], 80000)
	binary.LittleEndian.PutUint32(buffer[vmCompressorCountOffset:], 30000)

	active, wired, compressed := parseVMStatistics64(buffer)
	if active != 120000 || wired != 80000 || compressed != 30000 {
		t.Errorf("parseVMStatistics64 = (%d, %d, %d), want (120000, 80000, 30000)",
			active, wired, compressed)
	}
}

func TestParseVMStatistics64ShortBuffer(t *testing.T) {
	active, wired, compressed := parseVMStatistics64(make([]byte, 16))
	if active != 0 || wired != 0 || compressed != 0 {
		t.Errorf("parseVMStatistics64(short) = (%d, %d, %d), want zeros", active, wired, compressed)
	}
}
