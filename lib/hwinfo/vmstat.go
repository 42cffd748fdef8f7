// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import "encoding/binary"

// vmStatistics64Size is sizeof(struct vm_statistics64), i.e.
// HOST_VM_INFO64_COUNT natural_t words.
const vmStatistics64Size = 152

// Field offsets in struct vm_statistics64.
const (
	vmActiveCountOffset     = 4
	vmWireCountOffset       = 12
	vmCompressorCountOffset = 128
)

// parseVMStatistics64 extracts the active, wired and compressor page
// counts from a host_statistics64(HOST_VM_INFO64) buffer. Short
// buffers yield zeros.
func parseVMStatistics64(buffer []byte) (active, wired, compressed uint64) {
	if len(buffer) < vmStatistics64Size {
		return 0, 0, 0
	}
	active = uint64(binary.LittleEndian.Uint32(buffer[vmActiveCountOffset:]))
	wired = uint64(binary.LittleEndian.Uint32(buffer[vmWireCountOffset:]))
	compressed = uint64(binary.LittleEndian.Uint32(buffer[vmCompressorCountOffset:]))
	return active, wired, compressed
}
