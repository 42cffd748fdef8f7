// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package smc

import (
	"encoding/binary"
	"fmt"
)

// KeyDataSize is the size of the controller's request/reply record,
// including the C compiler's alignment padding.
const KeyDataSize = 80

// Operation selectors carried in KeyData.Data8.
const (
	CommandReadKey    uint8 = 5
	CommandGetKeyInfo uint8 = 9
)

// SelectorHandleYieldKey is the IOKit struct method index for every
// controller operation.
const SelectorHandleYieldKey uint32 = 2

// ResultKeyNotFound is the reply result byte for an unknown key.
const ResultKeyNotFound uint8 = 0x84

// Version is the firmware version block of a KeyData record.
type Version struct {
	Major    uint8
	Minor    uint8
	Build    uint8
	Reserved uint8
	Release  uint16
}

// PowerLimits is the power-limit block of a KeyData record.
type PowerLimits struct {
	Version uint16
	Length  uint16
	CPU     uint32
	GPU     uint32
	Memory  uint32
}

// KeyInfo describes a key's value: its size in bytes and its type
// tag.
type KeyInfo struct {
	DataSize   uint32
	DataType   Key
	Attributes uint8
}

// KeyData is the 80-byte record exchanged with the controller. Every
// multi-byte field is little-endian at a fixed offset.
type KeyData struct {
	Key         Key
	Version     Version
	PowerLimits PowerLimits
	Info        KeyInfo
	Result      uint8
	Status      uint8
	Data8       uint8
	Data32      uint32
	Bytes       [32]byte
}

// Field offsets within the record.
const (
	offsetKey          = 0
	offsetVersionMajor = 4
	offsetVersionMinor = 5
	offsetVersionBuild = 6
	offsetVersionRsvd  = 7
	offsetRelease      = 8
	offsetLimitVersion = 12
	offsetLimitLength  = 14
	offsetLimitCPU     = 16
	offsetLimitGPU     = 20
	offsetLimitMemory  = 24
	offsetDataSize     = 28
	offsetDataType     = 32
	offsetAttributes   = 36
	offsetResult       = 40
	offsetStatus       = 41
	offsetData8        = 42
	offsetData32       = 44
	offsetBytes        = 48
)

// MarshalBinary encodes the record into its 80-byte wire form.
// Padding bytes are zero.
func (d *KeyData) MarshalBinary() ([]byte, error) {
	buffer := make([]byte, KeyDataSize)
	d.encode(buffer)
	return buffer, nil
}

func (d *KeyData) encode(buffer []byte) {
	clear(buffer)
	le := binary.LittleEndian
	le.PutUint32(buffer[offsetKey:], uint32(d.Key))
	buffer[offsetVersionMajor] = d.Version.Major
	buffer[offsetVersionMinor] = d.Version.Minor
	buffer[offsetVersionBuild] = d.Version.Build
	buffer[offsetVersionRsvd] = d.Version.Reserved
	le.PutUint16(buffer[offsetRelease:], d.Version.Release)
	le.PutUint16(buffer[offsetLimitVersion:], d.PowerLimits.Version)
	le.PutUint16(buffer[offsetLimitLength:], d.PowerLimits.Length)
	le.PutUint32(buffer[offsetLimitCPU:], d.PowerLimits.CPU)
	le.PutUint32(buffer[offsetLimitGPU:], d.PowerLimits.GPU)
	le.PutUint32(buffer[offsetLimitMemory:], d.PowerLimits.Memory)
	le.PutUint32(buffer[offsetDataSize:], d.Info.DataSize)
	le.PutUint32(buffer[offsetDataType:], uint32(d.Info.DataType))
	buffer[offsetAttributes] = d.Info.Attributes
	buffer[offsetResult] = d.Result
	buffer[offsetStatus] = d.Status
	buffer[offsetData8] = d.Data8
	le.PutUint32(buffer[offsetData32:], d.Data32)
	copy(buffer[offsetBytes:], d.Bytes[:])
}

// UnmarshalBinary decodes an 80-byte wire record.
func (d *KeyData) UnmarshalBinary(data []byte) error {
	if len(data) < KeyDataSize {
		return fmt.Errorf("smc: key data record is %d bytes, want %d", len(data), KeyDataSize)
	}
	le := binary.LittleEndian
	*d = KeyData{
		Key: Key(le.Uint32(data[offsetKey:])),
		Version: Version{
			Major:    data[offsetVersionMajor],
			Minor:    data[offsetVersionMinor],
			Build:    data[offsetVersionBuild],
			Reserved: data[offsetVersionRsvd],
			Release:  le.Uint16(data[offsetRelease:]),
		},
		PowerLimits: PowerLimits{
			Version: le.Uint16(data[offsetLimitVersion:]),
			Length:  le.Uint16(data[offsetLimitLength:]),
			CPU:     le.Uint32(data[offsetLimitCPU:]),
			GPU:     le.Uint32(data[offsetLimitGPU:]),
			Memory:  le.Uint32(data[offsetLimitMemory:]),
		},
		Info: KeyInfo{
			DataSize:   le.Uint32(data[offsetDataSize:]),
			DataType:   Key(le.Uint32(data[offsetDataType:])),
			Attributes: data[offsetAttributes],
		},
		Result: data[offsetResult],
		Status: data[offsetStatus],
		Data8:  data[offsetData8],
		Data32: le.Uint32(data[offsetData32:]),
	}
	copy(d.Bytes[:], data[offsetBytes:KeyDataSize])
	return nil
}
