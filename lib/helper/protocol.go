// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package helper

// ServiceName identifies the helper to the platform service manager.
// It names the systemd unit and the launchd job.
const ServiceName = "com.example.SysStatsHelper"

// DefaultSocketPath is where the helper listens.
const DefaultSocketPath = "/var/run/" + ServiceName + ".sock"

// Version is the helper protocol version. The main process refuses a
// helper that reports anything else and asks for a reinstall.
const Version = "1.0.1"

// Actions served by the helper.
const (
	ActionGetTemperature  = "get-temperature"
	ActionGetVersion      = "get-version"
	ActionGetPlatformInfo = "get-platform-info"
)

// TemperatureReply answers get-temperature. Celsius is 0 when no
// sensor produced a plausible reading.
type TemperatureReply struct {
	Celsius float64 `cbor:"celsius"`
}

// VersionReply answers get-version.
type VersionReply struct {
	Version string `cbor:"version"`
}

// PlatformReply answers get-platform-info with the architecture
// family label ("apple-silicon", "intel", "unknown").
type PlatformReply struct {
	Platform string `cbor:"platform"`
}
