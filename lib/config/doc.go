// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration shared by sysstats and
// its helper.
//
// The file is named by a --config flag or the SYSSTATS_CONFIG
// environment variable, in that order. With neither, [Default] is
// used unchanged; there is no search path. Keys absent from the file
// keep their defaults, and unknown keys are an error.
//
// Path fields go through ${VAR} and ${VAR:-default} expansion after
// loading. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] with the sampling interval, log level, and [HelperConfig]
//   - [Default] and [Load]/[LoadFile]
//   - [Config.Validate], which reports every problem at once
package config
