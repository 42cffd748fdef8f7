// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds what the binaries share at their entrypoint:
// the fatal error handler, which is the one place that writes raw
// text to stderr, and the construction of the structured logger.
package process
