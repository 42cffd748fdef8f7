// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides helpers shared by package tests: bounded
// channel receives so a broken test fails instead of hanging, and
// short socket directories for unix socket tests.
package testutil
