// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build information for the sysstats
// binaries. The variables are injected at link time:
//
//	go build -ldflags "-X github.com/sysstats/sysstats/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// This is the release version of the binaries. The helper wire
// protocol has its own version, [github.com/sysstats/sysstats/lib/helper.Version],
// which only changes when the protocol does.
package version
