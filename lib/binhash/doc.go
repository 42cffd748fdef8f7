// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes BLAKE3 content digests of binaries.
//
// The installer compares the digest of the helper binary shipped with
// the main process against the copy installed in the privileged
// directory. A mismatch means the installed helper is stale and must
// be reinstalled before its version handshake can succeed.
//
//   - [HashFile] streams a file through keyed BLAKE3
//   - [FilesMatch] compares two files by digest
//   - [FormatDigest] and [ParseDigest] convert to and from hex
package binhash
