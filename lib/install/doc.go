// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// Package install registers the privileged helper with the platform
// service manager.
//
// Installation has two halves. The unprivileged [Installer] in the
// main process escalates (pkexec on Linux, an osascript
// administrator prompt on macOS) and runs the bundled helper with
// --install. That privileged process calls [Apply], which copies the
// helper into the install directory, writes the service definition
// (a systemd unit or a launchd plist) and activates it.
//
// [Installer.Status] inspects the installed files without privilege.
// A helper whose BLAKE3 digest differs from the bundled binary is
// [StatusStale].
package install
