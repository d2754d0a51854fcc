// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build version of devicelink binaries.
package version

// version is overridden at build time via
// -ldflags "-X github.com/devicelink/devicelink/lib/version.version=v1.2.3".
var version = "dev"

// Info returns the version string embedded at build time.
func Info() string { return version }
