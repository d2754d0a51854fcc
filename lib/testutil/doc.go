// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared helpers for devicelink tests:
// channel receive/close assertions with timeout safety valves and
// unique identifier generation.
package testutil
