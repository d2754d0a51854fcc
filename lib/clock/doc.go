// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for the bridge client's timers.
//
// The client's behavior is dominated by time: per-request timeouts,
// connect-attempt timeouts, and reconnection backoff delays. Production
// code injects Real(); tests inject Fake() and advance time explicitly,
// making every timing-dependent code path deterministic.
package clock
