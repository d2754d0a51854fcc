// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"math"
	"time"
)

// Backoff defaults. One second doubling to a thirty-second ceiling
// rides out brief server restarts without hammering a recovering
// endpoint.
const (
	DefaultInitialBackoff    = 1000 * time.Millisecond
	DefaultBackoffMultiplier = 2.0
	DefaultMaxBackoff        = 30000 * time.Millisecond
)

// BackoffPolicy computes reconnection delays. The zero value is
// replaced with the defaults at client construction.
type BackoffPolicy struct {
	// Initial is the delay before the first retry.
	Initial time.Duration
	// Multiplier scales the delay on each successive attempt.
	Multiplier float64
	// Max caps the delay.
	Max time.Duration
}

// withDefaults fills zero fields with the package defaults.
func (p BackoffPolicy) withDefaults() BackoffPolicy {
	if p.Initial <= 0 {
		p.Initial = DefaultInitialBackoff
	}
	if p.Multiplier <= 0 {
		p.Multiplier = DefaultBackoffMultiplier
	}
	if p.Max <= 0 {
		p.Max = DefaultMaxBackoff
	}
	return p
}

// Delay returns the wait before retry number attempt (zero-based):
// min(Initial * Multiplier^attempt, Max). The sequence is
// non-decreasing and bounded; with defaults it runs 1s, 2s, 4s, 8s,
// 16s, then 30s.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	scaled := float64(p.Initial) * math.Pow(p.Multiplier, float64(attempt))
	if scaled >= float64(p.Max) || math.IsInf(scaled, 1) {
		return p.Max
	}
	return time.Duration(scaled)
}
