// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"testing"
	"time"
)

func TestBackoffDefaultSequence(t *testing.T) {
	policy := BackoffPolicy{}.withDefaults()

	want := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		16000 * time.Millisecond,
		30000 * time.Millisecond, // capped, not 32000
		30000 * time.Millisecond,
	}
	for attempt, expected := range want {
		if got := policy.Delay(attempt); got != expected {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestBackoffDelaysNonDecreasing(t *testing.T) {
	policy := BackoffPolicy{}.withDefaults()

	previous := time.Duration(0)
	for attempt := 0; attempt < 50; attempt++ {
		delay := policy.Delay(attempt)
		if delay < previous {
			t.Fatalf("Delay(%d) = %v decreased below %v", attempt, delay, previous)
		}
		if delay > DefaultMaxBackoff {
			t.Fatalf("Delay(%d) = %v exceeds cap %v", attempt, delay, DefaultMaxBackoff)
		}
		previous = delay
	}
}

func TestBackoffCustomPolicy(t *testing.T) {
	policy := BackoffPolicy{
		Initial:    50 * time.Millisecond,
		Multiplier: 3,
		Max:        200 * time.Millisecond,
	}.withDefaults()

	if got := policy.Delay(0); got != 50*time.Millisecond {
		t.Errorf("Delay(0) = %v, want 50ms", got)
	}
	if got := policy.Delay(1); got != 150*time.Millisecond {
		t.Errorf("Delay(1) = %v, want 150ms", got)
	}
	if got := policy.Delay(2); got != 200*time.Millisecond {
		t.Errorf("Delay(2) = %v, want the 200ms cap", got)
	}
}

func TestBackoffNegativeAttemptClamps(t *testing.T) {
	policy := BackoffPolicy{}.withDefaults()
	if got := policy.Delay(-3); got != DefaultInitialBackoff {
		t.Errorf("Delay(-3) = %v, want %v", got, DefaultInitialBackoff)
	}
}
