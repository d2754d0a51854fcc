// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "testing"

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"terminal", "permission", "device"} {
		kind, err := ParseKind(valid)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", valid, err)
		}
		if string(kind) != valid {
			t.Errorf("ParseKind(%q) = %q", valid, kind)
		}
	}

	for _, invalid := range []string{"", "Terminal", "terminal ", "shell"} {
		if _, err := ParseKind(invalid); err == nil {
			t.Errorf("ParseKind(%q) accepted an unrecognized kind", invalid)
		}
	}
}

func TestNewCorrelationID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewCorrelationID()
		if len(id) != 32 {
			t.Fatalf("correlation ID %q has length %d, want 32 hex chars", id, len(id))
		}
		if seen[id] {
			t.Fatalf("correlation ID %q repeated", id)
		}
		seen[id] = true
	}
}
