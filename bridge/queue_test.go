// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"testing"
)

func TestQueueFlushPreservesOrder(t *testing.T) {
	queue := &outboundQueue{}
	queue.enqueue([]byte("one"))
	queue.enqueue([]byte("two"))
	queue.enqueue([]byte("three"))

	var sent []string
	err := queue.flush(func(data []byte) error {
		sent = append(sent, string(data))
		return nil
	})
	if err != nil {
		t.Fatalf("flush: %v", err)
	}

	want := []string{"one", "two", "three"}
	if len(sent) != len(want) {
		t.Fatalf("sent %d messages, want %d", len(sent), len(want))
	}
	for i := range want {
		if sent[i] != want[i] {
			t.Errorf("sent[%d] = %q, want %q", i, sent[i], want[i])
		}
	}
	if queue.len() != 0 {
		t.Errorf("queue length = %d after flush, want 0", queue.len())
	}
}

func TestQueueFlushEmpty(t *testing.T) {
	queue := &outboundQueue{}
	err := queue.flush(func([]byte) error {
		t.Fatal("send called on an empty queue")
		return nil
	})
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestQueueFlushFailureRequeuesAtHead(t *testing.T) {
	queue := &outboundQueue{}
	queue.enqueue([]byte("one"))
	queue.enqueue([]byte("two"))
	queue.enqueue([]byte("three"))

	sendErr := errors.New("connection dropped")
	calls := 0
	err := queue.flush(func(data []byte) error {
		calls++
		if string(data) == "two" {
			// Simulate a concurrent arrival mid-flush.
			queue.enqueue([]byte("four"))
			return sendErr
		}
		return nil
	})
	if !errors.Is(err, sendErr) {
		t.Fatalf("flush error = %v, want %v", err, sendErr)
	}
	if calls != 2 {
		t.Fatalf("send called %d times, want 2 (stop at first failure)", calls)
	}

	// The failed entry and the unsent one go back at the head, ahead of
	// the concurrent arrival, so the next flush replays in order.
	var sent []string
	if err := queue.flush(func(data []byte) error {
		sent = append(sent, string(data))
		return nil
	}); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	want := []string{"two", "three", "four"}
	if len(sent) != len(want) {
		t.Fatalf("second flush sent %v, want %v", sent, want)
	}
	for i := range want {
		if sent[i] != want[i] {
			t.Errorf("sent[%d] = %q, want %q", i, sent[i], want[i])
		}
	}
}

func TestQueueConcurrentEnqueueDuringFlushDeferred(t *testing.T) {
	queue := &outboundQueue{}
	queue.enqueue([]byte("old"))

	var sent []string
	err := queue.flush(func(data []byte) error {
		sent = append(sent, string(data))
		queue.enqueue([]byte("new"))
		return nil
	})
	if err != nil {
		t.Fatalf("flush: %v", err)
	}

	if len(sent) != 1 || sent[0] != "old" {
		t.Fatalf("flush sent %v, want only the pre-flush entry", sent)
	}
	if queue.len() != 1 {
		t.Errorf("queue length = %d, want the deferred entry", queue.len())
	}
}
