// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/devicelink/devicelink/lib/clock"
)

// settlement is the single outcome of one pending request: either a
// successful response or a rejection error, never both.
type settlement struct {
	response *Response
	err      error
}

// pendingRequest is one outstanding request awaiting its response.
// Owned exclusively by the pending table; destroyed exactly once — on
// matching response, timeout, cancellation, or table teardown.
type pendingRequest struct {
	correlationID string
	outcome       chan settlement // capacity 1; written once
	timer         *clock.Timer
	createdAt     time.Time
}

// pendingTable maps correlation IDs to waiting callers. All access is
// serialized through one mutex; entries are removed from the map
// before their outcome is delivered, so a request settles exactly
// once no matter how settle, timeout, and teardown race.
type pendingTable struct {
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*pendingRequest
}

func newPendingTable(clk clock.Clock, logger *slog.Logger) *pendingTable {
	return &pendingTable{
		clock:   clk,
		logger:  logger,
		entries: make(map[string]*pendingRequest),
	}
}

// register stores a new entry and starts its timeout timer. Returns
// the channel the caller blocks on. Registering a correlation ID that
// is already in flight is a caller error.
func (t *pendingTable) register(correlationID string, timeout time.Duration) (<-chan settlement, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("bridge: request timeout must be positive, got %v", timeout)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[correlationID]; exists {
		return nil, fmt.Errorf("bridge: correlation ID %s is already in flight", correlationID)
	}

	entry := &pendingRequest{
		correlationID: correlationID,
		outcome:       make(chan settlement, 1),
		createdAt:     t.clock.Now(),
	}
	// Timer creation happens under the table lock so that a firing
	// timer (which calls reject, which locks) always observes the
	// fully registered entry. AfterFunc with a positive duration never
	// runs its callback synchronously.
	entry.timer = t.clock.AfterFunc(timeout, func() {
		t.reject(correlationID, &TimeoutError{
			Op:            "request",
			CorrelationID: correlationID,
			Timeout:       timeout,
		})
	})
	t.entries[correlationID] = entry
	return entry.outcome, nil
}

// settle routes a response to its waiting caller. A successful
// response resolves the caller; a failed one rejects it with a
// ProtocolError carrying the remote error string. Responses with no
// matching entry (late after timeout, or duplicate) are discarded.
func (t *pendingTable) settle(response *Response) {
	entry := t.take(response.CorrelationID)
	if entry == nil {
		t.logger.Debug("discarding response with no pending request",
			"correlation_id", response.CorrelationID,
		)
		return
	}
	if response.Success {
		entry.outcome <- settlement{response: response}
		return
	}
	entry.outcome <- settlement{err: &ProtocolError{
		CorrelationID: response.CorrelationID,
		Message:       response.Error,
	}}
}

// reject settles one entry with an error. No-op if the entry already
// settled.
func (t *pendingTable) reject(correlationID string, err error) {
	entry := t.take(correlationID)
	if entry == nil {
		return
	}
	entry.outcome <- settlement{err: err}
}

// cancel removes an entry without delivering an outcome — the caller
// has stopped waiting (context cancellation). Reports whether the
// entry was still pending.
func (t *pendingTable) cancel(correlationID string) bool {
	return t.take(correlationID) != nil
}

// teardownAll rejects every outstanding entry with err. Used on
// Disconnect.
func (t *pendingTable) teardownAll(err error) {
	t.mu.Lock()
	entries := t.entries
	t.entries = make(map[string]*pendingRequest)
	t.mu.Unlock()

	for _, entry := range entries {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		entry.outcome <- settlement{err: err}
	}
}

// len returns the number of outstanding requests.
func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// take removes and returns the entry for correlationID, stopping its
// timer. Returns nil if no entry is pending under that ID.
func (t *pendingTable) take(correlationID string) *pendingRequest {
	t.mu.Lock()
	entry, ok := t.entries[correlationID]
	if ok {
		delete(t.entries, correlationID)
	}
	t.mu.Unlock()

	if !ok {
		return nil
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
	return entry
}
