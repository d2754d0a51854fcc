// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"fmt"
	"time"
)

// ConnectionError reports a transport that failed to open or closed
// unexpectedly. It is delivered to error subscribers rather than to
// any single caller, except when it rejects pending requests during
// an explicit Disconnect.
type ConnectionError struct {
	// Op describes what happened: "dial failed", "lost", "closed".
	Op string
	// Err is the underlying transport error, if any.
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("bridge: connection %s", e.Op)
	}
	return fmt.Sprintf("bridge: connection %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError reports an elapsed connect-attempt or per-request
// timeout. It is delivered as the rejection of the one call that
// timed out; the connection and other in-flight calls are unaffected.
// No cancellation is sent to the remote side, so server-side work the
// request triggered may continue after the local rejection.
type TimeoutError struct {
	// Op names what timed out: "connect" or "request".
	Op string
	// CorrelationID identifies the request, when Op is "request".
	CorrelationID string
	// Timeout is the configured window that elapsed.
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.CorrelationID != "" {
		return fmt.Sprintf("bridge: %s %s timed out after %v", e.Op, e.CorrelationID, e.Timeout)
	}
	return fmt.Sprintf("bridge: %s timed out after %v", e.Op, e.Timeout)
}

// ProtocolError reports a response received with success=false. It
// carries the remote error string verbatim.
type ProtocolError struct {
	CorrelationID string
	Message       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("bridge: remote error for %s: %s", e.CorrelationID, e.Message)
}

// ExhaustedRetriesError reports that reconnection attempts exceeded
// the configured cap. Delivered exactly once per exhaustion to error
// subscribers; no further automatic reconnection happens until the
// next explicit Connect.
type ExhaustedRetriesError struct {
	Attempts int
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("bridge: gave up reconnecting after %d attempts", e.Attempts)
}
