// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/devicelink/devicelink/lib/clock"
	"github.com/devicelink/devicelink/lib/codec"
	"github.com/devicelink/devicelink/transport"
)

// Connection lifecycle defaults.
const (
	DefaultConnectTimeout       = 10 * time.Second
	DefaultRequestTimeout       = 30 * time.Second
	DefaultMaxReconnectAttempts = 5
)

// State is the connection lifecycle state.
type State int

const (
	// StateDisconnected means no connection exists and none is being
	// attempted. The initial state, and the state after Disconnect.
	StateDisconnected State = iota

	// StateConnecting means a dial attempt is in flight.
	StateConnecting

	// StateConnected means the connection is open and usable.
	StateConnected

	// StateReconnecting means the connection dropped and a retry is
	// scheduled after a backoff delay.
	StateReconnecting

	// StateFailed means reconnection attempts exceeded the cap. The
	// client stays failed until the next explicit Connect.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Client. The zero value of every field has a
// usable default except Endpoint, which is required unless a custom
// Dialer is supplied.
type Options struct {
	// Endpoint addresses the bridge server.
	Endpoint transport.Endpoint

	// Dialer opens connections. Nil means a WebSocket dialer for
	// Endpoint with frame type matching the codec.
	Dialer transport.Dialer

	// Codec serializes envelopes. Nil means JSON.
	Codec codec.Codec

	// AuthToken, when non-empty, is sent as a bearer token on the
	// connection handshake (default dialer only).
	AuthToken string

	// Logger receives structured log output. Nil means slog.Default().
	Logger *slog.Logger

	// Clock abstracts timers for tests. Nil means the real clock.
	Clock clock.Clock

	// ConnectTimeout bounds each dial attempt. Default 10s.
	ConnectTimeout time.Duration

	// RequestTimeout bounds each request awaiting its response.
	// Default 30s.
	RequestTimeout time.Duration

	// MaxReconnectAttempts caps consecutive automatic reconnection
	// attempts before the client gives up. Default 5.
	MaxReconnectAttempts int

	// Backoff shapes the delay between reconnection attempts. Zero
	// fields take the package defaults (1s doubling to 30s).
	Backoff BackoffPolicy
}

// Client is a bridge client. Construct with New, establish the
// connection with Connect, and release resources with Disconnect.
// All methods are safe for concurrent use.
type Client struct {
	endpoint             transport.Endpoint
	dialer               transport.Dialer
	wire                 codec.Codec
	logger               *slog.Logger
	clock                clock.Clock
	connectTimeout       time.Duration
	requestTimeout       time.Duration
	maxReconnectAttempts int
	backoff              BackoffPolicy

	pending       *pendingTable
	queue         *outboundQueue
	router        *broadcastRouter
	errorSubs     *callbackSet[error]
	reconnectSubs *callbackSet[struct{}]

	mu             sync.Mutex
	state          State
	conn           transport.Conn
	connGen        uint64
	attemptCount   int
	everConnected  bool
	reconnectTimer *clock.Timer
	attemptDone    chan struct{} // non-nil while a dial attempt is in flight
	attemptErr     error         // outcome of the latest settled attempt
}

// New creates a Client. No connection is opened until Connect.
func New(options Options) (*Client, error) {
	if options.Dialer == nil && options.Endpoint.Host == "" {
		return nil, fmt.Errorf("bridge: Endpoint.Host is required")
	}

	wire := options.Codec
	if wire == nil {
		wire = codec.JSON()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	requestTimeout := options.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	maxReconnectAttempts := options.MaxReconnectAttempts
	if maxReconnectAttempts <= 0 {
		maxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	dialer := options.Dialer
	if dialer == nil {
		dialer = &transport.WebSocketDialer{
			HandshakeTimeout: connectTimeout,
			AuthToken:        options.AuthToken,
			Binary:           wire.Binary(),
		}
	}

	return &Client{
		endpoint:             options.Endpoint,
		dialer:               dialer,
		wire:                 wire,
		logger:               logger,
		clock:                clk,
		connectTimeout:       connectTimeout,
		requestTimeout:       requestTimeout,
		maxReconnectAttempts: maxReconnectAttempts,
		backoff:              options.Backoff.withDefaults(),
		pending:              newPendingTable(clk, logger),
		queue:                &outboundQueue{},
		router:               newBroadcastRouter(),
		errorSubs:            newCallbackSet[error](),
		reconnectSubs:        newCallbackSet[struct{}](),
	}, nil
}

// Connect establishes the connection. A no-op when already connected.
// When an attempt is already in flight, Connect waits on it instead of
// opening a second transport. From any other state it resets the
// reconnection budget and dials immediately.
func (c *Client) Connect(ctx context.Context) error {
	for {
		c.mu.Lock()
		switch c.state {
		case StateConnected:
			c.mu.Unlock()
			return nil

		case StateConnecting:
			done := c.attemptDone
			c.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			c.mu.Lock()
			if c.state == StateConnected {
				c.mu.Unlock()
				return nil
			}
			attemptErr := c.attemptErr
			c.mu.Unlock()
			if attemptErr != nil {
				return attemptErr
			}
			// The attempt was superseded (e.g. Disconnect raced it);
			// re-evaluate from the top.

		default:
			// Disconnected, Reconnecting, or Failed: a fresh explicit
			// Connect resets the reconnection budget and preempts any
			// scheduled retry.
			if c.reconnectTimer != nil {
				c.reconnectTimer.Stop()
				c.reconnectTimer = nil
			}
			c.attemptCount = 0
			done := c.beginAttemptLocked()
			c.mu.Unlock()
			return c.runAttempt(done)
		}
	}
}

// IsConnected reports whether the connection is currently open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateConnected
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Disconnect closes the connection, rejects every outstanding request
// with a connection-closed error, discards the outbound queue, and
// clears all timers. Idempotent: disconnecting an already-disconnected
// client does nothing.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.state == StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	c.attemptCount = 0
	conn := c.conn
	c.conn = nil
	c.connGen++
	timer := c.reconnectTimer
	c.reconnectTimer = nil
	done := c.attemptDone
	c.attemptDone = nil
	c.attemptErr = &ConnectionError{Op: "closed"}
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if conn != nil {
		conn.Close()
	}
	if done != nil {
		close(done)
	}
	c.pending.teardownAll(&ConnectionError{Op: "closed"})
	// The queued envelopes belong to the requests just rejected; a
	// later Connect must not transmit them.
	c.queue.clear()
	c.logger.Info("bridge disconnected")
}

// Send transmits one request and blocks until its response arrives,
// the request timeout elapses, or ctx is cancelled. When disconnected,
// the request is queued for FIFO replay after the next reconnect (and
// a connection attempt is triggered if none is underway); the timeout
// clock runs while queued. Send never retries a failed request — only
// the connection itself is retried.
func (c *Client) Send(ctx context.Context, request Request) (*Response, error) {
	if _, err := ParseKind(string(request.Kind)); err != nil {
		return nil, err
	}
	if request.CorrelationID == "" {
		request.CorrelationID = NewCorrelationID()
	}

	data, err := c.wire.EncodeRequest(codec.Request{
		Kind:          string(request.Kind),
		TargetID:      request.TargetID,
		Payload:       request.Payload,
		CorrelationID: request.CorrelationID,
	})
	if err != nil {
		return nil, err
	}

	outcome, err := c.pending.register(request.CorrelationID, c.requestTimeout)
	if err != nil {
		return nil, err
	}

	c.transmitOrEnqueue(data)

	select {
	case settled := <-outcome:
		return settled.response, settled.err
	case <-ctx.Done():
		if c.pending.cancel(request.CorrelationID) {
			return nil, ctx.Err()
		}
		// The request settled while we were cancelling; honor the
		// outcome that was already delivered.
		settled := <-outcome
		return settled.response, settled.err
	}
}

// Subscribe registers fn for unsolicited messages of the given kind.
// Cancel the returned subscription to stop delivery.
func (c *Client) Subscribe(kind Kind, fn func(Broadcast)) (*Subscription, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	return c.router.subscribe(kind, fn), nil
}

// OnError registers fn for connection-level errors: transport drops,
// failed dial attempts, and retry exhaustion. These are not tied to
// any single request.
func (c *Client) OnError(fn func(error)) *Subscription {
	return c.errorSubs.add(fn)
}

// OnReconnect registers fn to run each time the connection is
// re-established after having been up before.
func (c *Client) OnReconnect(fn func()) *Subscription {
	return c.reconnectSubs.add(func(struct{}) { fn() })
}

// transmitOrEnqueue writes the encoded request on the live connection,
// or queues it for replay when no connection is up. A write failure
// counts as "never transmitted": the envelope is queued and the read
// loop will notice the dying connection.
func (c *Client) transmitOrEnqueue(data []byte) {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected && conn != nil
	kick := c.state == StateDisconnected
	c.mu.Unlock()

	if connected {
		if err := conn.WriteMessage(data); err != nil {
			c.logger.Warn("write failed, queueing request for replay", "error", err)
			c.queue.enqueue(data)
		}
		return
	}

	c.queue.enqueue(data)
	if kick {
		go func() {
			if err := c.Connect(context.Background()); err != nil {
				c.logger.Debug("send-triggered connect failed", "error", err)
			}
		}()
	}
}

// beginAttemptLocked transitions to Connecting and allocates the
// attempt token. Caller holds c.mu.
func (c *Client) beginAttemptLocked() chan struct{} {
	c.state = StateConnecting
	c.attemptDone = make(chan struct{})
	c.attemptErr = nil
	return c.attemptDone
}

// runAttempt dials the endpoint, bounded by the connect timeout, and
// settles the attempt identified by done.
func (c *Client) runAttempt(done chan struct{}) error {
	dialCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type dialResult struct {
		conn transport.Conn
		err  error
	}
	results := make(chan dialResult, 1)
	go func() {
		conn, err := c.dialer.DialContext(dialCtx, c.endpoint)
		results <- dialResult{conn: conn, err: err}
	}()

	timedOut := make(chan struct{})
	timer := c.clock.AfterFunc(c.connectTimeout, func() { close(timedOut) })
	defer timer.Stop()

	var conn transport.Conn
	var dialErr error
	select {
	case result := <-results:
		conn, dialErr = result.conn, result.err
	case <-timedOut:
		cancel()
		dialErr = &TimeoutError{Op: "connect", Timeout: c.connectTimeout}
		// Reap a dial that completes after the timeout.
		go func() {
			if late := <-results; late.conn != nil {
				late.conn.Close()
			}
		}()
	}

	if dialErr != nil {
		var timeoutErr *TimeoutError
		if !errors.As(dialErr, &timeoutErr) {
			dialErr = &ConnectionError{Op: "dial failed", Err: dialErr}
		}
		c.finishAttemptFailure(done, dialErr)
		return dialErr
	}
	return c.finishAttemptSuccess(done, conn)
}

// finishAttemptSuccess adopts the new connection, resets the
// reconnection budget, starts the read loop, and flushes the queue.
func (c *Client) finishAttemptSuccess(done chan struct{}, conn transport.Conn) error {
	c.mu.Lock()
	if c.attemptDone != done {
		// Disconnect settled this attempt first; do not adopt.
		c.mu.Unlock()
		conn.Close()
		return &ConnectionError{Op: "closed"}
	}
	c.conn = conn
	c.state = StateConnected
	c.attemptCount = 0
	c.connGen++
	generation := c.connGen
	reconnected := c.everConnected
	c.everConnected = true
	c.attemptDone = nil
	c.attemptErr = nil
	c.mu.Unlock()
	close(done)

	c.logger.Info("bridge connected", "endpoint", c.endpoint.URL(), "reconnect", reconnected)
	go c.readLoop(conn, generation)

	if err := c.queue.flush(conn.WriteMessage); err != nil {
		// The failed and unsent entries are back at the head of the
		// queue; the read loop tears this connection down.
		c.logger.Warn("queued request replay interrupted", "error", err, "requeued", c.queue.len())
	}

	if reconnected {
		c.reconnectSubs.dispatch(struct{}{}, c.logger)
	}
	return nil
}

// finishAttemptFailure records the attempt outcome and schedules the
// next retry (or gives up when the budget is exhausted).
func (c *Client) finishAttemptFailure(done chan struct{}, attemptErr error) {
	c.mu.Lock()
	if c.attemptDone != done {
		// Disconnect settled this attempt first.
		c.mu.Unlock()
		return
	}
	c.attemptErr = attemptErr
	c.attemptDone = nil
	exhausted := c.scheduleRetryLocked()
	attempt := c.attemptCount
	c.mu.Unlock()
	close(done)

	c.logger.Warn("bridge connect attempt failed",
		"endpoint", c.endpoint.URL(),
		"attempt", attempt,
		"error", attemptErr,
	)
	c.errorSubs.dispatch(attemptErr, c.logger)
	if exhausted {
		c.notifyExhausted()
	}
}

// scheduleRetryLocked increments the attempt count and either arms
// the backoff timer for the next attempt or, when the budget is
// spent, parks the client in StateFailed. Returns true on exhaustion.
// Caller holds c.mu.
func (c *Client) scheduleRetryLocked() bool {
	c.attemptCount++
	if c.attemptCount > c.maxReconnectAttempts {
		c.state = StateFailed
		return true
	}
	delay := c.backoff.Delay(c.attemptCount - 1)
	c.state = StateReconnecting
	c.reconnectTimer = c.clock.AfterFunc(delay, c.retry)
	return false
}

// retry is the backoff timer callback: begin the next automatic
// reconnection attempt, unless something (explicit Connect or
// Disconnect) got there first.
func (c *Client) retry() {
	c.mu.Lock()
	if c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.reconnectTimer = nil
	done := c.beginAttemptLocked()
	c.mu.Unlock()

	// Outcome is surfaced through error subscribers and state; any
	// follow-up retry was scheduled by finishAttemptFailure.
	_ = c.runAttempt(done)
}

// readLoop delivers inbound messages until the connection fails. The
// generation token keeps a stale loop (superseded by Disconnect or a
// newer connection) from mutating client state.
func (c *Client) readLoop(conn transport.Conn, generation uint64) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.handleConnectionLost(conn, generation, err)
			return
		}
		c.handleInbound(data)
	}
}

// handleConnectionLost reacts to an unexpected transport close:
// notify error subscribers and schedule reconnection. In-flight
// requests are deliberately left pending — their own timeouts reject
// them if the replacement connection does not deliver a response in
// time.
func (c *Client) handleConnectionLost(conn transport.Conn, generation uint64, readErr error) {
	c.mu.Lock()
	if c.connGen != generation || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	exhausted := c.scheduleRetryLocked()
	c.mu.Unlock()

	conn.Close()
	c.logger.Warn("bridge connection lost", "error", readErr)
	c.errorSubs.dispatch(&ConnectionError{Op: "lost", Err: readErr}, c.logger)
	if exhausted {
		c.notifyExhausted()
	}
}

// notifyExhausted fires the single ExhaustedRetriesError notification
// for one exhausted reconnection budget.
func (c *Client) notifyExhausted() {
	c.logger.Error("bridge reconnect attempts exhausted", "attempts", c.maxReconnectAttempts)
	c.errorSubs.dispatch(&ExhaustedRetriesError{Attempts: c.maxReconnectAttempts}, c.logger)
}

// handleInbound decodes one message and routes it: responses settle
// their pending request, broadcasts go to kind subscribers, and
// anything else is logged and dropped.
func (c *Client) handleInbound(data []byte) {
	message, err := c.wire.DecodeInbound(data)
	if err != nil {
		c.logger.Warn("dropping undecodable message", "error", err)
		return
	}

	if message.IsResponse() {
		c.pending.settle(&Response{
			CorrelationID: message.CorrelationID,
			Success:       *message.Success,
			Data:          message.Data,
			Error:         message.Error,
		})
		return
	}

	kind, err := ParseKind(message.Kind)
	if err != nil {
		c.logger.Warn("dropping broadcast with unrecognized kind", "kind", message.Kind)
		return
	}
	c.router.dispatch(Broadcast{
		Kind:     kind,
		TargetID: message.TargetID,
		Payload:  message.Payload,
	}, c.logger)
}

// call is the shared facade primitive: build an envelope of the given
// kind, send it, and on success decode the response data into result
// (when result is non-nil).
func (c *Client) call(ctx context.Context, kind Kind, targetID string, payload any, result any) error {
	response, err := c.Send(ctx, Request{Kind: kind, TargetID: targetID, Payload: payload})
	if err != nil {
		return err
	}
	if result != nil && len(response.Data) > 0 {
		return c.wire.DecodeValue(response.Data, result)
	}
	return nil
}
