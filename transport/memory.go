// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrConnClosed is returned by reads and writes on a closed memory
// connection.
var ErrConnClosed = errors.New("transport: connection closed")

// NewMemoryPair returns two connected in-process Conns. Messages
// written to one side are read from the other. Closing either side
// fails pending and future operations on both.
func NewMemoryPair() (*MemoryConn, *MemoryConn) {
	// The pair shares one done channel, so it must also share the Once
	// that closes it: either half (or both) may call Close.
	done := make(chan struct{})
	closeOnce := &sync.Once{}
	a := &MemoryConn{inbound: make(chan []byte, 64), done: done, closeOnce: closeOnce}
	b := &MemoryConn{inbound: make(chan []byte, 64), done: done, closeOnce: closeOnce}
	a.peer, b.peer = b, a
	return a, b
}

// MemoryConn is one side of an in-process connection pair. It exists
// for tests: the bridge client treats it exactly like a WebSocket
// connection.
type MemoryConn struct {
	peer    *MemoryConn
	inbound chan []byte

	done      chan struct{}
	closeOnce *sync.Once
}

func (c *MemoryConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case <-c.done:
		// Drain messages that arrived before the close.
		select {
		case data := <-c.inbound:
			return data, nil
		default:
			return nil, ErrConnClosed
		}
	}
}

func (c *MemoryConn) WriteMessage(data []byte) error {
	// Copy so the caller can reuse its buffer.
	message := make([]byte, len(data))
	copy(message, data)
	select {
	case c.peer.inbound <- message:
		return nil
	case <-c.done:
		return ErrConnClosed
	}
}

func (c *MemoryConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// Compile-time interface checks.
var (
	_ Conn   = (*MemoryConn)(nil)
	_ Dialer = (*MemoryDialer)(nil)
)

// MemoryDialer hands out in-process connection pairs. Each successful
// dial delivers the server half on Accepted, where a test's fake
// bridge server picks it up.
type MemoryDialer struct {
	accepted chan *MemoryConn

	// failNext counts dials that fail before dialing succeeds again.
	failNext atomic.Int64
}

// NewMemoryDialer creates a MemoryDialer with room for backlog
// un-accepted server halves.
func NewMemoryDialer(backlog int) *MemoryDialer {
	return &MemoryDialer{accepted: make(chan *MemoryConn, backlog)}
}

// DialContext creates a connected pair, queues the server half for
// Accepted, and returns the client half. Dials fail while a FailNext
// budget is outstanding.
func (d *MemoryDialer) DialContext(ctx context.Context, endpoint Endpoint) (Conn, error) {
	if d.failNext.Load() > 0 {
		d.failNext.Add(-1)
		return nil, errors.New("transport: dial refused")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, server := NewMemoryPair()
	select {
	case d.accepted <- server:
	default:
		client.Close()
		return nil, errors.New("transport: accept backlog full")
	}
	return client, nil
}

// Accepted delivers the server half of each successful dial.
func (d *MemoryDialer) Accepted() <-chan *MemoryConn {
	return d.accepted
}

// FailNext makes the next n dials fail. Used to exercise the bridge
// client's reconnection path.
func (d *MemoryDialer) FailNext(n int) {
	d.failNext.Store(int64(n))
}
