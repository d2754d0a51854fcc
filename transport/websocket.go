// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Compile-time interface checks.
var (
	_ Dialer = (*WebSocketDialer)(nil)
	_ Conn   = (*webSocketConn)(nil)
)

// WebSocketDialer opens WebSocket connections to a bridge endpoint.
type WebSocketDialer struct {
	// HandshakeTimeout bounds the WebSocket handshake. Zero means the
	// dial context's deadline alone applies.
	HandshakeTimeout time.Duration

	// AuthToken, when non-empty, is sent as a bearer token in the
	// Authorization header of the upgrade request.
	AuthToken string

	// Binary selects binary frames for outgoing messages. Text frames
	// are used otherwise. Match this to the envelope codec.
	Binary bool
}

// DialContext opens a WebSocket connection to the endpoint.
func (d *WebSocketDialer) DialContext(ctx context.Context, endpoint Endpoint) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
	}

	header := http.Header{}
	if d.AuthToken != "" {
		header.Set("Authorization", "Bearer "+d.AuthToken)
	}

	conn, _, err := dialer.DialContext(ctx, endpoint.URL(), header)
	if err != nil {
		return nil, fmt.Errorf("transport: dialing %s: %w", endpoint.URL(), err)
	}

	messageType := websocket.TextMessage
	if d.Binary {
		messageType = websocket.BinaryMessage
	}
	return &webSocketConn{conn: conn, messageType: messageType}, nil
}

// webSocketConn adapts a gorilla websocket connection to Conn.
// gorilla allows one concurrent reader and one concurrent writer; the
// write mutex enforces the writer half of that contract.
type webSocketConn struct {
	conn        *websocket.Conn
	messageType int

	writeMu sync.Mutex
}

func (c *webSocketConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("transport: websocket read: %w", err)
	}
	return data, nil
}

func (c *webSocketConn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(c.messageType, data); err != nil {
		return fmt.Errorf("transport: websocket write: %w", err)
	}
	return nil
}

func (c *webSocketConn) Close() error {
	return c.conn.Close()
}
