// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
)

// DefaultPort is the bridge endpoint port used when none is configured.
const DefaultPort = 3001

// Endpoint addresses a bridge server.
type Endpoint struct {
	// Host is the bridge server hostname or IP.
	Host string

	// Port is the bridge server port. Zero means DefaultPort.
	Port int

	// Path is the URL path of the bridge socket (e.g. "/bridge").
	// An empty path means "/".
	Path string

	// Secure selects wss:// over ws://, mirroring the hosting
	// context's own scheme.
	Secure bool
}

// URL renders the endpoint as a WebSocket URL.
func (e Endpoint) URL() string {
	scheme := "ws"
	if e.Secure {
		scheme = "wss"
	}
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	path := e.Path
	if path == "" {
		path = "/"
	} else if path[0] != '/' {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, e.Host, port, path)
}

// Conn is one persistent, message-framed, bidirectional connection.
// ReadMessage blocks until a message arrives or the connection fails;
// after Close, both directions return errors.
type Conn interface {
	// ReadMessage returns the next whole message from the peer.
	ReadMessage() ([]byte, error)

	// WriteMessage sends one whole message to the peer.
	WriteMessage(data []byte) error

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// Dialer opens connections to a bridge endpoint.
type Dialer interface {
	// DialContext opens a connection. The context bounds the dial
	// only, not the connection's lifetime.
	DialContext(ctx context.Context, endpoint Endpoint) (Conn, error)
}
