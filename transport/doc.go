// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport provides the message-framed, bidirectional
// connection underneath the bridge client.
//
// A Conn carries whole messages in both directions — framing is the
// transport's job, never the caller's. The production implementation
// is a WebSocket connection to the bridge endpoint; an in-memory pair
// is provided for tests so the bridge client can be exercised without
// sockets.
//
// The bridge client's lifecycle manager is the only writer on a Conn.
// Transport implementations still serialize concurrent writes
// defensively, but ordering guarantees come from the single-writer
// discipline above this package.
package transport
