// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge implements the devicelink bridge client: a reliable
// request/response client over a single persistent, message-framed
// connection to a bridge server, used to drive operations on connected
// remote devices.
//
// The client multiplexes several logical sub-protocols (terminal
// control, permission control, device actions) through one connection
// using a correlation-tagged envelope. Responses are routed back to
// the waiting caller by correlation ID; unsolicited messages are
// delivered to kind-based subscribers. When the connection drops, the
// client reconnects with exponential backoff and replays requests
// queued while offline in FIFO order.
//
// A Client is an explicit object with its own pending table, queue,
// and subscriber registries — independent clients coexist in one
// process, and tests construct isolated instances with a fake clock
// and an in-memory transport.
package bridge
