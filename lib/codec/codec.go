// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "fmt"

// RawValue holds an undecoded value in the producing codec's encoding.
// A RawValue produced by one codec must only be decoded by that codec.
type RawValue []byte

// Request is the wire shape of an outbound request envelope.
type Request struct {
	// Kind selects the logical sub-protocol (e.g. "terminal").
	Kind string

	// TargetID identifies the remote device or session. Empty for
	// session-scoped operations.
	TargetID string

	// Payload is the kind-specific action document.
	Payload any

	// CorrelationID is echoed by the remote side in the response.
	CorrelationID string
}

// Inbound is the decoded form of a message received from the bridge.
// A message with Success set is a response to an outstanding request;
// a message with Success unset is a broadcast addressed by Kind.
type Inbound struct {
	Kind          string
	TargetID      string
	CorrelationID string
	Success       *bool
	Data          RawValue
	Error         string
	Payload       RawValue
}

// IsResponse reports whether the message answers a request (as opposed
// to being an unsolicited broadcast).
func (m *Inbound) IsResponse() bool { return m.Success != nil }

// Codec encodes request envelopes and decodes inbound messages.
// Implementations are stateless and safe for concurrent use.
type Codec interface {
	// Name identifies the codec ("json" or "cbor").
	Name() string

	// Binary reports whether encoded messages are binary. The
	// transport uses this to select the frame type.
	Binary() bool

	// EncodeRequest serializes a request envelope.
	EncodeRequest(request Request) ([]byte, error)

	// DecodeInbound deserializes a message received from the bridge.
	DecodeInbound(data []byte) (*Inbound, error)

	// EncodeInbound serializes an inbound-shaped message. Used by
	// test servers to produce responses and broadcasts.
	EncodeInbound(message *Inbound) ([]byte, error)

	// EncodeValue serializes an arbitrary value to a RawValue in this
	// codec's encoding.
	EncodeValue(v any) (RawValue, error)

	// DecodeValue deserializes a RawValue produced by this codec.
	DecodeValue(raw RawValue, v any) error
}

// FromName returns the codec registered under name. Supported names
// are "json" and "cbor"; the empty string selects JSON.
func FromName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON(), nil
	case "cbor":
		return CBOR(), nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}
