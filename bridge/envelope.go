// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/devicelink/devicelink/lib/codec"
)

// Kind selects the logical sub-protocol an envelope belongs to. The
// set is closed: inbound messages with an unrecognized kind are an
// explicitly handled (logged and dropped) case, never a silent one.
type Kind string

const (
	// KindTerminal is the terminal session control sub-protocol.
	KindTerminal Kind = "terminal"

	// KindPermission is the permission control sub-protocol.
	KindPermission Kind = "permission"

	// KindDevice is the device action sub-protocol (screenshots,
	// file listings).
	KindDevice Kind = "device"
)

// ParseKind validates a wire kind string against the closed set.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTerminal, KindPermission, KindDevice:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("bridge: unrecognized message kind %q", s)
	}
}

// Request is one outbound request envelope. CorrelationID may be left
// empty; Send fills in a fresh one. Reusing the correlation ID of a
// still-in-flight request is a caller error and Send rejects it.
type Request struct {
	Kind          Kind
	TargetID      string
	Payload       any
	CorrelationID string
}

// Response is the reply to one request. Data remains opaque until the
// caller decodes it with the client's codec; the domain facades do
// this unwrapping for their typed operations.
type Response struct {
	CorrelationID string
	Success       bool
	Data          codec.RawValue
	Error         string
}

// Broadcast is an unsolicited message from the bridge, delivered to
// kind-based subscribers instead of a single waiting caller.
type Broadcast struct {
	Kind     Kind
	TargetID string
	Payload  codec.RawValue
}

// NewCorrelationID returns a random 16-byte hex string for correlating
// a request with its response. Unique among in-flight requests with
// overwhelming probability; crypto/rand.Read never fails.
func NewCorrelationID() string {
	var buffer [16]byte
	rand.Read(buffer[:])
	return hex.EncodeToString(buffer[:])
}
