// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. The same logical envelope
// always produces identical bytes.
var encMode cbor.EncMode

// decMode accepts standard CBOR. Unknown fields are ignored for
// forward compatibility with newer bridge servers.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Envelope payloads decoded into any-typed targets must come
		// out as map[string]any, not the CBOR default
		// map[interface{}]interface{}, so they interoperate with code
		// that also handles JSON payloads.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR returns the CBOR codec. Messages are binary frames encoded with
// Core Deterministic Encoding.
func CBOR() Codec { return cborCodec{} }

type cborCodec struct{}

func (cborCodec) Name() string { return "cbor" }
func (cborCodec) Binary() bool { return true }

// cborEnvelope mirrors jsonEnvelope with CBOR field names. The wire
// keys are identical across codecs so a bridge server can treat the
// envelope uniformly regardless of encoding.
type cborEnvelope struct {
	Kind          string          `cbor:"kind,omitempty"`
	TargetID      string          `cbor:"targetId,omitempty"`
	Payload       cbor.RawMessage `cbor:"payload,omitempty"`
	CorrelationID string          `cbor:"correlationId,omitempty"`
	Success       *bool           `cbor:"success,omitempty"`
	Data          cbor.RawMessage `cbor:"data,omitempty"`
	Error         string          `cbor:"error,omitempty"`
}

func (c cborCodec) EncodeRequest(request Request) ([]byte, error) {
	var payload cbor.RawMessage
	if request.Payload != nil {
		encoded, err := encMode.Marshal(request.Payload)
		if err != nil {
			return nil, fmt.Errorf("codec: encoding request payload: %w", err)
		}
		payload = encoded
	}
	data, err := encMode.Marshal(cborEnvelope{
		Kind:          request.Kind,
		TargetID:      request.TargetID,
		Payload:       payload,
		CorrelationID: request.CorrelationID,
	})
	if err != nil {
		return nil, fmt.Errorf("codec: encoding request envelope: %w", err)
	}
	return data, nil
}

func (c cborCodec) DecodeInbound(data []byte) (*Inbound, error) {
	var envelope cborEnvelope
	if err := decMode.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("codec: decoding inbound message: %w", err)
	}
	return &Inbound{
		Kind:          envelope.Kind,
		TargetID:      envelope.TargetID,
		CorrelationID: envelope.CorrelationID,
		Success:       envelope.Success,
		Data:          RawValue(envelope.Data),
		Error:         envelope.Error,
		Payload:       RawValue(envelope.Payload),
	}, nil
}

func (c cborCodec) EncodeInbound(message *Inbound) ([]byte, error) {
	data, err := encMode.Marshal(cborEnvelope{
		Kind:          message.Kind,
		TargetID:      message.TargetID,
		Payload:       cbor.RawMessage(message.Payload),
		CorrelationID: message.CorrelationID,
		Success:       message.Success,
		Data:          cbor.RawMessage(message.Data),
		Error:         message.Error,
	})
	if err != nil {
		return nil, fmt.Errorf("codec: encoding inbound message: %w", err)
	}
	return data, nil
}

func (c cborCodec) EncodeValue(v any) (RawValue, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encoding value: %w", err)
	}
	return RawValue(data), nil
}

func (c cborCodec) DecodeValue(raw RawValue, v any) error {
	if err := decMode.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("codec: decoding value: %w", err)
	}
	return nil
}
