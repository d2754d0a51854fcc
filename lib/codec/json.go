// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/json"
	"fmt"
)

// JSON returns the JSON codec. Messages are UTF-8 text suitable for
// text frames; this is the wire default.
func JSON() Codec { return jsonCodec{} }

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Binary() bool { return false }

// jsonEnvelope covers both directions of the protocol. Requests fill
// kind, targetId, payload, and correlationId; responses fill
// correlationId, success, data, and error; broadcasts fill kind,
// targetId, and payload.
type jsonEnvelope struct {
	Kind          string          `json:"kind,omitempty"`
	TargetID      string          `json:"targetId,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Success       *bool           `json:"success,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	Error         string          `json:"error,omitempty"`
}

func (c jsonCodec) EncodeRequest(request Request) ([]byte, error) {
	var payload json.RawMessage
	if request.Payload != nil {
		encoded, err := json.Marshal(request.Payload)
		if err != nil {
			return nil, fmt.Errorf("codec: encoding request payload: %w", err)
		}
		payload = encoded
	}
	data, err := json.Marshal(jsonEnvelope{
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

func (c jsonCodec) DecodeInbound(data []byte) (*Inbound, error) {
	var envelope jsonEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
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

func (c jsonCodec) EncodeInbound(message *Inbound) ([]byte, error) {
	data, err := json.Marshal(jsonEnvelope{
		Kind:          message.Kind,
		TargetID:      message.TargetID,
		Payload:       json.RawMessage(message.Payload),
		CorrelationID: message.CorrelationID,
		Success:       message.Success,
		Data:          json.RawMessage(message.Data),
		Error:         message.Error,
	})
	if err != nil {
		return nil, fmt.Errorf("codec: encoding inbound message: %w", err)
	}
	return data, nil
}

func (c jsonCodec) EncodeValue(v any) (RawValue, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encoding value: %w", err)
	}
	return RawValue(data), nil
}

func (c jsonCodec) DecodeValue(raw RawValue, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("codec: decoding value: %w", err)
	}
	return nil
}
