// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec serializes bridge envelopes for the wire.
//
// The bridge protocol is codec-agnostic: an envelope is a small flat
// document (kind, targetId, payload, correlationId on requests;
// correlationId, success, data, error on responses). Two codecs are
// provided: JSON (the default, sent as text frames) and CBOR (Core
// Deterministic Encoding, sent as binary frames). The codec owns both
// envelope encoding and raw-value decoding so payloads and response
// data remain opaque byte slices until a caller unwraps them into a
// typed structure.
package codec
