// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/devicelink/devicelink/lib/testutil"
)

func TestPermissionList(t *testing.T) {
	client, server := connectedTestClient(t)

	type results struct {
		statuses []PermissionStatus
		err      error
	}
	done := make(chan results, 1)
	go func() {
		statuses, err := client.Permissions().List(context.Background(), "d1", "com.example.app")
		done <- results{statuses, err}
	}()

	request := readWireRequest(t, server)
	if request.Kind != "permission" {
		t.Errorf("kind = %q, want permission", request.Kind)
	}
	var payload struct {
		Action   string `json:"action"`
		DeviceID string `json:"deviceId"`
		AppID    string `json:"appId"`
	}
	if err := json.Unmarshal(request.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Action != "list" || payload.DeviceID != "d1" || payload.AppID != "com.example.app" {
		t.Errorf("payload = %+v", payload)
	}

	respondSuccess(t, server, request.CorrelationID, map[string]any{
		"permissions": []map[string]any{
			{"permission": "android.permission.CAMERA", "granted": true},
			{"permission": "android.permission.RECORD_AUDIO", "granted": false},
		},
	})

	result := testutil.RequireReceive(t, done, testWait, "List outcome")
	if result.err != nil {
		t.Fatalf("List: %v", result.err)
	}
	if len(result.statuses) != 2 {
		t.Fatalf("statuses length = %d, want 2", len(result.statuses))
	}
	if !result.statuses[0].Granted || result.statuses[1].Granted {
		t.Errorf("statuses = %+v", result.statuses)
	}
}

func TestPermissionRequest(t *testing.T) {
	client, server := connectedTestClient(t)

	type results struct {
		granted bool
		err     error
	}
	done := make(chan results, 1)
	go func() {
		granted, err := client.Permissions().Request(
			context.Background(), "d1", "com.example.app", "android.permission.CAMERA")
		done <- results{granted, err}
	}()

	request := readWireRequest(t, server)
	var payload struct {
		Action     string `json:"action"`
		Permission string `json:"permission"`
	}
	if err := json.Unmarshal(request.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Action != "request" || payload.Permission != "android.permission.CAMERA" {
		t.Errorf("payload = %+v", payload)
	}

	respondSuccess(t, server, request.CorrelationID, map[string]any{"granted": true})

	result := testutil.RequireReceive(t, done, testWait, "Request outcome")
	if result.err != nil {
		t.Fatalf("Request: %v", result.err)
	}
	if !result.granted {
		t.Error("granted = false, want true")
	}
}

func TestPermissionRequestMultiple(t *testing.T) {
	client, server := connectedTestClient(t)

	type results struct {
		statuses []PermissionStatus
		err      error
	}
	done := make(chan results, 1)
	go func() {
		statuses, err := client.Permissions().RequestMultiple(
			context.Background(), "d1", "com.example.app",
			[]string{"android.permission.CAMERA", "android.permission.RECORD_AUDIO"})
		done <- results{statuses, err}
	}()

	request := readWireRequest(t, server)
	var payload struct {
		Action      string   `json:"action"`
		Permissions []string `json:"permissions"`
	}
	if err := json.Unmarshal(request.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Action != "request-multiple" || len(payload.Permissions) != 2 {
		t.Errorf("payload = %+v", payload)
	}

	respondSuccess(t, server, request.CorrelationID, map[string]any{
		"permissions": []map[string]any{
			{"permission": "android.permission.CAMERA", "granted": true},
			{"permission": "android.permission.RECORD_AUDIO", "granted": true},
		},
	})

	result := testutil.RequireReceive(t, done, testWait, "RequestMultiple outcome")
	if result.err != nil {
		t.Fatalf("RequestMultiple: %v", result.err)
	}
	if len(result.statuses) != 2 {
		t.Fatalf("statuses length = %d, want 2", len(result.statuses))
	}
}

func TestPermissionRevokeRemoteFailure(t *testing.T) {
	client, server := connectedTestClient(t)

	done := make(chan error, 1)
	go func() {
		done <- client.Permissions().Revoke(
			context.Background(), "d1", "com.example.app", "android.permission.CAMERA")
	}()

	request := readWireRequest(t, server)
	respondFailure(t, server, request.CorrelationID, "permission not held")

	err := testutil.RequireReceive(t, done, testWait, "Revoke outcome")
	var protocolErr *ProtocolError
	if !errors.As(err, &protocolErr) {
		t.Fatalf("Revoke error = %v, want ProtocolError", err)
	}
}

func TestPermissionStatus(t *testing.T) {
	client, server := connectedTestClient(t)

	type results struct {
		status *PermissionStatus
		err    error
	}
	done := make(chan results, 1)
	go func() {
		status, err := client.Permissions().Status(
			context.Background(), "d1", "com.example.app", "android.permission.CAMERA")
		done <- results{status, err}
	}()

	request := readWireRequest(t, server)
	respondSuccess(t, server, request.CorrelationID, map[string]any{
		"permission": "android.permission.CAMERA",
		"granted":    true,
	})

	result := testutil.RequireReceive(t, done, testWait, "Status outcome")
	if result.err != nil {
		t.Fatalf("Status: %v", result.err)
	}
	if !result.status.Granted {
		t.Error("Granted = false, want true")
	}
}
