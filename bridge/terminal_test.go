// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/devicelink/devicelink/lib/testutil"
	"github.com/devicelink/devicelink/transport"
)

// connectedTestClient returns a connected client and its server-side
// connection.
func connectedTestClient(t *testing.T) (*Client, *transport.MemoryConn) {
	t.Helper()
	client, dialer, _ := newTestClient(t, nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return client, acceptConn(t, dialer)
}

func TestTerminalCreate(t *testing.T) {
	client, server := connectedTestClient(t)

	type results struct {
		session *Session
		err     error
	}
	done := make(chan results, 1)
	go func() {
		session, err := client.Terminal().Create(context.Background(), "d1", "android")
		done <- results{session, err}
	}()

	request := readWireRequest(t, server)
	if request.Kind != "terminal" {
		t.Errorf("kind = %q, want terminal", request.Kind)
	}
	if request.TargetID != "" {
		t.Errorf("targetId = %q, want empty for session-scoped operations", request.TargetID)
	}
	var payload struct {
		Action   string `json:"action"`
		DeviceID string `json:"deviceId"`
		Platform string `json:"platform"`
	}
	if err := json.Unmarshal(request.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Action != "create" || payload.DeviceID != "d1" || payload.Platform != "android" {
		t.Errorf("payload = %+v, want create for d1/android", payload)
	}

	respondSuccess(t, server, request.CorrelationID, map[string]any{
		"session": map[string]string{"id": "s1"},
	})

	result := testutil.RequireReceive(t, done, testWait, "Create outcome")
	if result.err != nil {
		t.Fatalf("Create: %v", result.err)
	}
	if result.session.ID != "s1" {
		t.Errorf("session ID = %q, want s1", result.session.ID)
	}
}

func TestTerminalExecute(t *testing.T) {
	client, server := connectedTestClient(t)

	type results struct {
		result *ExecuteResult
		err    error
	}
	done := make(chan results, 1)
	go func() {
		result, err := client.Terminal().Execute(context.Background(), "s1", "ls /sdcard")
		done <- results{result, err}
	}()

	request := readWireRequest(t, server)
	var payload struct {
		Action    string `json:"action"`
		SessionID string `json:"sessionId"`
		Command   string `json:"command"`
	}
	if err := json.Unmarshal(request.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Action != "execute" || payload.SessionID != "s1" || payload.Command != "ls /sdcard" {
		t.Errorf("payload = %+v", payload)
	}

	respondSuccess(t, server, request.CorrelationID, map[string]any{
		"output":   "Download\nDCIM\n",
		"exitCode": 0,
	})

	result := testutil.RequireReceive(t, done, testWait, "Execute outcome")
	if result.err != nil {
		t.Fatalf("Execute: %v", result.err)
	}
	if result.result.Output != "Download\nDCIM\n" {
		t.Errorf("Output = %q", result.result.Output)
	}
	if result.result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.result.ExitCode)
	}
}

func TestTerminalHistory(t *testing.T) {
	client, server := connectedTestClient(t)

	type results struct {
		history []HistoryEntry
		err     error
	}
	done := make(chan results, 1)
	go func() {
		history, err := client.Terminal().History(context.Background(), "s1")
		done <- results{history, err}
	}()

	request := readWireRequest(t, server)
	respondSuccess(t, server, request.CorrelationID, map[string]any{
		"history": []map[string]any{
			{"command": "pwd", "output": "/", "exitCode": 0, "timestamp": 1700000001},
			{"command": "whoami", "output": "shell", "exitCode": 0, "timestamp": 1700000002},
		},
	})

	result := testutil.RequireReceive(t, done, testWait, "History outcome")
	if result.err != nil {
		t.Fatalf("History: %v", result.err)
	}
	if len(result.history) != 2 {
		t.Fatalf("history length = %d, want 2", len(result.history))
	}
	if result.history[0].Command != "pwd" || result.history[1].Command != "whoami" {
		t.Errorf("history = %+v, want oldest first", result.history)
	}
}

func TestTerminalSessionActions(t *testing.T) {
	tests := []struct {
		name       string
		invoke     func(*Terminal, context.Context) error
		wantAction string
	}{
		{"interrupt", func(term *Terminal, ctx context.Context) error {
			return term.Interrupt(ctx, "s1")
		}, "interrupt"},
		{"close", func(term *Terminal, ctx context.Context) error {
			return term.Close(ctx, "s1")
		}, "close"},
		{"clear-history", func(term *Terminal, ctx context.Context) error {
			return term.ClearHistory(ctx, "s1")
		}, "clear-history"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, server := connectedTestClient(t)

			done := make(chan error, 1)
			go func() { done <- test.invoke(client.Terminal(), context.Background()) }()

			request := readWireRequest(t, server)
			var payload struct {
				Action    string `json:"action"`
				SessionID string `json:"sessionId"`
			}
			if err := json.Unmarshal(request.Payload, &payload); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if payload.Action != test.wantAction || payload.SessionID != "s1" {
				t.Errorf("payload = %+v, want action %s for s1", payload, test.wantAction)
			}

			respondSuccess(t, server, request.CorrelationID, nil)
			if err := testutil.RequireReceive(t, done, testWait, "outcome"); err != nil {
				t.Fatalf("%s: %v", test.name, err)
			}
		})
	}
}

func TestTerminalSendInput(t *testing.T) {
	client, server := connectedTestClient(t)

	done := make(chan error, 1)
	go func() {
		done <- client.Terminal().SendInput(context.Background(), "s1", "y\n")
	}()

	request := readWireRequest(t, server)
	var payload struct {
		Action string `json:"action"`
		Input  string `json:"input"`
	}
	if err := json.Unmarshal(request.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Action != "send-input" || payload.Input != "y\n" {
		t.Errorf("payload = %+v", payload)
	}

	respondSuccess(t, server, request.CorrelationID, nil)
	if err := testutil.RequireReceive(t, done, testWait, "SendInput outcome"); err != nil {
		t.Fatalf("SendInput: %v", err)
	}
}
