// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "context"

// Terminal exposes remote terminal session control. Every operation is
// a thin wrapper over the client's generic send primitive: it builds a
// terminal-kind envelope with an action discriminator and unwraps the
// response data into a typed result.
type Terminal struct {
	client *Client
}

// Terminal returns the terminal session facade.
func (c *Client) Terminal() *Terminal {
	return &Terminal{client: c}
}

// Session identifies one remote terminal session.
type Session struct {
	ID string `json:"id"`
}

// HistoryEntry is one recorded command and its output within a
// session's history.
type HistoryEntry struct {
	Command   string `json:"command"`
	Output    string `json:"output"`
	ExitCode  int    `json:"exitCode"`
	Timestamp int64  `json:"timestamp"`
}

// ExecuteResult carries the output of one executed command.
type ExecuteResult struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
}

type terminalCreatePayload struct {
	Action   string `json:"action"`
	DeviceID string `json:"deviceId"`
	Platform string `json:"platform,omitempty"`
}

type terminalSessionPayload struct {
	Action    string `json:"action"`
	SessionID string `json:"sessionId"`
}

type terminalExecutePayload struct {
	Action    string `json:"action"`
	SessionID string `json:"sessionId"`
	Command   string `json:"command"`
}

type terminalInputPayload struct {
	Action    string `json:"action"`
	SessionID string `json:"sessionId"`
	Input     string `json:"input"`
}

// Create opens a new terminal session on the given device. Platform
// may be empty when the device has only one.
func (t *Terminal) Create(ctx context.Context, deviceID, platform string) (*Session, error) {
	var result struct {
		Session Session `json:"session"`
	}
	err := t.client.call(ctx, KindTerminal, "", terminalCreatePayload{
		Action:   "create",
		DeviceID: deviceID,
		Platform: platform,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result.Session, nil
}

// Execute runs one command in the session and returns its output.
func (t *Terminal) Execute(ctx context.Context, sessionID, command string) (*ExecuteResult, error) {
	var result ExecuteResult
	err := t.client.call(ctx, KindTerminal, "", terminalExecutePayload{
		Action:    "execute",
		SessionID: sessionID,
		Command:   command,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SendInput writes raw input to the session's stdin, for interactive
// programs awaiting input mid-command.
func (t *Terminal) SendInput(ctx context.Context, sessionID, input string) error {
	return t.client.call(ctx, KindTerminal, "", terminalInputPayload{
		Action:    "send-input",
		SessionID: sessionID,
		Input:     input,
	}, nil)
}

// Interrupt sends the equivalent of Ctrl-C to the session's running
// command.
func (t *Terminal) Interrupt(ctx context.Context, sessionID string) error {
	return t.client.call(ctx, KindTerminal, "", terminalSessionPayload{
		Action:    "interrupt",
		SessionID: sessionID,
	}, nil)
}

// Close ends the session. Its history is discarded on the remote side.
func (t *Terminal) Close(ctx context.Context, sessionID string) error {
	return t.client.call(ctx, KindTerminal, "", terminalSessionPayload{
		Action:    "close",
		SessionID: sessionID,
	}, nil)
}

// History returns the session's recorded commands, oldest first.
func (t *Terminal) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	var result struct {
		History []HistoryEntry `json:"history"`
	}
	err := t.client.call(ctx, KindTerminal, "", terminalSessionPayload{
		Action:    "get-history",
		SessionID: sessionID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.History, nil
}

// ClearHistory discards the session's recorded commands without
// closing the session.
func (t *Terminal) ClearHistory(ctx context.Context, sessionID string) error {
	return t.client.call(ctx, KindTerminal, "", terminalSessionPayload{
		Action:    "clear-history",
		SessionID: sessionID,
	}, nil)
}
