// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "context"

// Permissions exposes permission control for apps on a remote device.
// Each operation builds a permission-kind envelope with an action
// discriminator and decodes the response data.
type Permissions struct {
	client *Client
}

// Permissions returns the permission control facade.
func (c *Client) Permissions() *Permissions {
	return &Permissions{client: c}
}

// PermissionStatus is the grant state of one permission for one app.
type PermissionStatus struct {
	Permission string `json:"permission"`
	Granted    bool   `json:"granted"`
}

type permissionListPayload struct {
	Action   string `json:"action"`
	DeviceID string `json:"deviceId"`
	AppID    string `json:"appId"`
}

type permissionPayload struct {
	Action     string `json:"action"`
	DeviceID   string `json:"deviceId"`
	AppID      string `json:"appId"`
	Permission string `json:"permission"`
}

type permissionMultiPayload struct {
	Action      string   `json:"action"`
	DeviceID    string   `json:"deviceId"`
	AppID       string   `json:"appId"`
	Permissions []string `json:"permissions"`
}

// List returns the grant state of every permission the app declares.
func (p *Permissions) List(ctx context.Context, deviceID, appID string) ([]PermissionStatus, error) {
	var result struct {
		Permissions []PermissionStatus `json:"permissions"`
	}
	err := p.client.call(ctx, KindPermission, "", permissionListPayload{
		Action:   "list",
		DeviceID: deviceID,
		AppID:    appID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Permissions, nil
}

// Status returns the grant state of one permission.
func (p *Permissions) Status(ctx context.Context, deviceID, appID, permission string) (*PermissionStatus, error) {
	var result PermissionStatus
	err := p.client.call(ctx, KindPermission, "", permissionPayload{
		Action:     "get-status",
		DeviceID:   deviceID,
		AppID:      appID,
		Permission: permission,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Request asks the device to grant one permission to the app. Reports
// whether the grant took effect.
func (p *Permissions) Request(ctx context.Context, deviceID, appID, permission string) (bool, error) {
	var result struct {
		Granted bool `json:"granted"`
	}
	err := p.client.call(ctx, KindPermission, "", permissionPayload{
		Action:     "request",
		DeviceID:   deviceID,
		AppID:      appID,
		Permission: permission,
	}, &result)
	if err != nil {
		return false, err
	}
	return result.Granted, nil
}

// RequestMultiple asks the device to grant several permissions in one
// round trip, returning the resulting state of each.
func (p *Permissions) RequestMultiple(ctx context.Context, deviceID, appID string, permissions []string) ([]PermissionStatus, error) {
	var result struct {
		Permissions []PermissionStatus `json:"permissions"`
	}
	err := p.client.call(ctx, KindPermission, "", permissionMultiPayload{
		Action:      "request-multiple",
		DeviceID:    deviceID,
		AppID:       appID,
		Permissions: permissions,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Permissions, nil
}

// Revoke withdraws one granted permission from the app.
func (p *Permissions) Revoke(ctx context.Context, deviceID, appID, permission string) error {
	return p.client.call(ctx, KindPermission, "", permissionPayload{
		Action:     "revoke",
		DeviceID:   deviceID,
		AppID:      appID,
		Permission: permission,
	}, nil)
}
