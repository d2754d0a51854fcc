// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "context"

// Devices exposes direct device actions: screenshots and file
// listings. The device ID rides in the envelope's target field rather
// than the payload, since these actions address the device itself.
type Devices struct {
	client *Client
}

// Devices returns the device action facade.
func (c *Client) Devices() *Devices {
	return &Devices{client: c}
}

// Screenshot is one captured device screen image.
type Screenshot struct {
	// Format is the image encoding, e.g. "png".
	Format string `json:"format"`
	// Data is the base64-encoded image bytes.
	Data string `json:"data"`
	// Width and Height are the capture dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FileInfo describes one entry in a device directory listing.
type FileInfo struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	IsDir bool   `json:"isDir"`
}

type deviceActionPayload struct {
	Action string `json:"action"`
}

type deviceListFilesPayload struct {
	Action string `json:"action"`
	Path   string `json:"path"`
}

// Screenshot captures the device's current screen.
func (d *Devices) Screenshot(ctx context.Context, deviceID string) (*Screenshot, error) {
	var result struct {
		Screenshot Screenshot `json:"screenshot"`
	}
	err := d.client.call(ctx, KindDevice, deviceID, deviceActionPayload{
		Action: "screenshot",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result.Screenshot, nil
}

// ListFiles returns the entries of one directory on the device.
func (d *Devices) ListFiles(ctx context.Context, deviceID, path string) ([]FileInfo, error) {
	var result struct {
		Files []FileInfo `json:"files"`
	}
	err := d.client.call(ctx, KindDevice, deviceID, deviceListFilesPayload{
		Action: "list-files",
		Path:   path,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}
