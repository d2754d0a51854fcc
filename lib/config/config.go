// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for devicelink clients.
//
// Configuration is loaded from a single YAML file specified by the
// DEVICELINK_CONFIG environment variable or a --config flag; when
// neither is given, the built-in defaults (a local bridge on the
// standard port) apply. There are no other fallbacks or automatic
// discovery.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelink/devicelink/lib/codec"
	"github.com/devicelink/devicelink/transport"
)

// Config is the master configuration for a devicelink client.
type Config struct {
	// Endpoint addresses the bridge server.
	Endpoint EndpointConfig `yaml:"endpoint"`

	// Auth configures handshake authentication.
	Auth AuthConfig `yaml:"auth"`

	// Codec selects the envelope serialization: "json" or "cbor".
	// Default: json.
	Codec string `yaml:"codec"`

	// Timeouts configures the connect and per-request windows.
	Timeouts TimeoutsConfig `yaml:"timeouts"`

	// Reconnect configures automatic reconnection.
	Reconnect ReconnectConfig `yaml:"reconnect"`
}

// EndpointConfig addresses the bridge server.
type EndpointConfig struct {
	// Host is the bridge server hostname or address.
	Host string `yaml:"host"`

	// Port is the bridge server port. Default: 3001.
	Port int `yaml:"port"`

	// Path is the URL path of the bridge endpoint.
	Path string `yaml:"path"`

	// Secure selects wss:// instead of ws://.
	Secure bool `yaml:"secure"`
}

// Transport converts the endpoint section to a transport.Endpoint.
func (e EndpointConfig) Transport() transport.Endpoint {
	return transport.Endpoint{
		Host:   e.Host,
		Port:   e.Port,
		Path:   e.Path,
		Secure: e.Secure,
	}
}

// AuthConfig configures handshake authentication.
type AuthConfig struct {
	// TokenFile is the path to a file holding the bearer token sent on
	// the connection handshake. Empty disables authentication.
	TokenFile string `yaml:"token_file"`
}

// Token reads and trims the configured token file. Returns the empty
// string when no token file is configured.
func (a AuthConfig) Token() (string, error) {
	if a.TokenFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(a.TokenFile)
	if err != nil {
		return "", fmt.Errorf("config: reading auth token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// TimeoutsConfig holds the connect and per-request windows as duration
// strings ("10s", "500ms").
type TimeoutsConfig struct {
	// Connect bounds each dial attempt. Default: 10s.
	Connect string `yaml:"connect"`

	// Request bounds each request awaiting its response. Default: 30s.
	Request string `yaml:"request"`
}

// ConnectTimeout parses the connect window.
func (t TimeoutsConfig) ConnectTimeout() (time.Duration, error) {
	return parseDuration("timeouts.connect", t.Connect)
}

// RequestTimeout parses the per-request window.
func (t TimeoutsConfig) RequestTimeout() (time.Duration, error) {
	return parseDuration("timeouts.request", t.Request)
}

// ReconnectConfig shapes automatic reconnection.
type ReconnectConfig struct {
	// MaxAttempts caps consecutive automatic reconnection attempts.
	// Default: 5.
	MaxAttempts int `yaml:"max_attempts"`

	// InitialBackoff is the delay before the first retry. Default: 1s.
	InitialBackoff string `yaml:"initial_backoff"`

	// BackoffMultiplier scales the delay on each attempt. Default: 2.
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`

	// MaxBackoff caps the delay. Default: 30s.
	MaxBackoff string `yaml:"max_backoff"`
}

// InitialBackoffDuration parses the initial backoff delay.
func (r ReconnectConfig) InitialBackoffDuration() (time.Duration, error) {
	return parseDuration("reconnect.initial_backoff", r.InitialBackoff)
}

// MaxBackoffDuration parses the backoff cap.
func (r ReconnectConfig) MaxBackoffDuration() (time.Duration, error) {
	return parseDuration("reconnect.max_backoff", r.MaxBackoff)
}

// Default returns the default configuration. The defaults alone are a
// working config for a local bridge on the standard port.
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			Host: "localhost",
			Port: transport.DefaultPort,
			Path: "/",
		},
		Codec: "json",
		Timeouts: TimeoutsConfig{
			Connect: "10s",
			Request: "30s",
		},
		Reconnect: ReconnectConfig{
			MaxAttempts:       5,
			InitialBackoff:    "1s",
			BackoffMultiplier: 2,
			MaxBackoff:        "30s",
		},
	}
}

// Load loads configuration from the file named by the DEVICELINK_CONFIG
// environment variable, falling back to the defaults when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv("DEVICELINK_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merged over
// the defaults. The file is the single source of truth; environment
// variables do not override its values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Endpoint.Host == "" {
		errs = append(errs, fmt.Errorf("endpoint.host is required"))
	}
	if c.Endpoint.Port < 0 || c.Endpoint.Port > 65535 {
		errs = append(errs, fmt.Errorf("endpoint.port %d is out of range", c.Endpoint.Port))
	}
	if _, err := codec.FromName(c.Codec); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Timeouts.ConnectTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Timeouts.RequestTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Reconnect.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("reconnect.max_attempts must be positive"))
	}
	if c.Reconnect.BackoffMultiplier < 1 {
		errs = append(errs, fmt.Errorf("reconnect.backoff_multiplier must be at least 1"))
	}
	if _, err := c.Reconnect.InitialBackoffDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Reconnect.MaxBackoffDuration(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// parseDuration parses a duration string, requiring a positive result.
func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %v", field, d)
	}
	return d, nil
}
