// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

// devicelink is a command-line client for a devicelink bridge server.
// It opens the persistent bridge connection, runs one operation, and
// exits:
//
//	devicelink terminal exec <device-id> <command...>
//	devicelink terminal history <session-id>
//	devicelink permission list <device-id> <app-id>
//	devicelink permission request <device-id> <app-id> <permission...>
//	devicelink permission revoke <device-id> <app-id> <permission>
//	devicelink device screenshot <device-id>
//	devicelink device files <device-id> <path>
//
// Configuration comes from the file named by DEVICELINK_CONFIG or the
// --config flag; individual flags override file values.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/devicelink/devicelink/bridge"
	"github.com/devicelink/devicelink/lib/codec"
	"github.com/devicelink/devicelink/lib/config"
	"github.com/devicelink/devicelink/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var host string
	var port int
	var secure bool
	var codecName string
	var verbose bool
	var screenshotOutput string

	flagSet := pflag.NewFlagSet("devicelink", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to devicelink.yaml (default: $DEVICELINK_CONFIG)")
	flagSet.StringVar(&host, "host", "", "bridge server host (overrides config)")
	flagSet.IntVar(&port, "port", 0, "bridge server port (overrides config)")
	flagSet.BoolVar(&secure, "secure", false, "use wss:// (overrides config)")
	flagSet.StringVar(&codecName, "codec", "", "envelope codec: json or cbor (overrides config)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flagSet.StringVarP(&screenshotOutput, "output", "o", "screenshot.png", "output file for device screenshot")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("devicelink %s\n", version.Info())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printUsage(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) < 2 {
		printUsage(flagSet)
		return fmt.Errorf("expected a command, e.g. %q", "terminal exec")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if host != "" {
		cfg.Endpoint.Host = host
	}
	if port != 0 {
		cfg.Endpoint.Port = port
	}
	if flagSet.Changed("secure") {
		cfg.Endpoint.Secure = secure
	}
	if codecName != "" {
		cfg.Codec = codecName
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Disconnect()

	switch args[0] {
	case "terminal":
		return runTerminal(ctx, client, args[1], args[2:])
	case "permission":
		return runPermission(ctx, client, args[1], args[2:])
	case "device":
		return runDevice(ctx, client, args[1], args[2:], screenshotOutput)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func buildClient(cfg *config.Config, logger *slog.Logger) (*bridge.Client, error) {
	wire, err := codec.FromName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	token, err := cfg.Auth.Token()
	if err != nil {
		return nil, err
	}
	connectTimeout, err := cfg.Timeouts.ConnectTimeout()
	if err != nil {
		return nil, err
	}
	requestTimeout, err := cfg.Timeouts.RequestTimeout()
	if err != nil {
		return nil, err
	}
	initialBackoff, err := cfg.Reconnect.InitialBackoffDuration()
	if err != nil {
		return nil, err
	}
	maxBackoff, err := cfg.Reconnect.MaxBackoffDuration()
	if err != nil {
		return nil, err
	}

	return bridge.New(bridge.Options{
		Endpoint:             cfg.Endpoint.Transport(),
		Codec:                wire,
		AuthToken:            token,
		Logger:               logger,
		ConnectTimeout:       connectTimeout,
		RequestTimeout:       requestTimeout,
		MaxReconnectAttempts: cfg.Reconnect.MaxAttempts,
		Backoff: bridge.BackoffPolicy{
			Initial:    initialBackoff,
			Multiplier: cfg.Reconnect.BackoffMultiplier,
			Max:        maxBackoff,
		},
	})
}

func runTerminal(ctx context.Context, client *bridge.Client, action string, args []string) error {
	terminal := client.Terminal()

	switch action {
	case "exec":
		if len(args) < 2 {
			return fmt.Errorf("usage: devicelink terminal exec <device-id> <command...>")
		}
		session, err := terminal.Create(ctx, args[0], "")
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		defer terminal.Close(ctx, session.ID)

		command := strings.Join(args[1:], " ")
		result, err := terminal.Execute(ctx, session.ID, command)
		if err != nil {
			return err
		}
		fmt.Print(result.Output)
		if result.ExitCode != 0 {
			return fmt.Errorf("command exited with status %d", result.ExitCode)
		}
		return nil

	case "history":
		if len(args) != 1 {
			return fmt.Errorf("usage: devicelink terminal history <session-id>")
		}
		history, err := terminal.History(ctx, args[0])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
		fmt.Fprintf(tw, "COMMAND\tEXIT\n")
		for _, entry := range history {
			fmt.Fprintf(tw, "%s\t%d\n", entry.Command, entry.ExitCode)
		}
		return tw.Flush()

	default:
		return fmt.Errorf("unknown terminal action %q", action)
	}
}

func runPermission(ctx context.Context, client *bridge.Client, action string, args []string) error {
	permissions := client.Permissions()

	switch action {
	case "list":
		if len(args) != 2 {
			return fmt.Errorf("usage: devicelink permission list <device-id> <app-id>")
		}
		statuses, err := permissions.List(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printPermissionStatuses(statuses)

	case "request":
		if len(args) < 3 {
			return fmt.Errorf("usage: devicelink permission request <device-id> <app-id> <permission...>")
		}
		if len(args) == 3 {
			granted, err := permissions.Request(ctx, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if !granted {
				return fmt.Errorf("%s was not granted", args[2])
			}
			fmt.Printf("%s granted\n", args[2])
			return nil
		}
		statuses, err := permissions.RequestMultiple(ctx, args[0], args[1], args[2:])
		if err != nil {
			return err
		}
		return printPermissionStatuses(statuses)

	case "revoke":
		if len(args) != 3 {
			return fmt.Errorf("usage: devicelink permission revoke <device-id> <app-id> <permission>")
		}
		if err := permissions.Revoke(ctx, args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("%s revoked\n", args[2])
		return nil

	default:
		return fmt.Errorf("unknown permission action %q", action)
	}
}

func runDevice(ctx context.Context, client *bridge.Client, action string, args []string, output string) error {
	devices := client.Devices()

	switch action {
	case "screenshot":
		if len(args) != 1 {
			return fmt.Errorf("usage: devicelink device screenshot <device-id>")
		}
		screenshot, err := devices.Screenshot(ctx, args[0])
		if err != nil {
			return err
		}
		image, err := base64.StdEncoding.DecodeString(screenshot.Data)
		if err != nil {
			return fmt.Errorf("decoding screenshot data: %w", err)
		}
		if err := os.WriteFile(output, image, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%dx%d %s)\n", output, screenshot.Width, screenshot.Height, screenshot.Format)
		return nil

	case "files":
		if len(args) != 2 {
			return fmt.Errorf("usage: devicelink device files <device-id> <path>")
		}
		files, err := devices.ListFiles(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
		fmt.Fprintf(tw, "NAME\tSIZE\tDIR\n")
		for _, file := range files {
			fmt.Fprintf(tw, "%s\t%d\t%t\n", file.Name, file.Size, file.IsDir)
		}
		return tw.Flush()

	default:
		return fmt.Errorf("unknown device action %q", action)
	}
}

func printPermissionStatuses(statuses []bridge.PermissionStatus) error {
	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "PERMISSION\tGRANTED\n")
	for _, status := range statuses {
		fmt.Fprintf(tw, "%s\t%t\n", status.Permission, status.Granted)
	}
	return tw.Flush()
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `devicelink - bridge client for remote device control

Usage:
  devicelink [flags] terminal exec <device-id> <command...>
  devicelink [flags] terminal history <session-id>
  devicelink [flags] permission list <device-id> <app-id>
  devicelink [flags] permission request <device-id> <app-id> <permission...>
  devicelink [flags] permission revoke <device-id> <app-id> <permission>
  devicelink [flags] device screenshot <device-id>
  devicelink [flags] device files <device-id> <path>

Flags:
%s`, flagSet.FlagUsages())
}
