// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// Network connection flags (ws://, wss://, http://, https://)
	connURL         string
	connUsername    string
	connNoSSLVerify bool

	// Register client flags
	driverNumber int
	retries      int
	retryDelay   time.Duration
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "sinestat",
	Short: "TMC microstep table encoder and analyzer",
	Long: `Sinestat - A CLI tool for building, inspecting and loading the microstep
lookup table (MSLUT) of TMC stepper drivers.

Offline commands encode waveforms into register values, decode register dumps
and report the spectral purity of the resulting current waveform. Online
commands read, write and sample a driver through a printer controller's
G-code interface (M569.2).

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  Duet HTTP: --url http://host

For authentication, the password is read from the SINESTAT_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:      "1.0.0",
	SilenceUsage: true,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// Network connection flags
	rootCmd.PersistentFlags().StringVarP(&connURL, "url", "u", "", "Controller URL (ws://, wss://, http:// or https://)")
	rootCmd.PersistentFlags().StringVar(&connUsername, "username", "", "Username for HTTP Basic auth (WebSocket only)")
	rootCmd.PersistentFlags().BoolVar(&connNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification")

	// Register client flags
	rootCmd.PersistentFlags().IntVar(&driverNumber, "driver", 0, "Driver number (M569.2 P parameter)")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 3, "Attempts per command (0 retries forever)")
	rootCmd.PersistentFlags().DurationVar(&retryDelay, "retry-delay", time.Second, "Delay between attempts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every command exchange")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
