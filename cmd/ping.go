// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/sinestat/pkg/regaccess"
	"github.com/spf13/cobra"
)

var (
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the controller connection with M115",
	Long: `Send M115 (firmware information) to the controller and wait for the reply.

This is useful for verifying:
  - The serial port, WebSocket bridge or HTTP API is reachable
  - Authentication works
  - The controller answers G-code commands

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	client, closer, connInfo := OpenClient()
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Sinestat - Ping Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per ping\n", pingTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		pingCtx, pingCancel := context.WithTimeout(ctx, time.Duration(pingTimeout)*time.Second)
		startTime := time.Now()
		reply, err := client.SendCommand(pingCtx, regaccess.CmdFirmwareInfo)
		pingCancel()

		switch {
		case err == nil:
			rtt := time.Since(startTime)
			fmt.Printf("%s, rtt=%v\n", firmwareName(reply), rtt.Round(time.Millisecond))
			successCount++
		case pingCtx.Err() == context.DeadlineExceeded:
			fmt.Printf("TIMEOUT (no response in %ds)\n", pingTimeout)
			failCount++
		default:
			fmt.Printf("FAILED: %v\n", err)
			failCount++
		}

		if ctx.Err() != nil {
			break
		}
		// Small delay between pings
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	stats := client.Statistics()
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)
	fmt.Printf("rtt avg=%v max=%v, session %s\n",
		stats.AverageRTT().Round(time.Millisecond), stats.MaxRTT.Round(time.Millisecond),
		formatElapsed(time.Since(stats.StartTime)))

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}

// firmwareName extracts FIRMWARE_NAME from an M115 reply
func firmwareName(reply string) string {
	for _, field := range strings.Split(reply, ",") {
		field = strings.TrimSpace(field)
		if name, ok := strings.CutPrefix(field, "FIRMWARE_NAME:"); ok {
			return strings.TrimSpace(name)
		}
	}
	if reply = strings.TrimSpace(reply); reply != "" {
		return reply
	}
	return "ok"
}
