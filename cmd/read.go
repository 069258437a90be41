// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Thermoquad/sinestat/pkg/mslut"
	"github.com/Thermoquad/sinestat/pkg/regaccess"
	"github.com/spf13/cobra"
)

var readOut string

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the microstep table from a driver",
	Long: `Read MSLUT0..7, MSLUTSEL and MSLUTSTART from the driver selected with --driver,
decode them and check the table for anomalies.

Use --out to save the registers as a table file.

Exit codes:
  0 - Table read without anomalies
  1 - Read failed or anomalies found
  2 - Connection error`,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVar(&readOut, "out", "", "Write the table to a table file")
}

// signalContext returns a context cancelled on interrupt
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runRead(cmd *cobra.Command, args []string) error {
	client, closer, connInfo := OpenClient()
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Sinestat - Read Table\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Driver: %d\n\n", client.Driver())

	table, err := regaccess.ReadTable(ctx, client)
	if err != nil {
		return err
	}

	fmt.Print(mslut.FormatTable(table))

	errs := mslut.ValidateTable(table)
	fmt.Println("\nValidation:")
	fmt.Print(mslut.FormatValidationErrors(errs))

	if readOut != "" {
		if err := mslut.WriteTableFile(readOut, table, mslut.TableInfo{Waveform: "driver"}); err != nil {
			return err
		}
		fmt.Printf("\nTable written to %s\n", readOut)
	}

	if verbose {
		stats := client.Statistics()
		fmt.Printf("\n%s", stats.String())
	}

	if len(errs) > 0 {
		os.Exit(1)
	}
	return nil
}
