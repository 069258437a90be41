// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/sinestat/pkg/mslut"
	"github.com/spf13/cobra"
)

var (
	decodeSource  tableSource
	decodeSamples bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode MSLUT register values and check them for anomalies",
	Long: `Decode a register dump into its segment layout and reconstructed waveform.

Registers are given with --mslut/--mslutsel/--mslutstart (missing registers
default to the power-on table) or loaded from a table file with --file.

The table is checked for anomalies:
  - Segment boundaries that are not in ascending order
  - An empty first segment (X1=0)
  - START_SIN90 disagreeing with the reconstructed sample 255
  - Positions not covered by any segment

Exit codes:
  0 - Table decoded without anomalies
  1 - One or more anomalies found`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeSource.addFlags(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodeSamples, "samples", false, "Print the reconstructed quarter wave")
}

func runDecode(cmd *cobra.Command, args []string) error {
	// Without any source flag, decode the power-on table
	if decodeSource.file == "" && !decodeSource.fromRegisters() {
		decodeSource.mslutsel = fmt.Sprintf("%08x", mslut.PowerOnRegisters.MSLUTSEL)
	}

	table, _, err := decodeSource.load()
	if err != nil {
		return err
	}

	fmt.Printf("Sinestat - Decode\n\n")
	fmt.Print(mslut.FormatTable(table))

	if decodeSamples {
		if quarter, err := table.QuarterWave(); err == nil {
			fmt.Println("Quarter wave:")
			for i := 0; i < len(quarter); i += 16 {
				fmt.Printf("  %3d:", i)
				for _, v := range quarter[i : i+16] {
					fmt.Printf(" %4d", v)
				}
				fmt.Println()
			}
		}
	}

	errs := mslut.ValidateTable(table)
	fmt.Println("\nValidation:")
	fmt.Print(mslut.FormatValidationErrors(errs))

	if len(errs) > 0 {
		os.Exit(1)
	}
	return nil
}
