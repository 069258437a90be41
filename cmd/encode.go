// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/sinestat/pkg/mslut"
	"github.com/spf13/cobra"
)

var (
	encodeSource tableSource
	encodeOut    string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a waveform into MSLUT register values",
	Long: `Sample a waveform at the 256 quarter-period positions and pack it into the
MSLUT, MSLUTSEL and MSLUTSTART registers.

The table is printed together with its segment layout, correction bits and a
spectral summary. Use --out to save it as a table file for the write command.

Examples:
  sinestat encode --waveform sine --amplitude 248
  sinestat encode --blend 0.25 --out trapezoid.lut`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeSource.addFlags(encodeCmd)
	encodeCmd.Flags().StringVar(&encodeOut, "out", "", "Write the table to a table file")
}

func runEncode(cmd *cobra.Command, args []string) error {
	table, info, err := encodeSource.load()
	if err != nil {
		return err
	}

	fmt.Printf("Sinestat - Encode %s (amplitude=%d offset=%d)\n\n", info.Waveform, info.Amplitude, info.Offset)
	fmt.Print(mslut.FormatTable(table))
	fmt.Println()
	printSpectrumSummary(table, float64(info.Amplitude))

	if encodeOut != "" {
		if err := mslut.WriteTableFile(encodeOut, table, info); err != nil {
			return err
		}
		fmt.Printf("\nTable written to %s\n", encodeOut)
	}
	return nil
}
