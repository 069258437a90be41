// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/sinestat/pkg/mslut"
	"github.com/Thermoquad/sinestat/pkg/regaccess"
	"github.com/spf13/cobra"
)

var (
	writeSource tableSource
	writeVerify bool
	writeForce  bool
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Load a microstep table into a driver",
	Long: `Encode a waveform (or load a table file) and write it to the driver selected
with --driver. MSLUTSEL and MSLUTSTART are written after the correction words.

Tables with anomalies are refused unless --force is given. With --verify
(the default) the registers are read back and compared.

The driver keeps the table until it is reset; add the equivalent M569.2
commands to the controller's startup configuration to make it permanent.

Exit codes:
  0 - Table written (and verified)
  1 - Write or verification failed
  2 - Connection error`,
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeSource.addFlags(writeCmd)
	writeCmd.Flags().BoolVar(&writeVerify, "verify", true, "Read the registers back after writing")
	writeCmd.Flags().BoolVar(&writeForce, "force", false, "Write tables with anomalies")
}

func runWrite(cmd *cobra.Command, args []string) error {
	table, info, err := writeSource.load()
	if err != nil {
		return err
	}

	if errs := mslut.ValidateTable(table); len(errs) > 0 && !writeForce {
		return fmt.Errorf("refusing to write table with anomalies (use --force):\n%s", mslut.FormatValidationErrors(errs))
	}

	client, closer, connInfo := OpenClient()
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Sinestat - Write Table (%s)\n", info.Waveform)
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Driver: %d\n\n", client.Driver())
	fmt.Print(mslut.FormatRegisters(table.Registers()))

	if err := regaccess.WriteTable(ctx, client, table); err != nil {
		return err
	}
	fmt.Println("\nTable written")

	if writeVerify {
		if err := regaccess.VerifyTable(ctx, client, table); err != nil {
			return err
		}
		fmt.Println("Readback verified")
	}

	fmt.Println("\nStartup configuration:")
	r := table.Registers()
	for i, w := range r.MSLUT {
		fmt.Printf("  %s\n", regaccess.WriteRegisterCommand(client.Driver(), mslut.RegMSLUT0+uint8(i), w))
	}
	fmt.Printf("  %s\n", regaccess.WriteRegisterCommand(client.Driver(), mslut.RegMSLUTSEL, r.MSLUTSEL))
	fmt.Printf("  %s\n", regaccess.WriteRegisterCommand(client.Driver(), mslut.RegMSLUTSTART, r.MSLUTSTART))
	return nil
}
