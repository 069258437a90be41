// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Thermoquad/sinestat/pkg/mslut"
	"github.com/Thermoquad/sinestat/pkg/regaccess"
	"github.com/spf13/cobra"
)

var (
	captureSteps int
	captureDelay time.Duration
	captureCSV   string
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Step the X axis and sample the driver's coil currents",
	Long: `Move the X axis one microstep at a time and record MSCNT (the position in the
table) and MSCURACT (the actual coil A and B currents) after every step.

The axis is switched to relative mode with 256 microsteps and 10 steps/mm so
each G1 X0.1 move advances exactly one microstep, and is returned to absolute
mode afterwards. Make sure the axis is free to move before running this.

The captured coil A current over one quarter cycle should match the table's
reconstructed quarter wave; the comparison is printed at the end.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().IntVar(&captureSteps, "steps", mslut.Microsteps, "Microsteps to sample")
	captureCmd.Flags().DurationVar(&captureDelay, "delay", 100*time.Millisecond, "Settle time after each step")
	captureCmd.Flags().StringVar(&captureCSV, "csv", "", "Write the samples to a CSV file")
}

func runCapture(cmd *cobra.Command, args []string) error {
	client, closer, connInfo := OpenClient()
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Sinestat - Capture\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Driver: %d, %d microsteps, %v settle time\n\n", client.Driver(), captureSteps, captureDelay)

	table, err := regaccess.ReadTable(ctx, client)
	if err != nil {
		return err
	}

	sampler := regaccess.NewSampler(client, regaccess.SamplerConfig{
		Steps:     captureSteps,
		StepDelay: captureDelay,
		Progress: func(done, total int) {
			fmt.Printf("\rMicrostep %d/%d", done, total)
		},
	})

	start := time.Now()
	capture, err := sampler.Run(ctx)
	fmt.Println()
	if err != nil {
		if capture == nil || len(capture.Samples) == 0 {
			return err
		}
		fmt.Fprintf(os.Stderr, "Capture stopped early: %v\n", err)
	}
	fmt.Printf("Captured %d samples in %v\n\n", len(capture.Samples), time.Since(start).Round(time.Millisecond))

	fmt.Printf("  Step  MSCNT  CUR_A  CUR_B\n")
	for i, s := range capture.Samples {
		fmt.Printf("  %4d  %5d  %5d  %5d\n", i, s.Position, s.CoilA, s.CoilB)
	}

	if cmp, cmpErr := capture.Compare(table); cmpErr != nil {
		fmt.Printf("\nComparison unavailable: %v\n", cmpErr)
	} else {
		fmt.Printf("\nComparison with the driver's table (%d samples):\n", cmp.Samples)
		fmt.Printf("  Current scale: %.3f\n", cmp.Scale)
		fmt.Printf("  Max deviation: %.1f (step %d)\n", cmp.MaxError, cmp.MaxAt)
	}

	if captureCSV != "" {
		if err := writeCaptureCSV(captureCSV, capture); err != nil {
			return err
		}
		fmt.Printf("\nSamples written to %s\n", captureCSV)
	}

	stats := client.Statistics()
	fmt.Printf("\n%s", stats.String())
	return err
}

func writeCaptureCSV(path string, capture *regaccess.Capture) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "mscnt", "cur_a", "cur_b"}); err != nil {
		return err
	}
	for i, s := range capture.Samples {
		w.Write([]string{
			strconv.Itoa(i),
			strconv.Itoa(s.Position),
			strconv.Itoa(s.CoilA),
			strconv.Itoa(s.CoilB),
		})
	}
	w.Flush()
	return w.Error()
}
