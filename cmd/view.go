// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	viewSource tableSource
	viewOut    string
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Interactive table viewer",
	Long: `Browse a microstep table in a terminal UI: the reconstructed waveform, its
spectrum, the segment layout and the correction bits.

When the table comes from a named waveform, the waveform, amplitude, offset
and blend factor can be changed live and the table is re-encoded on every
change. Press 's' to save the current table to --out.`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewSource.addFlags(viewCmd)
	viewCmd.Flags().StringVar(&viewOut, "out", "table.lut", "Table file written by the save key")
}

func runView(cmd *cobra.Command, args []string) error {
	m := initialViewModel(viewSource, viewOut)
	if m.err != nil && m.table == nil {
		return m.err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
