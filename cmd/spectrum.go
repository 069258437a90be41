// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/Thermoquad/sinestat/pkg/mslut"
	"github.com/spf13/cobra"
)

var (
	spectrumSource tableSource
	spectrumBins   int
	spectrumCSV    string
)

var spectrumCmd = &cobra.Command{
	Use:   "spectrum",
	Short: "Show the frequency spectrum of a table's current waveform",
	Long: `Reconstruct the full 1024-microstep electrical cycle of a table and transform
it with a real FFT.

Magnitudes are normalized to the waveform amplitude, so a perfect sine table
shows 1.0 at bin 1 (the fundamental) and nothing elsewhere. Odd harmonics
(bins 3, 5, 7...) are the usual cause of mid-band resonance and are listed
individually.`,
	RunE: runSpectrum,
}

func init() {
	rootCmd.AddCommand(spectrumCmd)
	spectrumSource.addFlags(spectrumCmd)
	spectrumCmd.Flags().IntVar(&spectrumBins, "bins", 16, "Number of bins to print")
	spectrumCmd.Flags().StringVar(&spectrumCSV, "csv", "", "Write every bin to a CSV file")
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	table, info, err := spectrumSource.load()
	if err != nil {
		return err
	}

	result, err := table.Spectrum(spectrumAmplitude(info))
	if err != nil {
		return fmt.Errorf("failed to reconstruct waveform: %w", err)
	}

	fmt.Printf("Sinestat - Spectrum of %s\n\n", info.Waveform)
	printSpectrumSummary(table, float64(info.Amplitude))

	fmt.Printf("\n  Bin  Frequency  Magnitude\n")
	for i := 0; i < spectrumBins && i < len(result.Magnitude); i++ {
		fmt.Printf("  %3d  %9.1f  %9.6f  %s\n", i, result.Frequency[i], result.Magnitude[i], magnitudeBar(result.Magnitude[i], 40))
	}

	if spectrumCSV != "" {
		if err := writeSpectrumCSV(spectrumCSV, result); err != nil {
			return err
		}
		fmt.Printf("\nSpectrum written to %s\n", spectrumCSV)
	}
	return nil
}

// spectrumAmplitude falls back to the default amplitude for tables
// without provenance
func spectrumAmplitude(info mslut.TableInfo) float64 {
	if info.Amplitude > 0 {
		return float64(info.Amplitude)
	}
	return mslut.DefaultAmplitude
}

// printSpectrumSummary prints fundamental, distortion and the worst spur
func printSpectrumSummary(table *mslut.Table, amplitude float64) {
	if amplitude <= 0 {
		amplitude = mslut.DefaultAmplitude
	}
	result, err := table.Spectrum(amplitude)
	if err != nil {
		fmt.Printf("Spectrum: unavailable (%v)\n", err)
		return
	}

	bin, spur := result.MaxSpur()
	fmt.Printf("Spectrum:\n")
	fmt.Printf("  Fundamental: %.4f\n", result.Fundamental())
	fmt.Printf("  THD:         %.4f%%\n", result.THD()*100)
	fmt.Printf("  Max spur:    %.4f (bin %d)\n", spur, bin)

	harmonics := result.Harmonics(7)
	fmt.Printf("  Harmonics:  ")
	for i := 2; i < len(harmonics); i += 2 {
		fmt.Printf(" H%d=%.4f", i+1, harmonics[i])
	}
	fmt.Println()
}

// magnitudeBar renders a magnitude in [0,1] as a bar of up to width cells
func magnitudeBar(m float64, width int) string {
	n := int(m*float64(width) + 0.5)
	if n > width {
		n = width
	}
	if n < 0 {
		n = 0
	}
	bar := make([]rune, n)
	for i := range bar {
		bar[i] = '█'
	}
	return string(bar)
}

func writeSpectrumCSV(path string, result *mslut.SpectrumResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"bin", "frequency", "magnitude"}); err != nil {
		return err
	}
	for i := range result.Magnitude {
		w.Write([]string{
			strconv.Itoa(i),
			strconv.FormatFloat(result.Frequency[i], 'f', 3, 64),
			strconv.FormatFloat(result.Magnitude[i], 'g', -1, 64),
		})
	}
	w.Flush()
	return w.Error()
}
