// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// SpectrumResult holds the one-sided spectrum of a sample sequence.
// Frequency and Magnitude are parallel; bin k is k cycles per cycle length.
type SpectrumResult struct {
	Frequency []float64
	Magnitude []float64
}

// Spectrum computes the one-sided amplitude spectrum of samples, assuming
// SpectrumSampleRate samples per unit time. Magnitudes are scaled by 2/N so
// a unit sinusoid reports 1 at its bin.
func Spectrum(samples []float64) (*SpectrumResult, error) {
	n := len(samples)
	if n == 0 {
		return nil, ErrEmptySamples
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, samples)

	res := &SpectrumResult{
		Frequency: make([]float64, len(coeff)),
		Magnitude: make([]float64, len(coeff)),
	}
	scale := 2 / float64(n)
	for i, c := range coeff {
		res.Frequency[i] = fft.Freq(i) * SpectrumSampleRate
		res.Magnitude[i] = cmplx.Abs(c) * scale
	}
	return res, nil
}

// Normalize converts integer samples to floats divided by amplitude
func Normalize(wave []int, amplitude float64) []float64 {
	out := make([]float64, len(wave))
	for i, v := range wave {
		out[i] = float64(v) / amplitude
	}
	return out
}

// Spectrum reconstructs the full cycle and returns its spectrum normalized
// to amplitude. An amplitude of 0 leaves samples unscaled.
func (t *Table) Spectrum(amplitude float64) (*SpectrumResult, error) {
	wave, err := t.FullWaveform()
	if err != nil {
		return nil, err
	}
	if amplitude == 0 {
		amplitude = 1
	}
	return Spectrum(Normalize(wave, amplitude))
}

// Fundamental returns the magnitude of bin 1
func (s *SpectrumResult) Fundamental() float64 {
	if len(s.Magnitude) < 2 {
		return 0
	}
	return s.Magnitude[1]
}

// Harmonics returns the magnitudes of bins 1..n (fewer if the spectrum is short)
func (s *SpectrumResult) Harmonics(n int) []float64 {
	end := n + 1
	if end > len(s.Magnitude) {
		end = len(s.Magnitude)
	}
	if end <= 1 {
		return nil
	}
	out := make([]float64, end-1)
	copy(out, s.Magnitude[1:end])
	return out
}

// THD returns the total harmonic distortion relative to the fundamental.
// DC is excluded.
func (s *SpectrumResult) THD() float64 {
	f := s.Fundamental()
	if f == 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, m := range s.Magnitude[2:] {
		sum += m * m
	}
	return math.Sqrt(sum) / f
}

// MaxSpur returns the largest magnitude outside bin 1 and its bin index
func (s *SpectrumResult) MaxSpur() (bin int, magnitude float64) {
	for i, m := range s.Magnitude {
		if i == 1 {
			continue
		}
		if m > magnitude {
			bin, magnitude = i, m
		}
	}
	return bin, magnitude
}
