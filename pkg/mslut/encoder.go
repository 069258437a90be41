// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

import (
	"fmt"
	"math"
)

// Waveform maps a quarter-period step index (0..255) to an amplitude
type Waveform func(step int) float64

// Run is one greedy segment of a difference sequence.
// Start and End are difference indices, End exclusive.
type Run struct {
	Start int
	End   int
	Base  int // Minimum delta in the run
}

// Segment greedily partitions a difference sequence into runs whose values
// are all either the run's base or base+1. A run is closed as soon as the
// next difference would make that impossible. An empty input yields no runs.
func Segment(diff []int) []Run {
	runs := []Run{}
	if len(diff) == 0 {
		return runs
	}

	start := 0
	lo, hi := diff[0], diff[0]
	for i := 1; i < len(diff); i++ {
		d := diff[i]
		nlo, nhi := min(lo, d), max(hi, d)
		if nhi-nlo > 1 {
			runs = append(runs, Run{Start: start, End: i, Base: lo})
			start = i
			lo, hi = d, d
			continue
		}
		lo, hi = nlo, nhi
	}
	runs = append(runs, Run{Start: start, End: len(diff), Base: lo})
	return runs
}

// Quantize samples the waveform at every position, rounding half up
func Quantize(fn Waveform, amplitude, offset int) [Microsteps]int {
	var values [Microsteps]int
	for i := 0; i < Microsteps; i++ {
		values[i] = int(math.Floor(fn(i)*float64(amplitude) + float64(offset) + 0.5))
	}
	return values
}

// FromFunction encodes a waveform into a Table.
// The function is sampled at positions 0..255 and quantized with
// round(fn(i)*amplitude + offset).
func FromFunction(fn Waveform, amplitude, offset int) (*Table, error) {
	values := Quantize(fn, amplitude, offset)
	return FromSamples(values[:])
}

// FromSamples encodes 256 already-quantized quarter-period samples.
// No Table is returned unless every segment fits the register fields.
func FromSamples(values []int) (*Table, error) {
	if len(values) != Microsteps {
		return nil, fmt.Errorf("mslut: expected %d samples, got %d", Microsteps, len(values))
	}
	first, last := values[0], values[Microsteps-1]
	if first < MinSample || first > MaxSample {
		return nil, fmt.Errorf("%w: start=%d", ErrSampleOutOfRange, first)
	}
	if last < MinSample || last > MaxSample {
		return nil, fmt.Errorf("%w: end=%d", ErrSampleOutOfRange, last)
	}

	diff := make([]int, Microsteps-1)
	for i := range diff {
		diff[i] = values[i+1] - values[i]
	}

	runs := Segment(diff)
	if len(runs) > SegmentCount {
		return nil, fmt.Errorf("%w: needs %d segments", ErrSegmentOverflow, len(runs))
	}

	t := &Table{
		startSample: first,
		endSample:   last,
		segments:    len(runs),
	}

	for k, run := range runs {
		if run.Base < MinBaseDelta || run.Base > MaxBaseDelta {
			return nil, fmt.Errorf("%w: segment %d at position %d has base %d",
				ErrBaseIncrementOutOfRange, k, run.Start, run.Base)
		}
		t.baseIncrement[k] = run.Base + 1
		t.segmentEnd[k] = run.End
		for p := run.Start; p < run.End; p++ {
			if diff[p] != run.Base {
				t.corrections[p/wordBits] |= 1 << uint(p%wordBits)
			}
		}
	}

	// The final run owns position 255, which has no outgoing difference
	final := len(runs) - 1
	t.segmentEnd[final] = Microsteps
	for k := final + 1; k < SegmentCount; k++ {
		t.baseIncrement[k] = t.baseIncrement[final]
		t.segmentEnd[k] = Microsteps
	}

	return t, nil
}
