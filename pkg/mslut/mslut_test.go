// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

import (
	"errors"
	"math"
	"testing"
)

// ============================================================
// Test Helpers
// ============================================================

// span is a run of identical differences
type span struct {
	delta int
	count int
}

// samplesFromSpans builds 256 samples from a start value and difference spans.
// The span counts must add up to 255.
func samplesFromSpans(t *testing.T, start int, spans ...span) []int {
	t.Helper()
	values := []int{start}
	for _, s := range spans {
		for i := 0; i < s.count; i++ {
			values = append(values, values[len(values)-1]+s.delta)
		}
	}
	if len(values) != Microsteps {
		t.Fatalf("spans produce %d samples, want %d", len(values), Microsteps)
	}
	return values
}

func mustEncode(t *testing.T, values []int) *Table {
	t.Helper()
	table, err := FromSamples(values)
	if err != nil {
		t.Fatalf("FromSamples error: %v", err)
	}
	return table
}

func mustWave(t *testing.T, table *Table) []int {
	t.Helper()
	wave, err := table.FullWaveform()
	if err != nil {
		t.Fatalf("FullWaveform error: %v", err)
	}
	return wave
}

// fourSegmentSamples alternates between deltas 2 and 0 so every switch
// forces a new segment
func fourSegmentSamples(t *testing.T) []int {
	return samplesFromSpans(t, 0,
		span{2, 40}, span{0, 60}, span{2, 40}, span{0, 115})
}

// ============================================================
// Encoder Tests
// ============================================================

func TestFromFunction_Sine(t *testing.T) {
	table, err := FromFunction(Sine, DefaultAmplitude, DefaultOffset)
	if err != nil {
		t.Fatalf("FromFunction error: %v", err)
	}

	if table.StartSample() != 0 {
		t.Errorf("StartSample() = %d, want 0", table.StartSample())
	}
	if table.EndSample() != 248 {
		t.Errorf("EndSample() = %d, want 248", table.EndSample())
	}
	if table.EncodedSegments() != 2 {
		t.Errorf("EncodedSegments() = %d, want 2", table.EncodedSegments())
	}

	wantW := [SegmentCount]int{2, 1, 1, 1}
	if table.BaseIncrements() != wantW {
		t.Errorf("BaseIncrements() = %v, want %v", table.BaseIncrements(), wantW)
	}
	wantX := [SegmentCount]int{148, 256, 256, 256}
	if table.SegmentEnds() != wantX {
		t.Errorf("SegmentEnds() = %v, want %v", table.SegmentEnds(), wantX)
	}

	r := table.Registers()
	if r.MSLUTSEL != 0xFFFF9456 {
		t.Errorf("MSLUTSEL = 0x%08X, want 0xFFFF9456", r.MSLUTSEL)
	}
	if r.MSLUTSTART != 0x00F80000 {
		t.Errorf("MSLUTSTART = 0x%08X, want 0x00F80000", r.MSLUTSTART)
	}
	if r.MSLUT[0] != 0x55555555 {
		t.Errorf("MSLUT0 = 0x%08X, want 0x55555555", r.MSLUT[0])
	}
}

func TestFromFunction_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		fn       Waveform
		wantSegs int
	}{
		{name: "sine", fn: Sine, wantSegs: 2},
		{name: "triangle", fn: Triangle, wantSegs: 1},
		{name: "blend", fn: Blend(0.5), wantSegs: 2},
		{name: "power-on table", fn: PowerOn(), wantSegs: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := FromFunction(tt.fn, DefaultAmplitude, DefaultOffset)
			if err != nil {
				t.Fatalf("FromFunction error: %v", err)
			}
			if table.EncodedSegments() != tt.wantSegs {
				t.Errorf("EncodedSegments() = %d, want %d", table.EncodedSegments(), tt.wantSegs)
			}

			values := Quantize(tt.fn, DefaultAmplitude, DefaultOffset)
			wave := mustWave(t, table)
			for i := 0; i < Microsteps; i++ {
				if wave[i] != values[i] {
					t.Fatalf("wave[%d] = %d, want %d", i, wave[i], values[i])
				}
			}
		})
	}
}

func TestFromSamples_FourSegments(t *testing.T) {
	values := fourSegmentSamples(t)
	table := mustEncode(t, values)

	if table.EncodedSegments() != 4 {
		t.Fatalf("EncodedSegments() = %d, want 4", table.EncodedSegments())
	}
	wantX := [SegmentCount]int{40, 100, 140, 256}
	if table.SegmentEnds() != wantX {
		t.Errorf("SegmentEnds() = %v, want %v", table.SegmentEnds(), wantX)
	}
	wantW := [SegmentCount]int{3, 1, 3, 1}
	if table.BaseIncrements() != wantW {
		t.Errorf("BaseIncrements() = %v, want %v", table.BaseIncrements(), wantW)
	}

	wave := mustWave(t, table)
	for i := 0; i < Microsteps; i++ {
		if wave[i] != values[i] {
			t.Fatalf("wave[%d] = %d, want %d", i, wave[i], values[i])
		}
	}
}

func TestFromSamples_SegmentOverflow(t *testing.T) {
	values := samplesFromSpans(t, 0,
		span{2, 30}, span{0, 30}, span{2, 30}, span{0, 30}, span{2, 30}, span{0, 105})

	table, err := FromSamples(values)
	if !errors.Is(err, ErrSegmentOverflow) {
		t.Fatalf("expected ErrSegmentOverflow, got %v", err)
	}
	if table != nil {
		t.Error("expected no table on overflow")
	}
}

func TestFromSamples_BaseIncrementOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		values func(t *testing.T) []int
	}{
		{
			name: "base delta 3",
			values: func(t *testing.T) []int {
				return samplesFromSpans(t, 0, span{3, 50}, span{0, 205})
			},
		},
		{
			name: "base delta -2",
			values: func(t *testing.T) []int {
				return samplesFromSpans(t, 200, span{-2, 50}, span{0, 205})
			},
		},
		{
			name: "last difference only",
			values: func(t *testing.T) []int {
				return samplesFromSpans(t, 0, span{0, 254}, span{3, 1})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := FromSamples(tt.values(t))
			if !errors.Is(err, ErrBaseIncrementOutOfRange) {
				t.Fatalf("expected ErrBaseIncrementOutOfRange, got %v", err)
			}
			if table != nil {
				t.Error("expected no table on error")
			}
		})
	}
}

func TestFromSamples_SampleOutOfRange(t *testing.T) {
	values := samplesFromSpans(t, 0, span{2, 255})
	if _, err := FromSamples(values); !errors.Is(err, ErrSampleOutOfRange) {
		t.Errorf("end=510: expected ErrSampleOutOfRange, got %v", err)
	}

	values = samplesFromSpans(t, -200, span{1, 255})
	if _, err := FromSamples(values); !errors.Is(err, ErrSampleOutOfRange) {
		t.Errorf("start=-200: expected ErrSampleOutOfRange, got %v", err)
	}
}

func TestFromSamples_WrongLength(t *testing.T) {
	if _, err := FromSamples(make([]int, 100)); err == nil {
		t.Error("expected error for 100 samples")
	}
}

func TestFromFunction_Offset(t *testing.T) {
	table, err := FromFunction(Sine, 200, 20)
	if err != nil {
		t.Fatalf("FromFunction error: %v", err)
	}
	if table.StartSample() != 20 {
		t.Errorf("StartSample() = %d, want 20", table.StartSample())
	}
	wave := mustWave(t, table)
	for i := 0; i < CycleLength/2; i++ {
		if wave[CycleLength/2+i] != 40-wave[i] {
			t.Fatalf("wave[%d] = %d, want %d", CycleLength/2+i, wave[CycleLength/2+i], 40-wave[i])
		}
	}
}

// ============================================================
// Final Position Tests
// ============================================================

func TestFinalPosition_NoCorrection(t *testing.T) {
	// Position 255 has no outgoing difference, so its bit stays clear
	for _, fn := range []Waveform{Sine, Triangle, Blend(0.25)} {
		table, err := FromFunction(fn, DefaultAmplitude, DefaultOffset)
		if err != nil {
			t.Fatalf("FromFunction error: %v", err)
		}
		if table.Correction(Microsteps - 1) {
			t.Error("correction bit 255 should be clear")
		}
		if ends := table.SegmentEnds(); ends[SegmentCount-1] != Microsteps {
			t.Errorf("last segment end = %d, want %d", ends[SegmentCount-1], Microsteps)
		}
	}
}

func TestFinalPosition_LastDifferenceInRun(t *testing.T) {
	// diff[254] = 1 joins the base-0 run as a correction
	values := samplesFromSpans(t, 100, span{0, 254}, span{1, 1})
	table := mustEncode(t, values)

	if table.EncodedSegments() != 1 {
		t.Errorf("EncodedSegments() = %d, want 1", table.EncodedSegments())
	}
	if table.BaseDelta(0) != 0 {
		t.Errorf("BaseDelta(0) = %d, want 0", table.BaseDelta(0))
	}
	if !table.Correction(254) {
		t.Error("correction bit 254 should be set")
	}
	wave := mustWave(t, table)
	if wave[255] != values[255] {
		t.Errorf("wave[255] = %d, want %d", wave[255], values[255])
	}
}

func TestFinalPosition_LastDifferenceOpensSegment(t *testing.T) {
	// diff[254] = -1 cannot share a run with delta 1
	values := samplesFromSpans(t, 0, span{1, 254}, span{-1, 1})
	table := mustEncode(t, values)

	wantX := [SegmentCount]int{254, 256, 256, 256}
	if table.SegmentEnds() != wantX {
		t.Errorf("SegmentEnds() = %v, want %v", table.SegmentEnds(), wantX)
	}
	if table.BaseDelta(1) != -1 {
		t.Errorf("BaseDelta(1) = %d, want -1", table.BaseDelta(1))
	}
	wave := mustWave(t, table)
	for i := 0; i < Microsteps; i++ {
		if wave[i] != values[i] {
			t.Fatalf("wave[%d] = %d, want %d", i, wave[i], values[i])
		}
	}
}

// ============================================================
// Segmentation Tests
// ============================================================

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		diff []int
		want []Run
	}{
		{
			name: "empty",
			diff: []int{},
			want: []Run{},
		},
		{
			name: "single value",
			diff: []int{1, 1, 1},
			want: []Run{{Start: 0, End: 3, Base: 1}},
		},
		{
			name: "two adjacent values",
			diff: []int{2, 1, 2, 1},
			want: []Run{{Start: 0, End: 4, Base: 1}},
		},
		{
			name: "values two apart split",
			diff: []int{0, 0, 2, 2},
			want: []Run{{Start: 0, End: 2, Base: 0}, {Start: 2, End: 4, Base: 2}},
		},
		{
			name: "third value splits",
			diff: []int{1, 2, 1, 0, 0, 1},
			want: []Run{{Start: 0, End: 3, Base: 1}, {Start: 3, End: 6, Base: 0}},
		},
		{
			name: "negative deltas",
			diff: []int{-1, 0, -1, 1},
			want: []Run{{Start: 0, End: 3, Base: -1}, {Start: 3, End: 4, Base: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.diff)
			if len(got) != len(tt.want) {
				t.Fatalf("Segment() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("run %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ============================================================
// Decoder Tests
// ============================================================

func TestIncrementAt_Bounds(t *testing.T) {
	table, err := FromFunction(Sine, DefaultAmplitude, DefaultOffset)
	if err != nil {
		t.Fatalf("FromFunction error: %v", err)
	}

	for _, pos := range []int{-1, 256, 1000} {
		if _, err := table.IncrementAt(pos); !errors.Is(err, ErrPositionOutOfRange) {
			t.Errorf("IncrementAt(%d): expected ErrPositionOutOfRange, got %v", pos, err)
		}
	}
	for _, pos := range []int{0, 255} {
		if _, err := table.IncrementAt(pos); err != nil {
			t.Errorf("IncrementAt(%d): unexpected error %v", pos, err)
		}
	}
}

func TestIncrementAt_InvariantViolation(t *testing.T) {
	table := &Table{segmentEnd: [SegmentCount]int{10, 20, 30, 40}}

	if _, err := table.IncrementAt(5); err != nil {
		t.Errorf("IncrementAt(5): unexpected error %v", err)
	}
	if _, err := table.IncrementAt(50); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("IncrementAt(50): expected ErrInvariantViolation, got %v", err)
	}
	if _, err := table.FullWaveform(); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("FullWaveform: expected ErrInvariantViolation, got %v", err)
	}
	if _, err := table.Spectrum(1); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("Spectrum: expected ErrInvariantViolation, got %v", err)
	}
}

func TestIncrementAt_CorrectionSelectsDelta(t *testing.T) {
	values := fourSegmentSamples(t)
	table := mustEncode(t, values)

	for pos := 0; pos < Microsteps-1; pos++ {
		inc, err := table.IncrementAt(pos)
		if err != nil {
			t.Fatalf("IncrementAt(%d) error: %v", pos, err)
		}
		if want := values[pos+1] - values[pos]; inc != want {
			t.Errorf("IncrementAt(%d) = %d, want %d", pos, inc, want)
		}
	}
}

func TestFromRegisters_PowerOn(t *testing.T) {
	table := FromRegisterSet(PowerOnRegisters)

	wantW := [SegmentCount]int{2, 1, 1, 1}
	if table.BaseIncrements() != wantW {
		t.Errorf("BaseIncrements() = %v, want %v", table.BaseIncrements(), wantW)
	}
	wantX := [SegmentCount]int{128, 255, 255, 256}
	if table.SegmentEnds() != wantX {
		t.Errorf("SegmentEnds() = %v, want %v", table.SegmentEnds(), wantX)
	}
	if table.StartSample() != 0 || table.EndSample() != 247 {
		t.Errorf("start/end = %d/%d, want 0/247", table.StartSample(), table.EndSample())
	}
	if table.EncodedSegments() != 0 {
		t.Errorf("EncodedSegments() = %d, want 0 for register tables", table.EncodedSegments())
	}
	if table.ActiveSegments() != 3 {
		t.Errorf("ActiveSegments() = %d, want 3", table.ActiveSegments())
	}
	if table.Corrections() != PowerOnRegisters.MSLUT {
		t.Error("corrections should be stored verbatim")
	}
}

func TestRegisters_RoundTrip(t *testing.T) {
	tables := map[string]*Table{}
	for _, name := range WaveformNames() {
		fn, err := WaveformByName(name)
		if err != nil {
			t.Fatalf("WaveformByName(%q) error: %v", name, err)
		}
		table, err := FromFunction(fn, DefaultAmplitude, DefaultOffset)
		if err != nil {
			t.Fatalf("FromFunction(%q) error: %v", name, err)
		}
		tables[name] = table
	}
	tables["four segments"] = mustEncode(t, fourSegmentSamples(t))
	tables["late segment"] = mustEncode(t, samplesFromSpans(t, 0, span{1, 254}, span{-1, 1}))

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			regs := table.Registers()
			decoded := FromRegisterSet(regs)

			if !decoded.Equivalent(table) {
				t.Error("decoded table is not equivalent to the encoded table")
			}
			for pos := 0; pos < Microsteps; pos++ {
				a, _ := table.IncrementAt(pos)
				b, _ := decoded.IncrementAt(pos)
				if a != b {
					t.Fatalf("IncrementAt(%d): encoded %d, decoded %d", pos, a, b)
				}
			}
			if decoded.Registers() != regs {
				t.Errorf("re-packed registers differ:\n got %+v\nwant %+v", decoded.Registers(), regs)
			}
		})
	}
}

func TestRegisters_PowerOnLossless(t *testing.T) {
	table := FromRegisterSet(PowerOnRegisters)
	if table.Registers() != PowerOnRegisters {
		t.Errorf("Registers() = %+v, want %+v", table.Registers(), PowerOnRegisters)
	}
}

func TestTable_IndependentArrays(t *testing.T) {
	a, err := FromFunction(Sine, DefaultAmplitude, DefaultOffset)
	if err != nil {
		t.Fatalf("FromFunction error: %v", err)
	}
	b := mustEncode(t, fourSegmentSamples(t))

	ends := a.SegmentEnds()
	ends[0] = 0
	if a.SegmentEnds()[0] != 148 {
		t.Error("SegmentEnds() must return a copy")
	}
	if a.SegmentEnds() == b.SegmentEnds() {
		t.Error("tables should not share boundaries")
	}
}

// ============================================================
// Waveform Tests
// ============================================================

func TestFullWaveform_Symmetry(t *testing.T) {
	for _, values := range [][]int{
		fourSegmentSamples(t),
		samplesFromSpans(t, 10, span{1, 100}, span{0, 155}),
	} {
		table := mustEncode(t, values)
		wave := mustWave(t, table)
		if len(wave) != CycleLength {
			t.Fatalf("len(wave) = %d, want %d", len(wave), CycleLength)
		}

		start := table.StartSample()
		for i := 0; i < Microsteps; i++ {
			if wave[Microsteps+i] != wave[Microsteps-1-i] {
				t.Fatalf("wave[%d] = %d, want mirror %d", Microsteps+i, wave[Microsteps+i], wave[Microsteps-1-i])
			}
		}
		for i := 0; i < CycleLength/2; i++ {
			if wave[CycleLength/2+i] != 2*start-wave[i] {
				t.Fatalf("wave[%d] = %d, want %d", CycleLength/2+i, wave[CycleLength/2+i], 2*start-wave[i])
			}
		}
	}
}

func TestQuarterWave_MatchesFullWaveform(t *testing.T) {
	table := FromRegisterSet(PowerOnRegisters)
	quarter, err := table.QuarterWave()
	if err != nil {
		t.Fatalf("QuarterWave error: %v", err)
	}
	wave := mustWave(t, table)
	for i := range quarter {
		if quarter[i] != wave[i] {
			t.Fatalf("quarter[%d] = %d, wave[%d] = %d", i, quarter[i], i, wave[i])
		}
	}
	if quarter[255] != 248 {
		t.Errorf("quarter[255] = %d, want 248", quarter[255])
	}
}

func TestWaveformByName_Unknown(t *testing.T) {
	if _, err := WaveformByName("square"); err == nil {
		t.Error("expected error for unknown waveform")
	}
}

// ============================================================
// Spectrum Tests
// ============================================================

func TestSpectrum_SineTable(t *testing.T) {
	table, err := FromFunction(Sine, DefaultAmplitude, DefaultOffset)
	if err != nil {
		t.Fatalf("FromFunction error: %v", err)
	}

	result, err := table.Spectrum(DefaultAmplitude)
	if err != nil {
		t.Fatalf("Spectrum error: %v", err)
	}
	if len(result.Frequency) != len(result.Magnitude) {
		t.Fatalf("frequency/magnitude length mismatch: %d != %d", len(result.Frequency), len(result.Magnitude))
	}
	if len(result.Magnitude) != CycleLength/2+1 {
		t.Errorf("bins = %d, want %d", len(result.Magnitude), CycleLength/2+1)
	}
	if result.Frequency[1] != 1 {
		t.Errorf("Frequency[1] = %v, want 1", result.Frequency[1])
	}
	if f := result.Fundamental(); math.Abs(f-1) > 0.05 {
		t.Errorf("fundamental = %v, want within 5%% of 1", f)
	}
	for i, m := range result.Magnitude {
		if i != 1 && m >= 0.05 {
			t.Errorf("bin %d magnitude = %v, want < 0.05", i, m)
		}
	}
	if bin, m := result.MaxSpur(); m >= 0.05 {
		t.Errorf("MaxSpur() = bin %d magnitude %v", bin, m)
	}
	if thd := result.THD(); thd > 0.01 {
		t.Errorf("THD() = %v, want below 1%%", thd)
	}
}

func TestSpectrum_PureTone(t *testing.T) {
	samples := make([]float64, CycleLength)
	for i := range samples {
		samples[i] = 0.5 * math.Cos(2*math.Pi*3*float64(i)/CycleLength)
	}

	result, err := Spectrum(samples)
	if err != nil {
		t.Fatalf("Spectrum error: %v", err)
	}
	if math.Abs(result.Magnitude[3]-0.5) > 1e-9 {
		t.Errorf("bin 3 magnitude = %v, want 0.5", result.Magnitude[3])
	}
	if result.Frequency[3] != 3 {
		t.Errorf("Frequency[3] = %v, want 3", result.Frequency[3])
	}
	h := result.Harmonics(4)
	if len(h) != 4 || math.Abs(h[2]-0.5) > 1e-9 {
		t.Errorf("Harmonics(4) = %v", h)
	}
}

func TestSpectrum_Empty(t *testing.T) {
	if _, err := Spectrum(nil); !errors.Is(err, ErrEmptySamples) {
		t.Errorf("expected ErrEmptySamples, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]int{0, 124, -248}, 248)
	want := []float64{0, 0.5, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Normalize()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
