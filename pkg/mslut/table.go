// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

// Registers is the packed register view of a Table
type Registers struct {
	MSLUT      [CorrectionWords]uint32
	MSLUTSEL   uint32
	MSLUTSTART uint32
}

// Table is an immutable microstep lookup table.
//
// baseIncrement holds the raw 2-bit W fields (delta+1). segmentEnd holds the
// exclusive end position of each segment; segmentEnd[3] is always 256 for
// tables built by this package.
type Table struct {
	corrections   [CorrectionWords]uint32
	baseIncrement [SegmentCount]int
	segmentEnd    [SegmentCount]int
	startSample   int
	endSample     int

	// Segments the encoder actually produced (0 when parsed from registers)
	segments int
}

// Correction returns the correction bit for a position.
// Positions outside [0,255] report false.
func (t *Table) Correction(pos int) bool {
	if pos < 0 || pos >= Microsteps {
		return false
	}
	return t.corrections[pos/wordBits]&(1<<uint(pos%wordBits)) != 0
}

// Corrections returns a copy of the packed correction words (MSLUT0..7)
func (t *Table) Corrections() [CorrectionWords]uint32 {
	return t.corrections
}

// BaseIncrements returns the raw W0..W3 field values
func (t *Table) BaseIncrements() [SegmentCount]int {
	return t.baseIncrement
}

// BaseDelta returns the minimum step delta of segment i (W-1)
func (t *Table) BaseDelta(i int) int {
	return t.baseIncrement[i] - 1
}

// SegmentEnds returns the exclusive end position of each segment
func (t *Table) SegmentEnds() [SegmentCount]int {
	return t.segmentEnd
}

// SegmentStart returns the first position of segment i
func (t *Table) SegmentStart(i int) int {
	if i == 0 {
		return 0
	}
	return t.segmentEnd[i-1]
}

// StartSample returns the waveform value at position 0 (START_SIN)
func (t *Table) StartSample() int {
	return t.startSample
}

// EndSample returns the waveform value at position 255 (START_SIN90)
func (t *Table) EndSample() int {
	return t.endSample
}

// EncodedSegments returns the number of segments the encoder used.
// Tables parsed from registers return 0; use ActiveSegments instead.
func (t *Table) EncodedSegments() int {
	return t.segments
}

// ActiveSegments counts segments that cover at least one position
func (t *Table) ActiveSegments() int {
	n := 0
	for i := 0; i < SegmentCount; i++ {
		if t.segmentEnd[i] > t.SegmentStart(i) {
			n++
		}
	}
	return n
}

// Registers returns the packed register values.
//
// An in-memory boundary of 256 does not fit the 8-bit X field and is packed
// as 255, which hands position 255 to segment 3. W3 is then packed with the
// base increment of the segment that owned it, so FromRegisterSet(t.Registers())
// decodes identically.
func (t *Table) Registers() Registers {
	var sel uint32
	w := t.baseIncrement
	if owner := t.segmentOf(Microsteps - 1); owner >= 0 && owner < SegmentCount-1 {
		w[SegmentCount-1] = w[owner]
	}
	for i := 0; i < SegmentCount; i++ {
		sel |= uint32(w[i]&fieldMask) << uint(2*i)
	}
	for i := 0; i < BoundaryCount; i++ {
		x := t.segmentEnd[i]
		if x > maxBoundary {
			x = maxBoundary
		}
		sel |= uint32(x&boundaryMask) << uint(selBoundaryShift+8*i)
	}

	start := uint32(t.startSample&sampleMask) | uint32(t.endSample&sampleMask)<<startSin90Shift

	return Registers{
		MSLUT:      t.corrections,
		MSLUTSEL:   sel,
		MSLUTSTART: start,
	}
}

// Equivalent reports whether two tables decode to the same increment at every
// position and share the same start sample.
func (t *Table) Equivalent(other *Table) bool {
	if t.startSample&sampleMask != other.startSample&sampleMask {
		return false
	}
	for pos := 0; pos < Microsteps; pos++ {
		a, errA := t.IncrementAt(pos)
		b, errB := other.IncrementAt(pos)
		if (errA == nil) != (errB == nil) || a != b {
			return false
		}
	}
	return true
}
