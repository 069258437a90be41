// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

import "fmt"

// FromRegisters builds a Table from raw register values.
//
// Only field extraction is performed. Malformed values (for example
// decreasing X boundaries) yield a Table whose decode operations report
// ErrInvariantViolation or odd increments; use ValidateTable to inspect them.
func FromRegisters(mslut [CorrectionWords]uint32, mslutsel, mslutstart uint32) *Table {
	t := &Table{
		corrections: mslut,
		startSample: int(mslutstart & sampleMask),
		endSample:   int((mslutstart >> startSin90Shift) & sampleMask),
	}

	for i := 0; i < SegmentCount; i++ {
		t.baseIncrement[i] = int((mslutsel >> uint(2*i)) & fieldMask)
	}
	for i := 0; i < BoundaryCount; i++ {
		t.segmentEnd[i] = int((mslutsel >> uint(selBoundaryShift+8*i)) & boundaryMask)
	}
	t.segmentEnd[SegmentCount-1] = Microsteps

	return t
}

// FromRegisterSet is FromRegisters for a packed Registers value
func FromRegisterSet(r Registers) *Table {
	return FromRegisters(r.MSLUT, r.MSLUTSEL, r.MSLUTSTART)
}

// segmentOf returns the first segment whose end lies beyond pos, or -1
func (t *Table) segmentOf(pos int) int {
	for i := 0; i < SegmentCount; i++ {
		if pos < t.segmentEnd[i] {
			return i
		}
	}
	return -1
}

// IncrementAt returns the step delta from position pos to pos+1
func (t *Table) IncrementAt(pos int) (int, error) {
	if pos < 0 || pos >= Microsteps {
		return 0, fmt.Errorf("%w: %d", ErrPositionOutOfRange, pos)
	}

	seg := t.segmentOf(pos)
	if seg < 0 {
		return 0, fmt.Errorf("%w: %d (segment ends %v)", ErrInvariantViolation, pos, t.segmentEnd)
	}

	inc := t.baseIncrement[seg] - 1
	if t.Correction(pos) {
		inc++
	}
	return inc, nil
}

// Increments decodes every position, stopping at the first failure
func (t *Table) Increments() ([Microsteps]int, error) {
	var incs [Microsteps]int
	for pos := 0; pos < Microsteps; pos++ {
		inc, err := t.IncrementAt(pos)
		if err != nil {
			return incs, err
		}
		incs[pos] = inc
	}
	return incs, nil
}
