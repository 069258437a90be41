// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

import "fmt"

// AnomalyType represents different kinds of table anomalies
type AnomalyType int

const (
	AnomalyBoundaryOrder AnomalyType = iota
	AnomalyEmptySegment
	AnomalyEndMismatch
	AnomalyInvariant
)

// endTolerance is the allowed difference between START_SIN90 and the
// reconstructed sample 255. The power-on table of the chip differs by one.
const endTolerance = 1

// ValidationError represents a table validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateTable checks a table for structural anomalies.
// Returns a slice of validation errors (empty if the table is sound).
func ValidateTable(t *Table) []ValidationError {
	errs := []ValidationError{}

	for i := 1; i < SegmentCount; i++ {
		if t.segmentEnd[i] < t.segmentEnd[i-1] {
			errs = append(errs, ValidationError{
				Type:    AnomalyBoundaryOrder,
				Message: fmt.Sprintf("Segment %d ends at %d before segment %d (%d)", i, t.segmentEnd[i], i-1, t.segmentEnd[i-1]),
				Details: map[string]interface{}{"segment": i, "end": t.segmentEnd[i], "previous": t.segmentEnd[i-1]},
			})
		}
	}

	if t.segmentEnd[0] == 0 {
		errs = append(errs, ValidationError{
			Type:    AnomalyEmptySegment,
			Message: "Segment 0 is empty (X1=0)",
			Details: map[string]interface{}{"segment": 0},
		})
	}

	wave, err := t.QuarterWave()
	if err != nil {
		return append(errs, ValidationError{
			Type:    AnomalyInvariant,
			Message: fmt.Sprintf("Reconstruction failed: %v", err),
			Details: map[string]interface{}{"error": err},
		})
	}

	got := wave[Microsteps-1]
	want := t.endSample & sampleMask
	// Compared modulo 256, since both fields are bytes on the chip
	if diff := int(int8(uint8(got - want))); diff > endTolerance || diff < -endTolerance {
		errs = append(errs, ValidationError{
			Type:    AnomalyEndMismatch,
			Message: fmt.Sprintf("Reconstructed sample 255=%d, START_SIN90=%d", got, want),
			Details: map[string]interface{}{"reconstructed": got, "start_sin90": want},
		})
	}

	return errs
}
