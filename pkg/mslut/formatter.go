// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

import (
	"fmt"
	"strings"
)

// RegisterName returns the datasheet name for a LUT register address
func RegisterName(addr uint8) string {
	switch {
	case addr >= RegMSLUT0 && addr <= RegMSLUT7:
		return fmt.Sprintf("MSLUT%d", addr-RegMSLUT0)
	case addr == RegMSLUTSEL:
		return "MSLUTSEL"
	case addr == RegMSLUTSTART:
		return "MSLUTSTART"
	case addr == RegMSCNT:
		return "MSCNT"
	case addr == RegMSCURACT:
		return "MSCURACT"
	default:
		return "UNKNOWN"
	}
}

// FormatRegisters formats a register set one register per line
func FormatRegisters(r Registers) string {
	var s strings.Builder
	for i, w := range r.MSLUT {
		addr := uint8(RegMSLUT0 + i)
		s.WriteString(fmt.Sprintf("  %-10s (0x%02X) = 0x%08X\n", RegisterName(addr), addr, w))
	}
	s.WriteString(fmt.Sprintf("  %-10s (0x%02X) = 0x%08X\n", "MSLUTSEL", RegMSLUTSEL, r.MSLUTSEL))
	s.WriteString(fmt.Sprintf("  %-10s (0x%02X) = 0x%08X\n", "MSLUTSTART", RegMSLUTSTART, r.MSLUTSTART))
	return s.String()
}

// FormatSegments formats the segment table
func FormatSegments(t *Table) string {
	var s strings.Builder
	s.WriteString("  Seg  Range      W  Deltas\n")
	for i := 0; i < SegmentCount; i++ {
		start, end := t.SegmentStart(i), t.segmentEnd[i]
		if end <= start {
			s.WriteString(fmt.Sprintf("  %d    (empty)    %d\n", i, t.baseIncrement[i]))
			continue
		}
		base := t.BaseDelta(i)
		s.WriteString(fmt.Sprintf("  %d    %3d..%-3d    %d  %+d/%+d\n", i, start, end-1, t.baseIncrement[i], base, base+1))
	}
	return s.String()
}

// FormatCorrections renders the correction bits as 8 rows of 32
func FormatCorrections(t *Table) string {
	var s strings.Builder
	for w := 0; w < CorrectionWords; w++ {
		s.WriteString(fmt.Sprintf("  %3d ", w*wordBits))
		for b := 0; b < wordBits; b++ {
			if t.Correction(w*wordBits + b) {
				s.WriteByte('1')
			} else {
				s.WriteByte('.')
			}
		}
		s.WriteByte('\n')
	}
	return s.String()
}

// FormatTable formats a table into a human-readable summary
func FormatTable(t *Table) string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("START_SIN=%d START_SIN90=%d segments=%d\n",
		t.startSample&sampleMask, t.endSample&sampleMask, t.ActiveSegments()))
	s.WriteString("Registers:\n")
	s.WriteString(FormatRegisters(t.Registers()))
	s.WriteString("Segments:\n")
	s.WriteString(FormatSegments(t))
	s.WriteString("Corrections:\n")
	s.WriteString(FormatCorrections(t))
	return s.String()
}

// FormatValidationErrors formats validation errors one per line
func FormatValidationErrors(errs []ValidationError) string {
	if len(errs) == 0 {
		return "  (no anomalies)\n"
	}
	var s strings.Builder
	for i, err := range errs {
		s.WriteString(fmt.Sprintf("  Issue %d: %s\n", i+1, err.Message))
	}
	return s.String()
}
