// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

import "errors"

var (
	// ErrSegmentOverflow indicates the waveform needs more than four segments.
	ErrSegmentOverflow = errors.New("mslut: cannot fit function in 4 segments")
	// ErrBaseIncrementOutOfRange indicates a segment minimum delta outside [-1,2].
	ErrBaseIncrementOutOfRange = errors.New("mslut: segment base increment out of range")
	// ErrPositionOutOfRange indicates a decode query outside [0,255].
	ErrPositionOutOfRange = errors.New("mslut: position out of range")
	// ErrInvariantViolation indicates no segment covers a queried position.
	ErrInvariantViolation = errors.New("mslut: no segment covers position")
	// ErrSampleOutOfRange indicates a start or end sample that does not fit 8 bits.
	ErrSampleOutOfRange = errors.New("mslut: start/end sample out of 8-bit range")
	// ErrEmptySamples indicates a spectrum request with no samples.
	ErrEmptySamples = errors.New("mslut: empty sample sequence")
	// ErrTableCRC indicates a table file whose checksum does not match.
	ErrTableCRC = errors.New("mslut: table file CRC mismatch")
	// ErrTableVersion indicates a table file with an unsupported version.
	ErrTableVersion = errors.New("mslut: unsupported table file version")
)
