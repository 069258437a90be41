// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package mslut encodes and decodes the microstep lookup table (MSLUT) of the
// Trinamic microstepping driver family.
//
// The driver stores one quarter of the electrical cycle as 256 one-bit
// corrections on top of up to four segments, each with a 2-bit base
// increment. This package converts between a waveform function, the packed
// register set and the reconstructed 1024-sample cycle, and provides a
// spectral view of the result for comparing tables against an ideal sine.
package mslut

// Table geometry
const (
	Microsteps      = 256  // Positions in one quarter period
	CycleLength     = 1024 // Positions in one electrical cycle
	SegmentCount    = 4    // W0..W3
	BoundaryCount   = 3    // X1..X3 (segment 3 always ends at Microsteps)
	CorrectionWords = 8    // MSLUT0..MSLUT7
	wordBits        = 32
)

// Base increment limits. The 2-bit W field stores delta+1.
const (
	MinBaseDelta = -1
	MaxBaseDelta = 2
	fieldMask    = 0x03
	boundaryMask = 0xFF
	maxBoundary  = 0xFF // Largest X value that fits the 8-bit field
)

// Start sample limits (START_SIN and START_SIN90 are 8-bit fields)
const (
	MinSample  = -128
	MaxSample  = 255
	sampleMask = 0xFF
)

// MSLUTSEL and MSLUTSTART bit offsets
const (
	selBoundaryShift = 8  // X1 at [15:8], X2 at [23:16], X3 at [31:24]
	startSin90Shift  = 16 // START_SIN90 at [23:16]
)

// Register addresses shared by TMC5160, TMC2240 and TMC5240
const (
	RegMSLUT0     = 0x60
	RegMSLUT1     = 0x61
	RegMSLUT2     = 0x62
	RegMSLUT3     = 0x63
	RegMSLUT4     = 0x64
	RegMSLUT5     = 0x65
	RegMSLUT6     = 0x66
	RegMSLUT7     = 0x67
	RegMSLUTSEL   = 0x68
	RegMSLUTSTART = 0x69
	RegMSCNT      = 0x6A // Microstep counter (read only)
	RegMSCURACT   = 0x6B // Actual microstep current (read only)
)

// Default encoder parameters
const (
	DefaultAmplitude = 248
	DefaultOffset    = 0
)

// SpectrumSampleRate is the assumed sample rate of a reconstructed cycle
const SpectrumSampleRate = CycleLength
