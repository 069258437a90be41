// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// TableFileVersion is the current table file format version
const TableFileVersion = 1

// TableInfo carries optional provenance stored alongside the registers
type TableInfo struct {
	Waveform  string
	Amplitude int
	Offset    int
}

// tableFile is the CBOR layout of a table file (integer map keys)
type tableFile struct {
	Version    uint     `cbor:"0,keyasint"`
	MSLUT      []uint32 `cbor:"1,keyasint"`
	MSLUTSEL   uint32   `cbor:"2,keyasint"`
	MSLUTSTART uint32   `cbor:"3,keyasint"`
	Waveform   string   `cbor:"4,keyasint,omitempty"`
	Amplitude  int      `cbor:"5,keyasint,omitempty"`
	Offset     int      `cbor:"6,keyasint,omitempty"`
	CRC        uint16   `cbor:"7,keyasint"`
}

// MarshalTable encodes a table's registers and provenance as CBOR
func MarshalTable(t *Table, info TableInfo) ([]byte, error) {
	r := t.Registers()
	f := tableFile{
		Version:    TableFileVersion,
		MSLUT:      r.MSLUT[:],
		MSLUTSEL:   r.MSLUTSEL,
		MSLUTSTART: r.MSLUTSTART,
		Waveform:   info.Waveform,
		Amplitude:  info.Amplitude,
		Offset:     info.Offset,
		CRC:        registerCRC(r),
	}

	data, err := cbor.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode table file: %w", err)
	}
	return data, nil
}

// UnmarshalTable decodes a CBOR table file and verifies its checksum
func UnmarshalTable(data []byte) (*Table, TableInfo, error) {
	if len(data) == 0 {
		return nil, TableInfo{}, fmt.Errorf("empty table file")
	}

	var f tableFile
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, TableInfo{}, fmt.Errorf("failed to decode table file: %w", err)
	}

	if f.Version != TableFileVersion {
		return nil, TableInfo{}, fmt.Errorf("%w: %d", ErrTableVersion, f.Version)
	}
	if len(f.MSLUT) != CorrectionWords {
		return nil, TableInfo{}, fmt.Errorf("expected %d MSLUT words, got %d", CorrectionWords, len(f.MSLUT))
	}

	var r Registers
	copy(r.MSLUT[:], f.MSLUT)
	r.MSLUTSEL = f.MSLUTSEL
	r.MSLUTSTART = f.MSLUTSTART

	if crc := registerCRC(r); crc != f.CRC {
		return nil, TableInfo{}, fmt.Errorf("%w: expected 0x%04X, got 0x%04X", ErrTableCRC, crc, f.CRC)
	}

	info := TableInfo{
		Waveform:  f.Waveform,
		Amplitude: f.Amplitude,
		Offset:    f.Offset,
	}
	return FromRegisterSet(r), info, nil
}

// WriteTableFile writes a table file to path
func WriteTableFile(path string, t *Table, info TableInfo) error {
	data, err := MarshalTable(t, info)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadTableFile reads a table file from path
func ReadTableFile(path string) (*Table, TableInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, TableInfo{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return UnmarshalTable(data)
}
