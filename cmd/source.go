// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Thermoquad/sinestat/pkg/mslut"
	"github.com/spf13/cobra"
)

// tableSource selects where an offline command gets its table from:
// a table file, raw register values, or a named waveform
type tableSource struct {
	file       string
	mslut      string
	mslutsel   string
	mslutstart string
	waveform   string
	amplitude  int
	offset     int
	blend      float64
}

func (s *tableSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "Read the table from a table file")
	cmd.Flags().StringVar(&s.mslut, "mslut", "", "MSLUT0..7 as 8 comma-separated hex words")
	cmd.Flags().StringVar(&s.mslutsel, "mslutsel", "", "MSLUTSEL register value (hex)")
	cmd.Flags().StringVar(&s.mslutstart, "mslutstart", "", "MSLUTSTART register value (hex)")
	cmd.Flags().StringVarP(&s.waveform, "waveform", "w", "sine",
		fmt.Sprintf("Named waveform (%s)", strings.Join(mslut.WaveformNames(), ", ")))
	cmd.Flags().IntVarP(&s.amplitude, "amplitude", "a", mslut.DefaultAmplitude, "Waveform amplitude")
	cmd.Flags().IntVarP(&s.offset, "offset", "o", mslut.DefaultOffset, "Waveform offset")
	cmd.Flags().Float64Var(&s.blend, "blend", -1, "Sine/triangle blend factor 0..1 (overrides --waveform)")
}

// fromRegisters reports whether any register flag was given
func (s *tableSource) fromRegisters() bool {
	return s.mslut != "" || s.mslutsel != "" || s.mslutstart != ""
}

// load resolves the table and a short description of where it came from
func (s *tableSource) load() (*mslut.Table, mslut.TableInfo, error) {
	switch {
	case s.file != "":
		return mslut.ReadTableFile(s.file)

	case s.fromRegisters():
		r, err := s.registers()
		if err != nil {
			return nil, mslut.TableInfo{}, err
		}
		return mslut.FromRegisterSet(r), mslut.TableInfo{Waveform: "registers"}, nil
	}

	fn, name, err := s.function()
	if err != nil {
		return nil, mslut.TableInfo{}, err
	}
	t, err := mslut.FromFunction(fn, s.amplitude, s.offset)
	if err != nil {
		return nil, mslut.TableInfo{}, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return t, mslut.TableInfo{Waveform: name, Amplitude: s.amplitude, Offset: s.offset}, nil
}

func (s *tableSource) function() (mslut.Waveform, string, error) {
	if s.blend >= 0 {
		if s.blend > 1 {
			return nil, "", fmt.Errorf("--blend must be between 0 and 1, got %g", s.blend)
		}
		return mslut.Blend(s.blend), fmt.Sprintf("blend(%g)", s.blend), nil
	}
	fn, err := mslut.WaveformByName(s.waveform)
	if err != nil {
		return nil, "", err
	}
	return fn, s.waveform, nil
}

func (s *tableSource) registers() (mslut.Registers, error) {
	// Missing registers default to the power-on table
	r := mslut.PowerOnRegisters

	if s.mslut != "" {
		words := strings.Split(s.mslut, ",")
		if len(words) != mslut.CorrectionWords {
			return r, fmt.Errorf("--mslut needs %d words, got %d", mslut.CorrectionWords, len(words))
		}
		for i, w := range words {
			v, err := parseHex32(w)
			if err != nil {
				return r, fmt.Errorf("MSLUT%d: %w", i, err)
			}
			r.MSLUT[i] = v
		}
	}

	var err error
	if s.mslutsel != "" {
		if r.MSLUTSEL, err = parseHex32(s.mslutsel); err != nil {
			return r, fmt.Errorf("MSLUTSEL: %w", err)
		}
	}
	if s.mslutstart != "" {
		if r.MSLUTSTART, err = parseHex32(s.mslutstart); err != nil {
			return r, fmt.Errorf("MSLUTSTART: %w", err)
		}
	}
	return r, nil
}

// parseHex32 parses a 32-bit value with or without a 0x prefix
func parseHex32(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex value %q", s)
	}
	return uint32(v), nil
}
