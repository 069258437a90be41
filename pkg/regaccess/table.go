// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package regaccess

import (
	"context"
	"fmt"

	"github.com/Thermoquad/sinestat/pkg/mslut"
)

// ReadRegisters reads the ten microstep table registers
func ReadRegisters(ctx context.Context, c *Client) (mslut.Registers, error) {
	var r mslut.Registers
	for i := range r.MSLUT {
		v, err := c.ReadRegister(ctx, mslut.RegMSLUT0+uint8(i))
		if err != nil {
			return r, err
		}
		r.MSLUT[i] = v
	}

	var err error
	if r.MSLUTSEL, err = c.ReadRegister(ctx, mslut.RegMSLUTSEL); err != nil {
		return r, err
	}
	if r.MSLUTSTART, err = c.ReadRegister(ctx, mslut.RegMSLUTSTART); err != nil {
		return r, err
	}
	return r, nil
}

// ReadTable reads the driver's current microstep table
func ReadTable(ctx context.Context, c *Client) (*mslut.Table, error) {
	r, err := ReadRegisters(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	return mslut.FromRegisterSet(r), nil
}

// WriteTable loads a table into the driver. MSLUTSEL and MSLUTSTART are
// written last so the segment layout never refers to half-written words.
func WriteTable(ctx context.Context, c *Client, t *mslut.Table) error {
	r := t.Registers()
	for i, w := range r.MSLUT {
		if err := c.WriteRegister(ctx, mslut.RegMSLUT0+uint8(i), w); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}
	if err := c.WriteRegister(ctx, mslut.RegMSLUTSEL, r.MSLUTSEL); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := c.WriteRegister(ctx, mslut.RegMSLUTSTART, r.MSLUTSTART); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// VerifyTable reads the registers back and compares them with t
func VerifyTable(ctx context.Context, c *Client, t *mslut.Table) error {
	got, err := ReadRegisters(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to verify table: %w", err)
	}
	if want := t.Registers(); got != want {
		return fmt.Errorf("readback mismatch:\n got:\n%s want:\n%s",
			mslut.FormatRegisters(got), mslut.FormatRegisters(want))
	}
	return nil
}
