// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package regaccess

import (
	"context"
	"fmt"
	"time"

	"github.com/Thermoquad/sinestat/pkg/mslut"
)

// Register field masks
const (
	mscntMask    = 0x3FF
	curMask      = 0x1FF
	curSignBit   = 0x100
	curBShift    = 16
	defaultSteps = mslut.Microsteps
)

// Sample is one captured microstep
type Sample struct {
	Position int // MSCNT, 0..1023
	CoilA    int // CUR_A, -256..255
	CoilB    int // CUR_B, -256..255
}

// Capture holds a sampled run of microsteps
type Capture struct {
	Samples []Sample
}

// Positions returns the MSCNT values in capture order
func (c *Capture) Positions() []int {
	out := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.Position
	}
	return out
}

// CoilA returns the coil A currents in capture order
func (c *Capture) CoilA() []int {
	out := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.CoilA
	}
	return out
}

// CoilB returns the coil B currents in capture order
func (c *Capture) CoilB() []int {
	out := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.CoilB
	}
	return out
}

// DecodeCurrents splits MSCURACT into its signed 9-bit coil currents
func DecodeCurrents(mscuract uint32) (a, b int) {
	return signExtend9(mscuract & curMask), signExtend9((mscuract >> curBShift) & curMask)
}

func signExtend9(v uint32) int {
	if v&curSignBit != 0 {
		return int(v) - 2*curSignBit
	}
	return int(v)
}

// SamplerConfig configures a capture run
type SamplerConfig struct {
	Steps     int           // Microsteps to sample (default 256)
	StepDelay time.Duration // Settle time after each step
	// Progress, if set, is called after each sample
	Progress func(done, total int)
}

// Sampler steps the X axis one microstep at a time and records the
// driver's position counter and coil currents
type Sampler struct {
	client *Client
	config SamplerConfig
}

// NewSampler creates a sampler
func NewSampler(c *Client, config SamplerConfig) *Sampler {
	if config.Steps <= 0 {
		config.Steps = defaultSteps
	}
	return &Sampler{client: c, config: config}
}

// Run captures the configured number of microsteps.
// The axis is left in absolute positioning mode even if the capture fails.
func (s *Sampler) Run(ctx context.Context) (*Capture, error) {
	for _, code := range []string{CmdRelative, CmdMicrosteps256, CmdStepsPerMM, CmdZeroPosition} {
		if _, err := s.client.SendCommand(ctx, code); err != nil {
			return nil, fmt.Errorf("capture setup: %w", err)
		}
	}
	defer s.client.SendCommand(context.WithoutCancel(ctx), CmdAbsolute)

	capture := &Capture{Samples: make([]Sample, 0, s.config.Steps)}
	for i := 0; i < s.config.Steps; i++ {
		sample, err := s.sample(ctx)
		if err != nil {
			return capture, fmt.Errorf("microstep %d: %w", i, err)
		}
		capture.Samples = append(capture.Samples, sample)

		if _, err := s.client.SendCommand(ctx, CmdStepOnce); err != nil {
			return capture, fmt.Errorf("microstep %d: %w", i, err)
		}
		if s.config.Progress != nil {
			s.config.Progress(i+1, s.config.Steps)
		}

		if s.config.StepDelay > 0 {
			select {
			case <-ctx.Done():
				return capture, ctx.Err()
			case <-time.After(s.config.StepDelay):
			}
		}
	}
	return capture, nil
}

func (s *Sampler) sample(ctx context.Context) (Sample, error) {
	pos, err := s.client.ReadRegister(ctx, mslut.RegMSCNT)
	if err != nil {
		return Sample{}, err
	}
	cur, err := s.client.ReadRegister(ctx, mslut.RegMSCURACT)
	if err != nil {
		return Sample{}, err
	}
	a, b := DecodeCurrents(cur)
	return Sample{Position: int(pos & mscntMask), CoilA: a, CoilB: b}, nil
}

// Comparison relates a capture to the table the driver should be playing.
// Measured currents are the table value scaled by the driver's current
// setting, so Scale is fitted by least squares before taking residuals.
type Comparison struct {
	Samples  int
	Scale    float64
	MaxError float64 // Largest |measured - Scale*expected| over both coils
	MaxAt    int     // Sample index of MaxError
}

// Compare fits the capture against the full-cycle waveform of t. Coil A
// follows the table at MSCNT and coil B at MSCNT+256.
func (c *Capture) Compare(t *mslut.Table) (Comparison, error) {
	wave, err := t.FullWaveform()
	if err != nil {
		return Comparison{}, err
	}

	expected := func(pos int) (a, b float64) {
		return float64(wave[pos%mslut.CycleLength]), float64(wave[(pos+mslut.Microsteps)%mslut.CycleLength])
	}

	var num, den float64
	for _, s := range c.Samples {
		a, b := expected(s.Position)
		num += float64(s.CoilA)*a + float64(s.CoilB)*b
		den += a*a + b*b
	}

	cmp := Comparison{Samples: len(c.Samples)}
	if den == 0 {
		return cmp, nil
	}
	cmp.Scale = num / den

	for i, s := range c.Samples {
		a, b := expected(s.Position)
		for _, e := range []float64{float64(s.CoilA) - cmp.Scale*a, float64(s.CoilB) - cmp.Scale*b} {
			if e < 0 {
				e = -e
			}
			if e > cmp.MaxError {
				cmp.MaxError, cmp.MaxAt = e, i
			}
		}
	}
	return cmp, nil
}
