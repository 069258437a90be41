// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

import (
	"fmt"
	"math"
	"sort"
)

// PowerOnRegisters is the sine table the driver loads at reset
var PowerOnRegisters = Registers{
	MSLUT: [CorrectionWords]uint32{
		0xAAAAB554, 0x4A9554AA, 0x24492929, 0x10104222,
		0xFBFFFFFF, 0xB5BB777D, 0x49295556, 0x00404222,
	},
	MSLUTSEL:   0xFFFF8056,
	MSLUTSTART: 0x00F70000,
}

// Sine is one quarter of sin(2*pi*step/1024)
func Sine(step int) float64 {
	return math.Sin(2 * math.Pi * float64(step) / CycleLength)
}

// Triangle rises linearly from 0 to 1 over the quarter period
func Triangle(step int) float64 {
	return float64(step) / Microsteps
}

// Blend mixes Sine and Triangle; k=0 is a pure sine, k=1 a pure triangle
func Blend(k float64) Waveform {
	return func(step int) float64 {
		return (1-k)*Sine(step) + k*Triangle(step)
	}
}

// PowerOn returns the reset table as a waveform scaled to DefaultAmplitude.
// Quantizing it with DefaultAmplitude reproduces the table exactly.
func PowerOn() Waveform {
	quarter, err := FromRegisterSet(PowerOnRegisters).QuarterWave()
	if err != nil {
		panic(fmt.Sprintf("mslut: power-on table: %v", err))
	}
	return func(step int) float64 {
		return float64(quarter[step]) / DefaultAmplitude
	}
}

var waveforms = map[string]func() Waveform{
	"sine":     func() Waveform { return Sine },
	"triangle": func() Waveform { return Triangle },
	"blend":    func() Waveform { return Blend(0.5) },
	"poweron":  PowerOn,
}

// WaveformByName looks up a named waveform
func WaveformByName(name string) (Waveform, error) {
	factory, ok := waveforms[name]
	if !ok {
		return nil, fmt.Errorf("unknown waveform %q (available: %v)", name, WaveformNames())
	}
	return factory(), nil
}

// WaveformNames lists the named waveforms in sorted order
func WaveformNames() []string {
	names := make([]string, 0, len(waveforms))
	for name := range waveforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
