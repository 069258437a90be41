// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mslut

// QuarterWave reconstructs positions 0..255 from the start sample and the
// decoded increments
func (t *Table) QuarterWave() ([]int, error) {
	wave := make([]int, Microsteps)
	wave[0] = t.startSample & sampleMask
	for i := 0; i < Microsteps-1; i++ {
		inc, err := t.IncrementAt(i)
		if err != nil {
			return nil, err
		}
		wave[i+1] = wave[i] + inc
	}
	return wave, nil
}

// FullWaveform reconstructs one electrical cycle (1024 samples).
//
// The second quadrant mirrors the first (wave[256+i] = wave[255-i]) and the
// second half is the first half reflected about the start sample
// (wave[512+i] = 2*start - wave[i]).
func (t *Table) FullWaveform() ([]int, error) {
	quarter, err := t.QuarterWave()
	if err != nil {
		return nil, err
	}

	wave := make([]int, CycleLength)
	copy(wave, quarter)
	for i := 0; i < Microsteps; i++ {
		wave[Microsteps+i] = wave[Microsteps-1-i]
	}

	center := 2 * (t.startSample & sampleMask)
	half := CycleLength / 2
	for i := 0; i < half; i++ {
		wave[half+i] = center - wave[i]
	}

	return wave, nil
}
