// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Sinestat - TMC microstep table encoder and analyzer
//
// A CLI tool for building, inspecting and loading the MSLUT sine tables of
// TMC stepper drivers.

package main

import (
	"os"

	"github.com/Thermoquad/sinestat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
