// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package regaccess

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Capture motion commands
const (
	CmdRelative      = "G91"
	CmdAbsolute      = "G90"
	CmdMicrosteps256 = "M350 X256"
	CmdStepsPerMM    = "M92 X10"
	CmdZeroPosition  = "G92 X0"
	CmdStepOnce      = "G1 X0.1 F6000"
	CmdFirmwareInfo  = "M115"
)

var registerValue = regexp.MustCompile(`0x[0-9a-fA-F]{8}`)

// ReadRegisterCommand builds the G-code that reads a driver register
func ReadRegisterCommand(driver int, addr uint8) string {
	return fmt.Sprintf("M569.2 P%d R%d", driver, addr)
}

// WriteRegisterCommand builds the G-code that writes a driver register
func WriteRegisterCommand(driver int, addr uint8, value uint32) string {
	return fmt.Sprintf("M569.2 P%d R%d V%d", driver, addr, value)
}

// ParseRegisterValue extracts the last 0x%08x token of a reply.
// Firmware echoes the address before the value, so the last match wins.
func ParseRegisterValue(reply string) (uint32, error) {
	matches := registerValue.FindAllString(reply, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoRegisterValue, strings.TrimSpace(reply))
	}
	v, err := strconv.ParseUint(matches[len(matches)-1][2:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoRegisterValue, err)
	}
	return uint32(v), nil
}

// checkReply turns a firmware error line into ErrCommandRejected
func checkReply(command, reply string) error {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Error:") {
			return fmt.Errorf("%w: %s: %s", ErrCommandRejected, command, strings.TrimSpace(strings.TrimPrefix(line, "Error:")))
		}
	}
	return nil
}
