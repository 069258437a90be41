// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package regaccess

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRegisterValue is returned when a reply carries no 0x%08x token
	ErrNoRegisterValue = errors.New("regaccess: no register value in reply")

	// ErrCommandRejected is returned when the controller answers with an error
	ErrCommandRejected = errors.New("regaccess: command rejected")
)

// RetryableError marks a failure that may succeed if the command is resent
// (transport errors, timeouts, dropped connections)
type RetryableError struct {
	Command string
	Err     error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%q: %v", e.Command, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is, or wraps, a *RetryableError
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
