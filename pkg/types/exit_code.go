// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitSuccess is returned when every step of a recipe succeeded.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic code for failures that carry no child exit status.
	ExitFailure ExitCode = 1
	// ExitUsage is returned when the caller's arguments do not fit the recipe's parameters.
	ExitUsage ExitCode = 2
	// ExitRecipeError is returned when the recipe file is missing or malformed (EX_DATAERR).
	ExitRecipeError ExitCode = 65
	// ExitTaskNotFound is returned when the requested recipe does not exist.
	// It mirrors the shell's "command not found" status.
	ExitTaskNotFound ExitCode = 127
	// ExitInterrupted is returned when the run was cancelled by an interrupt (128+SIGINT).
	ExitInterrupted ExitCode = 130

	// signalExitBase is added to a signal number when a child is killed by that signal.
	signalExitBase = 128
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// FromSignal returns the conventional shell status for a process killed by signal sig.
func FromSignal(sig int) ExitCode {
	return ExitCode(signalExitBase + sig)
}

// Clamp folds an arbitrary status into the 0-255 range the OS can report.
// Negative values (unknown status) become ExitFailure.
func Clamp(code int) ExitCode {
	switch {
	case code < 0:
		return ExitFailure
	case code > 255:
		return ExitCode(code % 256)
	default:
		return ExitCode(code)
	}
}
