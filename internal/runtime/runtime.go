// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/recipe-runner/runner/pkg/types"
)

// Runtime type constants for the supported execution environments.
const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"
)

// ErrInvalidRuntimeType is the sentinel error wrapped by InvalidRuntimeTypeError.
var ErrInvalidRuntimeType = errors.New("invalid runtime type")

type (
	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// InvalidRuntimeTypeError is returned when a RuntimeType value is not recognized.
	InvalidRuntimeTypeError struct {
		Value RuntimeType
	}

	// IOContext groups the standard streams handed to a step.
	IOContext struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// StepContext contains everything needed to run one step.
	StepContext struct {
		// Context cancels the step; runtimes forward cancellation to the child.
		Context context.Context
		// Command is the fully substituted command line.
		Command string
		// Env is the complete environment of the step, as KEY=VALUE pairs.
		Env []string
		// Dir is the working directory. Empty means the runner's working directory.
		Dir string
		IO  IOContext
	}

	// Result contains the outcome of running a step.
	Result struct {
		// ExitCode is the exit status of the step.
		ExitCode types.ExitCode
		// Error is set when the step could not be run at all (as opposed to
		// running and exiting non-zero).
		Error error
	}

	// Runtime defines the interface for step execution.
	Runtime interface {
		// Name returns the runtime name
		Name() string
		// Available returns whether this runtime can run on the current system
		Available() bool
		// Run executes one step and blocks until it completes
		Run(sc *StepContext) *Result
	}

	// Options configures runtime construction.
	Options struct {
		// Shell and ShellArgs override the host shell used by the native runtime.
		Shell     string
		ShellArgs []string
	}
)

// Error implements the error interface.
func (e *InvalidRuntimeTypeError) Error() string {
	return fmt.Sprintf("invalid runtime type %q (valid: %s, %s)", e.Value, RuntimeTypeNative, RuntimeTypeVirtual)
}

// Unwrap returns ErrInvalidRuntimeType so callers can use errors.Is for programmatic detection.
func (e *InvalidRuntimeTypeError) Unwrap() error { return ErrInvalidRuntimeType }

// Validate returns an error if the RuntimeType is not a known runtime.
func (t RuntimeType) Validate() error {
	switch t {
	case RuntimeTypeNative, RuntimeTypeVirtual:
		return nil
	default:
		return &InvalidRuntimeTypeError{Value: t}
	}
}

// String returns the string representation of the RuntimeType.
func (t RuntimeType) String() string { return string(t) }

// New creates the runtime of the given type.
func New(t RuntimeType, opts Options) (Runtime, error) {
	switch t {
	case RuntimeTypeNative:
		rt := NewNativeRuntime()
		if opts.Shell != "" {
			rt.Shell = opts.Shell
			rt.ShellArgs = opts.ShellArgs
		}
		return rt, nil
	case RuntimeTypeVirtual:
		return NewVirtualRuntime(), nil
	default:
		return nil, &InvalidRuntimeTypeError{Value: t}
	}
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code}
}

// Succeeded reports whether the step ran and exited with status 0.
func (r *Result) Succeeded() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}

func (sc *StepContext) context() context.Context {
	if sc.Context == nil {
		return context.Background()
	}
	return sc.Context
}

func (sc *StepContext) streams() IOContext {
	s := sc.IO
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	return s
}
