// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/recipe-runner/runner/pkg/recipefile"
	"github.com/recipe-runner/runner/pkg/types"
)

var (
	// ErrTaskNotFound is the sentinel error wrapped by TaskNotFoundError.
	ErrTaskNotFound = errors.New("task not found")
	// ErrMissingArgument is the sentinel error wrapped by MissingArgumentError.
	ErrMissingArgument = errors.New("missing argument")
	// ErrUnexpectedArguments is the sentinel error wrapped by UnexpectedArgumentsError.
	ErrUnexpectedArguments = errors.New("unexpected arguments")
	// ErrStepFailed is the sentinel error wrapped by StepExecutionError.
	ErrStepFailed = errors.New("step failed")
)

type (
	// TaskNotFoundError is returned when no recipe has the requested name.
	TaskNotFoundError struct {
		Name string
		// Candidates are declared recipe names close to Name, best match first.
		Candidates []string
	}

	// MissingArgumentError is returned when a required parameter has neither
	// an argument nor a default.
	MissingArgumentError struct {
		Recipe    string
		Parameter string
		// Variadic is set for a `+NAME` parameter that received no arguments.
		Variadic bool
	}

	// UnexpectedArgumentsError is returned when more arguments are supplied
	// than a recipe without a variadic parameter declares.
	UnexpectedArgumentsError struct {
		Recipe string
		Args   []string
	}

	// StepExecutionError is returned when a step exits non-zero or cannot be started.
	StepExecutionError struct {
		Recipe string
		// Index is the zero-based position of the failing step.
		Index    int
		Command  string
		ExitCode types.ExitCode
		// Err is the runtime failure, if the step could not be run at all.
		Err error
	}
)

// Error implements the error interface.
func (e *TaskNotFoundError) Error() string {
	msg := fmt.Sprintf("task %q not found", e.Name)
	if len(e.Candidates) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Candidates, ", "))
	}
	return msg
}

// Unwrap returns ErrTaskNotFound for errors.Is.
func (e *TaskNotFoundError) Unwrap() error { return ErrTaskNotFound }

// Error implements the error interface.
func (e *MissingArgumentError) Error() string {
	if e.Variadic {
		return fmt.Sprintf("recipe %q requires at least one argument for %q", e.Recipe, e.Parameter)
	}
	return fmt.Sprintf("recipe %q is missing an argument for %q", e.Recipe, e.Parameter)
}

// Unwrap returns ErrMissingArgument for errors.Is.
func (e *MissingArgumentError) Unwrap() error { return ErrMissingArgument }

// Error implements the error interface.
func (e *UnexpectedArgumentsError) Error() string {
	return fmt.Sprintf("recipe %q got %d unexpected argument(s): %s", e.Recipe, len(e.Args), strings.Join(e.Args, " "))
}

// Unwrap returns ErrUnexpectedArguments for errors.Is.
func (e *UnexpectedArgumentsError) Unwrap() error { return ErrUnexpectedArguments }

// Error implements the error interface.
func (e *StepExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recipe %q step %d (%s): %v", e.Recipe, e.Index+1, e.Command, e.Err)
	}
	return fmt.Sprintf("recipe %q step %d (%s) exited with code %d", e.Recipe, e.Index+1, e.Command, e.ExitCode)
}

// Unwrap returns ErrStepFailed and the underlying runtime error, if any.
func (e *StepExecutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStepFailed}
	}
	return []error{ErrStepFailed, e.Err}
}

// ExitCodeOf maps an error returned by Run (or by loading the recipe file) to
// the process exit code.
func ExitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}

	var stepErr *StepExecutionError
	switch {
	case errors.As(err, &stepErr):
		if stepErr.ExitCode.IsSuccess() {
			return types.ExitFailure
		}
		return stepErr.ExitCode
	case errors.Is(err, ErrTaskNotFound):
		return types.ExitTaskNotFound
	case errors.Is(err, ErrMissingArgument), errors.Is(err, ErrUnexpectedArguments):
		return types.ExitUsage
	case errors.Is(err, recipefile.ErrParse):
		return types.ExitRecipeError
	case errors.Is(err, context.Canceled):
		return types.ExitInterrupted
	default:
		return types.ExitFailure
	}
}
