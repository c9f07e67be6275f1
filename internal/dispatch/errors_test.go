// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/recipe-runner/runner/pkg/recipefile"
	"github.com/recipe-runner/runner/pkg/types"
)

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	_, parseErr := recipefile.Load("a:\n    x\na:\n    y\n")

	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"nil", nil, types.ExitSuccess},
		{"step passthrough", &StepExecutionError{ExitCode: 42}, 42},
		{"step without code", &StepExecutionError{Err: errors.New("boom")}, types.ExitFailure},
		{"wrapped step", fmt.Errorf("run: %w", &StepExecutionError{ExitCode: 3}), 3},
		{"task not found", &TaskNotFoundError{Name: "x"}, types.ExitTaskNotFound},
		{"missing argument", &MissingArgumentError{}, types.ExitUsage},
		{"unexpected arguments", &UnexpectedArgumentsError{}, types.ExitUsage},
		{"parse error", parseErr, types.ExitRecipeError},
		{"cancelled", context.Canceled, types.ExitInterrupted},
		{"other", errors.New("boom"), types.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExitCodeOf(tt.err); got != tt.want {
				t.Errorf("ExitCodeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{&TaskNotFoundError{Name: "tset", Candidates: []string{"test"}}, `task "tset" not found (did you mean test?)`},
		{&TaskNotFoundError{Name: "deploy"}, `task "deploy" not found`},
		{&MissingArgumentError{Recipe: "bench", Parameter: "name"}, `recipe "bench" is missing an argument for "name"`},
		{&MissingArgumentError{Recipe: "p", Parameter: "ARGS", Variadic: true}, `recipe "p" requires at least one argument for "ARGS"`},
		{&UnexpectedArgumentsError{Recipe: "clean", Args: []string{"a", "b"}}, `recipe "clean" got 2 unexpected argument(s): a b`},
		{&StepExecutionError{Recipe: "test", Index: 0, Command: "false", ExitCode: 1}, `recipe "test" step 1 (false) exited with code 1`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestStepExecutionErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("shell not found")
	err := &StepExecutionError{Recipe: "r", Err: cause}
	if !errors.Is(err, ErrStepFailed) {
		t.Error("errors.Is(err, ErrStepFailed) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
}
