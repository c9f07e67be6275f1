// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/recipe-runner/runner/internal/discovery"
	"github.com/recipe-runner/runner/internal/dispatch"
	"github.com/recipe-runner/runner/internal/issue"
	"github.com/recipe-runner/runner/internal/runtime"
	"github.com/recipe-runner/runner/pkg/recipefile"
	"github.com/recipe-runner/runner/pkg/types"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantIssue issue.Id
		wantCode  types.ExitCode
	}{
		{
			name:      "recipe file not found",
			err:       &discovery.NotFoundError{Name: "Runnerfile", From: "/tmp"},
			wantIssue: issue.RecipeFileNotFoundId,
			wantCode:  types.ExitRecipeError,
		},
		{
			name:      "parse error",
			err:       &recipefile.ParseError{File: "Runnerfile", Line: 3, Reason: recipefile.ReasonDuplicateRecipe},
			wantIssue: issue.RecipeParseErrorId,
			wantCode:  types.ExitRecipeError,
		},
		{
			name:      "task not found",
			err:       &dispatch.TaskNotFoundError{Name: "tset"},
			wantIssue: issue.TaskNotFoundId,
			wantCode:  types.ExitTaskNotFound,
		},
		{
			name:      "missing argument",
			err:       &dispatch.MissingArgumentError{Recipe: "build", Parameter: "target"},
			wantIssue: issue.MissingArgumentId,
			wantCode:  types.ExitUsage,
		},
		{
			name:      "unexpected arguments",
			err:       &dispatch.UnexpectedArgumentsError{Recipe: "clean", Args: []string{"x"}},
			wantIssue: issue.UnexpectedArgumentsId,
			wantCode:  types.ExitUsage,
		},
		{
			name:      "step failed",
			err:       &dispatch.StepExecutionError{Recipe: "test", Command: "false", ExitCode: 4},
			wantIssue: issue.StepFailedId,
			wantCode:  4,
		},
		{
			name:      "shell not found inside step",
			err:       &dispatch.StepExecutionError{Recipe: "test", ExitCode: 1, Err: runtime.ErrShellNotFound},
			wantIssue: issue.ShellNotFoundId,
			wantCode:  types.ExitFailure,
		},
		{
			name:      "invalid runtime",
			err:       issue.WrapWithOperation(&runtime.InvalidRuntimeTypeError{Value: "docker"}, "select runtime"),
			wantIssue: issue.InvalidRuntimeId,
			wantCode:  types.ExitUsage,
		},
		{
			name:      "interrupted",
			err:       fmt.Errorf("run: %w", context.Canceled),
			wantIssue: 0,
			wantCode:  types.ExitInterrupted,
		},
		{
			name:      "unclassified",
			err:       errors.New("disk on fire"),
			wantIssue: 0,
			wantCode:  types.ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyError(tt.err); got != tt.wantIssue {
				t.Errorf("classifyError() = %d, want %d", got, tt.wantIssue)
			}
			if got := exitCodeOfError(tt.err); got != tt.wantCode {
				t.Errorf("exitCodeOfError() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestNewServiceErrorPanicsOnNil(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("newServiceError(nil) did not panic")
		}
	}()
	_ = newServiceError(nil, 0, "")
}

func TestServiceErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := &dispatch.TaskNotFoundError{Name: "x"}
	svcErr := newServiceError(cause, issue.TaskNotFoundId, "")
	if !errors.Is(svcErr, dispatch.ErrTaskNotFound) {
		t.Error("errors.Is(ServiceError, ErrTaskNotFound) = false")
	}
	if svcErr.Error() != cause.Error() {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), cause.Error())
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	logger := log.New(io.Discard)

	t.Run("message and issue", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderServiceError(&buf, logger, newServiceError(errors.New("x"), issue.TaskNotFoundId, "styled\n"), "notty")
		out := buf.String()
		if !strings.HasPrefix(out, "styled\n") {
			t.Errorf("output does not start with the styled message: %q", out)
		}
		if len(out) <= len("styled\n") {
			t.Error("issue help was not rendered")
		}
	})

	t.Run("empty style skips issue", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderServiceError(&buf, logger, newServiceError(errors.New("x"), issue.TaskNotFoundId, "styled\n"), "")
		if buf.String() != "styled\n" {
			t.Errorf("output = %q, want only the styled message", buf.String())
		}
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderServiceError(&buf, logger, nil, "notty")
		if buf.Len() != 0 {
			t.Errorf("output = %q, want empty", buf.String())
		}
	})
}
