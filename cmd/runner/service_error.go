// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/recipe-runner/runner/internal/discovery"
	"github.com/recipe-runner/runner/internal/dispatch"
	"github.com/recipe-runner/runner/internal/issue"
	"github.com/recipe-runner/runner/internal/runtime"
	"github.com/recipe-runner/runner/pkg/recipefile"
)

// ServiceError carries rendering information for the CLI layer alongside
// the underlying error. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps an error to the catalog entry that explains it.
// Zero means no entry applies.
func classifyError(err error) issue.Id {
	switch {
	case errors.Is(err, discovery.ErrRecipeFileNotFound):
		return issue.RecipeFileNotFoundId
	case errors.Is(err, recipefile.ErrParse):
		return issue.RecipeParseErrorId
	case errors.Is(err, dispatch.ErrTaskNotFound):
		return issue.TaskNotFoundId
	case errors.Is(err, dispatch.ErrMissingArgument):
		return issue.MissingArgumentId
	case errors.Is(err, dispatch.ErrUnexpectedArguments):
		return issue.UnexpectedArgumentsId
	case errors.Is(err, runtime.ErrShellNotFound):
		return issue.ShellNotFoundId
	case errors.Is(err, runtime.ErrInvalidRuntimeType):
		return issue.InvalidRuntimeId
	case errors.Is(err, dispatch.ErrStepFailed):
		return issue.StepFailedId
	default:
		return 0
	}
}

// newServiceErrorFor wraps err with its catalog entry and a styled one-line summary.
func newServiceErrorFor(err error, verbose bool) *ServiceError {
	msg := ErrorStyle.Render("error: ") + formatErrorForDisplay(err, verbose) + "\n"
	return newServiceError(err, classifyError(err), msg)
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the issue help section rendered
// with the given glamour style. An empty style skips the help section.
func renderServiceError(stderr io.Writer, logger *log.Logger, svcErr *ServiceError, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if style == "" || svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			logger.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "err", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}
