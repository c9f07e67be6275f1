// SPDX-License-Identifier: MPL-2.0

package recipefile

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ReasonDuplicateRecipe is reported when a recipe name is defined twice.
	ReasonDuplicateRecipe ParseReason = "duplicate recipe"
	// ReasonMalformedHeader is reported when a recipe header cannot be parsed.
	ReasonMalformedHeader ParseReason = "malformed header"
	// ReasonMalformedParameters is reported for invalid or duplicate parameter declarations.
	ReasonMalformedParameters ParseReason = "malformed parameter list"
	// ReasonVariadicNotLast is reported when a variadic parameter is followed by another parameter.
	ReasonVariadicNotLast ParseReason = "variadic parameter not last"
	// ReasonUnresolvedPlaceholder is reported when a placeholder names an undeclared parameter.
	ReasonUnresolvedPlaceholder ParseReason = "unresolved placeholder"
	// ReasonUnterminatedPlaceholder is reported when `{{` has no matching `}}`.
	ReasonUnterminatedPlaceholder ParseReason = "unterminated placeholder"
	// ReasonUnmatchedContinuation is reported when a line ends in `\` but no body line follows.
	ReasonUnmatchedContinuation ParseReason = "unmatched continuation line"
	// ReasonStepOutsideRecipe is reported for indented lines that do not belong to any recipe.
	ReasonStepOutsideRecipe ParseReason = "step outside recipe"
	// ReasonMalformedExport is reported for `export` lines that are not `export NAME=value`.
	ReasonMalformedExport ParseReason = "malformed export"
	// ReasonEmptyStep is reported for a quiet marker with no command after it.
	ReasonEmptyStep ParseReason = "empty step"
)

// ErrParse is the sentinel error wrapped by ParseError.
var ErrParse = errors.New("recipe file parse error")

type (
	// ParseReason classifies why a recipe file was rejected.
	ParseReason string

	// ParseError reports a malformed recipe file. It always identifies the
	// offending line and wraps ErrParse for errors.Is() compatibility.
	ParseError struct {
		// File is the recipe file path, empty when parsing an in-memory source.
		File string
		// Line is the 1-based line number the error was detected on.
		Line int
		// Reason classifies the failure.
		Reason ParseReason
		// Detail is a human-readable explanation (optional).
		Detail string
	}

	// placeholderError is returned by ParseTemplate and turned into a
	// ParseError by the file parser once the line number is known.
	placeholderError struct {
		reason ParseReason
		detail string
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	var msg strings.Builder
	if e.File != "" {
		msg.WriteString(e.File)
		msg.WriteString(":")
	} else {
		msg.WriteString("line ")
	}
	fmt.Fprintf(&msg, "%d: %s", e.Line, e.Reason)
	if e.Detail != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Detail)
	}
	return msg.String()
}

// Unwrap returns ErrParse so callers can use errors.Is for programmatic detection.
func (e *ParseError) Unwrap() error { return ErrParse }

func (e *placeholderError) Error() string {
	return fmt.Sprintf("%s: %s", e.reason, e.detail)
}
