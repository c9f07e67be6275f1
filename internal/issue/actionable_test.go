// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load recipe file"},
			expected: "failed to load recipe file",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load recipe file", Resource: "./Runnerfile"},
			expected: "failed to load recipe file: ./Runnerfile",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "run task test", Cause: errors.New("exit status 2")},
			expected: "failed to run task test: exit status 2",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load recipe file",
				Resource:  "./Runnerfile",
				Cause:     errors.New("line 3: duplicate recipe"),
			},
			expected: "failed to load recipe file: ./Runnerfile: line 3: duplicate recipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying error")
	err := &ActionableError{Operation: "test", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions as bullets",
			err: &ActionableError{
				Operation:   "find recipe file",
				Suggestions: []string{"Run 'runner --init'", "Pass --file"},
			},
			contains: []string{"failed to find recipe file", "• Run 'runner --init'", "• Pass --file"},
		},
		{
			name: "no chain when not verbose",
			err: &ActionableError{
				Operation: "run task test",
				Cause:     fmt.Errorf("step 2: %w", errors.New("exit 1")),
			},
			contains: []string{"failed to run task test: step 2: exit 1"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "chain when verbose",
			err: &ActionableError{
				Operation: "run task test",
				Cause:     fmt.Errorf("step 2: %w", errors.New("exit 1")),
			},
			verbose:  true,
			contains: []string{"Error chain:", "1. step 2: exit 1", "2. exit 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("Runnerfile").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("run task").
		WithResource("bench").
		WithSuggestion("first").
		WithSuggestions("second", "third").
		Wrap(cause).
		Build()
	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "run task" || ae.Resource != "bench" || !errors.Is(ae, cause) {
		t.Errorf("Build() = %+v", ae)
	}
	if !ae.HasSuggestions() || len(ae.Suggestions) != 3 {
		t.Errorf("Suggestions = %v, want 3", ae.Suggestions)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "load config") != nil {
		t.Error("WrapWithOperation(nil) should be nil")
	}
	err := WrapWithOperation(errors.New("bad"), "load config")
	if got := err.Error(); got != "failed to load config: bad" {
		t.Errorf("Error() = %q", got)
	}
}
