// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/recipe-runner/runner/pkg/types"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes steps using the embedded mvdan/sh interpreter.
// External programs named by a step are still started as subprocesses; only
// the shell itself is in-process.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available returns whether this runtime is available
func (r *VirtualRuntime) Available() bool {
	// Virtual runtime is always available as it's built-in
	return true
}

// Validate checks that a command line is valid shell syntax.
func (r *VirtualRuntime) Validate(command string) error {
	if _, err := syntax.NewParser().Parse(strings.NewReader(command), "step"); err != nil {
		return fmt.Errorf("step syntax error: %w", err)
	}
	return nil
}

// Run interprets a step and waits for it to finish.
func (r *VirtualRuntime) Run(sc *StepContext) *Result {
	prog, err := syntax.NewParser().Parse(strings.NewReader(sc.Command), "step")
	if err != nil {
		return NewErrorResult(types.ExitUsage, fmt.Errorf("failed to parse step: %w", err))
	}

	streams := sc.streams()
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(sc.Env...)),
		interp.StdIO(streams.Stdin, streams.Stdout, streams.Stderr),
	}
	if sc.Dir != "" {
		opts = append(opts, interp.Dir(sc.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to create interpreter: %w", err))
	}

	ctx := sc.context()
	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return NewExitCodeResult(types.ExitCode(exitStatus))
		}
		if ctx.Err() != nil {
			return NewErrorResult(types.ExitInterrupted, fmt.Errorf("step interrupted: %w", ctx.Err()))
		}
		return NewErrorResult(types.ExitFailure, fmt.Errorf("step execution failed: %w", err))
	}

	return NewSuccessResult()
}
