// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/recipe-runner/runner/internal/runtime"
	"github.com/recipe-runner/runner/pkg/recipefile"
	"github.com/recipe-runner/runner/pkg/types"
)

type (
	// Validator is implemented by runtimes that can reject a command line
	// before anything runs.
	Validator interface {
		Validate(command string) error
	}

	// Option configures a Dispatcher.
	Option func(*Dispatcher)

	// Outcome describes how a dispatch ended.
	Outcome struct {
		Recipe   string
		State    State
		ExitCode types.ExitCode
		// FailedStep is the index of the failing step, or -1.
		FailedStep int
		// StepsRun counts steps handed to the runtime.
		StepsRun    int
		Transitions []Transition
		// InvocationID identifies this dispatch in log output.
		InvocationID string
		Duration     time.Duration
	}

	// Dispatcher runs recipes from a registry through a runtime.
	// It holds no per-run state and may be reused.
	Dispatcher struct {
		registry *recipefile.Registry
		runtime  runtime.Runtime
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
		logger   *log.Logger
		environ  func() []string
		dir      string
		echo     bool
		echoFmt  func(string) string
	}
)

// New creates a dispatcher for the registry that runs steps with rt.
// By default steps inherit the process's standard streams and environment
// and commands are echoed to stderr before they run.
func New(registry *recipefile.Registry, rt runtime.Runtime, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		runtime:  rt,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   log.New(io.Discard),
		environ:  os.Environ,
		echo:     true,
		echoFmt:  func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithStdin sets the stdin handed to every step.
func WithStdin(r io.Reader) Option { return func(d *Dispatcher) { d.stdin = r } }

// WithStdout sets the stdout handed to every step.
func WithStdout(w io.Writer) Option { return func(d *Dispatcher) { d.stdout = w } }

// WithStderr sets the stderr handed to every step; echoed commands go here too.
func WithStderr(w io.Writer) Option { return func(d *Dispatcher) { d.stderr = w } }

// WithLogger sets the logger for dispatch diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithEnviron sets the function providing the inherited environment.
func WithEnviron(f func() []string) Option { return func(d *Dispatcher) { d.environ = f } }

// WithDir sets the working directory of every step.
func WithDir(dir string) Option { return func(d *Dispatcher) { d.dir = dir } }

// WithEcho toggles echoing commands to stderr before they run.
func WithEcho(enabled bool) Option { return func(d *Dispatcher) { d.echo = enabled } }

// WithEchoFormatter styles echoed commands.
func WithEchoFormatter(f func(string) string) Option {
	return func(d *Dispatcher) {
		if f != nil {
			d.echoFmt = f
		}
	}
}

// Registry returns the registry the dispatcher resolves names against.
func (d *Dispatcher) Registry() *recipefile.Registry { return d.registry }

// Run resolves name, binds args and executes the recipe's steps in order,
// stopping at the first step that fails. The returned Outcome is never nil;
// the error is one of *TaskNotFoundError, *MissingArgumentError,
// *UnexpectedArgumentsError or *StepExecutionError.
func (d *Dispatcher) Run(ctx context.Context, name string, args []string) (*Outcome, error) {
	start := time.Now()
	m := newMachine()
	out := &Outcome{Recipe: name, FailedStep: -1, InvocationID: uuid.NewString()}
	logger := d.logger.With("invocation", out.InvocationID, "recipe", name)

	finish := func(to State, err error) (*Outcome, error) {
		if advErr := m.advance(to, -1); advErr != nil {
			err = advErr
			to = StateFailed
		}
		out.State = to
		out.ExitCode = ExitCodeOf(err)
		out.Transitions = m.history
		out.Duration = time.Since(start)
		if err != nil {
			logger.Debug("dispatch failed", "state", out.State, "exit", out.ExitCode, "duration", out.Duration, "err", err)
		} else {
			logger.Debug("dispatch succeeded", "steps", out.StepsRun, "duration", out.Duration)
		}
		return out, err
	}

	if err := m.advance(StateResolving, -1); err != nil {
		return finish(StateFailed, err)
	}
	r, err := d.Resolve(name)
	if err != nil {
		return finish(StateFailed, err)
	}

	if err = m.advance(StateBinding, -1); err != nil {
		return finish(StateFailed, err)
	}
	plan, err := buildPlan(r, args)
	if err != nil {
		return finish(StateFailed, err)
	}
	logger.Debug("bound arguments", "args", args, "steps", len(plan.Steps))

	if vErr := d.validate(plan); vErr != nil {
		out.FailedStep = vErr.Index
		return finish(StateFailed, vErr)
	}

	env := runtime.MergeEnv(d.environ(), plan.EnvOverrides())
	for _, step := range plan.Steps {
		if err = m.advance(StateExecuting, step.Index); err != nil {
			return finish(StateFailed, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			out.FailedStep = step.Index
			return finish(StateFailed, &StepExecutionError{
				Recipe: r.Name, Index: step.Index, Command: step.Command,
				ExitCode: types.ExitInterrupted, Err: ctxErr,
			})
		}

		if stepErr := d.runStep(ctx, logger, r.Name, step, env); stepErr != nil {
			out.StepsRun++
			out.FailedStep = step.Index
			return finish(StateFailed, stepErr)
		}
		out.StepsRun++
	}
	return finish(StateSucceeded, nil)
}

// Resolve looks name up in the registry. An unknown name yields a
// *TaskNotFoundError listing close matches.
func (d *Dispatcher) Resolve(name string) (*recipefile.Recipe, error) {
	r, ok := d.registry.Lookup(name)
	if !ok {
		return nil, &TaskNotFoundError{Name: name, Candidates: suggest(name, d.registry.Names())}
	}
	return r, nil
}

// validate checks every command line up front so a syntax error in a late
// step fails the recipe before its earlier steps run.
func (d *Dispatcher) validate(plan *Plan) *StepExecutionError {
	v, ok := d.runtime.(Validator)
	if !ok {
		return nil
	}
	for _, step := range plan.Steps {
		if err := v.Validate(step.Command); err != nil {
			return &StepExecutionError{
				Recipe: plan.Recipe.Name, Index: step.Index, Command: step.Command,
				ExitCode: types.ExitUsage, Err: err,
			}
		}
	}
	return nil
}

func (d *Dispatcher) runStep(ctx context.Context, logger *log.Logger, recipe string, step PlannedStep, env []string) *StepExecutionError {
	if d.echo && !step.Quiet {
		fmt.Fprintln(d.stderr, d.echoFmt(step.Command))
	}

	logger.Debug("running step", "step", step.Index+1, "line", step.Line, "runtime", d.runtime.Name())
	started := time.Now()
	res := d.runtime.Run(&runtime.StepContext{
		Context: ctx,
		Command: step.Command,
		// Each step gets its own copy so a runtime cannot leak changes into the next.
		Env: append([]string(nil), env...),
		Dir: d.dir,
		IO:  runtime.IOContext{Stdin: d.stdin, Stdout: d.stdout, Stderr: d.stderr},
	})
	logger.Debug("step finished", "step", step.Index+1, "exit", res.ExitCode, "duration", time.Since(started))

	if res.Succeeded() {
		return nil
	}
	code := res.ExitCode
	if code.IsSuccess() {
		code = types.ExitFailure
	}
	return &StepExecutionError{Recipe: recipe, Index: step.Index, Command: step.Command, ExitCode: code, Err: res.Error}
}
