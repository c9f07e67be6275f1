// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/recipe-runner/runner/internal/config"
	"github.com/recipe-runner/runner/internal/discovery"
	"github.com/recipe-runner/runner/internal/dispatch"
	"github.com/recipe-runner/runner/internal/issue"
	"github.com/recipe-runner/runner/internal/runtime"
	"github.com/recipe-runner/runner/pkg/recipefile"
	"github.com/recipe-runner/runner/pkg/types"
)

// session is the configured state of one invocation.
type session struct {
	*app
	flags   *rootFlags
	cfg     *config.Config
	workDir string
	verbose bool
	logger  *log.Logger
}

func (a *app) run(ctx context.Context, f *rootFlags, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	wd, err := a.getwd()
	if err != nil {
		err = issue.WrapWithOperation(err, "determine working directory")
		fmt.Fprintln(a.stderr, ErrorStyle.Render("error: ")+formatErrorForDisplay(err, f.verbose))
		return &ExitError{Code: types.ExitFailure}
	}

	s := a.newSession(ctx, f, wd)

	switch {
	case f.printConfig:
		return s.printConfig(f.format)
	case f.init:
		return s.initRecipeFile(args)
	}

	reg, file, err := s.loadRegistry()
	if err != nil {
		return s.fail(err)
	}

	switch {
	case f.list:
		renderList(s.stdout, reg, file)
		return nil
	case f.show != "":
		r, err := dispatch.New(reg, nil).Resolve(f.show)
		if err != nil {
			return s.fail(err)
		}
		renderShow(s.stdout, r)
		return nil
	case len(args) == 0:
		renderList(s.stdout, reg, file)
		return nil
	}

	rt, err := s.newRuntime()
	if err != nil {
		return s.fail(err)
	}
	d := s.newDispatcher(reg, rt, file)

	name, rest := args[0], args[1:]
	switch {
	case f.dryRun:
		plan, err := d.Plan(name, rest)
		if err != nil {
			return s.fail(err)
		}
		renderDryRun(s.stdout, plan, file, rt.Name())
		return nil
	case f.watch:
		return s.watch(ctx, rt, reg, file, name, rest)
	}

	if _, err := d.Run(ctx, name, rest); err != nil {
		return s.fail(err)
	}
	return nil
}

// newSession loads the configuration. A broken config file is reported as a
// warning and the defaults are used instead.
func (a *app) newSession(ctx context.Context, f *rootFlags, wd string) *session {
	cfg, err := a.configProvider.Load(ctx, config.LoadOptions{
		ConfigFilePath: f.configFile,
		WorkDir:        wd,
	})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, f.verbose))
		cfg = config.DefaultConfig()
	}

	s := &session{
		app:     a,
		flags:   f,
		cfg:     cfg,
		workDir: wd,
		verbose: f.verbose || cfg.UI.Verbose,
	}
	s.logger = newLogger(a.stderr, s.verbose)
	applyColorScheme(cfg.UI.ColorScheme)

	if sources := cfg.Sources(); len(sources) > 0 {
		s.logger.Debug("loaded configuration", "sources", sources)
	}
	return s
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "runner",
		Level:  level,
	})
}

func applyColorScheme(scheme config.ColorScheme) {
	switch scheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
}

// newRuntime builds the runtime named by --runtime, falling back to the
// configured default.
func (s *session) newRuntime() (runtime.Runtime, error) {
	mode := s.cfg.DefaultRuntime.String()
	if s.flags.runtime != "" {
		mode = s.flags.runtime
	}

	var opts runtime.Options
	if len(s.cfg.Shell) > 0 {
		opts.Shell = s.cfg.Shell[0]
		opts.ShellArgs = s.cfg.Shell[1:]
	}

	rt, err := runtime.New(runtime.RuntimeType(mode), opts)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("select runtime").
			WithResource(mode).
			WithSuggestions(
				"Use --runtime native to run steps with the system shell",
				"Use --runtime virtual to run steps in the embedded shell",
			).
			Wrap(err).
			BuildError()
	}
	if !rt.Available() {
		return nil, fmt.Errorf("%s runtime: %w", rt.Name(), runtime.ErrShellNotFound)
	}
	s.logger.Debug("selected runtime", "runtime", rt.Name())
	return rt, nil
}

func (s *session) discovery() *discovery.Discovery {
	return discovery.New(s.cfg,
		discovery.WithBaseDir(s.workDir),
		discovery.WithExplicitPath(s.flags.file),
	)
}

func (s *session) loadRegistry() (*recipefile.Registry, *discovery.DiscoveredFile, error) {
	reg, file, err := s.discovery().Load()
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("loaded recipe file", "path", file.Path, "source", file.Source, "recipes", reg.Len())
	return reg, file, nil
}

func (s *session) newDispatcher(reg *recipefile.Registry, rt runtime.Runtime, file *discovery.DiscoveredFile) *dispatch.Dispatcher {
	return dispatch.New(reg, rt,
		dispatch.WithStdin(s.stdin),
		dispatch.WithStdout(s.stdout),
		dispatch.WithStderr(s.stderr),
		dispatch.WithLogger(s.logger),
		dispatch.WithDir(file.Dir),
		dispatch.WithEcho(s.cfg.UI.Echo && !s.flags.quiet),
		dispatch.WithEchoFormatter(func(cmd string) string { return CmdStyle.Render(cmd) }),
	)
}

// report prints err with the catalog entry that explains it. Outside verbose
// mode the entry is left out for a failed step, whose own output usually says
// more, and for errors that already carry suggestions.
func (s *session) report(err error) {
	svcErr := newServiceErrorFor(err, s.verbose)
	style := string(s.cfg.UI.ColorScheme)
	if !s.verbose && (svcErr.IssueID == issue.StepFailedId || hasSuggestions(err)) {
		style = ""
	}
	renderServiceError(s.stderr, s.logger, svcErr, style)
}

func hasSuggestions(err error) bool {
	var ae *issue.ActionableError
	return errors.As(err, &ae) && ae.HasSuggestions()
}

// fail reports err and returns the ExitError carrying its exit code.
func (s *session) fail(err error) error {
	s.report(err)
	return &ExitError{Code: exitCodeOfError(err)}
}

// exitCodeOfError extends dispatch.ExitCodeOf with the errors raised before
// dispatch starts.
func exitCodeOfError(err error) types.ExitCode {
	switch {
	case errors.Is(err, discovery.ErrRecipeFileNotFound):
		return types.ExitRecipeError
	case errors.Is(err, runtime.ErrInvalidRuntimeType):
		return types.ExitUsage
	default:
		return dispatch.ExitCodeOf(err)
	}
}
