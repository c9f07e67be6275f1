// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the runner command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/recipe-runner/runner/internal/config"
	"github.com/recipe-runner/runner/internal/issue"
	"github.com/recipe-runner/runner/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// rootFlags holds the values of the root command's flags.
	rootFlags struct {
		list          bool
		show          string
		dryRun        bool
		file          string
		runtime       string
		watch         bool
		watchPatterns []string
		init          bool
		printConfig   bool
		format        string
		verbose       bool
		quiet         bool
		configFile    string
	}

	// app carries the process-level dependencies of a command invocation.
	app struct {
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		// getwd returns the directory discovery and config lookup start in.
		getwd          func() (string, error)
		configProvider config.Provider
	}
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

func newApp() *app {
	return &app{
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		getwd:          os.Getwd,
		configProvider: config.NewProvider(),
	}
}

// NewRootCommand creates the runner root command wired to the process streams.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "runner [flags] [task] [args...]",
		Short: "Run named, parameterized recipes from a Runnerfile",
		Long: TitleStyle.Render("runner") + SubtitleStyle.Render(" - Run named, parameterized recipes from a Runnerfile") + `

runner reads the Runnerfile in the current directory (or the nearest
parent directory), binds the trailing arguments to the recipe's
parameters and runs each step in order, stopping at the first failure.

` + SubtitleStyle.Render("Examples:") + `
  runner                    List the recipes of the Runnerfile
  runner build              Run the 'build' recipe
  runner test --release     Run 'test', passing --release to its parameters
  runner -n profile arena   Print what 'profile arena' would run
  runner -w test            Re-run 'test' whenever a file changes
  runner --init             Create a starter Runnerfile`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), f, args)
		},
	}

	// Everything after the task name belongs to the recipe.
	cmd.Flags().SetInterspersed(false)

	flags := cmd.Flags()
	flags.BoolVarP(&f.list, "list", "l", false, "list the recipes and exit")
	flags.StringVar(&f.show, "show", "", "print the definition of a recipe and exit")
	flags.BoolVarP(&f.dryRun, "dry-run", "n", false, "print the bound commands without running them")
	flags.StringVarP(&f.file, "file", "f", "", "use this recipe file instead of searching for one")
	flags.StringVar(&f.runtime, "runtime", "", "step runtime: native or virtual (default from config)")
	flags.BoolVarP(&f.watch, "watch", "w", false, "re-run the task whenever watched files change")
	flags.StringArrayVar(&f.watchPatterns, "watch-pattern", nil, "glob selecting the files --watch reacts to (repeatable)")
	flags.BoolVar(&f.init, "init", false, "create a starter recipe file in the current directory")
	flags.BoolVar(&f.printConfig, "print-config", false, "print the effective configuration and exit")
	flags.StringVar(&f.format, "format", string(config.FormatCUE), "output format of --print-config: "+formatList())
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "do not echo commands before running them")
	flags.StringVar(&f.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/runner/config.cue)")

	cmd.MarkFlagsMutuallyExclusive("list", "show", "init", "print-config", "dry-run")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "watch")

	return cmd
}

func formatList() string {
	formats := config.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Execute runs the root command and exits with its exit code.
// This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		os.Exit(int(exitCodeFor(err)))
	}
}

// errorHandler prints errors that have not been reported yet. An ExitError
// without a cause only carries the exit code of a failure already printed.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// exitCodeFor returns the process exit code for an error returned by the root command.
func exitCodeFor(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	// Flag parsing errors never reach RunE.
	return types.ExitUsage
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
