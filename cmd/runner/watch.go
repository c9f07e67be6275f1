// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/recipe-runner/runner/internal/discovery"
	"github.com/recipe-runner/runner/internal/issue"
	"github.com/recipe-runner/runner/internal/runtime"
	"github.com/recipe-runner/runner/internal/watch"
	"github.com/recipe-runner/runner/pkg/recipefile"
	"github.com/recipe-runner/runner/pkg/types"
)

// watch runs the task once, then again after every debounced batch of
// changes below the recipe file's directory. A failing run is reported and
// watching continues. Editing the recipe file reloads it before the next run.
func (s *session) watch(ctx context.Context, rt runtime.Runtime, reg *recipefile.Registry, file *discovery.DiscoveredFile, name string, args []string) error {
	debounce, err := s.cfg.Watch.DebounceDuration()
	if err != nil {
		return s.failWith(err, types.ExitUsage)
	}
	patterns := s.flags.watchPatterns
	if len(patterns) == 0 {
		patterns = s.cfg.Watch.Patterns
	}

	d := s.newDispatcher(reg, rt, file)
	recipeFile := filepath.Base(file.Path)

	// OnChange calls never overlap, so d needs no locking.
	onChange := func(ctx context.Context, changed []string) error {
		if len(changed) == 0 {
			fmt.Fprintf(s.stdout, "%s Watch mode: initial execution of '%s'\n", VerboseHighlightStyle.Render("→"), name)
		} else {
			fmt.Fprintf(s.stdout, "%s Detected %d change(s). Re-executing '%s'...\n",
				VerboseHighlightStyle.Render("→"), len(changed), name)
		}

		if slices.Contains(changed, recipeFile) {
			next, parseErr := recipefile.Parse(file.Path)
			if parseErr != nil {
				s.report(parseErr)
				fmt.Fprintf(s.stdout, "\n%s Watching for changes...\n\n", VerboseHighlightStyle.Render("→"))
				return nil
			}
			s.logger.Debug("reloaded recipe file", "path", file.Path, "recipes", next.Len())
			d = s.newDispatcher(next, rt, file)
		}

		outcome, runErr := d.Run(ctx, name, args)
		switch {
		case runErr != nil:
			s.report(runErr)
		case outcome != nil:
			fmt.Fprintf(s.stdout, "%s '%s' finished in %s\n", SuccessStyle.Render("✓"), name, outcome.Duration.Round(time.Millisecond))
		}
		fmt.Fprintf(s.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n\n", VerboseHighlightStyle.Render("→"))
		return nil
	}

	// Fail early on names that can never run, before the watch starts.
	if _, err := d.Plan(name, args); err != nil {
		return s.fail(err)
	}

	w, err := watch.New(watch.Config{
		Patterns:   patterns,
		Ignore:     s.cfg.Watch.Ignore,
		Debounce:   debounce,
		BaseDir:    file.Dir,
		RunOnStart: true,
		OnChange:   onChange,
		Stdout:     s.stdout,
		Logger:     s.logger,
	})
	if err != nil {
		return s.failWith(issue.WrapWithOperation(err, "start watcher"), types.ExitUsage)
	}

	if err := w.Run(ctx); err != nil {
		return s.failWith(err, types.ExitFailure)
	}
	if ctx.Err() != nil {
		return &ExitError{Code: types.ExitInterrupted}
	}
	return nil
}
