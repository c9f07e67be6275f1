// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/recipe-runner/runner/internal/config"
	"github.com/recipe-runner/runner/pkg/types"
)

// printConfig writes the effective configuration to stdout in format.
func (s *session) printConfig(format string) error {
	f, err := config.ParseFormat(format)
	if err != nil {
		return s.failWith(err, types.ExitUsage)
	}
	out, err := config.Render(s.cfg, f)
	if err != nil {
		return s.failWith(err, types.ExitFailure)
	}

	if sources := s.cfg.Sources(); len(sources) > 0 && f == config.FormatCUE {
		fmt.Fprintf(s.stdout, "// Loaded from: %s\n", strings.Join(sources, ", "))
	}
	fmt.Fprint(s.stdout, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(s.stdout)
	}
	return nil
}
