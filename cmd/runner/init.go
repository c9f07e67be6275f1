// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/recipe-runner/runner/internal/issue"
	"github.com/recipe-runner/runner/pkg/types"
)

const (
	templateDefault = "default"
	templateMinimal = "minimal"
)

// errRecipeFileExists is returned by --init when it would overwrite a file.
var errRecipeFileExists = errors.New("recipe file already exists")

// initRecipeFile writes a starter recipe file into the working directory.
// An optional argument selects the template: default or minimal.
func (s *session) initRecipeFile(args []string) error {
	template := templateDefault
	if len(args) > 0 {
		template = args[0]
	}
	content, err := generateRecipeFile(template)
	if err != nil {
		return s.failWith(err, types.ExitUsage)
	}

	name := s.cfg.RecipeFile
	if s.flags.file != "" {
		name = s.flags.file
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.workDir, name)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		return s.failWith(issue.NewErrorContext().
			WithOperation("create recipe file").
			WithResource(path).
			WithSuggestions(
				"Edit the existing file instead",
				"Use --file to create the recipe file under another name",
			).
			Wrap(errRecipeFileExists).
			BuildError(), types.ExitFailure)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return s.failWith(issue.WrapWithOperation(err, "write recipe file"), types.ExitFailure)
	}

	fmt.Fprintf(s.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
	fmt.Fprintln(s.stdout)
	fmt.Fprintln(s.stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(s.stdout, "  1. Edit the file to add your recipes")
	fmt.Fprintln(s.stdout, "  2. Run 'runner --list' to see them")
	fmt.Fprintln(s.stdout, "  3. Run 'runner hello' to try the example")
	return nil
}

// failWith reports err and exits with code.
func (s *session) failWith(err error, code types.ExitCode) error {
	s.report(err)
	return &ExitError{Code: code}
}

func generateRecipeFile(template string) (string, error) {
	switch template {
	case templateDefault:
		return defaultRecipeFile, nil
	case templateMinimal:
		return minimalRecipeFile, nil
	default:
		return "", fmt.Errorf("unknown template %q (valid: %s, %s)", template, templateDefault, templateMinimal)
	}
}

const minimalRecipeFile = `# Print a greeting
hello:
    echo "Hello from runner!"
`

const defaultRecipeFile = `# Recipes are run with: runner <name> [args...]
# Each indented line is one command; the first failing command stops the recipe.

# Print a greeting
hello name="world":
    echo "Hello, {{name}}!"

# Build the project
build:
    echo "building..."

# Run the tests, passing any extra arguments through
test *ARGS:
    echo "testing {{ARGS}}"

# Run a command with an extra environment variable
env-demo:
    export GREETING=hi
    @echo "$GREETING from a quiet step"

# Long commands can be continued with a trailing backslash
long:
    echo one \
        two \
        three
`
