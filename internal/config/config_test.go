// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/recipe-runner/runner/internal/issue"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func load(t *testing.T, opts LoadOptions) (*Config, error) {
	t.Helper()
	return NewProvider().Load(context.Background(), opts)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := DefaultConfig()
	if cfg.DefaultRuntime != want.DefaultRuntime || cfg.RecipeFile != want.RecipeFile ||
		cfg.UI != want.UI || cfg.Watch.Debounce != want.Watch.Debounce {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
	if len(cfg.Sources()) != 0 {
		t.Errorf("Sources() = %v, want none", cfg.Sources())
	}
}

func TestLoadUserAndProjectFiles(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	workDir := t.TempDir()
	userPath := filepath.Join(cfgDir, "config.cue")
	projectPath := filepath.Join(workDir, LocalConfigFileName)

	writeFile(t, userPath, `
default_runtime: "virtual"
ui: verbose: true
watch: patterns: ["**/*.go"]
`)
	writeFile(t, projectPath, `
recipe_file: "tasks.runner"
shell: ["bash", "-eu", "-c"]
ui: echo: false
`)

	cfg, err := load(t, LoadOptions{ConfigDirPath: cfgDir, WorkDir: workDir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultRuntime != RuntimeVirtual {
		t.Errorf("DefaultRuntime = %q, want virtual", cfg.DefaultRuntime)
	}
	if cfg.RecipeFile != "tasks.runner" {
		t.Errorf("RecipeFile = %q", cfg.RecipeFile)
	}
	if !slices.Equal(cfg.Shell, []string{"bash", "-eu", "-c"}) {
		t.Errorf("Shell = %v", cfg.Shell)
	}
	if !cfg.UI.Verbose || cfg.UI.Echo {
		t.Errorf("UI = %+v, want verbose and no echo", cfg.UI)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("ColorScheme = %q, want default auto", cfg.UI.ColorScheme)
	}
	if !slices.Equal(cfg.Watch.Patterns, []string{"**/*.go"}) {
		t.Errorf("Watch.Patterns = %v", cfg.Watch.Patterns)
	}
	if got := cfg.Sources(); !slices.Equal(got, []string{userPath, projectPath}) {
		t.Errorf("Sources() = %v", got)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.cue")
	writeFile(t, path, `ui: color_scheme: "dark"`)
	// A project file next to it must be ignored when a file is given explicitly.
	writeFile(t, filepath.Join(dir, LocalConfigFileName), `default_runtime: "virtual"`)

	cfg, err := load(t, LoadOptions{ConfigFilePath: path, WorkDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark || cfg.DefaultRuntime != RuntimeNative {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{"unknown runtime", `default_runtime: "container"`, "default_runtime"},
		{"unknown field", `colour: "red"`, "colour"},
		{"wrong type", `ui: verbose: "yes"`, "verbose"},
		{"bad debounce", `watch: debounce: "soon"`, "debounce"},
		{"empty shell", `shell: []`, "shell"},
		{"syntax", `ui: {`, "custom.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "custom.cue")
			writeFile(t, path, tt.content)
			_, err := load(t, LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Errorf("Load() error should be actionable, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Load() error = %q, want it to mention %q", err, tt.contains)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := load(t, LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RUNNER_DEFAULT_RUNTIME", "virtual")
	t.Setenv("RUNNER_UI_VERBOSE", "true")

	cfgDir := t.TempDir()
	writeFile(t, filepath.Join(cfgDir, "config.cue"), `default_runtime: "native"`)

	cfg, err := load(t, LoadOptions{ConfigDirPath: cfgDir, WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultRuntime != RuntimeVirtual {
		t.Errorf("DefaultRuntime = %q, want env override virtual", cfg.DefaultRuntime)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should be set from RUNNER_UI_VERBOSE")
	}
}

func TestLoadEnvOverrideInvalid(t *testing.T) {
	t.Setenv("RUNNER_DEFAULT_RUNTIME", "container")

	_, err := load(t, LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: t.TempDir()})
	if !errors.Is(err, ErrInvalidConfigRuntimeMode) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfigRuntimeMode", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"ui", "verbose"}, "ui.verbose"},
		{[]string{"watch", "patterns", "0"}, "watch.patterns[0]"},
		{[]string{"shell", "1"}, "shell[1]"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
