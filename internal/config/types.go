// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/recipe-runner/runner/pkg/recipefile"
)

const (
	// RuntimeNative runs steps through the host shell.
	// Defined locally to avoid coupling config to internal/runtime.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs steps in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultRecipeFile is the recipe file name searched for by default.
	DefaultRecipeFile = recipefile.DefaultFileName
	// DefaultDebounce is the default quiet period of watch mode.
	DefaultDebounce = "500ms"
)

var (
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RuntimeMode specifies the runtime steps execute in.
	RuntimeMode string

	// InvalidConfigRuntimeModeError is returned when a config RuntimeMode value is not recognized.
	InvalidConfigRuntimeModeError struct {
		Value RuntimeMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects every field error of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the effective runner configuration.
	Config struct {
		// DefaultRuntime is the runtime used when --runtime is not given.
		DefaultRuntime RuntimeMode `json:"default_runtime" mapstructure:"default_runtime" toml:"default_runtime" yaml:"default_runtime"`
		// Shell overrides the host shell of the native runtime: the program
		// followed by the arguments placed before the command line.
		Shell []string `json:"shell,omitempty" mapstructure:"shell" toml:"shell,omitempty" yaml:"shell,omitempty"`
		// RecipeFile is the file name searched for in the working directory and its parents.
		RecipeFile string      `json:"recipe_file" mapstructure:"recipe_file" toml:"recipe_file" yaml:"recipe_file"`
		UI         UIConfig    `json:"ui" mapstructure:"ui" toml:"ui" yaml:"ui"`
		Watch      WatchConfig `json:"watch" mapstructure:"watch" toml:"watch" yaml:"watch"`

		sources []string
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme" yaml:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose" toml:"verbose" yaml:"verbose"`
		// Echo prints each command to stderr before it runs.
		Echo bool `json:"echo" mapstructure:"echo" toml:"echo" yaml:"echo"`
	}

	// WatchConfig configures --watch.
	WatchConfig struct {
		// Debounce is a Go duration string such as "500ms".
		Debounce string   `json:"debounce" mapstructure:"debounce" toml:"debounce" yaml:"debounce"`
		Patterns []string `json:"patterns,omitempty" mapstructure:"patterns" toml:"patterns,omitempty" yaml:"patterns,omitempty"`
		Ignore   []string `json:"ignore,omitempty" mapstructure:"ignore" toml:"ignore,omitempty" yaml:"ignore,omitempty"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultRuntime: RuntimeNative,
		RecipeFile:     DefaultRecipeFile,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Echo:        true,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// Sources returns the config files merged into c, lowest precedence first.
// It is empty when only defaults and the environment applied.
func (c *Config) Sources() []string { return slices.Clone(c.sources) }

// Validate checks every field and returns an *InvalidConfigError listing all problems.
func (c *Config) Validate() error {
	var errs []error
	if err := c.DefaultRuntime.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("default_runtime: %w", err))
	}
	if len(c.Shell) > 0 && strings.TrimSpace(c.Shell[0]) == "" {
		errs = append(errs, errors.New("shell: program must not be empty"))
	}
	if strings.TrimSpace(c.RecipeFile) == "" {
		errs = append(errs, errors.New("recipe_file: must not be empty"))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui.color_scheme: %w", err))
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		errs = append(errs, fmt.Errorf("watch.debounce: %w", err))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DebounceDuration parses Debounce. An empty value yields DefaultDebounce.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	s := w.Debounce
	if s == "" {
		s = DefaultDebounce
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}

// Error implements the error interface.
func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: %s, %s)", e.Value, RuntimeNative, RuntimeVirtual)
}

// Unwrap returns ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
func (e *InvalidConfigRuntimeModeError) Unwrap() error { return ErrInvalidConfigRuntimeMode }

// Validate returns an error if the RuntimeMode is not recognized.
func (m RuntimeMode) Validate() error {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return nil
	default:
		return &InvalidConfigRuntimeModeError{Value: m}
	}
}

// String returns the string representation of the RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: %s, %s, %s)", e.Value, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns an error if the ColorScheme is not recognized.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
