// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatCUE renders a config file that can be saved as config.cue.
	FormatCUE Format = "cue"
	// FormatTOML renders the configuration as TOML.
	FormatTOML Format = "toml"
	// FormatYAML renders the configuration as YAML.
	FormatYAML Format = "yaml"
)

// ErrInvalidFormat is returned for an unknown output format.
var ErrInvalidFormat = errors.New("invalid output format")

// Format is an output format of Render.
type Format string

// Formats returns the supported output formats.
func Formats() []Format { return []Format{FormatCUE, FormatTOML, FormatYAML} }

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCUE, FormatTOML, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (valid: cue, toml, yaml)", ErrInvalidFormat, s)
	}
}

// Render serializes cfg in the given format.
func Render(cfg *Config, format Format) (string, error) {
	switch format {
	case FormatCUE, "":
		return GenerateCUE(cfg), nil
	case FormatTOML:
		out, err := toml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("render config as toml: %w", err)
		}
		return string(out), nil
	case FormatYAML:
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("render config as yaml: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidFormat, format)
	}
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// runner configuration\n\n")
	fmt.Fprintf(&sb, "default_runtime: %q\n", cfg.DefaultRuntime)
	if len(cfg.Shell) > 0 {
		fmt.Fprintf(&sb, "shell: %s\n", cueList(cfg.Shell))
	}
	fmt.Fprintf(&sb, "recipe_file: %q\n", cfg.RecipeFile)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\techo: %v\n", cfg.UI.Echo)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce)
	if len(cfg.Watch.Patterns) > 0 {
		fmt.Fprintf(&sb, "\tpatterns: %s\n", cueList(cfg.Watch.Patterns))
	}
	if len(cfg.Watch.Ignore) > 0 {
		fmt.Fprintf(&sb, "\tignore: %s\n", cueList(cfg.Watch.Ignore))
	}
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, s := range items {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
