// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"bad runtime", func(c *Config) { c.DefaultRuntime = "container" }, ErrInvalidConfigRuntimeMode},
		{"bad color scheme", func(c *Config) { c.UI.ColorScheme = "neon" }, ErrInvalidColorScheme},
		{"empty recipe file", func(c *Config) { c.RecipeFile = " " }, ErrInvalidConfig},
		{"empty shell program", func(c *Config) { c.Shell = []string{"", "-c"} }, ErrInvalidConfig},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }, ErrInvalidConfig},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = "-1s" }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error should wrap ErrInvalidConfig")
			}
		})
	}
}

func TestDebounceDuration(t *testing.T) {
	t.Parallel()

	d, err := WatchConfig{}.DebounceDuration()
	if err != nil || d != 500*time.Millisecond {
		t.Errorf("empty debounce = %v, %v; want 500ms", d, err)
	}
	d, err = WatchConfig{Debounce: "2s"}.DebounceDuration()
	if err != nil || d != 2*time.Second {
		t.Errorf("2s debounce = %v, %v", d, err)
	}
}
