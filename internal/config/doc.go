// SPDX-License-Identifier: MPL-2.0

// Package config handles runner configuration using Viper with CUE as the file format.
//
// Configuration is read from an explicit --config file, otherwise from
// $XDG_CONFIG_HOME/runner/config.cue (the platform equivalent on macOS and
// Windows), otherwise from ./.runner.cue. Every file is validated against the
// embedded #Config schema (config_schema.cue) before it is merged over the
// built-in defaults. RUNNER_* environment variables override file values
// (RUNNER_DEFAULT_RUNTIME, RUNNER_UI_VERBOSE, ...).
package config
