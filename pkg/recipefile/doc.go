// SPDX-License-Identifier: MPL-2.0

// Package recipefile provides types and parsing for Runnerfile recipe definitions.
//
// A Runnerfile is a plain-text list of named recipes. Each recipe has a header
// (`name [param...]:`) followed by indented body lines that are either steps
// (shell command lines) or `export NAME=value` environment overrides. Steps and
// override values are templates: `{{PARAM}}` placeholders are replaced with the
// values bound to the recipe parameters when the recipe is dispatched.
//
// Parsing is pure. Load and ParseBytes return an immutable Registry or a
// *ParseError naming the offending line; placeholders that reference undeclared
// parameters are rejected at load time, never at dispatch time.
package recipefile
