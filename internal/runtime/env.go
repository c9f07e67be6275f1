// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	goruntime "runtime"
	"slices"
	"strings"
)

// MergeEnv returns a new environment built from base with overrides applied.
// Overrides replace inherited entries of the same name; base is never modified.
// Override entries are appended in sorted key order so the result is deterministic.
func MergeEnv(base []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if hasEnvKey(overrides, key) {
			continue
		}
		merged = append(merged, kv)
	}
	return append(merged, EnvToSlice(overrides)...)
}

// EnvToSlice converts an environment map to KEY=VALUE pairs sorted by key.
func EnvToSlice(env map[string]string) []string {
	keys := slices.Sorted(maps.Keys(env))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// LookupEnv returns the value of key in an environment slice. When a key
// appears more than once the last entry wins, matching exec.Cmd semantics.
func LookupEnv(env []string, key string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && envKeyEqual(k, key) {
			value, found = v, true
		}
	}
	return value, found
}

func hasEnvKey(env map[string]string, key string) bool {
	for k := range env {
		if envKeyEqual(k, key) {
			return true
		}
	}
	return false
}

// envKeyEqual compares variable names the way the host OS does: Windows
// treats names case-insensitively.
func envKeyEqual(a, b string) bool {
	if goruntime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
