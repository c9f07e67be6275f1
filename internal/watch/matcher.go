// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnores are excluded in addition to user ignore patterns: VCS
// metadata, dependency and build caches, editor swap files and OS metadata.
var defaultIgnores = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// matcher decides which paths, relative to the watch root, are of interest.
type matcher struct {
	patterns []string
	ignores  []string
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string { return slices.Clone(defaultIgnores) }

func newMatcher(patterns, ignores []string) (*matcher, error) {
	if err := validatePatterns(patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(ignores, "ignore"); err != nil {
		return nil, err
	}
	return &matcher{
		patterns: slices.Clone(patterns),
		ignores:  append(slices.Clone(defaultIgnores), ignores...),
	}, nil
}

// ignored reports whether rel matches an ignore pattern.
func (m *matcher) ignored(rel string) bool {
	return matchAny(m.ignores, rel)
}

// ignoredDir reports whether the directory rel and everything below it is ignored.
func (m *matcher) ignoredDir(rel string) bool {
	return m.ignored(rel) || m.ignored(rel+"/")
}

// wanted reports whether rel should trigger a run: not ignored and matching
// a watch pattern. No patterns means every path is wanted.
func (m *matcher) wanted(rel string) bool {
	if m.ignored(rel) {
		return false
	}
	return len(m.patterns) == 0 || matchAny(m.patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// validatePatterns rejects empty and malformed doublestar globs.
func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if pat == "" {
			return fmt.Errorf("watch: empty %s pattern", label)
		}
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
