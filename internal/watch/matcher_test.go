// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
)

func TestMatcherWanted(t *testing.T) {
	t.Parallel()

	m, err := newMatcher([]string{"src/**/*.rs", "Runnerfile"}, []string{"target/**"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		rel  string
		want bool
	}{
		{"src/lib.rs", true},
		{"src/arena/alloc.rs", true},
		{"Runnerfile", true},
		{"README.md", false},
		{"target/release/lib.rs", false},
		{"src/.git/objects/x.rs", false},
		{"src/lib.rs.swp", false},
	}
	for _, tt := range tests {
		if got := m.wanted(tt.rel); got != tt.want {
			t.Errorf("wanted(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestMatcherNoPatternsWantsEverything(t *testing.T) {
	t.Parallel()

	m, err := newMatcher(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !m.wanted("any/file.txt") {
		t.Error("wanted() = false with no patterns")
	}
	if m.wanted("node_modules/pkg/index.js") {
		t.Error("default ignores must still apply")
	}
}

func TestMatcherIgnoredDir(t *testing.T) {
	t.Parallel()

	m, err := newMatcher(nil, []string{"target/**"})
	if err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{".git", "sub/.git", "node_modules", "target"} {
		if !m.ignoredDir(dir) {
			t.Errorf("ignoredDir(%q) = false", dir)
		}
	}
	if m.ignoredDir("src") {
		t.Error("ignoredDir(src) = true")
	}
}

func TestNewMatcherRejectsBadPatterns(t *testing.T) {
	t.Parallel()

	if _, err := newMatcher([]string{"src/[.rs"}, nil); !errors.Is(err, doublestar.ErrBadPattern) {
		t.Errorf("newMatcher(bad watch pattern) error = %v", err)
	}
	if _, err := newMatcher(nil, []string{"{a,"}); !errors.Is(err, doublestar.ErrBadPattern) {
		t.Errorf("newMatcher(bad ignore pattern) error = %v", err)
	}
	if _, err := newMatcher([]string{""}, nil); err == nil {
		t.Error("newMatcher(empty pattern) error = nil")
	}
}

func TestDefaultIgnoresIsCopy(t *testing.T) {
	t.Parallel()

	got := DefaultIgnores()
	got[0] = "changed"
	if DefaultIgnores()[0] == "changed" {
		t.Error("DefaultIgnores() must return a copy")
	}
}
