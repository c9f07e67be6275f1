// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

// recorder collects OnChange batches.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
	signal  chan struct{}
}

func newRecorder() *recorder { return &recorder{signal: make(chan struct{}, 16)} }

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.batches = append(r.batches, changed)
	r.mu.Unlock()
	r.signal <- struct{}{}
	return nil
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
	}
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.batches)
}

func startWatcher(t *testing.T, cfg Config) (cancel func()) {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancelCtx := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	return func() {
		cancelCtx()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherDebouncesIntoOneBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	stop := startWatcher(t, Config{BaseDir: dir, Debounce: 150 * time.Millisecond, OnChange: rec.onChange})

	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		write(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}
	rec.wait(t)
	time.Sleep(300 * time.Millisecond)
	stop()

	batches := rec.snapshot()
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1: %v", len(batches), batches)
	}
	if want := []string{"a.txt", "b.txt", "c.txt"}; !slices.Equal(batches[0], want) {
		t.Errorf("batch = %v, want sorted %v", batches[0], want)
	}
}

func TestWatcherPatternsAndIgnores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "build"), 0o755); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	stop := startWatcher(t, Config{
		BaseDir:  dir,
		Debounce: 100 * time.Millisecond,
		Patterns: []string{"**/*.rs"},
		Ignore:   []string{"build/**"},
		OnChange: rec.onChange,
	})

	write(t, filepath.Join(dir, "notes.md"))
	write(t, filepath.Join(dir, "build", "gen.rs"))
	write(t, filepath.Join(dir, "lib.rs"))
	rec.wait(t)
	time.Sleep(250 * time.Millisecond)
	stop()

	batches := rec.snapshot()
	if len(batches) != 1 || !slices.Equal(batches[0], []string{"lib.rs"}) {
		t.Errorf("batches = %v, want [[lib.rs]]", batches)
	}
}

func TestWatcherWatchesNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	stop := startWatcher(t, Config{BaseDir: dir, Debounce: 100 * time.Millisecond, Patterns: []string{"**/*.go"}, OnChange: rec.onChange})
	defer stop()

	sub := filepath.Join(dir, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the event loop time to register the new directory.
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(sub, "x.go"))
	rec.wait(t)

	batches := rec.snapshot()
	if !slices.ContainsFunc(batches, func(b []string) bool { return slices.Contains(b, filepath.Join("pkg", "x.go")) }) {
		t.Errorf("batches = %v, want pkg/x.go", batches)
	}
}

func TestWatcherRunOnStartAndClearScreen(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	rec := newRecorder()
	stop := startWatcher(t, Config{
		BaseDir:     t.TempDir(),
		RunOnStart:  true,
		ClearScreen: true,
		Stdout:      &stdout,
		OnChange:    rec.onChange,
	})
	rec.wait(t)
	stop()

	batches := rec.snapshot()
	if len(batches) != 1 || batches[0] != nil {
		t.Errorf("batches = %v, want one initial nil batch", batches)
	}
	if stdout.String() != "\033[2J\033[H" {
		t.Errorf("stdout = %q, want clear-screen sequence", stdout.String())
	}
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Run() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestNewInvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{BaseDir: t.TempDir(), Patterns: []string{"[unclosed"}}); err == nil {
		t.Error("New() with invalid pattern should fail")
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(Config{BaseDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
	if w.BaseDir() != dir {
		t.Errorf("BaseDir() = %q, want %q", w.BaseDir(), dir)
	}
}
