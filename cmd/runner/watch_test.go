// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/recipe-runner/runner/internal/config"
	"github.com/recipe-runner/runner/pkg/types"
)

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, b *syncBuffer, substr string, n int) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Count(b.String(), substr) >= n {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d x %q in output:\n%s", n, substr, b.String())
}

func TestWatchRerunsOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recipe := filepath.Join(dir, config.DefaultRecipeFile)
	if err := os.WriteFile(recipe, []byte("greet:\n    echo run-marker\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.DefaultRuntime = config.RuntimeVirtual
	cfg.Watch.Debounce = "50ms"

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	a := &app{
		stdin:          strings.NewReader(""),
		stdout:         stdout,
		stderr:         stderr,
		getwd:          func() (string, error) { return dir, nil },
		configProvider: staticProvider{cfg: cfg},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		cmd := newRootCommand(a)
		cmd.SetArgs([]string{"--watch", "--watch-pattern", "**/*.txt", "greet"})
		done <- cmd.ExecuteContext(ctx)
	}()

	waitFor(t, stdout, "run-marker", 1)
	waitFor(t, stdout, "Watching for changes", 1)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, stdout, "run-marker", 2)

	cancel()
	select {
	case err := <-done:
		if code := exitCodeFor(err); code != types.ExitInterrupted {
			t.Errorf("exit code = %d, want %d", code, types.ExitInterrupted)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchUnknownTaskFailsFast(t *testing.T) {
	t.Parallel()

	h := newHarness(t, testRecipes)
	if code := h.execute("--watch", "nope"); code != types.ExitTaskNotFound {
		t.Errorf("exit code = %d, want %d", code, types.ExitTaskNotFound)
	}
}
