// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyStarted is returned by a second call to Run.
var ErrAlreadyStarted = errors.New("watch: Run called more than once")

type (
	// ChangeFunc handles one batch of changed paths, relative to the watch
	// root and sorted. The initial run of a watcher receives no paths.
	ChangeFunc func(ctx context.Context, changed []string) error

	// Config holds the parameters for a Watcher.
	Config struct {
		// Patterns are doublestar globs (e.g. "src/**/*.rs") selecting the
		// files that trigger a run. Empty means every non-ignored file.
		Patterns []string
		// Ignore are extra doublestar globs merged with DefaultIgnores.
		Ignore []string
		// Debounce is the quiet period after the last event before OnChange runs.
		Debounce time.Duration
		// BaseDir is the watch root. Empty means the working directory.
		BaseDir string
		// RunOnStart calls OnChange once before any event arrives.
		RunOnStart bool
		// ClearScreen writes an ANSI clear sequence to Stdout before each run.
		ClearScreen bool
		OnChange    ChangeFunc
		// Stdout receives the clear-screen sequence. nil means os.Stdout.
		Stdout io.Writer
		// Logger receives watcher diagnostics. nil discards them.
		Logger *log.Logger
	}

	// Watcher monitors a directory tree and runs a callback for each
	// debounced batch of changes. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		match    *matcher
		stdout   io.Writer
		logger   *log.Logger
		debounce time.Duration
		baseDir  string
		started  atomic.Bool
	}

	// batcher accumulates changed paths and fires the callback once the
	// debounce timer expires, never running two callbacks at once.
	batcher struct {
		mu      sync.Mutex
		pending map[string]struct{}
		timer   *time.Timer
		running atomic.Bool
		delay   time.Duration
		fire    func(changed []string)
		logger  *log.Logger
	}
)

// New validates cfg and registers every non-ignored directory under BaseDir.
func New(cfg Config) (*Watcher, error) {
	match, err := newMatcher(cfg.Patterns, cfg.Ignore)
	if err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		if baseDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		match:    match,
		stdout:   cfg.Stdout,
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
		baseDir:  absBase,
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	if err := w.addDirectories(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			w.logger.Warn("close watcher after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// BaseDir returns the absolute watch root.
func (w *Watcher) BaseDir() string { return w.baseDir }

// Run processes filesystem events until ctx is cancelled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
	}()

	b := &batcher{
		pending: make(map[string]struct{}),
		delay:   w.debounce,
		logger:  w.logger,
		fire:    func(changed []string) { w.invoke(ctx, changed) },
	}
	defer b.stop()

	if w.cfg.RunOnStart {
		w.invoke(ctx, nil)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			w.handle(evt, b)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) handle(evt fsnotify.Event, b *batcher) {
	rel, err := filepath.Rel(w.baseDir, evt.Name)
	if err != nil {
		rel = evt.Name
	}

	// New directories extend the recursive watch even when the directory
	// name itself does not match a pattern.
	if evt.Has(fsnotify.Create) {
		w.maybeAddDir(evt.Name, rel)
	}
	if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
		return
	}
	if !w.match.wanted(rel) {
		return
	}
	w.logger.Debug("change", "path", rel, "op", evt.Op.String())
	b.add(rel)
}

func (w *Watcher) invoke(ctx context.Context, changed []string) {
	if ctx.Err() != nil || w.cfg.OnChange == nil {
		return
	}
	if w.cfg.ClearScreen {
		fmt.Fprint(w.stdout, "\033[2J\033[H")
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.logger.Error("run failed", "err", err)
	}
}

// addDirectories registers BaseDir and every non-ignored directory below it.
// Inaccessible directories are skipped with a warning.
func (w *Watcher) addDirectories() error {
	walkErr := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "err", err)
			return nil //nolint:nilerr // unreadable directories are not fatal
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.baseDir, path)
		if relErr != nil {
			return nil //nolint:nilerr // cannot happen for paths under baseDir
		}
		if rel != "." && w.match.ignoredDir(rel) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk directory tree: %w", walkErr)
	}
	return nil
}

func (w *Watcher) maybeAddDir(path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.match.ignoredDir(rel) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("add new directory", "path", path, "err", err)
	}
}

func (b *batcher) add(rel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[rel] = struct{}{}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, b.flush)
	} else {
		b.timer.Reset(b.delay)
	}
}

// flush runs on the timer goroutine. A flush that finds a callback still
// running re-arms the timer so the pending paths are not lost.
func (b *batcher) flush() {
	if !b.running.CompareAndSwap(false, true) {
		b.logger.Debug("previous run still in progress; deferring")
		b.mu.Lock()
		if b.timer != nil {
			b.timer.Reset(b.delay)
		}
		b.mu.Unlock()
		return
	}
	defer b.running.Store(false)

	b.mu.Lock()
	changed := slices.Sorted(maps.Keys(b.pending))
	clear(b.pending)
	b.mu.Unlock()

	if len(changed) > 0 {
		b.fire(changed)
	}
}

func (b *batcher) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}
