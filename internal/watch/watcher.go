// SPDX-License-Identifier: MPL-2.0

// Package watch rebuilds an extension project when its sources change.
//
// A Watcher monitors the project tree with fsnotify, filters events through
// doublestar include and ignore globs, and calls Options.OnChange once per
// quiet period with the set of changed paths. Callbacks run on the event
// loop, so at most one rebuild is in flight; events that arrive meanwhile
// are coalesced into the next call.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")

	// defaultIgnores are always excluded: VCS metadata, installed
	// dependencies, editor swap files and OS metadata.
	defaultIgnores = []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/*.swp",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Options configures a Watcher.
	Options struct {
		// Root is the directory watched recursively. Empty means the working
		// directory.
		Root string
		// Patterns select which changed files count. Empty means all files.
		Patterns []string
		// Ignore adds to the built-in ignore globs. Build outputs belong here
		// so a rebuild does not retrigger itself.
		Ignore []string
		// Debounce is the quiet period after the last event. Zero or
		// negative means DefaultDebounce.
		Debounce time.Duration
		// RunOnStart calls OnChange once with no paths before watching.
		RunOnStart bool
		// OnChange receives the changed paths relative to Root. Errors are
		// logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *slog.Logger
	}

	// Watcher monitors a project tree. Run must be called exactly once.
	Watcher struct {
		opts     Options
		fsw      *fsnotify.Watcher
		root     string
		ignores  []string
		debounce time.Duration
		logger   *slog.Logger
		started  atomic.Bool
	}
)

// New validates opts, creates the fsnotify watcher and registers every
// non-ignored directory under Root.
func New(opts Options) (*Watcher, error) {
	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	if err := validatePatterns("watch", opts.Patterns); err != nil {
		return nil, err
	}
	if err := validatePatterns("ignore", opts.Ignore); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		opts:     opts,
		fsw:      fsw,
		root:     root,
		ignores:  slices.Concat(defaultIgnores, opts.Ignore),
		debounce: debounce,
		logger:   logger.With("root", root),
	}

	if err := w.addTree(root); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close watcher after init failure", "error", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string { return w.root }

// Run processes events until ctx is canceled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "error", err)
		}
	}()

	if w.opts.RunOnStart {
		w.dispatch(ctx, nil)
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	stopTimer(timer)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed unexpectedly")
			}
			rel, match := w.relevant(evt)
			if !match {
				continue
			}
			w.logger.Debug("change detected", "path", rel, "op", evt.Op.String())
			pending[rel] = struct{}{}
			stopTimer(timer)
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.dispatch(ctx, changed)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, changed []string) {
	if w.opts.OnChange == nil || ctx.Err() != nil {
		return
	}
	if err := w.opts.OnChange(ctx, changed); err != nil {
		w.logger.Error("rebuild failed", "error", err)
	}
}

// relevant reports whether evt should schedule a callback and returns its
// path relative to Root. New directories are added to the watch set.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil {
		rel = evt.Name
	}
	rel = filepath.ToSlash(rel)

	if w.ignored(rel) {
		return "", false
	}
	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(evt.Name); err != nil {
				w.logger.Warn("watch new directory", "path", rel, "error", err)
			}
		}
	}
	if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
		return "", false
	}
	return rel, w.included(rel)
}

// addTree registers dir and every non-ignored directory below it.
// Unreadable directories are skipped.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "error", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil //nolint:nilerr // paths outside root are not watched
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && (w.ignored(rel) || w.ignored(rel+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %q: %w", dir, err)
	}
	return nil
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) included(rel string) bool {
	return len(w.opts.Patterns) == 0 || matchAny(w.opts.Patterns, rel)
}

// DefaultIgnores returns a copy of the built-in ignore globs.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func validatePatterns(label string, patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
