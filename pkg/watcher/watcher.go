// Package watcher watches a project tree for source changes and reports
// them after a debounce window, so saves from external editors trigger a
// hot reload without storming the runtime during bulk operations.
package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"

	"github.com/vividtools/vivid-ide/config"
	"github.com/vividtools/vivid-ide/errors"
	"github.com/vividtools/vivid-ide/logging"
)

// DefaultDebounce is the coalescing window applied when the config does not
// set one.
const DefaultDebounce = 150 * time.Millisecond

// DefaultIgnores excludes the build output and bookkeeping directories that
// churn during normal operation. Config patterns are added on top.
var DefaultIgnores = []string{
	"build/",
	".vivid/",
	".git/",
	"*.o",
	"*.so",
	"*.dylib",
	"*.swp",
	"*~",
}

// Watcher reports batched source changes under a project root.
type Watcher struct {
	root     string
	debounce time.Duration
	matcher  *patternmatcher.PatternMatcher
	fs       *fsnotify.Watcher
	onChange func(paths []string)
	logger   *logrus.Entry

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	closed  bool

	done chan struct{}
}

// New starts watching root and every subdirectory that is not ignored.
// onChange receives the absolute paths that changed, sorted, once per burst.
func New(root string, cfg config.WatcherConfig, onChange func(paths []string)) (*Watcher, error) {
	patterns := append(append([]string{}, DefaultIgnores...), cfg.Ignore...)
	matcher, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid watcher ignore patterns")
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WatcherFailed("failed to create file watcher", err)
	}

	debounce := DefaultDebounce
	if cfg.DebounceMS > 0 {
		debounce = time.Duration(cfg.DebounceMS) * time.Millisecond
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		matcher:  matcher,
		fs:       fs,
		onChange: onChange,
		logger:   logging.NewLogger("watcher"),
		pending:  map[string]struct{}{},
		done:     make(chan struct{}),
	}

	if err := w.addTree(root); err != nil {
		fs.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}

// addTree registers root and its non-ignored subdirectories.
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return errors.WatcherFailed("failed to watch "+path, err)
		}
		return nil
	})
}

// ignored applies the ignore patterns to a path relative to the root.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	matched, err := w.matcher.MatchesOrParentMatches(rel)
	if err != nil {
		w.logger.WithError(err).WithField("path", rel).Debug("Pattern match failed")
		return false
	}
	return matched
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("Watch error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if w.ignored(ev.Name) {
		return
	}

	// New directories join the watch so nested saves are seen.
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fs.Add(ev.Name); err != nil {
				w.logger.WithError(err).WithField("path", ev.Name).Debug("Failed to watch new directory")
			}
			return
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[ev.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

// fire flushes the pending batch to the callback.
func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = map[string]struct{}{}
	w.mu.Unlock()

	sort.Strings(paths)
	w.onChange(paths)
}
