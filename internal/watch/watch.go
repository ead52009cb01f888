// Package watch reports design files dropped into a folder, debounced so a
// file still being copied is delivered once.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	debounce   time.Duration
	include    []glob.Glob
	onReady    func([]string)
	callbackMu sync.Mutex

	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer
	closed    bool // guarded by pendingMu
}

// New returns a watcher that calls onReady with the settled paths whose base
// name matches one of patterns. An empty pattern list matches every file.
func New(patterns []string, debounce time.Duration, onReady func([]string)) (*Watcher, error) {
	w := &Watcher{
		debounce: debounce,
		onReady:  onReady,
		pending:  make(map[string]struct{}),
	}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		w.include = append(w.include, g)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsWatcher = fsw
	return w, nil
}

// Watch starts watching dir (not recursive) in the background.
func (w *Watcher) Watch(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	slog.Debug("watching", "dir", dir)

	go w.run()
	return nil
}

// Run watches dir until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	if err := w.Watch(dir); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.matches(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Write == fsnotify.Write {
				w.schedule(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if w.closed {
		return
	}
	w.pending[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		// Gone before it settled.
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	if w.isClosed() {
		return
	}
	w.onReady(paths)
}

func (w *Watcher) isClosed() bool {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	return w.closed
}

func (w *Watcher) matches(path string) bool {
	if len(w.include) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, g := range w.include {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Close stops watching. It waits for a callback already in progress, and no
// callback starts once it returns.
func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()

	err := w.fsWatcher.Close()

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	return err
}
