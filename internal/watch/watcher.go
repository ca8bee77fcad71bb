// Package watch re-runs the asset embedding whenever a dashboard source
// file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher debounces filesystem events on a directory and triggers rebuilds.
type Watcher struct {
	dir      string
	files    map[string]bool // base names that trigger a rebuild
	debounce time.Duration
	rebuild  func() error
	watcher  *fsnotify.Watcher
}

// New creates a watcher over dir. Only events whose base name is in files
// arm the rebuild timer.
func New(dir string, files map[string]bool, debounce time.Duration, rebuild func() error) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dir:      dir,
		files:    files,
		debounce: debounce,
		rebuild:  rebuild,
		watcher:  watcher,
	}, nil
}

// Run blocks until the context is cancelled, rebuilding after each burst of
// changes. Rebuild failures are logged rather than fatal: watch mode is a
// development loop, and the next change triggers another attempt.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("asset changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := w.rebuild(); err != nil {
				slog.Error("rebuild failed", "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	return w.files[filepath.Base(event.Name)]
}
