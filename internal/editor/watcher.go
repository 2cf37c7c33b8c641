// internal/editor/watcher.go
package editor

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher bridges filesystem activity under the workspace root into file
// occurrences on the bus. fsnotify does not watch recursively, so every
// directory under the root is registered, and directories created while
// watching are added on the fly.
type Watcher struct {
	root string
	bus  *Bus
	log  *slog.Logger
	fsw  *fsnotify.Watcher
}

// NewWatcher creates a watcher over root that publishes to bus.
func NewWatcher(root string, bus *Bus, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{root: root, bus: bus, log: log, fsw: fsw}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("register workspace dirs: %w", err)
	}

	return w, nil
}

// Start consumes filesystem events until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	switch {
	case ev.Op.Has(fsnotify.Create):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(ev.Name); err != nil {
				w.log.Warn("watch new dir failed", "path", ev.Name, "error", err)
			}
		}
		w.bus.PublishFileCreated(ev.Name)
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.bus.PublishFileDeleted(ev.Name)
	}
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
