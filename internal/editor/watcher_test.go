// internal/editor/watcher_test.go
package editor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcherPublishesCreateAndRemove(t *testing.T) {
	root := t.TempDir()
	bus := NewBus()

	var mu sync.Mutex
	created := map[string]bool{}
	deleted := map[string]bool{}
	bus.OnFileCreated(func(path string) {
		mu.Lock()
		created[path] = true
		mu.Unlock()
	})
	bus.OnFileDeleted(func(path string) {
		mu.Lock()
		deleted[path] = true
		mu.Unlock()
	})

	w, err := NewWatcher(root, bus, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	path := filepath.Join(root, "new.go")
	if err := os.WriteFile(path, []byte("package x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return created[path]
	})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return deleted[path]
	})
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	bus := NewBus()

	var mu sync.Mutex
	created := map[string]bool{}
	bus.OnFileCreated(func(path string) {
		mu.Lock()
		created[path] = true
		mu.Unlock()
	})

	w, err := NewWatcher(root, bus, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return created[sub]
	})

	inner := filepath.Join(sub, "inner.go")
	if err := os.WriteFile(inner, []byte("package x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return created[inner]
	})
}
