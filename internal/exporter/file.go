// internal/exporter/file.go
package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/tutorpipe/internal/event"
)

// File appends events to one file per (identity, machine, session) triple
// under the telemetry storage root. Entries are indented JSON followed by
// ",\n" — readers strip the trailing separator and wrap the whole file in
// an array to parse it. The separator convention predates this code and is
// kept for compatibility with existing logs.
type File struct {
	root   string
	source *event.Source
	log    *slog.Logger

	mu       sync.Mutex
	path     string
	resolved bool
}

// NewFile creates a file exporter rooted at the telemetry storage directory.
// The session file path is resolved lazily on first export.
func NewFile(root string, source *event.Source, log *slog.Logger) *File {
	return &File{root: root, source: source, log: log}
}

// Path returns the session log path, resolving and creating its parent
// directories on first call. Treats "already exists" as success.
func (f *File) Path() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pathLocked()
}

func (f *File) pathLocked() (string, error) {
	if f.resolved {
		return f.path, nil
	}

	dir := filepath.Join(f.root, f.source.Identity(), f.source.MachineID(), f.source.SessionID())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	f.path = filepath.Join(dir, "telemetry.json")
	f.resolved = true
	f.log.Debug("session telemetry file resolved", "path", f.path)
	return f.path, nil
}

// Export appends the event to the session file. Earlier entries are never
// rewritten or truncated.
func (f *File) Export(_ context.Context, ev event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, err := f.pathLocked()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	data = append(data, ',', '\n')

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open telemetry file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ReadLog parses a telemetry file written by File: the trailing separator is
// stripped and the entries are wrapped in an array.
func ReadLog(path string) ([]event.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read telemetry file: %w", err)
	}

	trimmed := strings.TrimRight(string(data), " \t\r\n")
	trimmed = strings.TrimSuffix(trimmed, ",")

	var events []event.Event
	if err := json.Unmarshal([]byte("["+trimmed+"]"), &events); err != nil {
		return nil, fmt.Errorf("parse telemetry file: %w", err)
	}
	return events, nil
}
