// internal/relay/eventlog.go
package relay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// EventLog is the relay's durable event sink: one append-only JSONL file per
// identity under the data root. It mirrors the capture agent's file exporter
// server-side.
type EventLog struct {
	root  string
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEventLog creates an event log rooted at the given directory.
func NewEventLog(root string) *EventLog {
	return &EventLog{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}
}

// getLock returns the per-identity mutex, creating one if it doesn't exist.
func (l *EventLog) getLock(username string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lock, ok := l.locks[username]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	l.locks[username] = lock
	return lock
}

func (l *EventLog) logPath(username string) string {
	return filepath.Join(l.root, username, "logs.json")
}

// Append adds one pre-built event to the identity's log, creating the
// identity directory on first write. Earlier lines are never touched.
func (l *EventLog) Append(username string, event json.RawMessage) error {
	lock := l.getLock(username)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(l.logPath(username))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, event); err != nil {
		return fmt.Errorf("compact event: %w", err)
	}
	buf.WriteByte('\n')

	f, err := os.OpenFile(l.logPath(username), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Tail returns the last N raw events for the given identity.
func (l *EventLog) Tail(username string, limit int) ([]json.RawMessage, error) {
	lock := l.getLock(username)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(l.logPath(username))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		events = append(events, json.RawMessage(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}
