// internal/event/ids.go
package event

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NewSessionID returns a fresh identifier for one capture-agent run.
func NewSessionID() string {
	return uuid.New().String()
}

// LoadMachineID returns the machine identifier persisted under dataDir,
// creating it on first use. The identifier is stable across sessions on the
// same machine.
func LoadMachineID(dataDir string) (string, error) {
	path := filepath.Join(dataDir, "machine-id")

	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read machine id: %w", err)
	}

	id := uuid.New().String()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write machine id: %w", err)
	}
	return id, nil
}
