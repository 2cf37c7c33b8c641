// internal/event/event.go
package event

import "time"

// Type tags one category of observed editor activity.
type Type string

const (
	DocumentOpen     Type = "documentOpen"
	DocumentSave     Type = "documentSave"
	DocumentClose    Type = "documentClose"
	Execution        Type = "execution"
	FileCreated      Type = "fileCreated"
	FileDeleted      Type = "fileDeleted"
	EditorFileSwitch Type = "editorFileSwitch"
	Keystroke        Type = "keystroke"
	ChatMessage      Type = "chatMessage"
)

// Timestamp layout for the wire/file format (ISO-8601, millisecond precision).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Event is the pipeline's common currency: one normalized record of one
// observed occurrence. It is fully formed by a producer before any exporter
// sees it and is never mutated afterwards.
type Event struct {
	Type      Type           `json:"eventType"`
	Timestamp string         `json:"timestamp"`
	SessionID string         `json:"sessionId"`
	MachineID string         `json:"machineId"`
	Identity  string         `json:"githubUsername"`
	Data      map[string]any `json:"data"`
}

// Source stamps events with the identifiers stable for one editor session.
type Source struct {
	sessionID string
	machineID string
	identity  string
}

// NewSource creates a Source for the given session, machine, and resolved
// identity. Identity must already be resolved; the pipeline never emits
// events with an empty identity.
func NewSource(sessionID, machineID, identity string) *Source {
	return &Source{sessionID: sessionID, machineID: machineID, identity: identity}
}

// New builds a fully populated event of the given type. The timestamp is read
// at build time, not at source-occurrence time.
func (s *Source) New(t Type, data map[string]any) Event {
	return s.At(t, time.Now(), data)
}

// At builds an event with an explicit occurrence time. Used by producers that
// carry their own timestamps, such as chat turns recorded by the session
// controller.
func (s *Source) At(t Type, at time.Time, data map[string]any) Event {
	return Event{
		Type:      t,
		Timestamp: at.UTC().Format(TimeLayout),
		SessionID: s.sessionID,
		MachineID: s.machineID,
		Identity:  s.identity,
		Data:      data,
	}
}

// SessionID returns the source's session identifier.
func (s *Source) SessionID() string { return s.sessionID }

// MachineID returns the source's machine identifier.
func (s *Source) MachineID() string { return s.machineID }

// Identity returns the source's resolved identity.
func (s *Source) Identity() string { return s.identity }
