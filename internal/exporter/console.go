// internal/exporter/console.go
package exporter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/user/tutorpipe/internal/event"
)

// Console writes each event to the injected log stream. It has no failure
// mode beyond a marshal error, which cannot occur for well-formed events.
type Console struct {
	log *slog.Logger
}

// NewConsole creates a console exporter writing through log.
func NewConsole(log *slog.Logger) *Console {
	return &Console{log: log}
}

// Export serializes the event and logs it.
func (c *Console) Export(_ context.Context, ev event.Event) error {
	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return err
	}
	c.log.Info("exported event", "type", ev.Type, "event", string(data))
	return nil
}
