// internal/producer/producer.go
package producer

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/user/tutorpipe/internal/editor"
	"github.com/user/tutorpipe/internal/event"
	"github.com/user/tutorpipe/internal/exporter"
)

// Producer observes one category of editor activity and emits normalized
// events to every registered exporter.
//
// AddExporter is append-only and does not deduplicate: registering the same
// sink twice is defined to deliver every event to it twice.
type Producer interface {
	Listen(bus *editor.Bus)
	AddExporter(exp exporter.Exporter)
}

// fanout is the shared delivery core embedded by every producer. Events go to
// exporters synchronously in registration order; a failing exporter is logged
// and the remaining exporters still receive the event.
type fanout struct {
	log       *slog.Logger
	exporters []exporter.Exporter
}

func (f *fanout) AddExporter(exp exporter.Exporter) {
	f.exporters = append(f.exporters, exp)
}

func (f *fanout) emit(ev event.Event) {
	ctx := context.Background()
	for _, exp := range f.exporters {
		if err := exp.Export(ctx, ev); err != nil {
			f.log.Warn("export failed", "type", ev.Type, "error", err)
		}
	}
}

// PathFilter suppresses events whose subject path falls inside the telemetry
// system's own storage area. Without it, telemetry writes would trigger more
// telemetry.
type PathFilter struct {
	root string
}

// NewPathFilter creates a filter for the given storage root.
func NewPathFilter(root string) *PathFilter {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	return &PathFilter{root: abs}
}

// Excluded reports whether path is the storage root or lies under it.
func (p *PathFilter) Excluded(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return abs == p.root || strings.HasPrefix(abs, p.root+string(filepath.Separator))
}
