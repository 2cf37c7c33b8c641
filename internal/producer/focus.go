// internal/producer/focus.go
package producer

import (
	"log/slog"

	"github.com/user/tutorpipe/internal/editor"
	"github.com/user/tutorpipe/internal/event"
)

// FocusProducer emits editorFileSwitch events when the active editor changes.
type FocusProducer struct {
	fanout
	source *event.Source
	filter *PathFilter
}

// NewFocus creates the editor focus-switch producer.
func NewFocus(source *event.Source, filter *PathFilter, log *slog.Logger) *FocusProducer {
	return &FocusProducer{fanout: fanout{log: log}, source: source, filter: filter}
}

// Listen subscribes to editor switch occurrences.
func (p *FocusProducer) Listen(bus *editor.Bus) {
	bus.OnEditorSwitch(p.handle)
}

func (p *FocusProducer) handle(doc editor.Document) {
	if p.filter.Excluded(doc.Path) {
		p.log.Debug("skipping switch to storage area", "path", doc.Path)
		return
	}
	p.emit(p.source.New(event.EditorFileSwitch, map[string]any{"documentPath": doc.Path}))
}
