// internal/producer/document.go
package producer

import (
	"log/slog"

	"github.com/user/tutorpipe/internal/editor"
	"github.com/user/tutorpipe/internal/event"
)

// DocumentProducer emits one of the document lifecycle event types. Open and
// save events carry the full document text; close events carry only the path.
type DocumentProducer struct {
	fanout
	kind   event.Type
	source *event.Source
	filter *PathFilter
}

// NewDocumentOpen creates the documentOpen producer.
func NewDocumentOpen(source *event.Source, filter *PathFilter, log *slog.Logger) *DocumentProducer {
	return &DocumentProducer{fanout: fanout{log: log}, kind: event.DocumentOpen, source: source, filter: filter}
}

// NewDocumentSave creates the documentSave producer.
func NewDocumentSave(source *event.Source, filter *PathFilter, log *slog.Logger) *DocumentProducer {
	return &DocumentProducer{fanout: fanout{log: log}, kind: event.DocumentSave, source: source, filter: filter}
}

// NewDocumentClose creates the documentClose producer.
func NewDocumentClose(source *event.Source, filter *PathFilter, log *slog.Logger) *DocumentProducer {
	return &DocumentProducer{fanout: fanout{log: log}, kind: event.DocumentClose, source: source, filter: filter}
}

// Listen subscribes to the matching document lifecycle topic.
func (p *DocumentProducer) Listen(bus *editor.Bus) {
	switch p.kind {
	case event.DocumentOpen:
		bus.OnDocumentOpen(p.handle)
	case event.DocumentSave:
		bus.OnDocumentSave(p.handle)
	case event.DocumentClose:
		bus.OnDocumentClose(p.handle)
	}
}

func (p *DocumentProducer) handle(doc editor.Document) {
	if p.filter.Excluded(doc.Path) {
		p.log.Debug("skipping document in storage area", "path", doc.Path)
		return
	}

	data := map[string]any{"documentPath": doc.Path}
	if p.kind != event.DocumentClose {
		data["documentText"] = doc.Text
	}
	p.emit(p.source.New(p.kind, data))
}
