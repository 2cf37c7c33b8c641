// internal/producer/keystroke.go
package producer

import (
	"log/slog"

	"github.com/user/tutorpipe/internal/editor"
	"github.com/user/tutorpipe/internal/event"
)

// KeystrokeProducer emits one event per document edit. Virtual and untitled
// buffers are ignored, as are occurrences with an empty change list.
type KeystrokeProducer struct {
	fanout
	source *event.Source
	filter *PathFilter
}

// NewKeystroke creates the keystroke producer.
func NewKeystroke(source *event.Source, filter *PathFilter, log *slog.Logger) *KeystrokeProducer {
	return &KeystrokeProducer{fanout: fanout{log: log}, source: source, filter: filter}
}

// Listen subscribes to document edit occurrences.
func (p *KeystrokeProducer) Listen(bus *editor.Bus) {
	bus.OnKeystroke(p.handle)
}

func (p *KeystrokeProducer) handle(k editor.Keystroke) {
	if k.Document.Scheme != "file" {
		return
	}
	if len(k.Changes) == 0 {
		return
	}
	if p.filter.Excluded(k.Document.Path) {
		p.log.Debug("skipping edit in storage area", "path", k.Document.Path)
		return
	}

	p.emit(p.source.New(event.Keystroke, map[string]any{
		"documentPath": k.Document.Path,
		"changes":      k.Changes,
	}))
}
