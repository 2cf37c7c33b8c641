// internal/producer/filesystem.go
package producer

import (
	"log/slog"

	"github.com/user/tutorpipe/internal/editor"
	"github.com/user/tutorpipe/internal/event"
)

// FileProducer emits fileCreated or fileDeleted events from workspace
// filesystem activity.
type FileProducer struct {
	fanout
	kind   event.Type
	source *event.Source
	filter *PathFilter
}

// NewFileCreated creates the fileCreated producer.
func NewFileCreated(source *event.Source, filter *PathFilter, log *slog.Logger) *FileProducer {
	return &FileProducer{fanout: fanout{log: log}, kind: event.FileCreated, source: source, filter: filter}
}

// NewFileDeleted creates the fileDeleted producer.
func NewFileDeleted(source *event.Source, filter *PathFilter, log *slog.Logger) *FileProducer {
	return &FileProducer{fanout: fanout{log: log}, kind: event.FileDeleted, source: source, filter: filter}
}

// Listen subscribes to the matching filesystem topic.
func (p *FileProducer) Listen(bus *editor.Bus) {
	if p.kind == event.FileCreated {
		bus.OnFileCreated(p.handle)
	} else {
		bus.OnFileDeleted(p.handle)
	}
}

func (p *FileProducer) handle(path string) {
	if p.filter.Excluded(path) {
		p.log.Debug("skipping file in storage area", "path", path)
		return
	}
	p.emit(p.source.New(p.kind, map[string]any{"filePath": path}))
}
