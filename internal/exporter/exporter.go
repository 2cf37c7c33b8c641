// internal/exporter/exporter.go
package exporter

import (
	"context"

	"github.com/user/tutorpipe/internal/event"
)

// Exporter is a delivery sink for normalized events. Implementations own
// their failure handling: a returned error is only a signal for the caller
// to log and move on, never to retry or abort delivery to other sinks.
type Exporter interface {
	Export(ctx context.Context, ev event.Event) error
}
