// internal/producer/execution.go
package producer

import (
	"log/slog"
	"strings"
	"time"

	"github.com/user/tutorpipe/internal/editor"
	"github.com/user/tutorpipe/internal/event"
)

// ExecutionProducer emits one event per terminal command. It drains the full
// output stream before emitting: duration runs from the detected start to the
// moment output capture completes, and the exit status is read only after the
// drain, when it is actually known.
type ExecutionProducer struct {
	fanout
	source *event.Source
}

// NewExecution creates the execution producer.
func NewExecution(source *event.Source, log *slog.Logger) *ExecutionProducer {
	return &ExecutionProducer{fanout: fanout{log: log}, source: source}
}

// Listen subscribes to command execution occurrences.
func (p *ExecutionProducer) Listen(bus *editor.Bus) {
	bus.OnExecution(p.handle)
}

func (p *ExecutionProducer) handle(ex editor.Execution) {
	var result strings.Builder
	for chunk := range ex.Output {
		result.WriteString(chunk)
	}
	duration := time.Since(ex.Started)
	exitStatus := <-ex.Exit

	p.log.Debug("command completed",
		"command", ex.Command,
		"exit", exitStatus,
		"output", preview(result.String()))

	p.emit(p.source.New(event.Execution, map[string]any{
		"command":    ex.Command,
		"exitStatus": exitStatus,
		"durationMs": duration.Milliseconds(),
		"result":     result.String(),
	}))
}

// preview collapses output to a short head...tail summary for log lines.
func preview(s string) string {
	flat := strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(s)
	if len(flat) <= 14 {
		return flat
	}
	return flat[:7] + "..." + flat[len(flat)-7:]
}
