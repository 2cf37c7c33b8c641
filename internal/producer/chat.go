// internal/producer/chat.go
package producer

import (
	"log/slog"

	"github.com/user/tutorpipe/internal/editor"
	"github.com/user/tutorpipe/internal/event"
)

// ChatProducer bridges the chat session controller to the exporter fan-out.
// It reacts to the internal "chat turn recorded" signal rather than to raw
// editor activity, keeping session logic decoupled from persistence.
type ChatProducer struct {
	fanout
	source *event.Source
}

// NewChat creates the chat turn producer.
func NewChat(source *event.Source, log *slog.Logger) *ChatProducer {
	return &ChatProducer{fanout: fanout{log: log}, source: source}
}

// Listen subscribes to recorded chat turns.
func (p *ChatProducer) Listen(bus *editor.Bus) {
	bus.OnChatTurn(p.handle)
}

func (p *ChatProducer) handle(turn editor.ChatTurn) {
	p.emit(p.source.At(event.ChatMessage, turn.Timestamp, map[string]any{
		"message":       turn.Message,
		"isUserMessage": turn.IsUserMessage,
	}))
}
