// internal/chat/session.go
package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/user/tutorpipe/internal/editor"
	"github.com/user/tutorpipe/pkg/llm"
)

// Turn is one recorded chat message, user or assistant.
type Turn struct {
	Message       string    `json:"message"`
	IsUserMessage bool      `json:"isUserMessage"`
	Timestamp     time.Time `json:"timestamp"`
}

// Relay obtains the assistant's reply for a full ordered turn list.
type Relay interface {
	SendMessage(ctx context.Context, messages []llm.Message) (string, error)
}

type state int

const (
	idle state = iota
	awaitingReply
)

// Session orchestrates one chat panel: it records each turn, assembles the
// multi-turn context sent to the relay, and raises the chat-turn signal that
// feeds the chat producer. Requests are processed strictly one at a time, so
// the turn list sent to the relay always matches what was appended.
//
// History grows for the panel's lifetime and is never pruned; capping it
// would change the conversation context the backend sees.
type Session struct {
	mu      sync.Mutex
	state   state
	history []Turn

	relay  Relay
	bus    *editor.Bus
	tokens *TokenCounter
	log    *slog.Logger
}

// NewSession creates a controller for one panel. tokens may be nil when
// token accounting is not wanted.
func NewSession(relay Relay, bus *editor.Bus, tokens *TokenCounter, log *slog.Logger) *Session {
	return &Session{
		relay:  relay,
		bus:    bus,
		tokens: tokens,
		log:    log,
	}
}

// HandleUserMessage records the user turn, obtains the assistant's reply, and
// records it. The panel always receives a response: a relay failure is
// surfaced as a synthesized error string in the assistant turn.
func (s *Session) HandleUserMessage(ctx context.Context, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = awaitingReply
	s.append(Turn{Message: text, IsUserMessage: true, Timestamp: time.Now()})

	messages := s.messagesLocked()
	if s.tokens != nil {
		s.log.Debug("sending chat request", "turns", len(messages), "context_tokens", s.tokens.CountMessages(messages))
	}

	reply, err := s.relay.SendMessage(ctx, messages)
	if err != nil {
		s.log.Warn("relay request failed", "error", err)
		reply = "An error occurred: " + err.Error()
	} else {
		// The relay returns rendered HTML; turns carry structured text.
		if md, convErr := htmltomarkdown.ConvertString(reply); convErr == nil {
			reply = md
		}
	}

	s.append(Turn{Message: reply, IsUserMessage: false, Timestamp: time.Now()})
	s.state = idle

	return reply
}

// append records the turn and raises the chat-turn signal.
func (s *Session) append(t Turn) {
	s.history = append(s.history, t)
	s.bus.PublishChatTurn(editor.ChatTurn{
		Message:       t.Message,
		IsUserMessage: t.IsUserMessage,
		Timestamp:     t.Timestamp,
	})
}

// messagesLocked maps the full history to the relay's role-tagged form.
func (s *Session) messagesLocked() []llm.Message {
	messages := make([]llm.Message, len(s.history))
	for i, t := range s.history {
		role := "assistant"
		if t.IsUserMessage {
			role = "user"
		}
		messages[i] = llm.Message{Role: role, Content: t.Message}
	}
	return messages
}

// History returns a copy of the full turn history for re-render on reopen.
// It does not mutate state.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}
