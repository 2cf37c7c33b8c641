// internal/relay/server.go
package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/tutorpipe/internal/identity"
	"github.com/user/tutorpipe/pkg/llm"
)

// Server is the relay: it authenticates and authorizes chat requests,
// forwards turn lists to the completion backend, renders replies to HTML,
// and accepts pre-formed telemetry events for durable append.
type Server struct {
	auth         *Authenticator
	provider     llm.Provider
	renderer     *Renderer
	events       *EventLog
	verifier     *identity.Client
	systemPrompt string
	log          *slog.Logger
	mux          *http.ServeMux
}

// NewServer wires the relay's routes. systemPrompt is prepended to every
// multi-turn conversation before it reaches the completion backend.
func NewServer(auth *Authenticator, provider llm.Provider, renderer *Renderer, events *EventLog, verifier *identity.Client, systemPrompt string, log *slog.Logger) *Server {
	s := &Server{
		auth:         auth,
		provider:     provider,
		renderer:     renderer,
		events:       events,
		verifier:     verifier,
		systemPrompt: systemPrompt,
		log:          log,
		mux:          http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /verify-token", s.handleVerifyToken)
	s.mux.Handle("POST /tutor/message", auth.Middleware(http.HandlerFunc(s.handleMessage)))
	s.mux.Handle("POST /tutor/event", auth.Middleware(http.HandlerFunc(s.handleEvent)))
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// messageRequest is the chat endpoint body. Exactly one of the two variants
// must be present: a single message string or an ordered turn list.
type messageRequest struct {
	Message  json.RawMessage `json:"message"`
	Messages json.RawMessage `json:"messages"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errValidation("Invalid JSON body"))
		return
	}

	turns, err := s.buildTurns(req)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.provider.Complete(r.Context(), turns)
	if err != nil {
		s.log.Error("completion backend failed", "error", err)
		writeError(w, err)
		return
	}

	html, err := s.renderer.HTML(resp.Content)
	if err != nil {
		s.log.Error("render reply failed", "error", err)
		writeError(w, err)
		return
	}

	s.log.Debug("chat reply served",
		"identity", IdentityFrom(r.Context()),
		"turns", len(turns),
		"tokens", resp.Usage.TotalTokens)

	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "success",
		"chatResponse": html,
	})
}

// buildTurns validates the request and assembles the message list sent to
// the completion backend. The system prompt is injected for the multi-turn
// variant only; the single-turn variant forwards one bare user message.
func (s *Server) buildTurns(req messageRequest) ([]llm.Message, error) {
	if present(req.Messages) {
		var msgs []llm.Message
		if err := json.Unmarshal(req.Messages, &msgs); err != nil {
			return nil, errValidation("Messages must be an array")
		}
		for _, m := range msgs {
			if m.Role == "" || m.Content == "" {
				return nil, errValidation("Each message must have 'role' and 'content' properties")
			}
		}
		turns := make([]llm.Message, 0, len(msgs)+1)
		turns = append(turns, llm.Message{Role: "system", Content: s.systemPrompt})
		turns = append(turns, msgs...)
		return turns, nil
	}

	if present(req.Message) {
		var msg string
		if err := json.Unmarshal(req.Message, &msg); err != nil {
			return nil, errValidation("Message must be a string")
		}
		if strings.TrimSpace(msg) == "" {
			return nil, errValidation("Message must be a non-empty string")
		}
		return []llm.Message{{Role: "user", Content: msg}}, nil
	}

	return nil, errValidation("Messages are required")
}

// present reports whether a raw field was supplied with a real value. An
// explicit JSON null counts as absent.
func present(raw json.RawMessage) bool {
	return raw != nil && string(raw) != "null"
}

// eventRequest is the event-sink body posted by the remote exporter.
type eventRequest struct {
	Username string          `json:"username"`
	Event    json.RawMessage `json:"event"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errValidation("Invalid JSON body"))
		return
	}
	if req.Username == "" || req.Event == nil {
		writeError(w, errValidation("Username and event are required"))
		return
	}

	if err := s.events.Append(req.Username, req.Event); err != nil {
		s.log.Error("append event failed", "username", req.Username, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Event received"})
}

// verifyRequest is the pre-login credential probe body.
type verifyRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, errValidation("Token is required"))
		return
	}

	user, err := s.verifier.Verify(r.Context(), "Bearer "+req.Token)
	if err != nil {
		s.log.Debug("token verification failed", "error", err)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"valid": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": user})
}
