// internal/chat/tokens.go
package chat

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/tutorpipe/pkg/llm"
)

// TokenCounter measures how many tokens a turn list costs against the
// completion backend's context window.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter selects the tokenizer for the given model, falling back to
// cl100k_base for unknown models.
func NewTokenCounter(model string) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &TokenCounter{enc: enc}, nil
}

// Count returns the token count for a string.
func (t *TokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// CountMessages returns the total token count across a turn list.
func (t *TokenCounter) CountMessages(messages []llm.Message) int {
	total := 0
	for _, m := range messages {
		total += t.Count(m.Role) + t.Count(m.Content)
	}
	return total
}
