// internal/relay/client.go
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/tutorpipe/pkg/llm"
)

// Client is the editor-side relay client: it posts the full turn history to
// the relay's chat endpoint with the bearer credential and returns the
// rendered reply.
type Client struct {
	baseURL    string
	credential string
	httpClient *http.Client
}

// NewClient creates a relay client for baseURL using credential as the
// bearer token.
func NewClient(baseURL, credential string) *Client {
	return &Client{
		baseURL:    baseURL,
		credential: credential,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type messageBody struct {
	Messages []llm.Message `json:"messages"`
}

type messageReply struct {
	Message      string `json:"message"`
	ChatResponse string `json:"chatResponse"`
}

// SendMessage posts the ordered turn list and returns the reply as rendered
// HTML. A non-success status yields an error carrying the relay's reason.
func (c *Client) SendMessage(ctx context.Context, messages []llm.Message) (string, error) {
	body, err := json.Marshal(messageBody{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tutor/message", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call relay: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read relay response: %w", err)
	}

	var reply messageReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return "", fmt.Errorf("decode relay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if reply.Message != "" {
			return "", fmt.Errorf("relay returned status %d: %s", resp.StatusCode, reply.Message)
		}
		return "", fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	return reply.ChatResponse, nil
}
