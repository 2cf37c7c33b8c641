// internal/identity/github.go
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the GitHub API endpoint used outside of tests.
const DefaultBaseURL = "https://api.github.com"

// ErrRejected marks a provider response that denied the credential or could
// not produce an identity for it, as opposed to a transport failure. Callers
// branch on it to separate authentication failures from downstream errors.
var ErrRejected = errors.New("credential rejected")

// Client resolves an authorization credential to a user identity via the
// GitHub API. It is shared by the relay's auth middleware and the capture
// agent's startup.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an identity client. An empty baseURL selects the real
// GitHub API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path, authorization string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("User-Agent", "tutorpipe")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity provider returned status %d: %w", resp.StatusCode, ErrRejected)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}

// Login returns the username for the credential. authorization is the full
// header value, e.g. "Bearer <token>".
func (c *Client) Login(ctx context.Context, authorization string) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := c.get(ctx, "/user", authorization, &user); err != nil {
		return "", err
	}
	if user.Login == "" {
		return "", fmt.Errorf("identity provider returned no login: %w", ErrRejected)
	}
	return user.Login, nil
}

// PrimaryEmail returns the email marked primary for the credential. The
// absence of a primary entry is an error, never an empty identity.
func (c *Client) PrimaryEmail(ctx context.Context, authorization string) (string, error) {
	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := c.get(ctx, "/user/emails", authorization, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Email != "" {
			return e.Email, nil
		}
	}
	return "", fmt.Errorf("no primary email on account: %w", ErrRejected)
}

// Verify reports whether the credential is accepted by the identity provider
// and, when it is, the associated user profile.
func (c *Client) Verify(ctx context.Context, authorization string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("User-Agent", "tutorpipe")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var user json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	return user, nil
}
