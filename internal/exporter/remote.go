// internal/exporter/remote.go
package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/user/tutorpipe/internal/event"
)

// Remote posts events to the relay's event sink. Delivery is fire-and-forget
// and at-most-once: a failed post is logged locally and dropped, never
// retried or queued. That trade keeps the pipeline's latency off the editor's
// hot path at the cost of silent loss under transient network failure.
type Remote struct {
	url        string
	credential string
	identity   string
	log        *slog.Logger
	httpClient *http.Client

	wg sync.WaitGroup
}

// NewRemote creates a remote exporter posting to baseURL's event endpoint
// with the given bearer credential on behalf of identity.
func NewRemote(baseURL, credential, identity string, log *slog.Logger) *Remote {
	return &Remote{
		url:        baseURL + "/tutor/event",
		credential: credential,
		identity:   identity,
		log:        log,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope is the event-sink request body.
type envelope struct {
	Username string      `json:"username"`
	Event    event.Event `json:"event"`
}

// Export dispatches the post as a detached task and returns immediately.
// The task's only completion handling is a log line.
func (r *Remote) Export(_ context.Context, ev event.Event) error {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.post(ev); err != nil {
			r.log.Warn("remote export failed", "type", ev.Type, "error", err)
			return
		}
		r.log.Debug("remote export delivered", "type", ev.Type)
	}()
	return nil
}

func (r *Remote) post(ev event.Event) error {
	body, err := json.Marshal(envelope{Username: r.identity, Event: ev})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.credential)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("event sink returned status %d", resp.StatusCode)
	}
	return nil
}

// Close waits for in-flight posts to finish. It does not flush failures.
func (r *Remote) Close() {
	r.wg.Wait()
}
