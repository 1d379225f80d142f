package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// HTTPSink posts each event as JSON to {endpoint}/events with an
// optional bearer token. Failed deliveries are logged by the registry
// and not retried; this backend is best-effort by contract.
type HTTPSink struct {
	endpoint    string
	apiKey      string
	client      *http.Client
	initialized atomic.Bool
}

func NewHTTPSink(endpoint, apiKey string) *HTTPSink {
	return &HTTPSink{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *HTTPSink) Name() string { return "http" }

func (s *HTTPSink) Initialize(_ context.Context) error {
	s.initialized.Store(true)
	return nil
}

func (s *HTTPSink) Track(ctx context.Context, event Event) error {
	// Events before initialization are dropped, not queued.
	if !s.initialized.Load() {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("analytics api status %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTPSink) Identify(ctx context.Context, userID string, properties map[string]any) error {
	props := map[string]any{"user_id": userID}
	for k, v := range properties {
		props[k] = v
	}
	// No quiz session id here: identify calls are keyed by user_id.
	return s.Track(ctx, Event{
		EventName:  "user_identified",
		Properties: props,
		Timestamp:  time.Now(),
	})
}

func (s *HTTPSink) Page(ctx context.Context, pageName string, properties map[string]any) error {
	props := map[string]any{"page_name": pageName}
	for k, v := range properties {
		props[k] = v
	}
	return s.Track(ctx, Event{
		EventName:  "page_view",
		Properties: props,
		Timestamp:  time.Now(),
	})
}
