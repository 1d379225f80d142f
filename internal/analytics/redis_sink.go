package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the redis stream events land on unless configured otherwise.
const DefaultStream = "analytics:events"

// RedisSink appends events to a redis stream so that downstream
// consumers can project them into whatever store they like.
type RedisSink struct {
	client      *redis.Client
	stream      string
	initialized atomic.Bool
}

func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) Name() string { return "redis" }

// Initialize pings the server; events are dropped until it succeeds.
func (s *RedisSink) Initialize(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	s.initialized.Store(true)
	return nil
}

func (s *RedisSink) Track(ctx context.Context, event Event) error {
	if !s.initialized.Load() {
		return nil
	}
	props, err := json.Marshal(event.Properties)
	if err != nil {
		return fmt.Errorf("marshal properties: %w", err)
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"event_name": event.EventName,
			"session_id": event.SessionID,
			"timestamp":  event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			"properties": string(props),
		},
	}).Err()
}

func (s *RedisSink) Identify(ctx context.Context, userID string, properties map[string]any) error {
	props := map[string]any{"user_id": userID}
	for k, v := range properties {
		props[k] = v
	}
	// No quiz session id here: identify calls are keyed by user_id.
	return s.Track(ctx, Event{EventName: "user_identified", Properties: props, Timestamp: time.Now()})
}

func (s *RedisSink) Page(ctx context.Context, pageName string, properties map[string]any) error {
	props := map[string]any{"page_name": pageName}
	for k, v := range properties {
		props[k] = v
	}
	return s.Track(ctx, Event{EventName: "page_view", Properties: props, Timestamp: time.Now()})
}
