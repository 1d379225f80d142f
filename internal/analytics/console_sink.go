package analytics

import (
	"context"
	"log"
)

// ConsoleSink logs events to the process log. Used in development and
// as the always-available default backend.
type ConsoleSink struct {
	initialized bool
}

func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Initialize(_ context.Context) error {
	if s.initialized {
		return nil
	}
	s.initialized = true
	log.Printf("analytics: console sink initialized")
	return nil
}

func (s *ConsoleSink) Track(_ context.Context, event Event) error {
	if !s.initialized {
		return nil
	}
	log.Printf("analytics event: %s session=%s props=%v", event.EventName, event.SessionID, event.Properties)
	return nil
}

func (s *ConsoleSink) Identify(_ context.Context, userID string, properties map[string]any) error {
	if !s.initialized {
		return nil
	}
	log.Printf("analytics identify: user=%s props=%v", userID, properties)
	return nil
}

func (s *ConsoleSink) Page(_ context.Context, pageName string, properties map[string]any) error {
	if !s.initialized {
		return nil
	}
	log.Printf("analytics page view: %s props=%v", pageName, properties)
	return nil
}
