package analytics

import (
	"context"
	"log"
)

// Sink is an analytics backend. Initialize must be idempotent and may
// complete asynchronously; Track calls arriving before initialization
// finished are dropped, not queued (best-effort delivery).
type Sink interface {
	Name() string
	Initialize(ctx context.Context) error
	Track(ctx context.Context, event Event) error
	Identify(ctx context.Context, userID string, properties map[string]any) error
	Page(ctx context.Context, pageName string, properties map[string]any) error
}

// Registry fans events out to an ordered list of sinks. A failing or
// panicking sink never affects the others or the caller.
type Registry struct {
	sinks []Sink
}

func NewRegistry(sinks ...Sink) *Registry {
	return &Registry{sinks: sinks}
}

// Add appends a sink to the fan-out order.
func (r *Registry) Add(sink Sink) {
	r.sinks = append(r.sinks, sink)
}

// Len reports the number of registered sinks.
func (r *Registry) Len() int {
	return len(r.sinks)
}

// Initialize initializes every sink. Failures are logged per sink; a
// sink that failed to initialize simply drops events later.
func (r *Registry) Initialize(ctx context.Context) {
	for _, sink := range r.sinks {
		if err := r.guard(sink.Name(), "initialize", func() error { return sink.Initialize(ctx) }); err != nil {
			log.Printf("analytics: sink %s initialize failed: %v", sink.Name(), err)
		}
	}
}

// Dispatch delivers the event to every sink in registration order.
func (r *Registry) Dispatch(ctx context.Context, event Event) {
	for _, sink := range r.sinks {
		if err := r.guard(sink.Name(), "track", func() error { return sink.Track(ctx, event) }); err != nil {
			log.Printf("analytics: sink %s failed to track %s: %v", sink.Name(), event.EventName, err)
		}
	}
}

// Identify forwards an identify call to every sink.
func (r *Registry) Identify(ctx context.Context, userID string, properties map[string]any) {
	for _, sink := range r.sinks {
		if err := r.guard(sink.Name(), "identify", func() error { return sink.Identify(ctx, userID, properties) }); err != nil {
			log.Printf("analytics: sink %s identify failed: %v", sink.Name(), err)
		}
	}
}

// Page forwards a page-view call to every sink.
func (r *Registry) Page(ctx context.Context, pageName string, properties map[string]any) {
	for _, sink := range r.sinks {
		if err := r.guard(sink.Name(), "page", func() error { return sink.Page(ctx, pageName, properties) }); err != nil {
			log.Printf("analytics: sink %s page failed: %v", sink.Name(), err)
		}
	}
}

// guard converts a sink panic into an error so one misbehaving sink
// cannot break the fan-out loop.
func (r *Registry) guard(name, op string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("analytics: sink %s panicked during %s: %v", name, op, rec)
		}
	}()
	return fn()
}
