package analytics

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-session-service/internal/domain"
)

const dispatchQueueSize = 256

// Tracker owns the analytics session: it stamps every event with the
// session id and timestamp, keeps an append-only local log, and hands
// events to the sink registry. Delivery is fire-and-forget but not
// unordered: a single dispatch goroutine drains the queue, so sinks
// observe events in emission order. A state transition never waits on
// a sink.
type Tracker struct {
	registry *Registry
	pageURL  string
	now      func() time.Time

	queue     chan Event
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu           sync.Mutex
	sessionID    string
	sessionCount int
	events       []RecordedEvent
}

func NewTracker(registry *Registry, pageURL string) *Tracker {
	return NewTrackerWithClock(registry, pageURL, time.Now)
}

// NewTrackerWithClock allows deterministic timestamps in tests.
func NewTrackerWithClock(registry *Registry, pageURL string, now func() time.Time) *Tracker {
	t := &Tracker{
		registry:     registry,
		pageURL:      pageURL,
		now:          now,
		queue:        make(chan Event, dispatchQueueSize),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		sessionID:    newSessionID(now()),
		sessionCount: 1,
	}
	go t.dispatchLoop()
	return t
}

// dispatchLoop is the only goroutine that talks to the registry, which
// keeps sink-observed event order identical to emission order.
func (t *Tracker) dispatchLoop() {
	defer close(t.done)
	for {
		select {
		case event := <-t.queue:
			t.registry.Dispatch(context.Background(), event)
		case <-t.quit:
			for {
				select {
				case event := <-t.queue:
					t.registry.Dispatch(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Close drains any queued events and stops the dispatch goroutine.
// Events tracked after Close are logged locally but no longer reach
// the sinks.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() { close(t.quit) })
	<-t.done
}

func newSessionID(now time.Time) string {
	return "quiz_" + now.UTC().Format("20060102150405") + "_" + uuid.NewString()[:8]
}

// SessionID returns the current analytics session id.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// SessionCount reports how many attempts this tracker has seen,
// including the current one.
func (t *Tracker) SessionCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionCount
}

// ResetSession starts a new analytics session: fresh id, cleared log.
// Called on an explicit quiz restart, never on the initial mount.
func (t *Tracker) ResetSession() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionID = newSessionID(t.now())
	t.sessionCount++
	t.events = nil
	return t.sessionID
}

// Track records a semantic event and enqueues it for sink delivery.
// The local log append is synchronous; delivery happens on the
// dispatch goroutine so the caller never blocks on a sink, while
// queue order preserves emission order. A full queue drops the event
// rather than stall the caller.
func (t *Tracker) Track(eventName string, properties map[string]any) {
	now := t.now()

	props := make(map[string]any, len(properties)+3)
	for k, v := range properties {
		props[k] = v
	}
	props["session_id"] = t.SessionID()
	props["timestamp"] = now.UTC().Format(time.RFC3339)
	props["user_agent"] = hostAgent()
	if t.pageURL != "" {
		props["page_url"] = t.pageURL
	}

	event := Event{
		EventName:  eventName,
		Properties: props,
		Timestamp:  now,
		SessionID:  t.SessionID(),
	}

	t.mu.Lock()
	t.events = append(t.events, RecordedEvent{
		EventType: eventName,
		Timestamp: now,
		Data:      properties,
	})
	t.mu.Unlock()

	select {
	case t.queue <- event:
	default:
		log.Printf("analytics: dispatch queue full, dropping %s", eventName)
	}
}

// Summary returns a read-only snapshot of the session's event log.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := make([]RecordedEvent, len(t.events))
	copy(events, t.events)
	return Summary{
		SessionID:   t.sessionID,
		TotalEvents: len(events),
		Events:      events,
	}
}

func hostAgent() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

// AnswerData carries the per-question payload for answer_selected.
type AnswerData struct {
	QuestionID     int
	Difficulty     domain.Difficulty
	SelectedAnswer int
	CorrectAnswer  int
	IsCorrect      bool
	TimeTaken      int
	TimeRemaining  int
	WasPaused      bool
	PauseDuration  int
}

// CompletionData carries the quiz_completed summary payload.
type CompletionData struct {
	Language           domain.Language
	TotalDuration      int
	TotalQuestions     int
	CorrectAnswers     int
	AccuracyRate       int
	FinalScore         int
	PauseCount         int
	TotalPauseDuration int
	LanguageSwitches   int
	QuestionsTimedOut  int
}

func (t *Tracker) TrackQuizStarted(language domain.Language) {
	t.Track(EventQuizStarted, map[string]any{
		"language":      string(language),
		"session_start": t.now().UTC().Format(time.RFC3339),
	})
}

func (t *Tracker) TrackLanguageChanged(from, to domain.Language) {
	t.Track(EventLanguageChanged, map[string]any{
		"from_language": string(from),
		"to_language":   string(to),
	})
}

func (t *Tracker) TrackQuestionViewed(q domain.Question) {
	prompt := q.Prompt
	if len(prompt) > 100 {
		prompt = prompt[:100]
	}
	t.Track(EventQuestionViewed, map[string]any{
		"question_id":   q.ID,
		"difficulty":    string(q.Difficulty),
		"question_text": prompt,
	})
}

func (t *Tracker) TrackAnswerSelected(data AnswerData) {
	t.Track(EventAnswerSelected, map[string]any{
		"question_id":     data.QuestionID,
		"difficulty":      string(data.Difficulty),
		"selected_answer": data.SelectedAnswer,
		"correct_answer":  data.CorrectAnswer,
		"is_correct":      data.IsCorrect,
		"time_taken":      data.TimeTaken,
		"time_remaining":  data.TimeRemaining,
		"was_paused":      data.WasPaused,
		"pause_duration":  data.PauseDuration,
	})
}

func (t *Tracker) TrackQuizPaused(questionID, timeElapsed int) {
	t.Track(EventQuizPaused, map[string]any{
		"question_id":  questionID,
		"time_elapsed": timeElapsed,
	})
}

func (t *Tracker) TrackQuizResumed(questionID int, pauseDuration time.Duration) {
	t.Track(EventQuizResumed, map[string]any{
		"question_id":    questionID,
		"pause_duration": int(pauseDuration.Milliseconds()),
	})
}

func (t *Tracker) TrackQuestionTimeout(questionID int, difficulty domain.Difficulty) {
	t.Track(EventQuestionTimeout, map[string]any{
		"question_id": questionID,
		"difficulty":  string(difficulty),
	})
}

func (t *Tracker) TrackFeedbackViewed(questionID int, isCorrect bool, feedbackType string) {
	t.Track(EventFeedbackViewed, map[string]any{
		"question_id":   questionID,
		"is_correct":    isCorrect,
		"feedback_type": feedbackType,
	})
}

func (t *Tracker) TrackQuizCompleted(data CompletionData) {
	t.Track(EventQuizCompleted, map[string]any{
		"session_id":           t.SessionID(),
		"language":             string(data.Language),
		"total_duration":       data.TotalDuration,
		"total_questions":      data.TotalQuestions,
		"correct_answers":      data.CorrectAnswers,
		"accuracy_rate":        data.AccuracyRate,
		"final_score":          data.FinalScore,
		"pause_count":          data.PauseCount,
		"total_pause_duration": data.TotalPauseDuration,
		"language_switches":    data.LanguageSwitches,
		"questions_timed_out":  data.QuestionsTimedOut,
	})
}

func (t *Tracker) TrackResultsViewed(finalScore, accuracyRate, totalTime int) {
	t.Track(EventResultsViewed, map[string]any{
		"final_score":   finalScore,
		"accuracy_rate": accuracyRate,
		"total_time":    totalTime,
	})
}

func (t *Tracker) TrackQuizRestarted(previousScore int) {
	t.Track(EventQuizRestarted, map[string]any{
		"previous_score": previousScore,
		"session_count":  t.SessionCount(),
	})
}
