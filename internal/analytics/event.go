package analytics

import "time"

// Event names emitted by the quiz session state machine.
const (
	EventQuizStarted     = "quiz_started"
	EventLanguageChanged = "language_changed"
	EventQuestionViewed  = "question_viewed"
	EventAnswerSelected  = "answer_selected"
	EventQuizPaused      = "quiz_paused"
	EventQuizResumed     = "quiz_resumed"
	EventQuestionTimeout = "question_timeout"
	EventFeedbackViewed  = "feedback_viewed"
	EventQuizCompleted   = "quiz_completed"
	EventResultsViewed   = "results_viewed"
	EventQuizRestarted   = "quiz_restarted"
)

// Feedback type tags carried by feedback_viewed events.
const (
	FeedbackCorrect   = "correct"
	FeedbackIncorrect = "incorrect"
	FeedbackTimeout   = "timeout"
)

// Event is the wire shape handed to every sink.
type Event struct {
	EventName  string         `json:"event_name"`
	Properties map[string]any `json:"properties"`
	Timestamp  time.Time      `json:"timestamp"`
	SessionID  string         `json:"session_id"`
}

// RecordedEvent is the local log mirror of a tracked event.
type RecordedEvent struct {
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Summary is a read-only snapshot of the session's event log.
type Summary struct {
	SessionID   string          `json:"sessionId"`
	TotalEvents int             `json:"totalEvents"`
	Events      []RecordedEvent `json:"events"`
}
