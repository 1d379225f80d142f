package domain

import "time"

// Language selects which question bank a session runs against.
type Language string

const (
	LanguageMalay   Language = "my"
	LanguageEnglish Language = "en"
)

// Valid reports whether the language maps to a known question bank.
func (l Language) Valid() bool {
	return l == LanguageMalay || l == LanguageEnglish
}

// Difficulty labels a question for analytics segmentation.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultTimeLimit is used when a question declares no time limit.
// Bank data ships with TimeLimitSeconds == 0 on purpose; zero means
// "use the default", never "instant timeout".
const DefaultTimeLimit = 240

// Answer sentinels. Answers are stored as option indices; the two
// negative values mark slots that hold no user selection.
const (
	// AnswerNone marks a question that has not been answered yet.
	AnswerNone = -2
	// AnswerTimedOut is recorded when the countdown reaches zero
	// before the user selects an option. It never matches a correct
	// option index, so scoring stays uniform.
	AnswerTimedOut = -1
)

// Question is a single MCQ entry in a bank. Immutable at runtime.
type Question struct {
	ID               int        `json:"id"`
	Prompt           string     `json:"prompt"`
	Options          []string   `json:"options"`
	CorrectAnswer    int        `json:"correctAnswer"`
	Explanation      string     `json:"explanation"`
	Difficulty       Difficulty `json:"difficulty"`
	MotivationalText string     `json:"motivationalText"`
	StatisticText    string     `json:"statisticText"`
	TimeLimitSeconds int        `json:"timeLimitSeconds"`
}

// TimeLimit returns the effective countdown budget for the question.
func (q Question) TimeLimit() int {
	if q.TimeLimitSeconds <= 0 {
		return DefaultTimeLimit
	}
	return q.TimeLimitSeconds
}

// Bank is the ordered question sequence for one language.
type Bank struct {
	Language  Language   `json:"language"`
	Questions []Question `json:"questions"`
}

// QuizState is a snapshot of one quiz attempt. The session state
// machine owns the mutable original; callers only ever see copies.
type QuizState struct {
	Language        Language   `json:"language"`
	CurrentQuestion int        `json:"currentQuestion"`
	Answers         []int      `json:"answers"`
	Score           int        `json:"score"`
	IsCompleted     bool       `json:"isCompleted"`
	IsPaused        bool       `json:"isPaused"`
	FeedbackVisible bool       `json:"feedbackVisible"`
	TimeRemaining   int        `json:"timeRemaining"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	PausedAt        *time.Time `json:"pausedAt,omitempty"`
}

// BehavioralCounters accumulate per-attempt interaction metrics. They
// are monotone within an attempt and zeroed only on an explicit reset.
type BehavioralCounters struct {
	PauseCount         int           `json:"pauseCount"`
	TotalPauseDuration time.Duration `json:"totalPauseDuration"`
	LanguageSwitches   int           `json:"languageSwitches"`
	QuestionsTimedOut  int           `json:"questionsTimedOut"`
}

// Result summarizes a completed attempt for the results surface.
type Result struct {
	Score          int      `json:"score"`
	TotalQuestions int      `json:"totalQuestions"`
	AccuracyRate   int      `json:"accuracyRate"`
	TotalDuration  int      `json:"totalDuration"`
	Language       Language `json:"language"`
}
