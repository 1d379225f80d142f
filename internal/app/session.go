package app

import (
	"log"
	"math"
	"sync"
	"time"

	"quiz-session-service/internal/analytics"
	"quiz-session-service/internal/domain"
)

// Session is the quiz session state machine. It exclusively owns the
// mutable quiz state; every mutation happens under its lock and every
// semantically meaningful transition emits analytics events through
// the tracker before the call returns.
//
// Invalid or duplicate calls (double answer, answer while paused,
// pause while feedback is shown) are interaction races, not errors:
// they log a warning and leave the state untouched.
type Session struct {
	mu      sync.Mutex
	now     func() time.Time
	tracker *analytics.Tracker

	language  domain.Language
	questions []domain.Question

	current       int
	answers       []int
	score         int
	completed     bool
	paused        bool
	feedback      bool
	timeRemaining int
	startTime     time.Time
	endTime       *time.Time
	pausedAt      *time.Time

	counters domain.BehavioralCounters
}

func newSession(language domain.Language, questions []domain.Question, tracker *analytics.Tracker, now func() time.Time) *Session {
	s := &Session{
		now:     now,
		tracker: tracker,
	}
	s.startLocked(language, questions)
	return s
}

// startLocked rebuilds the quiz state in place for a fresh attempt.
// Behavioral counters survive; zeroing them is the caller's decision.
func (s *Session) startLocked(language domain.Language, questions []domain.Question) {
	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = domain.AnswerNone
	}

	s.language = language
	s.questions = questions
	s.current = 0
	s.answers = answers
	s.score = 0
	s.completed = false
	s.paused = false
	s.feedback = false
	s.timeRemaining = questions[0].TimeLimit()
	s.startTime = s.now()
	s.endTime = nil
	s.pausedAt = nil

	s.tracker.TrackQuizStarted(language)
}

// restart begins a fresh attempt in the same language context,
// optionally zeroing the behavioral counters (explicit reset path).
func (s *Session) restart(language domain.Language, questions []domain.Question, zeroCounters bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if zeroCounters {
		s.counters = domain.BehavioralCounters{}
	}
	s.startLocked(language, questions)
}

// setLanguage switches the bank and hard-resets the attempt. A call
// with the current language is a valid no-op.
func (s *Session) setLanguage(language domain.Language, questions []domain.Question) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if language == s.language {
		return false
	}

	s.counters.LanguageSwitches++
	s.tracker.TrackLanguageChanged(s.language, language)
	s.startLocked(language, questions)
	return true
}

// answer records the user's selection for the current question.
func (s *Session) answer(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		log.Printf("quiz: answer ignored, quiz already completed")
		return
	}
	if s.paused {
		log.Printf("quiz: answer ignored while paused")
		return
	}
	if s.answers[s.current] != domain.AnswerNone {
		log.Printf("quiz: answer ignored, question %d already answered", s.questions[s.current].ID)
		return
	}
	if index < 0 || index >= len(s.questions[s.current].Options) {
		log.Printf("quiz: answer ignored, option index %d out of range", index)
		return
	}

	s.recordAnswerLocked(index)
}

// recordAnswerLocked writes the answer slot, scores it, shows
// feedback, and emits answer_selected then feedback_viewed.
// The selection may be the AnswerTimedOut sentinel.
func (s *Session) recordAnswerLocked(index int) {
	q := s.questions[s.current]
	isCorrect := index == q.CorrectAnswer

	s.answers[s.current] = index
	if isCorrect {
		s.score++
	}
	s.feedback = true

	s.tracker.TrackAnswerSelected(analytics.AnswerData{
		QuestionID:     q.ID,
		Difficulty:     q.Difficulty,
		SelectedAnswer: index,
		CorrectAnswer:  q.CorrectAnswer,
		IsCorrect:      isCorrect,
		TimeTaken:      q.TimeLimit() - s.timeRemaining,
		TimeRemaining:  s.timeRemaining,
		WasPaused:      s.counters.PauseCount > 0,
		PauseDuration:  int(s.counters.TotalPauseDuration.Milliseconds()),
	})

	feedbackType := analytics.FeedbackIncorrect
	switch {
	case isCorrect:
		feedbackType = analytics.FeedbackCorrect
	case index == domain.AnswerTimedOut:
		feedbackType = analytics.FeedbackTimeout
	}
	s.tracker.TrackFeedbackViewed(q.ID, isCorrect, feedbackType)
}

// advance moves past the feedback screen: either to the next question
// or, on the last question, to completion.
func (s *Session) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		log.Printf("quiz: advance ignored, quiz already completed")
		return
	}
	if !s.feedback {
		log.Printf("quiz: advance ignored, no feedback visible")
		return
	}

	s.feedback = false

	if s.current < len(s.questions)-1 {
		s.current++
		next := s.questions[s.current]
		s.timeRemaining = next.TimeLimit()
		s.tracker.TrackQuestionViewed(next)
		return
	}

	end := s.now()
	s.completed = true
	s.endTime = &end

	s.tracker.TrackQuizCompleted(analytics.CompletionData{
		Language:           s.language,
		TotalDuration:      int(math.Round(end.Sub(s.startTime).Seconds())),
		TotalQuestions:     len(s.questions),
		CorrectAnswers:     s.score,
		AccuracyRate:       accuracyRate(s.score, len(s.questions)),
		FinalScore:         s.score,
		PauseCount:         s.counters.PauseCount,
		TotalPauseDuration: int(math.Round(s.counters.TotalPauseDuration.Seconds())),
		LanguageSwitches:   s.counters.LanguageSwitches,
		QuestionsTimedOut:  s.counters.QuestionsTimedOut,
	})
}

// pause halts the countdown. Only an unanswered, uncompleted question
// is pausable; feedback screens are not.
func (s *Session) pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return
	}
	if s.completed || s.feedback || s.answers[s.current] != domain.AnswerNone {
		log.Printf("quiz: pause ignored outside an active question")
		return
	}

	now := s.now()
	s.paused = true
	s.pausedAt = &now
	s.counters.PauseCount++

	s.tracker.TrackQuizPaused(
		s.questions[s.current].ID,
		int(now.Sub(s.startTime).Seconds()),
	)
}

// resume restarts the countdown and accumulates the pause duration.
func (s *Session) resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.paused {
		return
	}

	pauseDuration := time.Duration(0)
	if s.pausedAt != nil {
		pauseDuration = s.now().Sub(*s.pausedAt)
	}
	s.counters.TotalPauseDuration += pauseDuration
	s.paused = false
	s.pausedAt = nil

	s.tracker.TrackQuizResumed(s.questions[s.current].ID, pauseDuration)
}

// tick delivers a countdown update from the timer driver. Malformed
// input is sanitized; ticks while paused, while feedback is showing,
// or after completion are no-ops. Reaching zero triggers the timeout
// path: the question is recorded with the AnswerTimedOut sentinel.
func (s *Session) tick(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || s.completed || s.feedback || s.answers[s.current] != domain.AnswerNone {
		return
	}
	if remaining < 0 {
		// malformed driver input; keep the previous value
		return
	}
	s.timeRemaining = remaining

	if remaining > 0 {
		return
	}

	q := s.questions[s.current]
	s.counters.QuestionsTimedOut++
	s.tracker.TrackQuestionTimeout(q.ID, q.Difficulty)
	s.recordAnswerLocked(domain.AnswerTimedOut)
}

// state returns a defensive copy of the quiz state.
func (s *Session) state() domain.QuizState {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make([]int, len(s.answers))
	copy(answers, s.answers)

	st := domain.QuizState{
		Language:        s.language,
		CurrentQuestion: s.current,
		Answers:         answers,
		Score:           s.score,
		IsCompleted:     s.completed,
		IsPaused:        s.paused,
		FeedbackVisible: s.feedback,
		TimeRemaining:   s.timeRemaining,
		StartTime:       s.startTime,
	}
	if s.endTime != nil {
		end := *s.endTime
		st.EndTime = &end
	}
	if s.pausedAt != nil {
		at := *s.pausedAt
		st.PausedAt = &at
	}
	return st
}

func (s *Session) behavioralCounters() domain.BehavioralCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// currentQuestion returns the question awaiting input or feedback.
func (s *Session) currentQuestion() (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return domain.Question{}, false
	}
	return s.questions[s.current], true
}

// result summarizes a completed attempt; ok is false until completion.
func (s *Session) result() (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.completed || s.endTime == nil {
		return domain.Result{}, false
	}
	return domain.Result{
		Score:          s.score,
		TotalQuestions: len(s.questions),
		AccuracyRate:   accuracyRate(s.score, len(s.questions)),
		TotalDuration:  int(math.Round(s.endTime.Sub(s.startTime).Seconds())),
		Language:       s.language,
	}, true
}

func accuracyRate(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
