package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"quiz-session-service/internal/analytics"
	"quiz-session-service/internal/domain"
)

// BankRepository loads question banks (from static data, cache, or a
// backing store).
type BankRepository interface {
	GetBank(ctx context.Context, language domain.Language) (domain.Bank, error)
}

// SessionService wires the quiz session state machine to the question
// bank source and the analytics tracker. It owns at most one active
// session; Init and Reset replace it wholesale.
type SessionService struct {
	banks   BankRepository
	tracker *analytics.Tracker
	now     func() time.Time

	mu      sync.Mutex
	session *Session
}

func NewSessionService(banks BankRepository, tracker *analytics.Tracker) *SessionService {
	return NewSessionServiceWithClock(banks, tracker, time.Now)
}

// NewSessionServiceWithClock allows deterministic timestamps in tests.
func NewSessionServiceWithClock(banks BankRepository, tracker *analytics.Tracker, now func() time.Time) *SessionService {
	return &SessionService{banks: banks, tracker: tracker, now: now}
}

// Init builds a fresh session for the initial mount. Behavioral
// counters and the analytics session id are left alone.
func (s *SessionService) Init(ctx context.Context, language domain.Language) error {
	questions, err := s.loadQuestions(ctx, language)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		s.session = newSession(language, questions, s.tracker, s.now)
		return nil
	}
	s.session.restart(language, questions, false)
	return nil
}

// Reset starts the quiz over as an explicit restart: new analytics
// session id, zeroed behavioral counters, fresh state.
func (s *SessionService) Reset(ctx context.Context, language domain.Language) error {
	questions, err := s.loadQuestions(ctx, language)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previousScore := 0
	restarted := false
	if s.session != nil {
		previousScore = s.session.state().Score
		restarted = true
	}

	s.tracker.ResetSession()
	if restarted {
		s.tracker.TrackQuizRestarted(previousScore)
	}

	if s.session == nil {
		s.session = newSession(language, questions, s.tracker, s.now)
		return nil
	}
	s.session.restart(language, questions, true)
	return nil
}

// SetLanguage switches the question bank mid-quiz. A switch is always
// a hard reset of index, score, and timer; calling with the current
// language is a valid no-op.
func (s *SessionService) SetLanguage(ctx context.Context, language domain.Language) error {
	questions, err := s.loadQuestions(ctx, language)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return domain.ErrNoSession
	}
	s.session.setLanguage(language, questions)
	return nil
}

// Answer records the selected option for the current question.
func (s *SessionService) Answer(index int) {
	if session := s.active(); session != nil {
		session.answer(index)
	}
}

// Advance moves past the feedback screen.
func (s *SessionService) Advance() {
	if session := s.active(); session != nil {
		session.advance()
	}
}

// Pause halts the countdown for the current question.
func (s *SessionService) Pause() {
	if session := s.active(); session != nil {
		session.pause()
	}
}

// Resume restarts the countdown after a pause.
func (s *SessionService) Resume() {
	if session := s.active(); session != nil {
		session.resume()
	}
}

// Tick delivers a countdown update from the timer driver.
func (s *SessionService) Tick(remaining int) {
	if session := s.active(); session != nil {
		session.tick(remaining)
	}
}

// State returns a snapshot of the current quiz state.
func (s *SessionService) State() (domain.QuizState, error) {
	session := s.active()
	if session == nil {
		return domain.QuizState{}, domain.ErrNoSession
	}
	return session.state(), nil
}

// CurrentQuestion returns the question awaiting input or feedback.
func (s *SessionService) CurrentQuestion() (domain.Question, bool) {
	session := s.active()
	if session == nil {
		return domain.Question{}, false
	}
	return session.currentQuestion()
}

// Counters returns the attempt's behavioral counters.
func (s *SessionService) Counters() domain.BehavioralCounters {
	session := s.active()
	if session == nil {
		return domain.BehavioralCounters{}
	}
	return session.behavioralCounters()
}

// ViewResults returns the completion summary and emits results_viewed.
func (s *SessionService) ViewResults() (domain.Result, bool) {
	session := s.active()
	if session == nil {
		return domain.Result{}, false
	}
	result, ok := session.result()
	if !ok {
		log.Printf("quiz: results requested before completion")
		return domain.Result{}, false
	}
	s.tracker.TrackResultsViewed(result.Score, result.AccuracyRate, result.TotalDuration)
	return result, true
}

// Summary returns the analytics event log snapshot.
func (s *SessionService) Summary() analytics.Summary {
	return s.tracker.Summary()
}

func (s *SessionService) active() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		log.Printf("quiz: operation ignored, session not initialized")
	}
	return s.session
}

func (s *SessionService) loadQuestions(ctx context.Context, language domain.Language) ([]domain.Question, error) {
	if !language.Valid() {
		return nil, domain.ErrUnknownLanguage
	}
	bank, err := s.banks.GetBank(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("load bank %q: %w", language, err)
	}
	if len(bank.Questions) == 0 {
		return nil, domain.ErrEmptyBank
	}
	return bank.Questions, nil
}
