package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quiz-session-service/internal/analytics"
	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
)

// SessionHandler upgrades HTTP requests to websockets and runs one
// quiz session per connection. It also hosts the timer driver: a
// one-second ticker that feeds the session's countdown and is the
// component responsible for never ticking while paused.
type SessionHandler struct {
	banks      app.BankRepository
	registry   *analytics.Registry
	pageURL    string
	upgrader   websocket.Upgrader
	newTracker func() *analytics.Tracker
}

func NewSessionHandler(banks app.BankRepository, registry *analytics.Registry, pageURL string) *SessionHandler {
	return &SessionHandler{
		banks:    banks,
		registry: registry,
		pageURL:  pageURL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		newTracker: func() *analytics.Tracker {
			return analytics.NewTracker(registry, pageURL)
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type languagePayload struct {
	Language domain.Language `json:"language"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type statePayload struct {
	State    domain.QuizState          `json:"state"`
	Question *domain.Question          `json:"question,omitempty"`
	Counters domain.BehavioralCounters `json:"counters"`
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

// ServeWS runs the session protocol: the client drives the UI trigger
// surface (answer, advance, pause, resume, set_language, reset,
// results, summary) and the server pushes state snapshots and ticks.
func (h *SessionHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	language := domain.Language(r.URL.Query().Get("lang"))
	if language == "" {
		language = domain.LanguageMalay
	}
	if !language.Valid() {
		http.Error(w, "unsupported language", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	tracker := h.newTracker()
	defer tracker.Close()

	service := app.NewSessionService(h.banks, tracker)
	if err := service.Init(r.Context(), language); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	h.registry.Page(r.Context(), "quiz", map[string]any{"language": string(language)})

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Timer driver: decrement once per second while the current
	// question is live. Pausing stops delivery entirely; the tick
	// handler treats a stray paused tick as a no-op anyway.
	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				state, err := service.State()
				if err != nil {
					continue
				}
				if state.IsPaused || state.IsCompleted || state.FeedbackVisible {
					continue
				}
				if state.Answers[state.CurrentQuestion] != domain.AnswerNone {
					continue
				}
				service.Tick(state.TimeRemaining - 1)

				after, err := service.State()
				if err != nil {
					continue
				}
				select {
				case send <- outboundMessage[any]{Type: "tick", Payload: tickPayload{Remaining: after.TimeRemaining}}:
				case <-closeSignals:
					return
				}
				if after.FeedbackVisible {
					// timeout fired; push the full snapshot
					select {
					case send <- h.stateMessage(service):
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- h.stateMessage(service)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			service.Answer(payload.Index)
			send <- h.stateMessage(service)
		case "advance":
			service.Advance()
			send <- h.stateMessage(service)
		case "pause":
			service.Pause()
			send <- h.stateMessage(service)
		case "resume":
			service.Resume()
			send <- h.stateMessage(service)
		case "set_language":
			var payload languagePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || !payload.Language.Valid() {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid language payload"}}
				continue
			}
			if err := service.SetLanguage(r.Context(), payload.Language); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- h.stateMessage(service)
		case "reset":
			payload := languagePayload{}
			if len(inbound.Payload) > 0 {
				_ = json.Unmarshal(inbound.Payload, &payload)
			}
			lang := payload.Language
			if lang == "" {
				if state, err := service.State(); err == nil {
					lang = state.Language
				}
			}
			if err := service.Reset(r.Context(), lang); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- h.stateMessage(service)
		case "results":
			result, ok := service.ViewResults()
			if !ok {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "quiz not completed"}}
				continue
			}
			send <- outboundMessage[any]{Type: "results", Payload: result}
		case "summary":
			send <- outboundMessage[any]{Type: "summary", Payload: service.Summary()}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}

func (h *SessionHandler) stateMessage(service *app.SessionService) outboundMessage[any] {
	state, err := service.State()
	if err != nil {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	payload := statePayload{State: state, Counters: service.Counters()}
	if question, ok := service.CurrentQuestion(); ok {
		payload.Question = &question
	}
	return outboundMessage[any]{Type: "state", Payload: payload}
}
