package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-session-service/internal/analytics"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/infra/memory"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	server, conn := dialSession(t, "my")
	defer server.Close()
	defer conn.Close()

	// Initial snapshot arrives first.
	payload := readState(t, conn)
	state := payload["state"].(map[string]any)
	if state["currentQuestion"].(float64) != 0 {
		t.Fatalf("expected first question, got %v", state["currentQuestion"])
	}
	if payload["question"] == nil {
		t.Fatalf("expected question payload in snapshot")
	}

	// Correct answer shows feedback and bumps the score.
	writeMessage(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"index": 1}})
	payload = readState(t, conn)
	state = payload["state"].(map[string]any)
	if state["feedbackVisible"] != true {
		t.Fatalf("expected feedback visible, got %v", state)
	}
	if state["score"].(float64) != 1 {
		t.Fatalf("expected score 1, got %v", state["score"])
	}

	// Advance moves to the next question.
	writeMessage(t, conn, map[string]any{"type": "advance"})
	payload = readState(t, conn)
	state = payload["state"].(map[string]any)
	if state["currentQuestion"].(float64) != 1 {
		t.Fatalf("expected second question, got %v", state["currentQuestion"])
	}
	if state["feedbackVisible"] != false {
		t.Fatalf("expected feedback cleared after advance")
	}
}

func TestWebSocketPauseResume(t *testing.T) {
	server, conn := dialSession(t, "my")
	defer server.Close()
	defer conn.Close()

	readState(t, conn)

	writeMessage(t, conn, map[string]any{"type": "pause"})
	payload := readState(t, conn)
	state := payload["state"].(map[string]any)
	if state["isPaused"] != true {
		t.Fatalf("expected paused state, got %v", state)
	}

	writeMessage(t, conn, map[string]any{"type": "resume"})
	payload = readState(t, conn)
	state = payload["state"].(map[string]any)
	if state["isPaused"] != false {
		t.Fatalf("expected resumed state, got %v", state)
	}
}

func TestWebSocketLanguageSwitchAndSummary(t *testing.T) {
	server, conn := dialSession(t, "my")
	defer server.Close()
	defer conn.Close()

	readState(t, conn)

	writeMessage(t, conn, map[string]any{"type": "set_language", "payload": map[string]any{"language": "en"}})
	payload := readState(t, conn)
	state := payload["state"].(map[string]any)
	if state["language"] != "en" {
		t.Fatalf("expected english bank, got %v", state["language"])
	}
	counters := payload["counters"].(map[string]any)
	if counters["languageSwitches"].(float64) != 1 {
		t.Fatalf("expected 1 language switch, got %v", counters)
	}

	writeMessage(t, conn, map[string]any{"type": "summary"})
	msgType, summary := readNext(t, conn)
	if msgType != "summary" {
		t.Fatalf("expected summary, got %s", msgType)
	}
	if summary["sessionId"] == "" {
		t.Fatalf("expected a session id in summary")
	}
	if summary["totalEvents"].(float64) < 2 {
		t.Fatalf("expected quiz_started and language_changed logged, got %v", summary["totalEvents"])
	}
}

func TestWebSocketRejectsUnknownLanguage(t *testing.T) {
	handler := newTestHandler()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws?lang=fr")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown language, got %d", resp.StatusCode)
	}
}

func newTestHandler() *SessionHandler {
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(sampleBanks()), time.Minute)
	return NewSessionHandler(banks, analytics.NewRegistry(), "")
}

func dialSession(t *testing.T, lang string) (*httptest.Server, *websocket.Conn) {
	t.Helper()
	handler := newTestHandler()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)

	u := "ws" + server.URL[len("http"):] + "/ws?lang=" + lang
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return server, conn
}

func writeMessage(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

// readState skips tick frames and returns the next state payload.
func readState(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		msgType, payload := readNext(t, conn)
		if msgType == "state" {
			return payload
		}
		if msgType == "tick" {
			continue
		}
		t.Fatalf("expected state frame, got %s (%v)", msgType, payload)
	}
	t.Fatalf("no state frame within 10 messages")
	return nil
}

func readNext(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

func sampleBanks() map[domain.Language]domain.Bank {
	question := func(id int) domain.Question {
		return domain.Question{
			ID:               id,
			Prompt:           "What is 2 + 2?",
			Options:          []string{"3", "4", "5"},
			CorrectAnswer:    1,
			Difficulty:       domain.DifficultyEasy,
			TimeLimitSeconds: 60,
		}
	}
	return map[domain.Language]domain.Bank{
		domain.LanguageMalay:   {Language: domain.LanguageMalay, Questions: []domain.Question{question(1), question(2)}},
		domain.LanguageEnglish: {Language: domain.LanguageEnglish, Questions: []domain.Question{question(1), question(2)}},
	}
}
