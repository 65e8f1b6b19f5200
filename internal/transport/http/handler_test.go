package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizboard-service/internal/app"
	"quizboard-service/internal/domain"
	"quizboard-service/internal/game"
	"quizboard-service/internal/infra/memory"

	"github.com/gorilla/websocket"
)

func TestWebSocketQuestionFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	snap := startSession(t, server)
	conn := dial(t, server, snap.SessionID)
	defer conn.Close()

	initial := readState(t, conn, func(s domain.Snapshot) bool { return true })
	if len(initial.Teams) != 4 || initial.Active != nil {
		t.Fatalf("unexpected initial state %+v", initial)
	}

	send(t, conn, "select", map[string]any{"category": 0, "question": 0})
	opened := readState(t, conn, func(s domain.Snapshot) bool { return s.Active != nil })
	if opened.Active.Question != "What is 2 + 2?" || opened.Active.Answer != "" {
		t.Fatalf("unexpected active question %+v", opened.Active)
	}

	send(t, conn, "reveal", nil)
	revealed := readState(t, conn, func(s domain.Snapshot) bool {
		return s.Active != nil && s.Active.TimerState == domain.TimerRevealed
	})
	if revealed.Active.Answer != "4" {
		t.Fatalf("expected answer after reveal, got %+v", revealed.Active)
	}

	send(t, conn, "close", nil)
	closed := readState(t, conn, func(s domain.Snapshot) bool { return s.Active == nil })
	if len(closed.Completed) != 1 || closed.Completed[0] != (domain.QuestionKey{}) {
		t.Fatalf("expected (0,0) completed, got %+v", closed.Completed)
	}

	send(t, conn, "adjustScore", map[string]any{"teamId": 2, "delta": 100})
	scored := readState(t, conn, func(s domain.Snapshot) bool { return s.Teams[1].Score != 0 })
	if scored.Teams[1].Score != 100 {
		t.Fatalf("expected team 2 at 100, got %+v", scored.Teams[1])
	}

	send(t, conn, "renameTeam", map[string]any{"teamId": 1, "name": "Owls"})
	renamed := readState(t, conn, func(s domain.Snapshot) bool { return s.Teams[0].Name == "Owls" })
	if renamed.Teams[0].Score != 0 {
		t.Fatalf("rename touched score: %+v", renamed.Teams[0])
	}

	send(t, conn, "addTeam", nil)
	readState(t, conn, func(s domain.Snapshot) bool { return len(s.Teams) == 5 })
	send(t, conn, "removeTeam", map[string]any{"teamId": 5})
	readState(t, conn, func(s domain.Snapshot) bool { return len(s.Teams) == 4 })
}

func TestWebSocketReportsErrors(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	snap := startSession(t, server)
	conn := dial(t, server, snap.SessionID)
	defer conn.Close()
	readState(t, conn, func(s domain.Snapshot) bool { return true })

	send(t, conn, "reveal", nil)
	if msg := readUntil(t, conn, "error"); msg.Payload["message"] != domain.ErrNoActiveQuestion.Error() {
		t.Fatalf("unexpected error payload %+v", msg.Payload)
	}
	send(t, conn, "dance", nil)
	if msg := readUntil(t, conn, "error"); msg.Payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload %+v", msg.Payload)
	}
}

func TestWebSocketEndSession(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	snap := startSession(t, server)
	conn := dial(t, server, snap.SessionID)
	defer conn.Close()
	readState(t, conn, func(s domain.Snapshot) bool { return true })

	send(t, conn, "end", nil)
	readUntil(t, conn, "ended")

	resp, err := http.Get(server.URL + "/sessions/" + snap.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected ended session gone, got %d", resp.StatusCode)
	}
}

func TestWebSocketReleasedWhenPeerIgnoresClose(t *testing.T) {
	routes := newTestRoutes()
	wsDone := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routes.ServeHTTP(w, r)
		if strings.HasSuffix(r.URL.Path, "/ws") {
			close(wsDone)
		}
	}))
	defer server.Close()

	snap := startSession(t, server)
	conn := dial(t, server, snap.SessionID)
	defer conn.Close()
	readState(t, conn, func(s domain.Snapshot) bool { return true })

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/sessions/"+snap.SessionID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	resp.Body.Close()
	readUntil(t, conn, "ended")

	// The client stops reading here and never answers the close frame.
	select {
	case <-wsDone:
	case <-time.After(5 * time.Second):
		t.Fatalf("websocket handler still running after session ended")
	}
}

func TestRESTEndpoints(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/quizzes")
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	var quizzes []domain.QuizSummary
	if err := json.NewDecoder(resp.Body).Decode(&quizzes); err != nil {
		t.Fatalf("decode quizzes: %v", err)
	}
	resp.Body.Close()
	if len(quizzes) != 1 || quizzes[0].ID != "quiz-1" {
		t.Fatalf("unexpected quizzes %+v", quizzes)
	}

	resp, err = http.Post(server.URL+"/sessions", "application/json", bytes.NewBufferString(`{"quizId":"nope"}`))
	if err != nil {
		t.Fatalf("start unknown quiz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown quiz, got %d", resp.StatusCode)
	}

	snap := startSession(t, server)

	resp, err = http.Get(server.URL + "/sessions/" + snap.SessionID + "/qr")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/sessions/"+snap.SessionID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/sessions/" + snap.SessionID + "/ws")
	if err != nil {
		t.Fatalf("ws on ended session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type decodedMessage struct {
	Type    string
	Payload map[string]any
}

// readState reads until a state message satisfies match.
func readState(t *testing.T, conn *websocket.Conn, match func(domain.Snapshot) bool) domain.Snapshot {
	t.Helper()
	for i := 0; i < 20; i++ {
		msg := readMessage(t, conn)
		if msg.Type != "state" {
			continue
		}
		var snap domain.Snapshot
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if match(snap) {
			return snap
		}
	}
	t.Fatalf("no matching state message")
	return domain.Snapshot{}
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) decodedMessage {
	t.Helper()
	for i := 0; i < 20; i++ {
		msg := readMessage(t, conn)
		if msg.Type != typ {
			continue
		}
		out := decodedMessage{Type: msg.Type}
		_ = json.Unmarshal(msg.Payload, &out.Payload)
		return out
	}
	t.Fatalf("no %s message", typ)
	return decodedMessage{}
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/sessions/" + sessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func startSession(t *testing.T, server *httptest.Server) domain.Snapshot {
	t.Helper()
	resp, err := http.Post(server.URL+"/sessions", "application/json", bytes.NewBufferString(`{"quizId":"quiz-1"}`))
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var snap domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.SessionID == "" {
		t.Fatalf("expected session id")
	}
	return snap
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(newTestRoutes())
}

func newTestRoutes() http.Handler {
	store := memory.NewSessionStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuiz()), time.Minute)
	service := app.NewGameService(store, quizRepo, game.Options{Scheduler: idleScheduler{}})
	return NewHandler(service).Routes()
}

// idleScheduler never fires, so snapshots only change on client actions.
type idleScheduler struct{}

func (idleScheduler) AfterFunc(time.Duration, func()) game.Canceler { return idleTask{} }

type idleTask struct{}

func (idleTask) Stop() bool { return true }

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:        "quiz-1",
		Title:     "Arithmetic",
		CreatedAt: 1700000000000,
		Categories: []domain.Category{
			{
				Title: "Sums",
				Questions: []domain.Question{
					{Points: domain.NumericPoints(100), Question: "What is 2 + 2?", Answer: "4"},
					{Points: domain.NumericPoints(200), Question: "What is 12 + 30?", Answer: "42"},
				},
			},
		},
	}
}
