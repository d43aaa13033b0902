package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	journeySvc "github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/store"
)

func fixture() *journey.Journey {
	ts := time.Date(2025, 1, 6, 0, 30, 0, 0, time.UTC)
	return &journey.Journey{
		MemberName: "Rohan",
		Phases:     1,
		Messages: []journey.Message{
			{ID: "MSG-1", Timestamp: ts, Sender: journey.SenderMember, Phase: 1, Text: "sleep is poor"},
			{ID: "MSG-2", Timestamp: ts.Add(10 * time.Minute), Sender: journey.SenderTeam, Phase: 1, Text: "routing"},
			{ID: "MSG-3", Timestamp: ts.Add(40 * time.Minute), Sender: journey.SenderTeam, Phase: 1, Text: "advice"},
		},
	}
}

func setupRouter(t *testing.T, j *journey.Journey) *chi.Mux {
	t.Helper()
	s := store.NewFileStore(filepath.Join(t.TempDir(), "journey.json"))
	if j != nil {
		if err := s.Write(context.Background(), j); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	replay := New(journeySvc.NewService(s), 0)
	r := chi.NewRouter()
	replay.RegisterRoutes(r)
	NewWebSocketHandler(replay).RegisterWebSocketRoutes(r)
	return r
}

func TestSSEReplaysEveryMessage(t *testing.T) {
	r := setupRouter(t, fixture())

	req := httptest.NewRequest(http.MethodGet, "/replay?interval=0", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	body := resp.Body.String()
	if !strings.HasPrefix(body, "event: meta\n") {
		t.Fatalf("expected meta event first, got %q", body)
	}
	if got := strings.Count(body, "event: message\n"); got != 3 {
		t.Fatalf("expected 3 message events, got %d", got)
	}
	if !strings.Contains(body, "event: done\n") {
		t.Fatal("missing done event")
	}
	if strings.Index(body, "MSG-1") > strings.Index(body, "MSG-3") {
		t.Fatal("messages replayed out of order")
	}
}

func TestSSEFiltersBySender(t *testing.T) {
	r := setupRouter(t, fixture())

	req := httptest.NewRequest(http.MethodGet, "/replay?interval=0&sender=team", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := strings.Count(resp.Body.String(), "event: message\n"); got != 2 {
		t.Fatalf("expected 2 team messages, got %d", got)
	}
}

func TestSSEStopsWhenClientLeaves(t *testing.T) {
	r := setupRouter(t, fixture())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/replay?interval=5000", nil).WithContext(ctx)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	body := resp.Body.String()
	if got := strings.Count(body, "event: message\n"); got != 1 {
		t.Fatalf("expected replay to stop after the first message, got %d", got)
	}
	if strings.Contains(body, "event: done") {
		t.Fatal("cancelled replay must not report done")
	}
}

func TestSSERejectsBadInterval(t *testing.T) {
	r := setupRouter(t, fixture())

	for _, interval := range []string{"-1", "fast", "60000"} {
		req := httptest.NewRequest(http.MethodGet, "/replay?interval="+interval, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("interval=%s: expected 400, got %d", interval, resp.Code)
		}
	}
}

func TestSSEMissingFile(t *testing.T) {
	r := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/replay", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestWebSocketReplay(t *testing.T) {
	srv := httptest.NewServer(setupRouter(t, fixture()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/replay?interval=0"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var kinds []string
	var ids []string
	for {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("read: %v", err)
			}
			break
		}
		kinds = append(kinds, msg.Type)
		if msg.Type == "message" {
			var frame Frame
			if err := json.Unmarshal(msg.Data, &frame); err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			ids = append(ids, frame.Message.ID)
		}
	}

	want := []string{"meta", "message", "message", "message", "done"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected frames %v", kinds)
	}
	if strings.Join(ids, ",") != "MSG-1,MSG-2,MSG-3" {
		t.Fatalf("unexpected order %v", ids)
	}
}

func TestWebSocketMissingFile(t *testing.T) {
	srv := httptest.NewServer(setupRouter(t, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/replay"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 handshake response, got %+v", resp)
	}
}
