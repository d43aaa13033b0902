package handler

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	personaModel "github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
	journeySvc "github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/store"
)

func TestRouterWiresRoutes(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "journey.json"))
	r := NewRouter(personaModel.NewMemoryStore(personaModel.Seed()), journeySvc.NewService(s), 0)

	cases := map[string]int{
		"/healthz":       http.StatusOK,
		"/api/team":      http.StatusOK,
		"/":              http.StatusServiceUnavailable,
		"/api/journey":   http.StatusServiceUnavailable,
		"/api/messages":  http.StatusServiceUnavailable,
		"/api/summary":   http.StatusServiceUnavailable,
		"/api/decisions": http.StatusServiceUnavailable,
		"/api/replay":    http.StatusServiceUnavailable,
		"/ws/replay":     http.StatusServiceUnavailable,
		"/api/unknown":   http.StatusNotFound,
	}
	for target, want := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("%s: expected %d, got %d", target, want, resp.Code)
		}
	}
}

func TestRouterSetsCORSHeaders(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "journey.json"))
	r := NewRouter(personaModel.NewMemoryStore(personaModel.Seed()), journeySvc.NewService(s), 0)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
