package viewer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/profile"
	"github.com/zhouzirui/elyx-journey/backend/internal/service/generator"
	journeySvc "github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/store"
)

func setupRouter(t *testing.T, generate bool) (*chi.Mux, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journey.json")
	s := store.NewFileStore(path)

	if generate {
		p, err := profile.Load(filepath.Join("..", "..", "model", "profile", "testdata", "member.yaml"))
		if err != nil {
			t.Fatalf("load profile: %v", err)
		}
		j, err := generator.New(generator.Config{Seed: generator.SeedFor(p, nil)}, nil, nil).Generate(context.Background(), p)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if err := s.Write(context.Background(), j); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	r := chi.NewRouter()
	New(journeySvc.NewService(s), persona.NewMemoryStore(persona.Seed())).RegisterRoutes(r)
	return r, path
}

func TestIndexRendersAllSections(t *testing.T) {
	r, _ := setupRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()

	order := []string{`id="chat"`, `id="timeline"`, `id="decisions"`, `id="metrics"`, `id="persona"`, `id="summary"`}
	last := -1
	for _, marker := range order {
		idx := strings.Index(body, marker)
		if idx < 0 {
			t.Fatalf("missing section %s", marker)
		}
		if idx < last {
			t.Fatalf("section %s out of order", marker)
		}
		last = idx
	}

	if !strings.Contains(body, `class="bubble member"`) || !strings.Contains(body, `class="bubble team"`) {
		t.Fatal("expected both member and team bubbles")
	}
	if !strings.Contains(body, "Dr. Warren") {
		t.Fatal("expected care team roster on the page")
	}
}

func TestIndexWithoutDataAsksToSimulate(t *testing.T) {
	r, _ := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "simulate") {
		t.Fatalf("expected simulate instruction, got %s", resp.Body.String())
	}
}

func TestIndexWithCorruptData(t *testing.T) {
	r, path := setupRouter(t, false)
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
