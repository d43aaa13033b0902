package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/elyx-journey/backend/internal/handler/api"
	"github.com/zhouzirui/elyx-journey/backend/internal/handler/persona"
	"github.com/zhouzirui/elyx-journey/backend/internal/handler/stream"
	"github.com/zhouzirui/elyx-journey/backend/internal/handler/viewer"
	middlewarePkg "github.com/zhouzirui/elyx-journey/backend/internal/middleware"
	personaModel "github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
	journeySvc "github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
	"github.com/zhouzirui/elyx-journey/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the read-only journey service.
func NewRouter(personas personaModel.Store, svc *journeySvc.Service, replayInterval time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	replay := stream.New(svc, replayInterval)

	viewer.New(svc, personas).RegisterRoutes(r)
	stream.NewWebSocketHandler(replay).RegisterWebSocketRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(apiRouter chi.Router) {
		api.New(svc).RegisterRoutes(apiRouter)
		persona.New(personas).RegisterRoutes(apiRouter)
		replay.RegisterRoutes(apiRouter)
	})

	return r
}
