// Package viewer renders the generated journey as a single chat-style page.
package viewer

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/elyx-journey/backend/internal/handler/status"
	"github.com/zhouzirui/elyx-journey/backend/internal/logger"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
	journeySvc "github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
)

//go:embed templates/index.html
var templates embed.FS

var page = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templates, "templates/index.html"))

type pageData struct {
	Journey *journey.Journey
	Team    []persona.Persona
	Error   string
}

// Handler 查看器页面
type Handler struct {
	svc      *journeySvc.Service
	personas persona.Store
}

// New 创建查看器页面处理器
func New(svc *journeySvc.Service, personas persona.Store) *Handler {
	return &Handler{svc: svc, personas: personas}
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Team: h.personas.List()}
	code := http.StatusOK

	j, err := h.svc.Load(r.Context())
	if err != nil {
		code, data.Error = status.Of(err)
		if code >= http.StatusInternalServerError {
			logger.Errorf(r.Context(), "[viewer] load journey: %v", err)
		}
	} else {
		data.Journey = j
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		logger.Errorf(r.Context(), "[viewer] render page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}
