package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/elyx-journey/backend/internal/handler/status"
	"github.com/zhouzirui/elyx-journey/backend/internal/logger"
	journeySvc "github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
	"github.com/zhouzirui/elyx-journey/backend/pkg/utils"
)

// Handler 旅程数据的只读 JSON 接口
type Handler struct {
	svc *journeySvc.Service
}

// New 创建 JSON 接口处理器
func New(svc *journeySvc.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册只读路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/journey", h.handleJourney)
	r.Get("/messages", h.handleMessages)
	r.Get("/summary", h.handleSummary)
	r.Get("/decisions", h.handleDecisions)
}

func (h *Handler) handleJourney(w http.ResponseWriter, r *http.Request) {
	j, err := h.svc.Load(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondJSON(w, r, http.StatusOK, j)
}

// handleMessages 支持 ?phase=N&sender=member|team 过滤
func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	filter, err := journeySvc.ParseFilter(r.URL.Query().Get("phase"), r.URL.Query().Get("sender"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	messages, err := h.svc.Messages(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondJSON(w, r, http.StatusOK, map[string]any{
		"count":    len(messages),
		"messages": messages,
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, metrics, err := h.svc.Summary(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondJSON(w, r, http.StatusOK, map[string]any{
		"summary": summary,
		"metrics": metrics,
	})
}

func (h *Handler) handleDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := h.svc.Decisions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondJSON(w, r, http.StatusOK, map[string]any{
		"count":     len(decisions),
		"decisions": decisions,
	})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := status.Of(err)
	if code >= http.StatusInternalServerError {
		logger.Errorf(r.Context(), "[api] %s: %v", r.URL.Path, err)
	}
	utils.RespondError(w, r, code, message)
}
