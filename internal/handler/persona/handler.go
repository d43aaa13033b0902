package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
	"github.com/zhouzirui/elyx-journey/backend/pkg/utils"
)

// Handler 护理团队名册的HTTP处理器
type Handler struct {
	personas persona.Store
}

// New 创建团队处理器
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 注册团队相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/team", h.handleListTeam)
	r.Get("/team/{personaID}", h.handleGetMember)
}

// handleListTeam 列出整个护理团队
func (h *Handler) handleListTeam(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, r, http.StatusOK, h.personas.List())
}

func (h *Handler) handleGetMember(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personas.FindByID(chi.URLParam(r, "personaID"))
	if !ok {
		utils.RespondError(w, r, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, r, http.StatusOK, p)
}
