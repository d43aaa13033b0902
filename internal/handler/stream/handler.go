package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/elyx-journey/backend/internal/handler/status"
	"github.com/zhouzirui/elyx-journey/backend/internal/logger"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
	journeySvc "github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
	"github.com/zhouzirui/elyx-journey/backend/pkg/utils"
)

// maxInterval 单条消息之间的最长回放间隔
const maxInterval = 10 * time.Second

var errInvalidInterval = errors.New("interval must be an integer number of milliseconds between 0 and 10000")

// Handler 按时间顺序回放对话记录
type Handler struct {
	svc      *journeySvc.Service
	interval time.Duration
}

// New 创建回放处理器，interval 为默认消息间隔
func New(svc *journeySvc.Service, interval time.Duration) *Handler {
	return &Handler{svc: svc, interval: interval}
}

// Frame 回放中的一条消息
type Frame struct {
	Index   int             `json:"index"`
	Total   int             `json:"total"`
	Message journey.Message `json:"message"`
}

// RegisterRoutes 注册 SSE 回放路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/replay", h.handleSSE)
}

// replayRequest 解析 ?interval=ms&phase=N&sender=member|team
func (h *Handler) replayRequest(r *http.Request) (time.Duration, journeySvc.Filter, error) {
	q := r.URL.Query()
	interval := h.interval
	if raw := q.Get("interval"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 || time.Duration(ms)*time.Millisecond > maxInterval {
			return 0, journeySvc.Filter{}, fmt.Errorf("%w: %w", journeySvc.ErrInvalidFilter, errInvalidInterval)
		}
		interval = time.Duration(ms) * time.Millisecond
	}

	filter, err := journeySvc.ParseFilter(q.Get("phase"), q.Get("sender"))
	if err != nil {
		return 0, journeySvc.Filter{}, err
	}
	return interval, filter, nil
}

// load 读取待回放的消息，失败时直接写出HTTP错误
func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]journey.Message, time.Duration, bool) {
	interval, filter, err := h.replayRequest(r)
	if err == nil {
		var messages []journey.Message
		messages, err = h.svc.Messages(r.Context(), filter)
		if err == nil {
			return messages, interval, true
		}
	}

	code, message := status.Of(err)
	if code >= http.StatusInternalServerError {
		logger.Errorf(r.Context(), "[replay] load failed: %v", err)
	}
	utils.RespondError(w, r, code, message)
	return nil, 0, false
}

// handleSSE 以 Server-Sent Events 回放: meta, message..., done
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	messages, interval, ok := h.load(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	utils.SetupSSEHeaders(w)

	ctx := r.Context()
	logger.Infof(ctx, "[replay] sse start messages=%d interval=%s", len(messages), interval)

	if err := utils.SendSSEEvent(w, flusher, "meta", map[string]any{
		"count":       len(messages),
		"interval_ms": interval.Milliseconds(),
	}); err != nil {
		logger.Warnf(ctx, "[replay] %v", err)
		return
	}

	for i, m := range messages {
		if i > 0 && !wait(ctx, interval) {
			logger.Infof(ctx, "[replay] sse client left at %d/%d", i, len(messages))
			return
		}
		if err := utils.SendSSEEvent(w, flusher, "message", Frame{Index: i, Total: len(messages), Message: m}); err != nil {
			logger.Warnf(ctx, "[replay] %v", err)
			return
		}
	}

	if err := utils.SendSSEEvent(w, flusher, "done", map[string]int{"count": len(messages)}); err != nil {
		logger.Warnf(ctx, "[replay] %v", err)
	}
}

// wait 等待 d，期间若 ctx 结束则返回 false
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
