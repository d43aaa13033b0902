package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/elyx-journey/backend/internal/logger"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// WebSocketHandler 通过 WebSocket 回放对话
type WebSocketHandler struct {
	replay   *Handler
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket回放处理器
func NewWebSocketHandler(replay *Handler) *WebSocketHandler {
	return &WebSocketHandler{
		replay: replay,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/replay", h.handleWebSocket)
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 升级连接后依次推送 meta, message..., done
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	messages, interval, ok := h.replay.load(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf(r.Context(), "[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	logger.Infof(ctx, "[websocket] replay start messages=%d interval=%s", len(messages), interval)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go h.readLoop(conn, cancel)
	go h.pingLoop(ctx, conn)

	if !h.send(ctx, conn, "meta", map[string]any{"count": len(messages), "interval_ms": interval.Milliseconds()}) {
		return
	}
	for i, m := range messages {
		if i > 0 && !wait(ctx, interval) {
			logger.Infof(ctx, "[websocket] client left at %d/%d", i, len(messages))
			return
		}
		if !h.send(ctx, conn, "message", Frame{Index: i, Total: len(messages), Message: m}) {
			return
		}
	}
	if !h.send(ctx, conn, "done", map[string]int{"count": len(messages)}) {
		return
	}

	closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay finished")
	if err := conn.WriteControl(websocket.CloseMessage, closing, time.Now().Add(writeWait)); err != nil {
		logger.Debugf(ctx, "[websocket] close failed: %v", err)
	}
}

func (h *WebSocketHandler) send(ctx context.Context, conn *websocket.Conn, kind string, data interface{}) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	msg := outgoingMessage{Type: kind, Data: data, Timestamp: time.Now().Unix()}
	if err := conn.WriteJSON(msg); err != nil {
		logger.Warnf(ctx, "[websocket] write %s failed: %v", kind, err)
		return false
	}
	return true
}

// readLoop 丢弃客户端消息，连接断开时取消回放
func (h *WebSocketHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
