package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"mazad-client/logger"
)

// hub 는 사용자 id 당 정확히 하나의 웹소켓 연결을 유지한다. 같은 id 로
// 다시 접속하면 이전 연결을 닫고 새 연결로 교체한다.
type hub struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func newHub() *hub {
	return &hub{conns: make(map[string]*websocket.Conn)}
}

// serveWS upgrades /ws?userId= and parks the connection in the registry.
func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // dev server, any origin
	})
	if err != nil {
		logger.WarnWithFields("websocket accept failed", logger.Fields{"error": err.Error()})
		return
	}

	h.mu.Lock()
	if prev, ok := h.conns[userID]; ok {
		_ = prev.Close(websocket.StatusPolicyViolation, "replaced by newer connection")
	}
	h.conns[userID] = conn
	h.mu.Unlock()

	logger.InfoWithFields("websocket connected", logger.Fields{"user_id": userID})

	// 클라이언트는 수신 전용이다. 읽기 루프는 연결 종료 감지용으로만 돈다.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	h.mu.Lock()
	if h.conns[userID] == conn {
		delete(h.conns, userID)
	}
	h.mu.Unlock()
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// push 는 한 사용자에게 이벤트 프레임을 보낸다. 연결이 없으면 조용히
// 버린다 — 오프라인 수신자는 히스토리 조회로 따라잡는다.
func (h *hub) push(userID, event string, data any) {
	h.mu.Lock()
	conn, ok := h.conns[userID]
	h.mu.Unlock()
	if !ok {
		return
	}

	payload, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		logger.DebugWithFields("websocket push failed", logger.Fields{
			"user_id": userID,
			"event":   event,
			"error":   err.Error(),
		})
	}
}
