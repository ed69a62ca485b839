package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"mazad-client/config"
	"mazad-client/logger"
	"mazad-client/models"
)

// Event names pushed by the realtime gateway.
const (
	EventSendMessage  = "sendMessage"
	EventAdminMessage = "adminMessage"
	EventChatCreated  = "sendNotificationChatCreate"
	EventNotification = "notification"
)

// ErrCannotConnect 는 재연결 시도가 소진된 뒤의 종결 상태다. 호스트 페이지를
// 죽이는 대신 타입 있는 플래그로 노출된다.
var ErrCannotConnect = errors.New("chat: cannot connect to realtime gateway")

// frame is one JSON event frame on the wire.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handlers receive inbound events. Nil handlers are skipped.
type Handlers struct {
	OnMessage         func(models.ChatMessage)
	OnChatCreated     func(models.Chat)
	OnNotification    func(json.RawMessage)
	OnConnectionError func(error)
}

// Channel 은 로그인한 사용자당 정확히 하나 열리는 양방향 이벤트 연결이다.
// 수신 이벤트는 전달 순서대로 처리되며, 최근 키 캐시에 대해 중복이
// 걸러진 것만 핸들러로 전달된다. adminMessage 채널의 이벤트는 dedup 이전에
// 발신자를 관리자 식별자로 강제하므로 두 채널이 발신자에 대해 서로 다른
// 답을 내지 못한다.
type Channel struct {
	socketURL   string
	userID      string
	adminID     string
	window      time.Duration
	maxAttempts int
	delayCap    time.Duration
	handlers    Handlers
	seen        *recentKeys

	mu            sync.Mutex
	conn          *websocket.Conn
	closed        bool
	cannotConnect bool
	done          chan struct{}
}

// NewChannel builds a channel for one user id. Open must be called before
// any events flow.
func NewChannel(apiCfg config.APIConfig, chatCfg config.ChatConfig, userID string, h Handlers) *Channel {
	return &Channel{
		socketURL:   apiCfg.SocketURL,
		userID:      userID,
		adminID:     chatCfg.AdminUserID,
		window:      chatCfg.DedupWindow(),
		maxAttempts: chatCfg.MaxReconnectAttempts,
		delayCap:    chatCfg.ReconnectDelayCap(),
		handlers:    h,
		seen:        newRecentKeys(chatCfg.DedupCacheSize),
		done:        make(chan struct{}),
	}
}

// Open dials the gateway and starts the read loop. It returns an error only
// when the very first dial fails; later drops go through the bounded
// reconnection policy.
func (c *Channel) Open(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		c.setCannotConnect()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	target := c.socketURL
	if u, err := url.Parse(target); err == nil {
		q := u.Query()
		q.Set("userId", c.userID)
		u.RawQuery = q.Encode()
		target = u.String()
	}

	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Close tears the connection down; no reconnection happens afterwards.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
	}
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// CannotConnect reports whether the channel gave up reconnecting.
func (c *Channel) CannotConnect() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cannotConnect
}

func (c *Channel) setCannotConnect() {
	c.mu.Lock()
	c.cannotConnect = true
	c.mu.Unlock()
	if c.handlers.OnConnectionError != nil {
		c.handlers.OnConnectionError(ErrCannotConnect)
	}
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.Read(context.Background())
		if err != nil {
			if c.isClosed() {
				return
			}
			logger.WarnWithFields("chat connection dropped", logger.Fields{
				"user_id": c.userID,
				"error":   err.Error(),
			})
			next, ok := c.reconnect()
			if !ok {
				// Close 가 재연결 대기를 중단시킨 경우는 실패 상태가 아니다.
				if !c.isClosed() {
					c.setCannotConnect()
				}
				return
			}
			conn = next
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
			continue
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			logger.DebugWithFields("dropping malformed event frame", logger.Fields{"error": err.Error()})
			continue
		}
		c.dispatch(f)
	}
}

// reconnect 는 고정 횟수 상한과 상한이 있는 지수 지연으로 재연결을 시도한다.
// Close 가 호출되면 즉시 포기한다.
func (c *Channel) reconnect() (*websocket.Conn, bool) {
	delay := 500 * time.Millisecond
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-c.done:
			return nil, false
		case <-time.After(delay):
		}

		conn, err := c.dial(context.Background())
		if err == nil {
			logger.InfoWithFields("chat connection re-established", logger.Fields{
				"user_id": c.userID,
				"attempt": attempt,
			})
			return conn, true
		}

		delay *= 2
		if delay > c.delayCap {
			delay = c.delayCap
		}
	}
	return nil, false
}

func (c *Channel) dispatch(f frame) {
	switch f.Event {
	case EventSendMessage:
		var msg models.ChatMessage
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			return
		}
		c.accept(msg)
	case EventAdminMessage:
		var msg models.ChatMessage
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			return
		}
		// 지원 채팅에서 온 메시지의 발신자는 항상 관리자 식별자다.
		msg.SenderID = c.adminID
		c.accept(msg)
	case EventChatCreated:
		var chat models.Chat
		if err := json.Unmarshal(f.Data, &chat); err != nil {
			return
		}
		if c.handlers.OnChatCreated != nil {
			c.handlers.OnChatCreated(chat)
		}
	case EventNotification:
		if c.handlers.OnNotification != nil {
			c.handlers.OnNotification(f.Data)
		}
	}
}

func (c *Channel) accept(msg models.ChatMessage) {
	if c.seen.Seen(dedupKey(msg, c.window)) {
		return
	}
	msg.LocalState = models.MessageConfirmed
	if c.handlers.OnMessage != nil {
		c.handlers.OnMessage(msg)
	}
}
