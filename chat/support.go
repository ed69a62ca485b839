package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mazad-client/api"
	"mazad-client/config"
	"mazad-client/logger"
	"mazad-client/models"
	"mazad-client/session"
)

// FailedSendText is the fixed user-facing text shown on a failed send.
const FailedSendText = "Failed to send message. Please try again."

var (
	ErrEmptyMessage = errors.New("chat: message body is empty")
	ErrNoSession    = errors.New("chat: no authenticated session")
	ErrSendInFlight = errors.New("chat: a send is already in flight")
)

// SupportChat 은 관리자와의 단일 지원 대화를 중개한다. 대화는 첫 발신
// 메시지에서 지연 생성되고, 발신은 낙관적으로 처리된다: Pending 말풍선을
// 먼저 넣고 서버 확인으로 교체하거나, 실패 시 일정 시간 뒤 사라지는 Failed
// 마커로 바꾼다.
type SupportChat struct {
	api       *api.API
	sessions  session.Store
	adminID   string
	failedTTL time.Duration
	thread    *Thread

	mu           sync.Mutex
	conversation *models.Chat
	admin        *models.Identity
	sending      bool

	// OnAppend is invoked after every visible list change, e.g. to scroll
	// the view to the latest message.
	OnAppend func()
}

// NewSupportChat wires the support conversation over the typed API modules.
func NewSupportChat(a *api.API, sessions session.Store, chatCfg config.ChatConfig) *SupportChat {
	return &SupportChat{
		api:       a,
		sessions:  sessions,
		adminID:   chatCfg.AdminUserID,
		failedTTL: chatCfg.FailedMessageTTL(),
		thread:    NewThread(),
	}
}

// Thread exposes the conversation's message list.
func (s *SupportChat) Thread() *Thread { return s.thread }

// HandleInbound is the Channel's OnMessage sink. Messages already present
// (the REST confirmation of our own send, echoed over the socket) are
// skipped.
func (s *SupportChat) HandleInbound(msg models.ChatMessage) {
	if s.thread.ContainsID(msg.ID) {
		return
	}
	s.thread.Append(msg)
	s.notifyAppend()
}

// LoadHistory replaces the thread with the conversation's stored messages.
// Without a resolved conversation it is a no-op.
func (s *SupportChat) LoadHistory(ctx context.Context) error {
	s.mu.Lock()
	conv := s.conversation
	s.mu.Unlock()
	if conv == nil || api.IsLocalChat(*conv) {
		return nil
	}

	msgs, err := s.api.Messages.GetAll(ctx, conv.ID)
	if err != nil {
		return err
	}
	for i := range msgs {
		msgs[i].LocalState = models.MessageConfirmed
	}
	s.thread.SetAll(msgs)
	s.notifyAppend()
	return nil
}

// Send 는 낙관적 발신 플로우다:
//
//  1. 가드: 빈 본문, 미인증 세션, 진행 중인 발신이면 거부.
//  2. 대상 대화 해석: 캐시 → 디렉터리의 관리자(없으면 합성 관리자)와
//     대화 생성. 생성 실패도 로컬 대화 합성으로 흡수되므로 여기서
//     막히지 않는다.
//  3. 임시 id 의 Pending 메시지를 즉시 삽입하고 스크롤 훅을 당긴다.
//  4. 파이프라인으로 발신. 성공이면 (임시 id + 본문 일치) 항목을 서버
//     확정 메시지로 교체, 실패면 Failed 마커로 바꾸고 TTL 뒤에 제거한다.
//
// 입력창 비우기는 4의 요청이 나간 뒤 호출자가 수행한다: 실패해도 실패
// 말풍선만 남고 입력이 복원되지는 않는다.
func (s *SupportChat) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	sess, ok := s.sessions.Load()
	if !ok || !sess.Authenticated() || sess.UserID() == "" {
		return ErrNoSession
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.sending = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	conv, admin := s.ensureConversation(ctx, sess)

	tempID := "tmp-" + uuid.New().String()
	pending := models.ChatMessage{
		ID:         tempID,
		Body:       text,
		SenderID:   sess.UserID(),
		ReceiverID: admin.UserID,
		ChatID:     conv.ID,
		SentAt:     time.Now(),
		LocalState: models.MessagePending,
	}
	s.thread.Append(pending)
	s.notifyAppend()

	outbound := pending
	outbound.ID = ""
	outbound.LocalState = ""

	confirmed, err := s.api.Messages.Create(ctx, outbound)
	if err != nil {
		s.thread.FailPending(tempID, text, FailedSendText)
		s.notifyAppend()
		time.AfterFunc(s.failedTTL, func() {
			if s.thread.Remove(tempID) {
				s.notifyAppend()
			}
		})
		return err
	}

	if s.thread.ContainsID(confirmed.ID) {
		// 소켓 에코가 REST 확인보다 먼저 도착해 확정 메시지가 이미 목록에
		// 있다. Pending placeholder 만 걷어낸다.
		s.thread.Remove(tempID)
	} else if !s.thread.ConfirmPending(tempID, text, confirmed) {
		// Pending 항목이 이미 사라졌다면(예: 히스토리 재적재) 확정본을 덧붙인다.
		confirmed.LocalState = models.MessageConfirmed
		s.thread.Append(confirmed)
	}
	s.notifyAppend()
	return nil
}

// ensureConversation 은 캐시된 대화를 쓰거나, 관리자 신원을 해석해 대화를
// 만든다. 디렉터리 조회가 실패하면 설정된 관리자 id 로 합성한다. 어떤
// 실패도 발신을 막지 않는다.
func (s *SupportChat) ensureConversation(ctx context.Context, sess session.Session) (models.Chat, models.Identity) {
	s.mu.Lock()
	if s.conversation != nil && s.admin != nil {
		conv, admin := *s.conversation, *s.admin
		s.mu.Unlock()
		return conv, admin
	}
	s.mu.Unlock()

	admin, found := s.api.Identities.FindAdmin(ctx)
	if !found {
		logger.DebugWithFields("admin directory lookup failed, using synthesized admin identity", logger.Fields{
			"admin_id": s.adminID,
		})
		admin = models.Identity{ID: s.adminID, UserID: s.adminID, Role: models.RoleAdmin}
	}

	var conv models.Chat
	chats, err := s.api.Chats.GetChats(ctx, sess.UserID())
	if err == nil {
		for _, c := range chats {
			if c.HasParticipant(admin.UserID) {
				conv = c
				break
			}
		}
	}
	if conv.ID == "" {
		// Create tolerates total endpoint failure by synthesizing a
		// local-only conversation, so conv is always usable here.
		conv, _ = s.api.Chats.Create(ctx, []string{sess.UserID(), admin.UserID})
	}

	s.mu.Lock()
	s.conversation = &conv
	s.admin = &admin
	s.mu.Unlock()
	return conv, admin
}

func (s *SupportChat) notifyAppend() {
	if s.OnAppend != nil {
		s.OnAppend()
	}
}
