package models

import "time"

// LocalState 는 채팅 메시지의 클라이언트 측 수명주기 상태다.
// Pending 메시지는 로컬에서 생성된 임시 id 를 가진 placeholder 이며,
// Confirmed(서버 발급 id 로 교체) 또는 Failed(인라인 에러 마커로 교체,
// 일정 시간 후 자동 제거) 중 정확히 하나로만 전이한다.
type LocalState string

const (
	MessageConfirmed LocalState = "confirmed"
	MessagePending   LocalState = "pending"
	MessageFailed    LocalState = "failed"
)

// ChatMessage is one message in a conversation. JSON tags follow the
// backend's wire naming.
type ChatMessage struct {
	ID         string    `json:"_id,omitempty"`
	Body       string    `json:"message"`
	SenderID   string    `json:"sender"`
	ReceiverID string    `json:"receiver,omitempty"`
	ChatID     string    `json:"idChat,omitempty"`
	SentAt     time.Time `json:"createdAt"`

	// Client-only state, never sent on the wire.
	LocalState LocalState `json:"-"`
	ErrorText  string     `json:"-"`
}

// Chat is a conversation between a set of participants. The support chat is
// the one whose participants include the admin identity; it is created
// lazily on the first outbound message.
type Chat struct {
	ID             string    `json:"_id"`
	ParticipantIDs []string  `json:"users"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// HasParticipant reports whether userID is part of the conversation.
func (c Chat) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}
