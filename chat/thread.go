package chat

import (
	"sync"

	"mazad-client/models"
)

// Thread 는 한 대화의 인메모리 메시지 목록을 소유한다. 낙관적 상태 전이
// (Pending → Confirmed / Failed)는 전부 이 타입의 전이 메서드로만 일어나며,
// UI 없이 단독으로 테스트할 수 있다. 목록은 채널과 전송 레이어 외에는
// 아무도 직접 변경하지 않는다.
type Thread struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

func NewThread() *Thread { return &Thread{} }

// Snapshot returns a copy of the current message list.
func (t *Thread) Snapshot() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// SetAll replaces the list, e.g. after loading history.
func (t *Thread) SetAll(msgs []models.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages[:0:0], msgs...)
}

// Append adds a message to the end of the list.
func (t *Thread) Append(msg models.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// ContainsID reports whether a message with the given id is in the list.
func (t *Thread) ContainsID(id string) bool {
	if id == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of messages.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// ConfirmPending 은 (임시 id, 본문 일치)로 찾은 Pending 항목을 서버 확정
// 메시지로 교체한다. 교체가 일어났는지 여부를 반환한다.
func (t *Thread) ConfirmPending(tempID, body string, confirmed models.ChatMessage) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, m := range t.messages {
		if m.ID == tempID && m.Body == body && m.LocalState == models.MessagePending {
			confirmed.LocalState = models.MessageConfirmed
			t.messages[i] = confirmed
			return true
		}
	}
	return false
}

// FailPending 은 Pending 항목을 고정 에러 문구를 가진 Failed 마커로 바꾼다.
// 임시 id 는 유지되므로 이후 Remove 로 제거할 수 있다.
func (t *Thread) FailPending(tempID, body, errText string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, m := range t.messages {
		if m.ID == tempID && m.Body == body && m.LocalState == models.MessagePending {
			t.messages[i].LocalState = models.MessageFailed
			t.messages[i].ErrorText = errText
			return true
		}
	}
	return false
}

// Remove deletes the message with the given id, reporting whether it existed.
func (t *Thread) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, m := range t.messages {
		if m.ID == id {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}
