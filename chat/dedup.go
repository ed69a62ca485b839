package chat

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"mazad-client/models"
)

// dedupKey 는 수신 메시지의 동일성 키를 만든다: 서버 id(없으면 "no-id"),
// 본문, 발신자, 그리고 dedup 윈도우 단위로 버킷팅한 타임스탬프.
// 두 이벤트 채널(sendMessage/adminMessage)로 같은 메시지가 두 번 도착해도
// 키가 일치해 한 번만 수락된다. 타임스탬프 버킷 폭은 순서 보장이 없는
// 전송에 대한 안전망일 뿐, 진짜 순서 보장은 아니다.
func dedupKey(msg models.ChatMessage, window time.Duration) string {
	id := msg.ID
	if id == "" {
		id = "no-id"
	}
	if window <= 0 {
		window = time.Second
	}
	bucket := msg.SentAt.UnixNano() / int64(window)
	return strings.Join([]string{id, msg.Body, msg.SenderID, strconv.FormatInt(bucket, 10)}, "|")
}

// recentKeys 는 고정 용량의 최근 키 캐시다. 무한히 자라는 seen-set 대신
// 링 버퍼가 가장 오래된 키를 밀어내므로 장수 세션에서도 메모리가 유한하다.
type recentKeys struct {
	mu   sync.Mutex
	ring []string
	next int
	seen map[string]struct{}
}

func newRecentKeys(capacity int) *recentKeys {
	if capacity <= 0 {
		capacity = 512
	}
	return &recentKeys{
		ring: make([]string, capacity),
		seen: make(map[string]struct{}, capacity),
	}
}

// Seen records key and reports whether it was already present. When the
// cache is full the oldest key is evicted.
func (r *recentKeys) Seen(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.seen[key]; dup {
		return true
	}

	if old := r.ring[r.next]; old != "" {
		delete(r.seen, old)
	}
	r.ring[r.next] = key
	r.seen[key] = struct{}{}
	r.next = (r.next + 1) % len(r.ring)
	return false
}

// Len returns the number of cached keys.
func (r *recentKeys) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
