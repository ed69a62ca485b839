package chat

import (
	"fmt"
	"testing"
	"time"

	"mazad-client/models"
)

func TestDedupKeyMatchesAcrossEventChannels(t *testing.T) {
	sentAt := time.Now()
	msg := models.ChatMessage{ID: "m1", Body: "hello", SenderID: "admin", SentAt: sentAt}

	// 같은 메시지가 sendMessage 와 adminMessage 로 두 번 도착하는 상황.
	dup := msg

	if dedupKey(msg, time.Second) != dedupKey(dup, time.Second) {
		t.Fatalf("identical messages must produce identical keys")
	}
}

func TestDedupKeyDistinguishesMessages(t *testing.T) {
	sentAt := time.Now()
	base := models.ChatMessage{ID: "m1", Body: "hello", SenderID: "admin", SentAt: sentAt}

	tests := []struct {
		name string
		mut  func(m models.ChatMessage) models.ChatMessage
	}{
		{"different body", func(m models.ChatMessage) models.ChatMessage { m.Body = "other"; return m }},
		{"different sender", func(m models.ChatMessage) models.ChatMessage { m.SenderID = "u2"; return m }},
		{"different id", func(m models.ChatMessage) models.ChatMessage { m.ID = "m2"; return m }},
		{"far apart in time", func(m models.ChatMessage) models.ChatMessage { m.SentAt = sentAt.Add(time.Minute); return m }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if dedupKey(base, time.Second) == dedupKey(tt.mut(base), time.Second) {
				t.Fatalf("expected distinct keys")
			}
		})
	}
}

func TestDedupKeyUsesNoIDPlaceholder(t *testing.T) {
	msg := models.ChatMessage{Body: "hello", SenderID: "u1", SentAt: time.Unix(100, 0)}
	key := dedupKey(msg, time.Second)
	if key[:5] != "no-id" {
		t.Fatalf("expected no-id placeholder for messages without a server id, got %q", key)
	}
}

func TestRecentKeysRejectsDuplicates(t *testing.T) {
	cache := newRecentKeys(8)

	if cache.Seen("k1") {
		t.Fatalf("first sighting must not be a duplicate")
	}
	if !cache.Seen("k1") {
		t.Fatalf("second sighting must be a duplicate")
	}
}

func TestRecentKeysEvictsOldest(t *testing.T) {
	cache := newRecentKeys(4)

	for i := 0; i < 4; i++ {
		cache.Seen(fmt.Sprintf("k%d", i))
	}
	if cache.Len() != 4 {
		t.Fatalf("expected a full cache, got %d", cache.Len())
	}

	// 다섯 번째 키가 가장 오래된 k0 을 밀어낸다.
	cache.Seen("k4")
	if cache.Len() != 4 {
		t.Fatalf("cache must stay bounded, got %d", cache.Len())
	}
	if cache.Seen("k0") {
		t.Fatalf("expected k0 to have been evicted")
	}
	if !cache.Seen("k4") {
		t.Fatalf("expected k4 to still be cached")
	}
}
