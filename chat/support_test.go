package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mazad-client/api"
	"mazad-client/config"
	"mazad-client/httpclient"
	"mazad-client/models"
	"mazad-client/session"
)

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		AdminUserID:        "admin",
		FailedMessageTTLMS: 50,
	}
}

func newSupportChatOver(t *testing.T, handler http.Handler) (*SupportChat, session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	store.Save(session.Session{
		User:   &session.UserProfile{ID: "u1", Email: "u1@example.com"},
		Tokens: &session.Tokens{AccessToken: "at"},
	})

	client := httpclient.New(config.APIConfig{BaseURL: srv.URL, TimeoutMS: 2000}, store)
	marketplace := api.New(client, store)
	return NewSupportChat(marketplace, store, testChatConfig()), store
}

// happyBackend serves the full lazy-creation path: admin directory, no
// existing chats, chat creation, message creation.
func happyBackend() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/identities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"_id":"i1","user":"admin","role":"admin"}]}`))
	})
	mux.HandleFunc("/chat/getchats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	})
	mux.HandleFunc("/chat/create", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"_id":"c1","users":["u1","admin"]}}`))
	})
	mux.HandleFunc("/message/create", func(w http.ResponseWriter, r *http.Request) {
		var msg models.ChatMessage
		json.NewDecoder(r.Body).Decode(&msg)
		msg.ID = "m1"
		payload, _ := json.Marshal(msg)
		w.Write([]byte(`{"success":true,"data":` + string(payload) + `}`))
	})
	return mux
}

func TestSendOptimisticRoundTrip(t *testing.T) {
	support, _ := newSupportChatOver(t, happyBackend())

	appends := 0
	support.OnAppend = func() { appends++ }

	if err := support.Send(context.Background(), "  hello support  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := support.Thread().Snapshot()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one message, got %d", len(msgs))
	}
	got := msgs[0]
	if got.ID != "m1" {
		t.Fatalf("expected the server-confirmed id, got %q", got.ID)
	}
	if got.LocalState != models.MessageConfirmed {
		t.Fatalf("expected confirmed state, got %q", got.LocalState)
	}
	if got.Body != "hello support" {
		t.Fatalf("expected trimmed body, got %q", got.Body)
	}
	if got.ChatID != "c1" {
		t.Fatalf("expected the lazily created conversation, got %q", got.ChatID)
	}
	if appends < 2 {
		t.Fatalf("expected the scroll hook on both the pending insert and the confirmation, got %d", appends)
	}
}

func TestSendFailureShowsThenRemovesMarker(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/identities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"_id":"i1","user":"admin","role":"admin"}]}`))
	})
	mux.HandleFunc("/chat/getchats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"_id":"c1","users":["u1","admin"]}]}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// every message endpoint candidate fails
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"storage down"}`))
	})
	support, _ := newSupportChatOver(t, mux)

	if err := support.Send(context.Background(), "doomed"); err == nil {
		t.Fatalf("expected the send error to propagate")
	}

	msgs := support.Thread().Snapshot()
	if len(msgs) != 1 {
		t.Fatalf("expected the failed marker to stay in the list, got %d messages", len(msgs))
	}
	if msgs[0].LocalState != models.MessageFailed {
		t.Fatalf("expected failed state, got %q", msgs[0].LocalState)
	}
	if msgs[0].ErrorText != FailedSendText {
		t.Fatalf("expected the fixed failure text, got %q", msgs[0].ErrorText)
	}

	// TTL(50ms) 이후 마커는 자동으로 사라진다.
	deadline := time.Now().Add(2 * time.Second)
	for support.Thread().Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected the failed marker to be removed after its TTL")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSendGuards(t *testing.T) {
	support, store := newSupportChatOver(t, happyBackend())

	if err := support.Send(context.Background(), "   "); err != ErrEmptyMessage {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	store.Clear()
	if err := support.Send(context.Background(), "hello"); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSendSynthesizesAdminAndConversation(t *testing.T) {
	// 디렉터리도, 대화 목록도, 생성 엔드포인트도 전부 죽어 있다.
	mux := http.NewServeMux()
	mux.HandleFunc("/message/create", func(w http.ResponseWriter, r *http.Request) {
		var msg models.ChatMessage
		json.NewDecoder(r.Body).Decode(&msg)
		msg.ID = "m1"
		payload, _ := json.Marshal(msg)
		w.Write([]byte(`{"success":true,"data":` + string(payload) + `}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	support, _ := newSupportChatOver(t, mux)

	if err := support.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := support.Thread().Snapshot()
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	if msgs[0].ReceiverID != "admin" {
		t.Fatalf("expected the synthesized admin receiver, got %q", msgs[0].ReceiverID)
	}
	if len(msgs[0].ChatID) < 6 || msgs[0].ChatID[:6] != "local-" {
		t.Fatalf("expected a synthesized local conversation, got %q", msgs[0].ChatID)
	}
}

func TestSendSurvivesEarlySocketEcho(t *testing.T) {
	// 게이트웨이는 발신자 본인에게도 sendMessage 를 에코하고, 그 에코가
	// REST 응답보다 먼저 도착할 수 있다. 이 순서에서도 확정 메시지는
	// 정확히 하나만 남아야 한다.
	var support *SupportChat
	mux := http.NewServeMux()
	mux.HandleFunc("/identities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"_id":"i1","user":"admin","role":"admin"}]}`))
	})
	mux.HandleFunc("/chat/getchats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"_id":"c1","users":["u1","admin"]}]}`))
	})
	mux.HandleFunc("/message/create", func(w http.ResponseWriter, r *http.Request) {
		var msg models.ChatMessage
		json.NewDecoder(r.Body).Decode(&msg)
		msg.ID = "m1"

		// 응답을 쓰기 전에 소켓 에코가 먼저 처리된다.
		echoed := msg
		echoed.LocalState = models.MessageConfirmed
		support.HandleInbound(echoed)

		payload, _ := json.Marshal(msg)
		w.Write([]byte(`{"success":true,"data":` + string(payload) + `}`))
	})
	support, _ = newSupportChatOver(t, mux)

	if err := support.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := support.Thread().Snapshot()
	confirmed := 0
	for _, m := range msgs {
		if m.ID == "m1" && m.LocalState == models.MessageConfirmed {
			confirmed++
		}
	}
	if len(msgs) != 1 || confirmed != 1 {
		t.Fatalf("expected exactly one confirmed message m1, got %d entries (%d confirmed): %+v",
			len(msgs), confirmed, msgs)
	}
}

func TestHandleInboundSkipsKnownIDs(t *testing.T) {
	support, _ := newSupportChatOver(t, happyBackend())

	if err := support.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 같은 메시지가 웹소켓 에코로 다시 도착하는 상황.
	support.HandleInbound(models.ChatMessage{ID: "m1", Body: "hello", SenderID: "u1"})
	if support.Thread().Len() != 1 {
		t.Fatalf("echoed confirmations must not be appended twice")
	}

	support.HandleInbound(models.ChatMessage{ID: "m2", Body: "reply", SenderID: "admin"})
	if support.Thread().Len() != 2 {
		t.Fatalf("new inbound messages must be appended")
	}
}

func TestLoadHistory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/identities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"_id":"i1","user":"admin","role":"admin"}]}`))
	})
	mux.HandleFunc("/chat/getchats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"_id":"c1","users":["u1","admin"]}]}`))
	})
	mux.HandleFunc("/message/getAll/c1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"_id":"m1","message":"hi","sender":"u1"},
			{"_id":"m2","message":"how can I help?","sender":"admin"}
		]}`))
	})
	mux.HandleFunc("/message/create", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"_id":"m3","message":"x","sender":"u1"}}`))
	})
	support, _ := newSupportChatOver(t, mux)

	// 대화가 아직 해석되지 않았으면 히스토리 적재는 no-op 이다.
	if err := support.LoadHistory(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if support.Thread().Len() != 0 {
		t.Fatalf("expected no history before the conversation is resolved")
	}

	if err := support.Send(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := support.LoadHistory(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := support.Thread().Snapshot()
	if len(msgs) != 2 || msgs[1].ID != "m2" {
		t.Fatalf("expected the stored history, got %+v", msgs)
	}
	if msgs[0].LocalState != models.MessageConfirmed {
		t.Fatalf("history entries are confirmed by definition, got %q", msgs[0].LocalState)
	}
}
