package session

import "testing"

func sample() Session {
	return Session{
		User:   &UserProfile{ID: "u1", Email: "u1@example.com", FirstName: "Nour"},
		Tokens: &Tokens{AccessToken: "at", RefreshToken: "rt"},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Load(); ok {
		t.Fatalf("expected empty slot before Save")
	}

	if err := store.Save(sample()); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	got, ok := store.Load()
	if !ok {
		t.Fatalf("expected slot to be set after Save")
	}
	if got.UserID() != "u1" || !got.Authenticated() {
		t.Fatalf("unexpected session after round trip: %+v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Fatalf("expected empty slot after Clear")
	}
}

func TestMemoryStoreNotifiesSubscribers(t *testing.T) {
	store := NewMemoryStore()

	var events []bool
	unsubscribe := store.Subscribe(func(_ Session, ok bool) {
		events = append(events, ok)
	})

	store.Save(sample())
	store.Clear()
	// 빈 슬롯에 대한 Clear 는 알림 없이 무시된다.
	store.Clear()

	if len(events) != 2 || events[0] != true || events[1] != false {
		t.Fatalf("expected [set, cleared] notifications, got %v", events)
	}

	unsubscribe()
	store.Save(sample())
	if len(events) != 2 {
		t.Fatalf("expected no notifications after unsubscribe, got %v", events)
	}
}

func TestSessionHelpers(t *testing.T) {
	var empty Session
	if empty.Authenticated() {
		t.Fatalf("zero session must not be authenticated")
	}
	if empty.UserID() != "" {
		t.Fatalf("zero session must have empty user id")
	}

	tokenOnly := Session{Tokens: &Tokens{AccessToken: "at"}}
	if !tokenOnly.Authenticated() {
		t.Fatalf("session with an access token is authenticated")
	}
	if tokenOnly.UserID() != "" {
		t.Fatalf("session without a profile has no user id")
	}
}
