package session

import (
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")

	store, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if _, ok := store.Load(); ok {
		t.Fatalf("expected empty slot in a fresh database")
	}

	if err := store.Save(sample()); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	got, ok := store.Load()
	if !ok || got.UserID() != "u1" || got.Tokens.RefreshToken != "rt" {
		t.Fatalf("unexpected session after round trip: %+v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Fatalf("expected empty slot after Clear")
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")

	store, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Save(sample()); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	store.Close()

	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Load()
	if !ok || got.UserID() != "u1" {
		t.Fatalf("expected session to survive reopen, got %+v (ok=%v)", got, ok)
	}
}

func TestSQLiteStoreNotifies(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	var events []bool
	store.Subscribe(func(_ Session, ok bool) { events = append(events, ok) })

	store.Save(sample())
	store.Clear()
	store.Clear() // empty slot, no notification

	if len(events) != 2 || !events[0] || events[1] {
		t.Fatalf("expected [set, cleared] notifications, got %v", events)
	}
}
