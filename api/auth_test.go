package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mazad-client/config"
	"mazad-client/httpclient"
	"mazad-client/session"
)

func newTestAPI(t *testing.T, handler http.Handler) (*API, session.Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	client := httpclient.New(config.APIConfig{BaseURL: srv.URL, TimeoutMS: 2000}, store)
	return New(client, store), store, srv
}

func TestSignInSavesSession(t *testing.T) {
	marketplace, store, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"user": {"_id": "u1", "email": "u1@example.com"},
			"session": {"access_token": "at-1", "refresh_token": "rt-1"}
		}`))
	}))

	sess, err := marketplace.Auth.SignIn(context.Background(), SignInRequest{Email: "u1@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.UserID() != "u1" || sess.Tokens.AccessToken != "at-1" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	persisted, ok := store.Load()
	if !ok || persisted.Tokens.RefreshToken != "rt-1" {
		t.Fatalf("expected session to be persisted, got %+v (ok=%v)", persisted, ok)
	}
}

func TestSignInAcceptsNestedDataBody(t *testing.T) {
	marketplace, _, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {
			"user": {"_id": "u2"},
			"session": {"access_token": "at-2", "refresh_token": "rt-2"}
		}}`))
	}))

	sess, err := marketplace.Auth.SignIn(context.Background(), SignInRequest{Email: "u2@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.UserID() != "u2" {
		t.Fatalf("expected nested body to be accepted, got %+v", sess)
	}
}

func TestSignInSurfacesServerMessage(t *testing.T) {
	marketplace, store, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
	}))

	_, err := marketplace.Auth.SignIn(context.Background(), SignInRequest{Email: "u1@example.com", Password: "wrong"})
	if err == nil {
		t.Fatalf("expected an error for rejected credentials")
	}
	if !strings.Contains(err.Error(), "Invalid email or password") {
		t.Fatalf("expected the server message in the error, got %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Fatalf("no session must be saved on a failed sign-in")
	}
}

func TestRefreshKeepsProfile(t *testing.T) {
	marketplace, store, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/refresh" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"session": {"access_token": "at-new", "refresh_token": "rt-new"}}`))
	}))

	store.Save(session.Session{
		User:   &session.UserProfile{ID: "u1", Email: "u1@example.com"},
		Tokens: &session.Tokens{AccessToken: "at-old", RefreshToken: "rt-old"},
	})

	refreshed, err := marketplace.Auth.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed.Tokens.AccessToken != "at-new" {
		t.Fatalf("expected rotated tokens, got %+v", refreshed.Tokens)
	}
	if refreshed.UserID() != "u1" {
		t.Fatalf("expected the stored profile to survive the refresh, got %+v", refreshed.User)
	}
}

func TestRefreshWithoutTokenFails(t *testing.T) {
	marketplace, _, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected without a refresh token")
	}))

	if _, err := marketplace.Auth.Refresh(context.Background()); err == nil {
		t.Fatalf("expected an error when no refresh token is stored")
	}
}

func TestSignOutClearsSession(t *testing.T) {
	marketplace, store, _ := newTestAPI(t, http.NewServeMux())

	store.Save(session.Session{Tokens: &session.Tokens{AccessToken: "at"}})
	if err := marketplace.Auth.SignOut(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Fatalf("expected session to be cleared")
	}
}
