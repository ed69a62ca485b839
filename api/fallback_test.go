package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestFirstOfReturnsFirstSuccess(t *testing.T) {
	calls := 0
	got, err := firstOf(context.Background(),
		func(context.Context) (string, error) { calls++; return "", errors.New("404") },
		func(context.Context) (string, error) { calls++; return "second", nil },
		func(context.Context) (string, error) { calls++; return "third", nil },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "second" {
		t.Fatalf("expected second attempt's result, got %q", got)
	}
	if calls != 2 {
		t.Fatalf("expected the chain to stop at the first success, got %d calls", calls)
	}
}

func TestFirstOfReturnsLastError(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	_, err := firstOf(context.Background(),
		func(context.Context) (int, error) { return 0, errA },
		func(context.Context) (int, error) { return 0, errB },
	)
	if !errors.Is(err, errB) {
		t.Fatalf("expected the last attempt's error, got %v", err)
	}
}

func TestFallbackAttemptsShareRequestID(t *testing.T) {
	var requestIDs, spanIDs []string
	marketplace, _, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDs = append(requestIDs, r.Header.Get("X-Request-Id"))
		spanIDs = append(spanIDs, r.Header.Get("X-Span-Id"))
		w.WriteHeader(http.StatusNotFound)
	}))

	// 세 후보 경로 전부 실패하는 체인: 시도들은 하나의 request id 를
	// 공유하고 span 1..3 으로 찍혀야 한다.
	if _, err := marketplace.Chats.Create(context.Background(), []string{"u1", "admin"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requestIDs) != 3 {
		t.Fatalf("expected all three candidate paths to be tried, got %d", len(requestIDs))
	}
	if requestIDs[0] == "" {
		t.Fatalf("expected a request id on every attempt")
	}
	for i, id := range requestIDs[1:] {
		if id != requestIDs[0] {
			t.Fatalf("attempt %d used request id %q, want %q", i+2, id, requestIDs[0])
		}
	}
	want := []string{"1", "2", "3"}
	for i, span := range spanIDs {
		if span != want[i] {
			t.Fatalf("expected span ids %v, got %v", want, spanIDs)
		}
	}
}

func TestFirstOfStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := firstOf(ctx,
		func(context.Context) (int, error) { calls++; return 1, nil },
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no attempts on a cancelled context, got %d", calls)
	}
}
