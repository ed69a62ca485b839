package chat

import (
	"testing"

	"mazad-client/models"
)

func pendingMessage(tempID, body string) models.ChatMessage {
	return models.ChatMessage{
		ID:         tempID,
		Body:       body,
		SenderID:   "u1",
		LocalState: models.MessagePending,
	}
}

func TestThreadConfirmPendingReplacesInPlace(t *testing.T) {
	thread := NewThread()
	thread.Append(models.ChatMessage{ID: "m0", Body: "earlier", LocalState: models.MessageConfirmed})
	thread.Append(pendingMessage("tmp-1", "hello"))

	confirmed := models.ChatMessage{ID: "m1", Body: "hello", SenderID: "u1", ChatID: "c1"}
	if !thread.ConfirmPending("tmp-1", "hello", confirmed) {
		t.Fatalf("expected the pending entry to be confirmed")
	}

	msgs := thread.Snapshot()
	if len(msgs) != 2 {
		t.Fatalf("confirmation must replace, not append, got %d messages", len(msgs))
	}
	if msgs[1].ID != "m1" || msgs[1].LocalState != models.MessageConfirmed {
		t.Fatalf("expected the server message in place, got %+v", msgs[1])
	}
}

func TestThreadFailPendingKeepsTempID(t *testing.T) {
	thread := NewThread()
	thread.Append(pendingMessage("tmp-1", "hello"))

	if !thread.FailPending("tmp-1", "hello", FailedSendText) {
		t.Fatalf("expected the pending entry to be failed")
	}

	msgs := thread.Snapshot()
	if msgs[0].LocalState != models.MessageFailed || msgs[0].ErrorText != FailedSendText {
		t.Fatalf("expected a failed marker with the fixed text, got %+v", msgs[0])
	}
	if msgs[0].ID != "tmp-1" {
		t.Fatalf("the failed marker must keep its temp id for later removal")
	}
}

func TestThreadTransitionsAreExclusive(t *testing.T) {
	thread := NewThread()
	thread.Append(pendingMessage("tmp-1", "hello"))

	confirmed := models.ChatMessage{ID: "m1", Body: "hello"}
	if !thread.ConfirmPending("tmp-1", "hello", confirmed) {
		t.Fatalf("expected confirmation to succeed")
	}

	// 이미 확정된 항목은 실패로도, 다시 확정으로도 전이할 수 없다.
	if thread.FailPending("tmp-1", "hello", FailedSendText) {
		t.Fatalf("a confirmed message must not transition to failed")
	}
	if thread.ConfirmPending("tmp-1", "hello", confirmed) {
		t.Fatalf("a message must not be confirmed twice")
	}
}

func TestThreadConfirmRequiresMatchingBody(t *testing.T) {
	thread := NewThread()
	thread.Append(pendingMessage("tmp-1", "hello"))

	if thread.ConfirmPending("tmp-1", "different", models.ChatMessage{ID: "m1"}) {
		t.Fatalf("confirmation must match both temp id and body")
	}
}

func TestThreadRemove(t *testing.T) {
	thread := NewThread()
	thread.Append(pendingMessage("tmp-1", "a"))
	thread.Append(pendingMessage("tmp-2", "b"))

	if !thread.Remove("tmp-1") {
		t.Fatalf("expected removal to succeed")
	}
	if thread.Remove("tmp-1") {
		t.Fatalf("expected second removal to be a no-op")
	}
	if thread.Len() != 1 || thread.Snapshot()[0].ID != "tmp-2" {
		t.Fatalf("unexpected thread after removal: %+v", thread.Snapshot())
	}
}

func TestThreadContainsID(t *testing.T) {
	thread := NewThread()
	thread.Append(models.ChatMessage{ID: "m1", Body: "x"})

	if !thread.ContainsID("m1") {
		t.Fatalf("expected m1 to be present")
	}
	if thread.ContainsID("") {
		t.Fatalf("empty ids never match")
	}
	if thread.ContainsID("m2") {
		t.Fatalf("expected m2 to be absent")
	}
}
