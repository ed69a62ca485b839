package api

import (
	"context"
	"path"

	"mazad-client/httpclient"
	"mazad-client/models"
)

// messageCreatePaths 는 메시지 전송 엔드포인트 후보들이다. chat 생성과 달리
// 전부 실패하면 에러를 그대로 돌려준다: 낙관적 전송 레이어가 해당 메시지를
// Failed 마커로 바꿔야 하기 때문이다.
var messageCreatePaths = []string{"message/create", "message/send", "chat/message"}

// MessageAPI wraps per-conversation message endpoints.
type MessageAPI struct {
	http *httpclient.Client
}

// GetAll returns a conversation's messages, trying the legacy path first.
func (a *MessageAPI) GetAll(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	return firstOf(ctx,
		func(ctx context.Context) ([]models.ChatMessage, error) {
			env, err := a.http.Get(ctx, path.Join("message", "getAll", chatID), nil)
			return decodeEnvelope[[]models.ChatMessage](env, err, "get messages")
		},
		func(ctx context.Context) ([]models.ChatMessage, error) {
			env, err := a.http.Get(ctx, path.Join("chat", "messages", chatID), nil)
			return decodeEnvelope[[]models.ChatMessage](env, err, "get messages")
		},
	)
}

// Create sends a message, trying each candidate path in order and returning
// the server-confirmed message from the first success.
func (a *MessageAPI) Create(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	attempts := make([]func(context.Context) (models.ChatMessage, error), 0, len(messageCreatePaths))
	for _, p := range messageCreatePaths {
		relPath := p
		attempts = append(attempts, func(ctx context.Context) (models.ChatMessage, error) {
			env, err := a.http.Post(ctx, relPath, msg)
			return decodeEnvelope[models.ChatMessage](env, err, "send message")
		})
	}
	return firstOf(ctx, attempts...)
}

// MarkRead marks every message of one conversation as read.
func (a *MessageAPI) MarkRead(ctx context.Context, chatID string) error {
	env, err := a.http.Patch(ctx, path.Join("message", "mark-read", chatID), nil)
	return checkEnvelope(env, err, "mark read")
}

// MarkChatRead marks a conversation read for the given user.
func (a *MessageAPI) MarkChatRead(ctx context.Context, chatID, userID string) error {
	env, err := a.http.Post(ctx, "message/mark-chat-read", map[string]string{
		"idChat": chatID,
		"user":   userID,
	})
	return checkEnvelope(env, err, "mark chat read")
}

// UnreadCount returns the number of unread messages for a user.
func (a *MessageAPI) UnreadCount(ctx context.Context, userID string) (int, error) {
	env, err := a.http.Get(ctx, path.Join("message", "unread-messages", userID), nil)
	type countBody struct {
		Count int `json:"count"`
	}
	body, err2 := decodeEnvelope[countBody](env, err, "unread messages")
	return body.Count, err2
}
