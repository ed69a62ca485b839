package api

import (
	"context"

	"github.com/google/uuid"

	"mazad-client/httpclient"
	"mazad-client/logger"
	"mazad-client/models"
)

// chatCreatePaths 는 배포별로 경로가 다른 대화 생성 엔드포인트 후보들이다.
// 순서대로 시도해 첫 성공을 채택한다.
var chatCreatePaths = []string{"chat/create", "chat", "chat/createChat"}

// ChatAPI wraps conversation listing and creation.
type ChatAPI struct {
	http *httpclient.Client
}

// GetChats returns the user's conversations.
func (a *ChatAPI) GetChats(ctx context.Context, userID string) ([]models.Chat, error) {
	env, err := a.http.Post(ctx, "chat/getchats", map[string]string{"id": userID, "from": "client"})
	return decodeEnvelope[[]models.Chat](env, err, "get chats")
}

// Create 는 대화를 생성한다. 모든 후보 경로가 실패하면 에러 대신 로컬
// 전용 대화를 합성해 반환한다 — 이 실패 때문에 UI 가 막히면 안 된다.
// 합성된 대화는 "local-" 접두사 id 로 구분된다.
func (a *ChatAPI) Create(ctx context.Context, participantIDs []string) (models.Chat, error) {
	body := map[string]any{"users": participantIDs}

	attempts := make([]func(context.Context) (models.Chat, error), 0, len(chatCreatePaths))
	for _, p := range chatCreatePaths {
		relPath := p
		attempts = append(attempts, func(ctx context.Context) (models.Chat, error) {
			env, err := a.http.Post(ctx, relPath, body)
			return decodeEnvelope[models.Chat](env, err, "create chat")
		})
	}

	chat, err := firstOf(ctx, attempts...)
	if err != nil {
		logger.WarnWithFields("all chat creation endpoints failed, synthesizing local conversation", logger.Fields{
			"error": err.Error(),
		})
		return models.Chat{
			ID:             "local-" + uuid.New().String(),
			ParticipantIDs: participantIDs,
		}, nil
	}
	if chat.ParticipantIDs == nil {
		chat.ParticipantIDs = participantIDs
	}
	return chat, nil
}

// IsLocalChat reports whether the conversation was synthesized client-side.
func IsLocalChat(c models.Chat) bool {
	return len(c.ID) > 6 && c.ID[:6] == "local-"
}
