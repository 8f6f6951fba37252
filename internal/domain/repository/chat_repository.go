package repository

import (
	"context"
	"time"

	"chatdash/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, chatType entity.ChatType, id string) (*entity.Chat, error)
	FindPrivate(ctx context.Context, userID1, userID2 string) (*entity.Chat, error)
	ListGroupChats(ctx context.Context, createdBy string, limit int) ([]*entity.Chat, error)
	ListPrivateChats(ctx context.Context, userID1 string, limit int) ([]*entity.Chat, error)
	UpdateLastMessage(ctx context.Context, chat *entity.Chat, text string, at time.Time) error
}

// ChatSource opens live chat-list subscriptions. Each call returns a function
// that cancels the subscription.
type ChatSource interface {
	SubscribeGroupChats(ctx context.Context, createdBy string, limit int, onNext func([]*entity.Chat), onError func(error)) (func(), error)
	SubscribePrivateChats(ctx context.Context, userID1 string, limit int, onNext func([]*entity.Chat), onError func(error)) (func(), error)
}
