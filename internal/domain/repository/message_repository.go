package repository

import (
	"context"

	"chatdash/internal/domain/entity"
)

type MessageRepository interface {
	// Create stores the message under chat and fills in message.ID.
	Create(ctx context.Context, chat *entity.Chat, message *entity.Message) error
	GetByID(ctx context.Context, chat *entity.Chat, id string) (*entity.Message, error)
	// ListRecent returns up to limit messages, newest first.
	ListRecent(ctx context.Context, chat *entity.Chat, limit int) ([]*entity.Message, error)
	UpdateText(ctx context.Context, chat *entity.Chat, message *entity.Message) error
	Delete(ctx context.Context, chat *entity.Chat, id string) error
	Subscribe(ctx context.Context, chat *entity.Chat, limit int, onNext func([]*entity.Message), onError func(error)) (func(), error)
}
