package repository

import (
	"context"
	"time"

	"chatdash/internal/domain/entity"
	"chatdash/internal/domain/repository"
	"chatdash/internal/infrastructure/docstore"
	"chatdash/pkg/errors"
	"chatdash/pkg/logger"
)

type ChatRepository struct {
	store docstore.Store
}

// NewChatRepository returns a repository that also serves as the live ChatSource.
func NewChatRepository(store docstore.Store) *ChatRepository {
	return &ChatRepository{
		store: store,
	}
}

var (
	_ repository.ChatRepository = (*ChatRepository)(nil)
	_ repository.ChatSource     = (*ChatRepository)(nil)
)

func decodeChat(chatType entity.ChatType, doc docstore.Document) (*entity.Chat, error) {
	var chat entity.Chat
	if err := docstore.Decode(chatType.Collection(), doc, &chat); err != nil {
		return nil, err
	}
	chat.ID = doc.ID
	chat.Type = chatType
	return &chat, nil
}

func decodeChats(chatType entity.ChatType, docs []docstore.Document) ([]*entity.Chat, error) {
	chats := make([]*entity.Chat, 0, len(docs))
	for _, doc := range docs {
		chat, err := decodeChat(chatType, doc)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func (r *ChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	collection := chat.Type.Collection()
	if collection == "" {
		return errors.BadRequest("Unsupported chat type", nil)
	}

	id, err := r.store.Add(ctx, collection, chat.Fields())
	if err != nil {
		logger.Error("Failed to create %s chat: %v", chat.Type, err)
		return errors.Internal("Failed to create chat", err)
	}

	chat.ID = id
	return nil
}

func (r *ChatRepository) GetByID(ctx context.Context, chatType entity.ChatType, id string) (*entity.Chat, error) {
	collection := chatType.Collection()
	if collection == "" {
		return nil, errors.BadRequest("Unsupported chat type", nil)
	}

	doc, err := r.store.Get(ctx, docstore.Ref{Collection: collection, ID: id})
	if err == docstore.ErrNotFound {
		return nil, errors.NotFound("Chat", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get chat", err)
	}
	return decodeChat(chatType, *doc)
}

// FindPrivate returns nil when there is no private chat stored as (userID1, userID2).
func (r *ChatRepository) FindPrivate(ctx context.Context, userID1, userID2 string) (*entity.Chat, error) {
	q := docstore.NewQuery(entity.PrivateChatCollection).
		Where("userId1", docstore.OpEqual, userID1).
		Where("userId2", docstore.OpEqual, userID2).
		WithLimit(1)

	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to query private chats", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeChat(entity.ChatTypePrivate, docs[0])
}

func groupChatsQuery(createdBy string, limit int) docstore.Query {
	return docstore.NewQuery(entity.GroupChatCollection).
		Where("createdBy", docstore.OpEqual, createdBy).
		WithLimit(limit)
}

func privateChatsQuery(userID1 string, limit int) docstore.Query {
	return docstore.NewQuery(entity.PrivateChatCollection).
		Where("userId1", docstore.OpEqual, userID1).
		WithLimit(limit)
}

func (r *ChatRepository) ListGroupChats(ctx context.Context, createdBy string, limit int) ([]*entity.Chat, error) {
	docs, err := r.store.Query(ctx, groupChatsQuery(createdBy, limit))
	if err != nil {
		return nil, errors.Internal("Failed to list group chats", err)
	}
	return decodeChats(entity.ChatTypeGroup, docs)
}

func (r *ChatRepository) ListPrivateChats(ctx context.Context, userID1 string, limit int) ([]*entity.Chat, error) {
	docs, err := r.store.Query(ctx, privateChatsQuery(userID1, limit))
	if err != nil {
		return nil, errors.Internal("Failed to list private chats", err)
	}
	return decodeChats(entity.ChatTypePrivate, docs)
}

func (r *ChatRepository) UpdateLastMessage(ctx context.Context, chat *entity.Chat, text string, at time.Time) error {
	err := r.store.Update(ctx, docstore.Ref{Collection: chat.Type.Collection(), ID: chat.ID}, map[string]interface{}{
		"lastMessage":   text,
		"lastMessageAt": at,
	})
	if err == docstore.ErrNotFound {
		return errors.NotFound("Chat", err)
	}
	if err != nil {
		return errors.Internal("Failed to update last chat message", err)
	}

	chat.LastMessage = text
	chat.LastMessageAt = at
	return nil
}

func (r *ChatRepository) subscribe(ctx context.Context, chatType entity.ChatType, q docstore.Query, onNext func([]*entity.Chat), onError func(error)) (func(), error) {
	unsubscribe, err := r.store.Subscribe(ctx, q, func(docs []docstore.Document) {
		chats, err := decodeChats(chatType, docs)
		if err != nil {
			onError(err)
			return
		}
		onNext(chats)
	}, onError)
	if err != nil {
		return nil, errors.Internal("Failed to subscribe to chats", err)
	}
	return unsubscribe, nil
}

func (r *ChatRepository) SubscribeGroupChats(ctx context.Context, createdBy string, limit int, onNext func([]*entity.Chat), onError func(error)) (func(), error) {
	return r.subscribe(ctx, entity.ChatTypeGroup, groupChatsQuery(createdBy, limit), onNext, onError)
}

func (r *ChatRepository) SubscribePrivateChats(ctx context.Context, userID1 string, limit int, onNext func([]*entity.Chat), onError func(error)) (func(), error) {
	return r.subscribe(ctx, entity.ChatTypePrivate, privateChatsQuery(userID1, limit), onNext, onError)
}
