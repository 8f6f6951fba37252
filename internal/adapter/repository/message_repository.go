package repository

import (
	"context"

	"chatdash/internal/domain/entity"
	"chatdash/internal/domain/repository"
	"chatdash/internal/infrastructure/docstore"
	"chatdash/pkg/errors"
)

type messageRepository struct {
	store docstore.Store
}

func NewMessageRepository(store docstore.Store) repository.MessageRepository {
	return &messageRepository{
		store: store,
	}
}

func decodeMessage(collection string, doc docstore.Document) (*entity.Message, error) {
	var message entity.Message
	if err := docstore.Decode(collection, doc, &message); err != nil {
		return nil, err
	}
	message.ID = doc.ID
	return &message, nil
}

func decodeMessages(collection string, docs []docstore.Document) ([]*entity.Message, error) {
	messages := make([]*entity.Message, 0, len(docs))
	for _, doc := range docs {
		message, err := decodeMessage(collection, doc)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func recentMessagesQuery(chat *entity.Chat, limit int) docstore.Query {
	q := docstore.NewQuery(chat.MessagesCollection()).OrderBy("sentAt", docstore.Desc)
	if limit > 0 {
		q = q.WithLimit(limit)
	}
	return q
}

func (r *messageRepository) Create(ctx context.Context, chat *entity.Chat, message *entity.Message) error {
	id, err := r.store.Add(ctx, chat.MessagesCollection(), message.Fields())
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}
	message.ID = id
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, chat *entity.Chat, id string) (*entity.Message, error) {
	collection := chat.MessagesCollection()

	doc, err := r.store.Get(ctx, docstore.Ref{Collection: collection, ID: id})
	if err == docstore.ErrNotFound {
		return nil, errors.NotFound("Message", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get message", err)
	}
	return decodeMessage(collection, *doc)
}

func (r *messageRepository) ListRecent(ctx context.Context, chat *entity.Chat, limit int) ([]*entity.Message, error) {
	docs, err := r.store.Query(ctx, recentMessagesQuery(chat, limit))
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	return decodeMessages(chat.MessagesCollection(), docs)
}

// UpdateText writes the message text and edit time. sentAt is left untouched.
func (r *messageRepository) UpdateText(ctx context.Context, chat *entity.Chat, message *entity.Message) error {
	err := r.store.Update(ctx, docstore.Ref{Collection: chat.MessagesCollection(), ID: message.ID}, map[string]interface{}{
		"text":     message.Text,
		"editedAt": message.EditedAt,
	})
	if err == docstore.ErrNotFound {
		return errors.NotFound("Message", err)
	}
	if err != nil {
		return errors.Internal("Failed to update message", err)
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, chat *entity.Chat, id string) error {
	if err := r.store.Delete(ctx, docstore.Ref{Collection: chat.MessagesCollection(), ID: id}); err != nil {
		return errors.Internal("Failed to delete message", err)
	}
	return nil
}

func (r *messageRepository) Subscribe(ctx context.Context, chat *entity.Chat, limit int, onNext func([]*entity.Message), onError func(error)) (func(), error) {
	collection := chat.MessagesCollection()

	unsubscribe, err := r.store.Subscribe(ctx, recentMessagesQuery(chat, limit), func(docs []docstore.Document) {
		messages, err := decodeMessages(collection, docs)
		if err != nil {
			onError(err)
			return
		}
		onNext(messages)
	}, onError)
	if err != nil {
		return nil, errors.Internal("Failed to subscribe to messages", err)
	}
	return unsubscribe, nil
}
