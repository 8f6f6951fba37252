package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatdash/internal/domain/entity"
	"chatdash/internal/domain/repository"
	"chatdash/internal/infrastructure/ratelimit"
	"chatdash/pkg/errors"
	"chatdash/pkg/logger"
)

const DefaultEditWindow = 5 * time.Minute

type MessageUseCase struct {
	messageRepo repository.MessageRepository
	chatRepo    repository.ChatRepository
	rateLimiter *ratelimit.RateLimiter
	editWindow  time.Duration
	now         func() time.Time
}

// NewMessageUseCase builds the use case. rateLimiter may be nil; a
// non-positive editWindow falls back to DefaultEditWindow.
func NewMessageUseCase(messageRepo repository.MessageRepository, chatRepo repository.ChatRepository, rateLimiter *ratelimit.RateLimiter, editWindow time.Duration) *MessageUseCase {
	if editWindow <= 0 {
		editWindow = DefaultEditWindow
	}

	return &MessageUseCase{
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		rateLimiter: rateLimiter,
		editWindow:  editWindow,
		now:         time.Now,
	}
}

type SendMessageInput struct {
	Text     string
	Type     string
	MediaURL string
}

// SendMessage stores the message and then moves the chat's last message to it.
// The two writes are not atomic.
func (uc *MessageUseCase) SendMessage(ctx context.Context, chat *entity.Chat, senderID string, input SendMessageInput) (*entity.Message, error) {
	if !chat.HasMember(senderID) {
		return nil, errors.Forbidden("You are not a member of this chat", nil)
	}

	text := strings.TrimSpace(input.Text)
	if text == "" && input.MediaURL == "" {
		return nil, errors.BadRequest("Message text or media is required", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage); !allowed {
			logger.Warn("SendMessage rate limited: user %s must wait %v", senderID, wait)
			return nil, errors.TooManyRequests("Rate limit exceeded. Please slow down")
		}
	}

	messageType := input.Type
	if messageType == "" {
		messageType = entity.MessageTypeText
	}

	message := &entity.Message{
		ChatID:   chat.ID,
		SenderID: senderID,
		Text:     text,
		MediaURL: input.MediaURL,
		SentAt:   uc.now(),
		Type:     messageType,
	}

	if err := uc.messageRepo.Create(ctx, chat, message); err != nil {
		return nil, err
	}

	if err := uc.chatRepo.UpdateLastMessage(ctx, chat, message.Text, message.SentAt); err != nil {
		logger.Error("Failed to update last message of chat %s: %v", chat.ID, err)
	}

	return message, nil
}

func (uc *MessageUseCase) ListMessages(ctx context.Context, chat *entity.Chat, limit int) ([]*entity.Message, error) {
	return uc.messageRepo.ListRecent(ctx, chat, limit)
}

// SubscribeMessages streams the newest limit messages of chat, newest first.
func (uc *MessageUseCase) SubscribeMessages(ctx context.Context, chat *entity.Chat, limit int, onNext func([]*entity.Message), onError func(error)) (func(), error) {
	return uc.messageRepo.Subscribe(ctx, chat, limit, onNext, onError)
}

// findMutable returns the index of the first message with id, provided userID
// sent it and it is still inside the edit window at now.
func findMutable(messages []*entity.Message, id, userID string, now time.Time, window time.Duration) (int, error) {
	for i, message := range messages {
		if message.ID != id {
			continue
		}
		if message.SenderID != userID {
			return -1, errors.Forbidden("You can only change your own messages", nil)
		}
		if now.After(message.EditableUntil(window)) {
			return -1, errors.EditWindowExpired(fmt.Sprintf("Messages can only be changed within %v of sending", window))
		}
		return i, nil
	}
	return -1, errors.NotFound("Message", nil)
}

// EditMessage changes the text of message id inside messages, persisting the
// change and updating the in-memory copy.
func (uc *MessageUseCase) EditMessage(ctx context.Context, chat *entity.Chat, messages []*entity.Message, id, userID, text string) ([]*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}

	now := uc.now()
	i, err := findMutable(messages, id, userID, now, uc.editWindow)
	if err != nil {
		return nil, err
	}

	edited := *messages[i]
	edited.Text = text
	edited.EditedAt = now

	if err := uc.messageRepo.UpdateText(ctx, chat, &edited); err != nil {
		return nil, err
	}

	messages[i] = &edited
	return messages, nil
}

// EditMessageByID loads message id and edits it.
func (uc *MessageUseCase) EditMessageByID(ctx context.Context, chat *entity.Chat, id, userID, text string) (*entity.Message, error) {
	message, err := uc.messageRepo.GetByID(ctx, chat, id)
	if err != nil {
		return nil, err
	}

	messages, err := uc.EditMessage(ctx, chat, []*entity.Message{message}, id, userID, text)
	if err != nil {
		return nil, err
	}
	return messages[0], nil
}

// DeleteMessage removes message id and returns the deleted message.
func (uc *MessageUseCase) DeleteMessage(ctx context.Context, chat *entity.Chat, messages []*entity.Message, id, userID string) (*entity.Message, error) {
	i, err := findMutable(messages, id, userID, uc.now(), uc.editWindow)
	if err != nil {
		return nil, err
	}

	if err := uc.messageRepo.Delete(ctx, chat, id); err != nil {
		return nil, err
	}
	return messages[i], nil
}

func (uc *MessageUseCase) DeleteMessageByID(ctx context.Context, chat *entity.Chat, id, userID string) (*entity.Message, error) {
	message, err := uc.messageRepo.GetByID(ctx, chat, id)
	if err != nil {
		return nil, err
	}
	return uc.DeleteMessage(ctx, chat, []*entity.Message{message}, id, userID)
}
