package usecase

import (
	"context"
	"time"

	"chatdash/internal/domain/entity"
	"chatdash/internal/domain/repository"
	"chatdash/internal/infrastructure/ratelimit"
	"chatdash/pkg/errors"
	"chatdash/pkg/logger"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	friends     *FriendUseCase
	messages    *MessageUseCase
	rateLimiter *ratelimit.RateLimiter
	now         func() time.Time
}

// NewChatUseCase builds the use case. rateLimiter may be nil.
func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	friends *FriendUseCase,
	messages *MessageUseCase,
	rateLimiter *ratelimit.RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		friends:     friends,
		messages:    messages,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

type CreateChatRoomInput struct {
	Type         entity.ChatType
	FirstMessage string
}

// Conversation is what opening a chat with another user resolves to. Chat is
// nil when the two users have no private chat yet.
type Conversation struct {
	Friends     bool         `json:"friends"`
	Chat        *entity.Chat `json:"chat"`
	Participant *entity.User `json:"participant"`
}

// FindPrivateChat returns the private chat stored as (user1ID, user2ID), or nil.
func (uc *ChatUseCase) FindPrivateChat(ctx context.Context, user1ID, user2ID string) (*entity.Chat, error) {
	return uc.chatRepo.FindPrivate(ctx, user1ID, user2ID)
}

// findPrivatePair looks up the private chat of two users in either order.
func (uc *ChatUseCase) findPrivatePair(ctx context.Context, userA, userB string) (*entity.Chat, error) {
	chat, err := uc.chatRepo.FindPrivate(ctx, userA, userB)
	if err != nil || chat != nil {
		return chat, err
	}
	return uc.chatRepo.FindPrivate(ctx, userB, userA)
}

// CreateChatRoom creates a chat between user1 and user2 and posts the first
// message in it. A private chat already existing for the pair, started by
// either side, is reused and the first message is posted there instead.
// Concurrent creations are not guarded.
func (uc *ChatUseCase) CreateChatRoom(ctx context.Context, input CreateChatRoomInput, user1, user2 *entity.User) (*entity.Chat, error) {
	if user1.ID == user2.ID {
		return nil, errors.BadRequest("You cannot create a chat with yourself", nil)
	}

	if input.Type == entity.ChatTypePrivate {
		existing, err := uc.findPrivatePair(ctx, user1.ID, user2.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if input.FirstMessage != "" {
				if _, err := uc.messages.SendMessage(ctx, existing, user1.ID, SendMessageInput{Text: input.FirstMessage}); err != nil {
					return nil, err
				}
			}
			return existing, nil
		}
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(user1.ID, ratelimit.ActionCreateChat); !allowed {
			logger.Warn("CreateChatRoom rate limited: user %s must wait %v", user1.ID, wait)
			return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat")
		}
	}

	now := uc.now()
	chat := &entity.Chat{
		Type:          input.Type,
		LastMessage:   input.FirstMessage,
		LastMessageAt: now,
		CreatedAt:     now,
	}

	switch input.Type {
	case entity.ChatTypeGroup:
		chat.Name = entity.DefaultGroupName
		chat.CreatedBy = user1.ID
		chat.Members = []string{user1.ID, user2.ID}
	case entity.ChatTypePrivate:
		chat.Name = user2.Fullname
		chat.UserID1 = user1.ID
		chat.UserID2 = user2.ID
	default:
		return nil, errors.BadRequest("Chat type must be group or private", nil)
	}

	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}
	logger.Info("User %s created %s chat %s with %s", user1.ID, chat.Type, chat.ID, user2.ID)

	if input.FirstMessage != "" {
		if _, err := uc.messages.SendMessage(ctx, chat, user1.ID, SendMessageInput{Text: input.FirstMessage}); err != nil {
			logger.Error("Chat %s was created but its first message failed: %v", chat.ID, err)
			return nil, err
		}
	}

	return chat, nil
}

// OpenConversation resolves the chat to show when user picks otherID, for
// example from search results.
func (uc *ChatUseCase) OpenConversation(ctx context.Context, user *entity.User, otherID string) (*Conversation, error) {
	other, err := uc.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}

	status, err := uc.friends.IsFriend(ctx, user, other)
	if err != nil {
		return nil, err
	}

	conversation := &Conversation{
		Friends:     status.Friends,
		Participant: other,
	}
	if !status.Friends {
		return conversation, nil
	}

	chat, err := uc.findPrivatePair(ctx, status.User1.ID, status.User2.ID)
	if err != nil {
		return nil, err
	}
	conversation.Chat = chat
	return conversation, nil
}

// ListChats reads the user's merged feed once and filters it by chatType.
func (uc *ChatUseCase) ListChats(ctx context.Context, userID string, chatType entity.ChatType, limit int) ([]*entity.Chat, error) {
	if limit <= 0 {
		limit = DefaultFeedBatchSize
	}

	groups, err := uc.chatRepo.ListGroupChats(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	privates, err := uc.chatRepo.ListPrivateChats(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return FilterChats(MergeChats(groups, privates), chatType), nil
}

// GetChat loads a chat the user takes part in.
func (uc *ChatUseCase) GetChat(ctx context.Context, chatType entity.ChatType, id, userID string) (*entity.Chat, error) {
	if chatType != entity.ChatTypeGroup && chatType != entity.ChatTypePrivate {
		return nil, errors.BadRequest("Chat type must be group or private", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatType, id)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(userID) {
		return nil, errors.Forbidden("You are not a member of this chat", nil)
	}
	return chat, nil
}
