package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterrepo "chatdash/internal/adapter/repository"
	"chatdash/internal/domain/entity"
	"chatdash/internal/infrastructure/docstore"
	"chatdash/internal/infrastructure/ratelimit"
	apperrors "chatdash/pkg/errors"
)

func newChatUseCase(store docstore.Store, limiter *ratelimit.RateLimiter) *ChatUseCase {
	chatRepo := adapterrepo.NewChatRepository(store)
	userRepo := adapterrepo.NewUserRepository(store)
	friends := NewFriendUseCase(adapterrepo.NewFriendRepository(store), userRepo, nil)
	messages := NewMessageUseCase(adapterrepo.NewMessageRepository(store), chatRepo, nil, 0)
	return NewChatUseCase(chatRepo, userRepo, friends, messages, limiter)
}

func TestCreatePrivateChatRoomReturnsExisting(t *testing.T) {
	store := docstore.NewMemoryStore()
	a := seedUser(t, store, "a", "Ann")
	b := seedUser(t, store, "b", "Ben")
	uc := newChatUseCase(store, nil)
	ctx := context.Background()

	chat, err := uc.CreateChatRoom(ctx, CreateChatRoomInput{Type: entity.ChatTypePrivate, FirstMessage: "hey"}, a, b)
	require.NoError(t, err)
	assert.Equal(t, "Ben", chat.Name)
	assert.Equal(t, "a", chat.UserID1)
	assert.Equal(t, "b", chat.UserID2)
	assert.Equal(t, "hey", chat.LastMessage)

	again, err := uc.CreateChatRoom(ctx, CreateChatRoomInput{Type: entity.ChatTypePrivate}, a, b)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, again.ID)
	assert.Equal(t, "hey", again.LastMessage)

	found, err := uc.FindPrivateChat(ctx, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, chat.ID, found.ID)

	missing, err := uc.FindPrivateChat(ctx, "b", "a")
	require.NoError(t, err)
	assert.Nil(t, missing)

	messages, err := uc.messages.ListMessages(ctx, chat, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hey", messages[0].Text)
}

func TestCreatePrivateChatRoomFromEitherSide(t *testing.T) {
	store := docstore.NewMemoryStore()
	a := seedUser(t, store, "a", "Ann")
	b := seedUser(t, store, "b", "Ben")
	uc := newChatUseCase(store, nil)
	ctx := context.Background()

	chat, err := uc.CreateChatRoom(ctx, CreateChatRoomInput{Type: entity.ChatTypePrivate}, a, b)
	require.NoError(t, err)

	reverse, err := uc.CreateChatRoom(ctx, CreateChatRoomInput{Type: entity.ChatTypePrivate}, b, a)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, reverse.ID)
	assert.Equal(t, "a", reverse.UserID1)
	assert.Equal(t, "b", reverse.UserID2)

	docs, err := store.Query(ctx, docstore.NewQuery(entity.PrivateChatCollection))
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestCreatePrivateChatRoomPostsFirstMessageToExisting(t *testing.T) {
	store := docstore.NewMemoryStore()
	a := seedUser(t, store, "a", "Ann")
	b := seedUser(t, store, "b", "Ben")
	uc := newChatUseCase(store, nil)
	ctx := context.Background()

	chat, err := uc.CreateChatRoom(ctx, CreateChatRoomInput{Type: entity.ChatTypePrivate, FirstMessage: "hey"}, a, b)
	require.NoError(t, err)

	again, err := uc.CreateChatRoom(ctx, CreateChatRoomInput{Type: entity.ChatTypePrivate, FirstMessage: "over here"}, b, a)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, again.ID)
	assert.Equal(t, "over here", again.LastMessage)

	messages, err := uc.messages.ListMessages(ctx, chat, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	var texts, senders []string
	for _, m := range messages {
		texts = append(texts, m.Text)
		senders = append(senders, m.SenderID)
	}
	assert.ElementsMatch(t, []string{"hey", "over here"}, texts)
	assert.ElementsMatch(t, []string{"a", "b"}, senders)

	stored, err := uc.GetChat(ctx, entity.ChatTypePrivate, chat.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, "over here", stored.LastMessage)
}

func TestCreateGroupChatRoom(t *testing.T) {
	store := docstore.NewMemoryStore()
	a := seedUser(t, store, "a", "Ann")
	b := seedUser(t, store, "b", "Ben")
	uc := newChatUseCase(store, nil)

	chat, err := uc.CreateChatRoom(context.Background(), CreateChatRoomInput{Type: entity.ChatTypeGroup}, a, b)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultGroupName, chat.Name)
	assert.Equal(t, "a", chat.CreatedBy)
	assert.Equal(t, []string{"a", "b"}, chat.Members)

	stored, err := uc.GetChat(context.Background(), entity.ChatTypeGroup, chat.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, stored.Members)

	_, err = uc.GetChat(context.Background(), entity.ChatTypeGroup, chat.ID, "c")
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}

func TestCreateChatRoomValidation(t *testing.T) {
	store := docstore.NewMemoryStore()
	a := seedUser(t, store, "a", "Ann")
	b := seedUser(t, store, "b", "Ben")
	uc := newChatUseCase(store, nil)

	_, err := uc.CreateChatRoom(context.Background(), CreateChatRoomInput{Type: entity.ChatTypePrivate}, a, a)
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))

	_, err = uc.CreateChatRoom(context.Background(), CreateChatRoomInput{Type: entity.ChatTypeAll}, a, b)
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
}

func TestCreateChatRoomRateLimited(t *testing.T) {
	store := docstore.NewMemoryStore()
	a := seedUser(t, store, "a", "Ann")
	b := seedUser(t, store, "b", "Ben")
	c := seedUser(t, store, "c", "Cid")

	limiter := ratelimit.NewRateLimiter()
	limiter.SetPolicy(ratelimit.ActionCreateChat, ratelimit.Policy{Every: time.Hour, Burst: 1})
	uc := newChatUseCase(store, limiter)

	_, err := uc.CreateChatRoom(context.Background(), CreateChatRoomInput{Type: entity.ChatTypeGroup}, a, b)
	require.NoError(t, err)

	_, err = uc.CreateChatRoom(context.Background(), CreateChatRoomInput{Type: entity.ChatTypeGroup}, a, c)
	assert.True(t, apperrors.Is(err, apperrors.CodeTooManyRequests))
}

func TestOpenConversation(t *testing.T) {
	store := docstore.NewMemoryStore()
	a := seedUser(t, store, "a", "Ann")
	b := seedUser(t, store, "b", "Ben")
	seedUser(t, store, "c", "Cid")
	uc := newChatUseCase(store, nil)
	ctx := context.Background()

	_, err := uc.friends.AddFriend(ctx, b, "a")
	require.NoError(t, err)
	chat, err := uc.CreateChatRoom(ctx, CreateChatRoomInput{Type: entity.ChatTypePrivate}, b, a)
	require.NoError(t, err)

	conversation, err := uc.OpenConversation(ctx, a, "b")
	require.NoError(t, err)
	assert.True(t, conversation.Friends)
	require.NotNil(t, conversation.Chat)
	assert.Equal(t, chat.ID, conversation.Chat.ID)
	assert.Equal(t, "b", conversation.Participant.ID)

	conversation, err = uc.OpenConversation(ctx, a, "c")
	require.NoError(t, err)
	assert.False(t, conversation.Friends)
	assert.Nil(t, conversation.Chat)

	_, err = uc.OpenConversation(ctx, a, "ghost")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestListChatsMergesAndFilters(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedGroupChat(t, store, "G", "1", baseTime)
	seedPrivateChat(t, store, "P", "1", "2", baseTime.Add(time.Hour))
	uc := newChatUseCase(store, nil)
	ctx := context.Background()

	chats, err := uc.ListChats(ctx, "1", entity.ChatTypeAll, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"P", "G"}, ids(chats))

	chats, err = uc.ListChats(ctx, "1", entity.ChatTypeGroup, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"G"}, ids(chats))

	chats, err = uc.ListChats(ctx, "1", entity.ChatTypePrivate, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"P"}, ids(chats))
}
