package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	adapterrepo "chatdash/internal/adapter/repository"
	"chatdash/internal/domain/entity"
	"chatdash/internal/infrastructure/docstore"
)

var baseTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: baseTime}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type selection struct {
	chatType entity.ChatType
	chats    []*entity.Chat
}

// recordingSink records every feed publication.
type recordingSink struct {
	mu         sync.Mutex
	sets       [][]*entity.Chat
	selections []selection
}

func (s *recordingSink) SetUserChats(chats []*entity.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = append(s.sets, chats)
}

func (s *recordingSink) SelectChatType(chatType entity.ChatType, chats []*entity.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections = append(s.selections, selection{chatType: chatType, chats: chats})
}

func (s *recordingSink) last() []*entity.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sets) == 0 {
		return nil
	}
	return s.sets[len(s.sets)-1]
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}

// recordingView records what a session pushes to its connection.
type recordingView struct {
	mu       sync.Mutex
	shown    []selection
	presence []bool
}

func (v *recordingView) ShowChats(chatType entity.ChatType, chats []*entity.Chat) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shown = append(v.shown, selection{chatType: chatType, chats: chats})
}

func (v *recordingView) ShowPresence(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.presence = append(v.presence, active)
}

func (v *recordingView) lastShown() selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.shown) == 0 {
		return selection{}
	}
	return v.shown[len(v.shown)-1]
}

func (v *recordingView) presenceEvents() []bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]bool(nil), v.presence...)
}

func ids(chats []*entity.Chat) []string {
	out := make([]string, 0, len(chats))
	for _, c := range chats {
		out = append(out, c.ID)
	}
	return out
}

func seedGroupChat(t *testing.T, store docstore.Store, id, createdBy string, at time.Time) {
	t.Helper()
	chat := &entity.Chat{
		Name:          entity.DefaultGroupName,
		Type:          entity.ChatTypeGroup,
		LastMessageAt: at,
		CreatedAt:     at,
		CreatedBy:     createdBy,
		Members:       []string{createdBy},
	}
	require.NoError(t, store.Create(context.Background(), docstore.Ref{Collection: entity.GroupChatCollection, ID: id}, chat.Fields()))
}

func seedPrivateChat(t *testing.T, store docstore.Store, id, userID1, userID2 string, at time.Time) {
	t.Helper()
	chat := &entity.Chat{
		Name:          userID2,
		Type:          entity.ChatTypePrivate,
		LastMessageAt: at,
		UserID1:       userID1,
		UserID2:       userID2,
	}
	require.NoError(t, store.Create(context.Background(), docstore.Ref{Collection: entity.PrivateChatCollection, ID: id}, chat.Fields()))
}

// seedUser stores a user and returns it with DocID filled in.
func seedUser(t *testing.T, store docstore.Store, uid, fullname string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:         uid,
		Username:   uid,
		Email:      uid + "@example.com",
		Fullname:   fullname,
		Status:     entity.StatusOffline,
		LastSeen:   baseTime,
		ProfilePic: entity.DefaultProfilePic,
		CreatedAt:  baseTime,
	}
	require.NoError(t, adapterrepo.NewUserRepository(store).Create(context.Background(), user))
	return user
}

type fakePresenceCache struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	status   map[string]string
}

func newFakePresenceCache() *fakePresenceCache {
	return &fakePresenceCache{
		lastSeen: make(map[string]time.Time),
		status:   make(map[string]string),
	}
}

func (c *fakePresenceCache) SetLastSeen(_ context.Context, uid string, lastSeen time.Time, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen[uid] = lastSeen
	c.status[uid] = status
	return nil
}

func (c *fakePresenceCache) GetLastSeen(_ context.Context, uid string) (time.Time, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.lastSeen[uid]
	return t, ok, nil
}
