package usecase

import (
	"sync"

	"chatdash/internal/domain/entity"
)

// SessionView is the connection a session pushes its state to.
type SessionView interface {
	ShowChats(chatType entity.ChatType, chats []*entity.Chat)
	ShowPresence(active bool)
}

// Session is the state of one signed-in connection. It owns the presence
// tracker and the chat feed of that connection and tears both down on Close.
type Session struct {
	User *entity.User
	view SessionView

	mu       sync.RWMutex
	chats    []*entity.Chat
	selected entity.ChatType

	presence *PresenceTracker
	feed     *ChatFeed
}

func NewSession(user *entity.User, view SessionView) *Session {
	return &Session{
		User:     user,
		view:     view,
		selected: entity.ChatTypeAll,
	}
}

// UserID returns the identity the session acts for, or "" when signed out.
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}

// SetUserChats stores the latest merged feed.
func (s *Session) SetUserChats(chats []*entity.Chat) {
	s.mu.Lock()
	s.chats = chats
	s.mu.Unlock()
}

// SelectChatType makes chatType the visible selection and pushes the matching chats.
func (s *Session) SelectChatType(chatType entity.ChatType, chats []*entity.Chat) {
	chatType = entity.ParseChatType(string(chatType))
	visible := FilterChats(chats, chatType)

	s.mu.Lock()
	s.selected = chatType
	s.mu.Unlock()

	if s.view != nil {
		s.view.ShowChats(chatType, visible)
	}
}

// Select re-filters the current feed for chatType.
func (s *Session) Select(chatType entity.ChatType) {
	s.SelectChatType(chatType, s.Chats())
}

func (s *Session) SelectedChatType() entity.ChatType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *Session) Chats() []*entity.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chats
}

// VisibleChats returns the current feed filtered by the selected type.
func (s *Session) VisibleChats() []*entity.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterChats(s.chats, s.selected)
}

func (s *Session) Presence() *PresenceTracker {
	return s.presence
}

// Close stops the presence timer and cancels the feed subscriptions.
func (s *Session) Close() {
	if s.presence != nil {
		s.presence.Stop()
	}
	if s.feed != nil {
		s.feed.Stop()
	}
}
