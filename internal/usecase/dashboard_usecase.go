package usecase

import (
	"context"

	"chatdash/internal/domain/entity"
	"chatdash/internal/domain/repository"
	"chatdash/pkg/logger"
)

// DashboardUseCase opens the live per-connection session: presence tracking
// and the merged chat feed.
type DashboardUseCase struct {
	chatSource repository.ChatSource
	users      *UserUseCase
	batchSize  int
	presence   PresenceOptions
}

func NewDashboardUseCase(chatSource repository.ChatSource, users *UserUseCase, batchSize int, presence PresenceOptions) *DashboardUseCase {
	return &DashboardUseCase{
		chatSource: chatSource,
		users:      users,
		batchSize:  batchSize,
		presence:   presence,
	}
}

// OpenSession starts the feed for user and marks the user active. The caller
// must Close the returned session; cancelling ctx also ends the feed subscriptions.
func (uc *DashboardUseCase) OpenSession(ctx context.Context, user *entity.User, view SessionView) (*Session, error) {
	session := NewSession(user, view)

	session.presence = NewPresenceTracker(session, func(active bool) {
		if err := uc.users.UpdateActiveStatus(context.Background(), user, active); err != nil {
			logger.Error("Failed to persist presence of %s: %v", user.ID, err)
		}
		if view != nil {
			view.ShowPresence(active)
		}
	}, uc.presence)

	session.feed = NewChatFeed(session, uc.chatSource, session, uc.batchSize)
	if err := session.feed.Start(ctx); err != nil {
		session.presence.Stop()
		return nil, err
	}

	session.presence.Tick()
	return session, nil
}
