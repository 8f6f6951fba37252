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

type FriendUseCase struct {
	friendRepo  repository.FriendRepository
	userRepo    repository.UserRepository
	rateLimiter *ratelimit.RateLimiter
	now         func() time.Time
}

// NewFriendUseCase builds the use case. rateLimiter may be nil.
func NewFriendUseCase(friendRepo repository.FriendRepository, userRepo repository.UserRepository, rateLimiter *ratelimit.RateLimiter) *FriendUseCase {
	return &FriendUseCase{
		friendRepo:  friendRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

// FriendshipStatus tells whether two users are friends. User1 and User2 follow
// the direction the link was stored in, or the query order when there is none.
type FriendshipStatus struct {
	Friends bool         `json:"friends"`
	User1   *entity.User `json:"user1"`
	User2   *entity.User `json:"user2"`
}

func (uc *FriendUseCase) AddFriend(ctx context.Context, user *entity.User, friendID string) (*entity.FriendshipLink, error) {
	if friendID == "" {
		return nil, errors.BadRequest("friend id is required", nil)
	}
	if friendID == user.ID {
		return nil, errors.BadRequest("You cannot add yourself as a friend", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(user.ID, ratelimit.ActionAddFriend); !allowed {
			logger.Warn("AddFriend rate limited: user %s must wait %v", user.ID, wait)
			return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before adding another friend")
		}
	}

	if _, err := uc.userRepo.GetByID(ctx, friendID); err != nil {
		return nil, err
	}

	link := &entity.FriendshipLink{
		UserID1:   user.ID,
		UserID2:   friendID,
		CreatedAt: uc.now(),
	}
	if err := uc.friendRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// ListFriends resolves every link touching user to the user on the other side.
func (uc *FriendUseCase) ListFriends(ctx context.Context, user *entity.User) ([]*entity.User, error) {
	links, err := uc.friendRepo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	friends := make([]*entity.User, 0, len(links))
	for _, link := range links {
		friend, err := uc.userRepo.GetByID(ctx, link.Other(user.ID))
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				logger.Warn("Friendship link %s points to a missing user", link.ID)
				continue
			}
			return nil, err
		}
		friends = append(friends, friend)
	}

	return friends, nil
}

func (uc *FriendUseCase) IsFriend(ctx context.Context, user, other *entity.User) (*FriendshipStatus, error) {
	link, err := uc.friendRepo.Find(ctx, user.ID, other.ID)
	if err != nil {
		return nil, err
	}
	if link != nil {
		return &FriendshipStatus{Friends: true, User1: user, User2: other}, nil
	}

	link, err = uc.friendRepo.Find(ctx, other.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if link != nil {
		return &FriendshipStatus{Friends: true, User1: other, User2: user}, nil
	}

	return &FriendshipStatus{Friends: false, User1: user, User2: other}, nil
}

// RemoveFriend deletes a link the user takes part in.
func (uc *FriendUseCase) RemoveFriend(ctx context.Context, user *entity.User, linkID string) error {
	link, err := uc.friendRepo.GetByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link.UserID1 != user.ID && link.UserID2 != user.ID {
		return errors.Forbidden("You are not part of this friendship", nil)
	}

	return uc.friendRepo.Delete(ctx, linkID)
}
