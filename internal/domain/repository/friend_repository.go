package repository

import (
	"context"

	"chatdash/internal/domain/entity"
)

type FriendRepository interface {
	// Create fails with CONFLICT when a link for the pair exists in either direction.
	Create(ctx context.Context, link *entity.FriendshipLink) error
	GetByID(ctx context.Context, id string) (*entity.FriendshipLink, error)
	// Find looks up the link stored as (userID1, userID2), direction-sensitive.
	// It returns nil when there is none.
	Find(ctx context.Context, userID1, userID2 string) (*entity.FriendshipLink, error)
	ListForUser(ctx context.Context, userID string) ([]*entity.FriendshipLink, error)
	Delete(ctx context.Context, id string) error
}
