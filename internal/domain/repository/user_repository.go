package repository

import (
	"context"
	"time"

	"chatdash/internal/domain/entity"
)

type UserRepository interface {
	// Create stores a new user record and fills in user.DocID.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, uid string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, limit int) ([]*entity.User, error)
	SearchByFullnamePrefix(ctx context.Context, prefix string, limit int) ([]*entity.User, error)
	UpdateStatus(ctx context.Context, docID, status string, lastSeen time.Time) error
}
