package usecase

import (
	"context"
	"io"
	"time"
)

// Identity is what the identity provider knows about a verified token.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Provider    string
}

type IdentityProvider interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
	GetUser(ctx context.Context, uid string) (*Identity, error)
}

type PresenceCache interface {
	SetLastSeen(ctx context.Context, uid string, lastSeen time.Time, status string) error
	GetLastSeen(ctx context.Context, uid string) (time.Time, bool, error)
}

type MediaStorage interface {
	UploadFile(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
}
