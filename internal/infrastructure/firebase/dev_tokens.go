package firebase

import (
	"context"
	"strings"

	"chatdash/internal/usecase"
	"chatdash/pkg/errors"
)

const devTokenPrefix = "dev:"

// DevIdentityProvider accepts tokens of the form "dev:<uid>[:<email>[:<name>]]".
// It is only wired when the in-memory store is selected.
type DevIdentityProvider struct{}

func NewDevIdentityProvider() *DevIdentityProvider {
	return &DevIdentityProvider{}
}

func (DevIdentityProvider) VerifyToken(_ context.Context, token string) (*usecase.Identity, error) {
	if !strings.HasPrefix(token, devTokenPrefix) {
		return nil, errors.Unauthorized("Invalid or expired token", nil)
	}

	parts := strings.SplitN(strings.TrimPrefix(token, devTokenPrefix), ":", 3)
	if parts[0] == "" {
		return nil, errors.Unauthorized("Invalid or expired token", nil)
	}

	identity := &usecase.Identity{
		UID:      parts[0],
		Email:    parts[0] + "@dev.local",
		Provider: "dev",
	}
	if len(parts) > 1 && parts[1] != "" {
		identity.Email = parts[1]
	}
	if len(parts) > 2 {
		identity.DisplayName = parts[2]
	}
	return identity, nil
}

func (p DevIdentityProvider) GetUser(ctx context.Context, uid string) (*usecase.Identity, error) {
	return p.VerifyToken(ctx, devTokenPrefix+uid)
}
