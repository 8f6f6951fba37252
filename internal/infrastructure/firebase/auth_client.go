package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"chatdash/internal/usecase"
	"chatdash/pkg/errors"
)

// AuthClient verifies Firebase ID tokens and looks up Firebase users.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

func (a *AuthClient) VerifyToken(ctx context.Context, token string) (*usecase.Identity, error) {
	result, err := a.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	return identityFromToken(result), nil
}

func (a *AuthClient) GetUser(ctx context.Context, uid string) (*usecase.Identity, error) {
	record, err := a.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to look up user", err)
	}

	identity := &usecase.Identity{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
	}
	if len(record.ProviderUserInfo) > 0 {
		identity.Provider = record.ProviderUserInfo[0].ProviderID
	}
	return identity, nil
}

func identityFromToken(token *auth.Token) *usecase.Identity {
	identity := &usecase.Identity{
		UID:      token.UID,
		Provider: token.Firebase.SignInProvider,
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = name
	}
	return identity
}
