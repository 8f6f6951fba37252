package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"chatdash/internal/domain/entity"
	"chatdash/internal/usecase"
	"chatdash/pkg/errors"
	"chatdash/pkg/response"
)

const (
	ContextKeyUID      = "uid"
	ContextKeyIdentity = "identity"
	ContextKeyUser     = "user"
)

type AuthMiddleware struct {
	identity usecase.IdentityProvider
	users    *usecase.UserUseCase
}

func NewAuthMiddleware(identity usecase.IdentityProvider, users *usecase.UserUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		identity: identity,
		users:    users,
	}
}

// Authenticate verifies the bearer token and stores the identity in the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		// Dev tokens may carry a display name with spaces.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return response.Error(c, errors.Unauthorized("Invalid authorization format", nil))
		}

		return m.verify(c, next, parts[1])
	}
}

// AuthenticateQuery reads the token from the "token" query parameter, which
// browsers use for websocket upgrades, and falls back to the header.
func (m *AuthMiddleware) AuthenticateQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := c.QueryParam("token"); token != "" {
			return m.verify(c, next, token)
		}
		return m.Authenticate(next)(c)
	}
}

func (m *AuthMiddleware) verify(c echo.Context, next echo.HandlerFunc, token string) error {
	identity, err := m.identity.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
	}

	c.Set(ContextKeyUID, identity.UID)
	c.Set(ContextKeyIdentity, identity)
	return next(c)
}

// RequireAccount loads the signed-in user's record. It must run after Authenticate.
func (m *AuthMiddleware) RequireAccount(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, _ := c.Get(ContextKeyUID).(string)
		if uid == "" {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		user, err := m.users.GetByID(c.Request().Context(), uid)
		if err != nil {
			return response.Error(c, err)
		}

		c.Set(ContextKeyUser, user)
		return next(c)
	}
}

func CurrentIdentity(c echo.Context) *usecase.Identity {
	identity, _ := c.Get(ContextKeyIdentity).(*usecase.Identity)
	return identity
}

func CurrentUser(c echo.Context) *entity.User {
	user, _ := c.Get(ContextKeyUser).(*entity.User)
	return user
}
