package handler

import (
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/usecase"
	"chatdash/pkg/errors"
	"chatdash/pkg/logger"
	"chatdash/pkg/response"
	"chatdash/pkg/utils"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type ensureAccountRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Fullname string `json:"fullname" validate:"omitempty,max=100"`
}

// EnsureAccount creates the signed-in user's record on first sign-in and
// returns the existing record afterwards.
func (h *UserHandler) EnsureAccount(c echo.Context) error {
	var req ensureAccountRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	fullname := req.Fullname
	if fullname == "" {
		fullname = identity.DisplayName
	}

	user, created, err := h.userUseCase.EnsureAccount(c.Request().Context(), usecase.EnsureAccountInput{
		UID:      identity.UID,
		Email:    identity.Email,
		Username: req.Username,
		Fullname: fullname,
		Provider: identity.Provider,
	})
	if err != nil {
		logger.Error("EnsureAccount for %s failed: %v", identity.UID, err)
		return response.Error(c, err)
	}

	if created {
		return response.Created(c, user)
	}
	return response.Success(c, user)
}

func (h *UserHandler) GetMe(c echo.Context) error {
	return response.Success(c, middleware.CurrentUser(c))
}

// SearchUsers lists users whose fullname starts with q, or all users when q is absent.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	user := middleware.CurrentUser(c)
	limit := utils.GetLimit(c, utils.DefaultLimit)
	ctx := c.Request().Context()

	q, hasQuery := c.QueryParams()["q"]
	if !hasQuery {
		users, err := h.userUseCase.ListUsers(ctx, limit)
		if err != nil {
			return response.Error(c, err)
		}
		return response.List(c, users, len(users), limit)
	}

	users, err := h.userUseCase.SearchByFullname(ctx, q[0], user.ID, limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, users, len(users), limit)
}

func (h *UserHandler) GetLastActive(c echo.Context) error {
	uid := c.Param("id")

	lastActive, err := h.userUseCase.LastActive(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"user_id":     uid,
		"last_active": lastActive,
	})
}
