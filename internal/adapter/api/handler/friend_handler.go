package handler

import (
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/usecase"
	"chatdash/pkg/errors"
	"chatdash/pkg/response"
)

type FriendHandler struct {
	friendUseCase *usecase.FriendUseCase
	userUseCase   *usecase.UserUseCase
}

func NewFriendHandler(friendUseCase *usecase.FriendUseCase, userUseCase *usecase.UserUseCase) *FriendHandler {
	return &FriendHandler{
		friendUseCase: friendUseCase,
		userUseCase:   userUseCase,
	}
}

type addFriendRequest struct {
	FriendID string `json:"friend_id" validate:"required"`
}

func (h *FriendHandler) ListFriends(c echo.Context) error {
	friends, err := h.friendUseCase.ListFriends(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, friends, len(friends), 0)
}

func (h *FriendHandler) AddFriend(c echo.Context) error {
	var req addFriendRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	link, err := h.friendUseCase.AddFriend(c.Request().Context(), middleware.CurrentUser(c), req.FriendID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, link)
}

// RemoveFriend deletes the friendship link :id.
func (h *FriendHandler) RemoveFriend(c echo.Context) error {
	if err := h.friendUseCase.RemoveFriend(c.Request().Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Friend removed"})
}

// FriendStatus tells whether the signed-in user and user :id are friends.
func (h *FriendHandler) FriendStatus(c echo.Context) error {
	ctx := c.Request().Context()

	other, err := h.userUseCase.GetByID(ctx, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	status, err := h.friendUseCase.IsFriend(ctx, middleware.CurrentUser(c), other)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, status)
}
