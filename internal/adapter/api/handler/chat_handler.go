package handler

import (
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/domain/entity"
	"chatdash/internal/usecase"
	"chatdash/pkg/errors"
	"chatdash/pkg/response"
	"chatdash/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
	userUseCase *usecase.UserUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, userUseCase *usecase.UserUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		userUseCase: userUseCase,
	}
}

type createChatRequest struct {
	Type         string `json:"type" validate:"required,oneof=group private"`
	UserID       string `json:"user_id" validate:"required"`
	FirstMessage string `json:"first_message" validate:"max=2000"`
}

// ListChats returns the signed-in user's merged chat list, newest first,
// filtered by the "type" query parameter.
func (h *ChatHandler) ListChats(c echo.Context) error {
	user := middleware.CurrentUser(c)
	chatType := entity.ParseChatType(c.QueryParam("type"))
	limit := utils.GetLimit(c, usecase.DefaultFeedBatchSize)

	chats, err := h.chatUseCase.ListChats(c.Request().Context(), user.ID, chatType, limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, chats, len(chats), limit)
}

func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ctx := c.Request().Context()
	other, err := h.userUseCase.GetByID(ctx, req.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.CreateChatRoom(ctx, usecase.CreateChatRoomInput{
		Type:         entity.ChatType(req.Type),
		FirstMessage: req.FirstMessage,
	}, middleware.CurrentUser(c), other)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, chat)
}

// OpenPrivateChat resolves the conversation with user :userId.
func (h *ChatHandler) OpenPrivateChat(c echo.Context) error {
	conversation, err := h.chatUseCase.OpenConversation(c.Request().Context(), middleware.CurrentUser(c), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conversation)
}
