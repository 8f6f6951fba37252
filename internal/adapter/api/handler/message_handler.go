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

type MessageHandler struct {
	messageUseCase *usecase.MessageUseCase
	chatUseCase    *usecase.ChatUseCase
}

func NewMessageHandler(messageUseCase *usecase.MessageUseCase, chatUseCase *usecase.ChatUseCase) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
		chatUseCase:    chatUseCase,
	}
}

type sendMessageRequest struct {
	Text     string `json:"text" validate:"max=2000"`
	Type     string `json:"type" validate:"omitempty,oneof=text image video audio file"`
	MediaURL string `json:"media_url" validate:"omitempty,url"`
}

type editMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// chat loads the chat addressed by :type/:id for the signed-in user.
func (h *MessageHandler) chat(c echo.Context) (*entity.Chat, error) {
	user := middleware.CurrentUser(c)
	return h.chatUseCase.GetChat(c.Request().Context(), entity.ChatType(c.Param("type")), c.Param("id"), user.ID)
}

// ListMessages returns the latest messages of the chat, newest first.
func (h *MessageHandler) ListMessages(c echo.Context) error {
	chat, err := h.chat(c)
	if err != nil {
		return response.Error(c, err)
	}

	limit := utils.GetLimit(c, usecase.DefaultFeedBatchSize)
	messages, err := h.messageUseCase.ListMessages(c.Request().Context(), chat, limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, messages, len(messages), limit)
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chat(c)
	if err != nil {
		return response.Error(c, err)
	}

	message, err := h.messageUseCase.SendMessage(c.Request().Context(), chat, middleware.CurrentUser(c).ID, usecase.SendMessageInput{
		Text:     req.Text,
		Type:     req.Type,
		MediaURL: req.MediaURL,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *MessageHandler) EditMessage(c echo.Context) error {
	var req editMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chat(c)
	if err != nil {
		return response.Error(c, err)
	}

	message, err := h.messageUseCase.EditMessageByID(c.Request().Context(), chat, c.Param("messageId"), middleware.CurrentUser(c).ID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, message)
}

func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	chat, err := h.chat(c)
	if err != nil {
		return response.Error(c, err)
	}

	message, err := h.messageUseCase.DeleteMessageByID(c.Request().Context(), chat, c.Param("messageId"), middleware.CurrentUser(c).ID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, message)
}
