package router

import (
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/handler"
	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/infrastructure/ratelimit"
)

// SetupChatRouter sets up chat and message routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	chatHandler := handler.GetChatHandler()
	messageHandler := handler.GetMessageHandler()

	chats := e.Group("/v1/chats", protected(authMiddleware, limiter)...)

	chats.GET("", chatHandler.ListChats)
	chats.POST("", chatHandler.CreateChat)

	chats.GET("/:type/:id/messages", messageHandler.ListMessages)
	chats.POST("/:type/:id/messages", messageHandler.SendMessage)
	chats.PUT("/:type/:id/messages/:messageId", messageHandler.EditMessage)
	chats.DELETE("/:type/:id/messages/:messageId", messageHandler.DeleteMessage)

	// Kept off /v1/chats so it cannot shadow /:type/:id/messages.
	conversations := e.Group("/v1/conversations", protected(authMiddleware, limiter)...)
	conversations.GET("/:userId", chatHandler.OpenPrivateChat)
}
