package router

import (
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/handler"
	"chatdash/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	// browsers cannot set headers on upgrade requests, so the token may come as ?token=
	e.GET("/ws", wsHandler.HandleWebSocket, authMiddleware.AuthenticateQuery, authMiddleware.RequireAccount)
}
