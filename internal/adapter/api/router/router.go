package router

import (
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/handler"
	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/infrastructure/ratelimit"
)

// Setup registers every route. Handlers must be set up beforehand.
func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter, wsHandler *handler.WebSocketHandler) {
	SetupHealthRouter(e)
	SetupUserRouter(e, authMiddleware, limiter)
	SetupFriendRouter(e, authMiddleware, limiter)
	SetupChatRouter(e, authMiddleware, limiter)
	SetupMediaRouter(e, authMiddleware, limiter)
	SetupWebSocketRouter(e, wsHandler, authMiddleware)
}

// protected is the middleware chain of routes that need a registered account.
func protected(authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		authMiddleware.Authenticate,
		middleware.RateLimit(limiter, ratelimit.ActionRequest),
		authMiddleware.RequireAccount,
	}
}
