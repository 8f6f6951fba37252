package router

import (
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/handler"
	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/infrastructure/ratelimit"
)

func SetupFriendRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	friendHandler := handler.GetFriendHandler()

	friends := e.Group("/v1/friends", protected(authMiddleware, limiter)...)
	friends.GET("", friendHandler.ListFriends)
	friends.POST("", friendHandler.AddFriend)
	friends.DELETE("/:id", friendHandler.RemoveFriend)
	friends.GET("/:id/status", friendHandler.FriendStatus)
}
