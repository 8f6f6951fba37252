package router

import (
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/handler"
	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/infrastructure/ratelimit"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	userHandler := handler.GetUserHandler()

	// first sign-in has no account yet
	e.POST("/v1/users/me", userHandler.EnsureAccount,
		authMiddleware.Authenticate,
		middleware.RateLimit(limiter, ratelimit.ActionRequest))

	users := e.Group("/v1/users", protected(authMiddleware, limiter)...)
	users.GET("/me", userHandler.GetMe)
	users.GET("", userHandler.SearchUsers)
	users.GET("/:id/last-active", userHandler.GetLastActive)
}
