package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"chatdash/internal/adapter/api/handler"
	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/infrastructure/ratelimit"
)

func SetupMediaRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	mediaHandler := handler.GetMediaHandler()

	media := e.Group("/v1/media", protected(authMiddleware, limiter)...)
	media.POST("", mediaHandler.UploadMedia, echomw.BodyLimit("11M"))
}
