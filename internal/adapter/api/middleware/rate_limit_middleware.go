package middleware

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"chatdash/internal/infrastructure/ratelimit"
	"chatdash/pkg/logger"
)

// RateLimit throttles requests per signed-in user, or per client IP before
// authentication, using the limiter's policy for action.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, _ := c.Get(ContextKeyUID).(string)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			if allowed, wait := limiter.Allow(key, action); !allowed {
				logger.Warn("RATE LIMIT: %s blocked on %s (retry in %v)", key, action, wait)

				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "Rate limit exceeded",
					"retry_after": int(math.Ceil(wait.Seconds())),
				})
			}

			return next(c)
		}
	}
}
