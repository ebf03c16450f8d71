package middleware

import (
	"fmt"
	"strconv"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/cache"
	"baby-bliss/internal/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit allows limit requests per client IP in each fixed window.
// Cache failures let the request through.
func RateLimit(store cache.Store, name string, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())

		n, err := store.Incr(c.Request.Context(), key, window)
		if err != nil {
			logger.Error("failed to check rate limit", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(limit) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > int64(limit) {
			logger.Warn("rate limit exceeded",
				zap.String("limiter", name),
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Abort(c, apperr.TooManyRequests("Too many requests. Please try again later."))
			return
		}
		c.Next()
	}
}
