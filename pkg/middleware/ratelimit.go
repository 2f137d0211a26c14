package middleware

import (
	"context"
	"strconv"

	"smallbiznis-promotion/pkg/errutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
)

// Limiter is satisfied by *redis_rate.Limiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit rejects requests once the key returned by keyFn exceeds limit.
// An empty key or a limiter failure lets the request through.
func RateLimit(limiter Limiter, limit redis_rate.Limit, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit.IsZero() {
			c.Next()
			return
		}

		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			zap.L().Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed == 0 {
			c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
			Abort(c, errutil.TooManyRequest("too many requests", nil))
			return
		}
		c.Next()
	}
}
