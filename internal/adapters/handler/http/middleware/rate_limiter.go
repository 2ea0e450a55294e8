package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit describes one fixed window quota. Scope namespaces the Redis
// keys so several limiters can share a database.
type RateLimit struct {
	Scope  string
	Limit  int
	Window time.Duration
}

type rateLimitResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after_s"`
}

// clientKey identifies the caller: the authenticated user when the auth
// middleware already ran, the client IP otherwise.
func clientKey(c *gin.Context) string {
	if userID, ok := GetUserID(c); ok {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

// RateLimiter counts requests per client in fixed windows kept in Redis.
// Counting happens in one MULTI round trip. If Redis cannot be reached the
// request is let through.
func RateLimiter(rdb redis.Cmdable, rl RateLimit) gin.HandlerFunc {
	limit := int64(rl.Limit)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "ratelimit:" + rl.Scope + ":" + clientKey(c)

		var incr *redis.IntCmd
		var ttl *redis.DurationCmd
		_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, rl.Window)
			ttl = pipe.TTL(ctx, key)
			return nil
		})
		if err != nil {
			zap.L().Warn("rate limiter unavailable", zap.String("scope", rl.Scope), zap.Error(err))
			c.Next()
			return
		}

		count := incr.Val()
		reset := ttl.Val()
		if reset <= 0 {
			reset = rl.Window
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, limit-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

		if count > limit {
			retry := int(reset.Round(time.Second).Seconds())
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, rateLimitResponse{
				Error:      "too many requests",
				RetryAfter: retry,
			})
			return
		}

		c.Next()
	}
}
