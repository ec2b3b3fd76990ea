package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// UserRateLimit limits requests per authenticated user (not per IP) using Redis.
// scope separates the counters of different endpoints. JWT must run first.
func UserRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// Redis not configured, fail-open
			c.Next()
			return
		}

		userIDVal, exists := c.Get(UserIDKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, ok := userIDVal.(int64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}

		key := scope + "_rl:" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-UserRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-UserRateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-UserRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(scope + ":" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       scope + " rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(scope + ":" + c.FullPath()).Inc()
		c.Next()
	}
}
