package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"codeleague/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the middleware.
// If addr is empty or the ping fails, redisClient remains nil and the limiters fail open.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		logger.Info("redis not configured, rate limiting disabled")
		return
	}
	redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed, rate limiting disabled", "addr", addr, "error", err)
		redisClient = nil
		return
	}
	logger.Info("redis rate limiter ready", "addr", addr)
}

// CloseRedis releases the shared client.
func CloseRedis() {
	if redisClient != nil {
		_ = redisClient.Close()
		redisClient = nil
	}
}

// RedisRateLimit implements a fixed-window limiter per client IP using INCR/EXPIRE.
// key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// fail-open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
