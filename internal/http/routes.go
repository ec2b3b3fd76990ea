package http

import (
	"time"

	"codeleague/internal/http/handlers"
	"codeleague/internal/http/middleware"
	"codeleague/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteConfig carries the limits and origin policy for RegisterRoutes.
type RouteConfig struct {
	AllowedOrigin string

	APIRateLimit  int
	APIRateWindow time.Duration

	RefreshRateLimit  int
	RefreshRateWindow time.Duration
}

func (c RouteConfig) withDefaults() RouteConfig {
	if c.APIRateLimit <= 0 {
		c.APIRateLimit = 120
	}
	if c.APIRateWindow <= 0 {
		c.APIRateWindow = time.Minute
	}
	if c.RefreshRateLimit <= 0 {
		c.RefreshRateLimit = 3
	}
	if c.RefreshRateWindow <= 0 {
		c.RefreshRateWindow = time.Minute
	}
	return c
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, cfg RouteConfig) {
	cfg = cfg.withDefaults()

	r.Use(CORS(cfg.AllowedOrigin))

	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	v1.GET("/achievements", h.AchievementCatalog)

	auth := v1.Group("")
	auth.Use(middleware.JWT())
	{
		auth.GET("/leaderboard/today", h.DailyLeaderboard)
		auth.GET("/leaderboard/weekly", h.WeeklyLeaderboard)
		auth.GET("/me/achievements", h.MyAchievements)
		auth.GET("/me/wallet", h.MyWallet)
		auth.GET("/me/rewards", h.MyRewards)
		auth.GET("/me/provider-calls", h.MyProviderCalls)
		auth.POST("/me/refresh",
			middleware.UserRateLimit("refresh", cfg.RefreshRateLimit, cfg.RefreshRateWindow),
			h.Refresh)
	}

	// Live sync events
	r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigin))
}

// CORS answers preflight requests and echoes the origin when it is allowed.
// "*" or an empty allowedOrigin allows every origin.
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowedOrigin == "" || allowedOrigin == "*" || origin == allowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
