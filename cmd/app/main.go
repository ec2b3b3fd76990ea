package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeleague/internal/achievement"
	"codeleague/internal/config"
	"codeleague/internal/db"
	httpServer "codeleague/internal/http"
	"codeleague/internal/http/handlers"
	"codeleague/internal/http/middleware"
	"codeleague/internal/leaderboard"
	"codeleague/internal/logger"
	"codeleague/internal/provider"
	"codeleague/internal/repository"
	"codeleague/internal/reward"
	"codeleague/internal/service"
	"codeleague/internal/syncer"
	"codeleague/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer middleware.CloseRedis()

	schedule, err := reward.LoadSchedule(cfg.RewardScheduleFile)
	if err != nil {
		logger.Fatal("invalid reward schedule", "file", cfg.RewardScheduleFile, "error", err)
	}
	logger.Info("reward schedule loaded", "ranks", len(schedule))

	userRepo := repository.NewUserRepository(dbPool)
	statsRepo := repository.NewStatsRepository(dbPool)
	wallet := service.NewWalletService(dbPool)
	callLog := service.NewProviderLogService(dbPool)

	client := provider.NewClient(provider.Options{
		BaseURL:  cfg.ProviderBaseURL,
		Timeout:  cfg.ProviderTimeout,
		CacheTTL: cfg.ProviderCacheTTL,
	})
	engine := achievement.NewEngine(repository.NewAchievementRepository(dbPool), achievement.Options{
		WeekendDays: achievement.ParseWeekendDays(cfg.WeekendDays),
	})
	board := leaderboard.NewBoard(repository.NewBoardStore(dbPool))
	settler := reward.NewSettler(service.NewRewardLedger(dbPool, wallet), board, reward.Options{
		Schedule: schedule,
	})

	hub := ws.NewHub()
	orchestrator := syncer.New(syncer.Deps{
		Client:   client,
		Users:    userRepo,
		Stats:    statsRepo,
		Engine:   engine,
		Settler:  settler,
		CallLog:  callLog,
		Notifier: hub,
	}, syncer.Options{
		Interval:    cfg.SyncInterval,
		BatchSize:   cfg.SyncBatchSize,
		BatchDelay:  cfg.SyncBatchDelay,
		WeeklyEvery: cfg.SyncWeeklyEvery,
		RangeKey:    cfg.WeeklyRangeKey,
	})

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	orchestrator.Start(rootCtx)
	go pruneCallLogs(rootCtx, callLog, cfg.ProviderLogRetentionDays)

	r := gin.New()
	r.Use(gin.Recovery())

	h := &handlers.Handler{
		Users:        userRepo,
		Board:        board,
		Achievements: engine,
		Sync:         orchestrator,
		Wallet:       wallet,
		CallLog:      callLog,
		Rewards:      repository.NewSettlementRepository(dbPool),
		RangeKey:     cfg.WeeklyRangeKey,
	}
	httpServer.RegisterRoutes(r, h, handlers.NewHealthHandler(dbPool, orchestrator, version), hub, httpServer.RouteConfig{
		AllowedOrigin:     cfg.AllowedOrigin,
		APIRateLimit:      cfg.APIRateLimit,
		APIRateWindow:     cfg.APIRateWindow,
		RefreshRateLimit:  cfg.RefreshRateLimit,
		RefreshRateWindow: cfg.RefreshRateWindow,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	orchestrator.Stop()
	stop()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// pruneCallLogs trims the provider call log once at startup and then daily.
func pruneCallLogs(ctx context.Context, logs *service.ProviderLogService, days int) {
	if days <= 0 {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		logs.Prune(ctx, days)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
