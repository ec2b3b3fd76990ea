package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"codeleague/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Provider
	ProviderBaseURL  string
	ProviderTimeout  time.Duration
	ProviderCacheTTL time.Duration
	WeeklyRangeKey   string

	// Sync
	SyncInterval    time.Duration
	SyncBatchSize   int
	SyncBatchDelay  time.Duration
	SyncWeeklyEvery int
	WeekendDays     string

	// Per-IP limit on /api/v1
	APIRateLimit  int
	APIRateWindow time.Duration

	// Manual refresh limit per user
	RefreshRateLimit  int
	RefreshRateWindow time.Duration

	RewardScheduleFile       string
	ProviderLogRetentionDays int
}

// Load reads the environment (and a .env file when present)
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	return &Config{
		AppPort:       envString("APP_PORT", "8080"),
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		AllowedOrigin: envString("ALLOWED_ORIGIN", "*"),

		LogLevel: envString("LOG_LEVEL", "info"),
		LogJSON:  envBool("LOG_JSON", false),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		ProviderBaseURL:  envString("PROVIDER_BASE_URL", "https://wakatime.com/api/v1"),
		ProviderTimeout:  envSeconds("PROVIDER_TIMEOUT_SECONDS", 10),
		ProviderCacheTTL: envSeconds("PROVIDER_CACHE_TTL_SECONDS", 120),
		WeeklyRangeKey:   envString("WEEKLY_RANGE_KEY", "last_7_days"),

		SyncInterval:    envSeconds("SYNC_INTERVAL_SECONDS", 120),
		SyncBatchSize:   envInt("SYNC_BATCH_SIZE", 5),
		SyncBatchDelay:  time.Duration(envInt("SYNC_BATCH_DELAY_MS", 1000)) * time.Millisecond,
		SyncWeeklyEvery: envInt("SYNC_WEEKLY_EVERY", 5),
		WeekendDays:     envString("WEEKEND_DAYS", "fri,sat,sun"),

		APIRateLimit:  envInt("API_RATE_LIMIT", 120),
		APIRateWindow: envSeconds("API_RATE_WINDOW_SECONDS", 60),

		RefreshRateLimit:  envInt("REFRESH_RATE_LIMIT", 3),
		RefreshRateWindow: envSeconds("REFRESH_RATE_WINDOW_SECONDS", 60),

		RewardScheduleFile:       os.Getenv("REWARD_SCHEDULE_FILE"),
		ProviderLogRetentionDays: envInt("PROVIDER_LOG_RETENTION_DAYS", 14),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt falls back to def for negative or non-numeric values.
func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logger.Warn("ignoring invalid config value", "key", key, "value", v)
		return def
	}
	return n
}

func envSeconds(key string, def int) time.Duration {
	n := envInt(key, def)
	if n == 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
