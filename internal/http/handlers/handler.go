package handlers

import (
	"context"
	"time"

	"codeleague/internal/achievement"
	"codeleague/internal/domain"
	"codeleague/internal/leaderboard"
	"codeleague/internal/syncer"
)

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type StandingsReader interface {
	Daily(ctx context.Context, viewerID int64, offsetDays int, now time.Time) (leaderboard.Standings, error)
	Weekly(ctx context.Context, viewerID int64, rangeKey string) (leaderboard.Standings, error)
}

type AchievementReader interface {
	Summary(ctx context.Context, userID int64) ([]achievement.Progress, error)
}

type Refresher interface {
	SyncUser(ctx context.Context, req syncer.SyncRequest) (syncer.UserResult, error)
}

type WalletReader interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	History(ctx context.Context, userID int64, limit int) ([]*domain.CoinLedgerEntry, error)
}

type CallLogReader interface {
	Recent(ctx context.Context, userID int64, limit int) ([]*domain.ProviderCallLog, error)
}

type RewardReader interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.DailyRewardSettlement, error)
}

type Handler struct {
	Users        UserReader
	Board        StandingsReader
	Achievements AchievementReader
	Sync         Refresher
	Wallet       WalletReader
	CallLog      CallLogReader
	Rewards      RewardReader
	// RangeKey is the weekly range served when the request does not name one.
	RangeKey string
	Now      func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// getUserID reads the id the JWT middleware stored in the gin context
func getUserID(c interface{ Get(any) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
