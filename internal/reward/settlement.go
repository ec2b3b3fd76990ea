// Package reward settles the previous day's rank reward for each user exactly once.
package reward

import (
	"context"
	"fmt"
	"time"

	"codeleague/internal/batch"
	"codeleague/internal/datekey"
	"codeleague/internal/domain"
	"codeleague/internal/leaderboard"
	"codeleague/internal/logger"
)

// Store persists settlements. Settle must insert the settlement row and, when coins are
// awarded, credit the balance and append the ledger entry in one transaction. It returns
// false without error when the (user, date) pair was already settled.
type Store interface {
	Exists(ctx context.Context, userID int64, dateKey string) (bool, error)
	Settle(ctx context.Context, s *domain.DailyRewardSettlement) (bool, error)
}

// Standings is the leaderboard view settlement ranks against.
type Standings interface {
	Daily(ctx context.Context, viewerID int64, offsetDays int, now time.Time) (leaderboard.Standings, error)
}

type Options struct {
	Schedule Schedule
	// BatchSize bounds how many users settle concurrently.
	BatchSize int
	OnError   func(user domain.User, err error)
}

// Result describes one user's settlement attempt.
type Result struct {
	UserID  int64
	DateKey string
	Rank    *int
	Coins   int64
	// Applied is false when the day had already been settled.
	Applied bool
}

type Settler struct {
	store     Store
	standings Standings
	schedule  Schedule
	batchSize int
	onError   func(user domain.User, err error)
}

func NewSettler(store Store, standings Standings, opts Options) *Settler {
	schedule := opts.Schedule
	if schedule == nil {
		schedule = DefaultSchedule()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	onError := opts.OnError
	if onError == nil {
		onError = func(u domain.User, err error) {
			logger.Error("reward settlement failed", "user_id", u.ID, "error", err)
		}
	}
	return &Settler{
		store:     store,
		standings: standings,
		schedule:  schedule,
		batchSize: batchSize,
		onError:   onError,
	}
}

// SettleUser settles user's yesterday, taken in the user's own timezone. The row is
// keyed on the day the board ranked the user on, which differs from the day derived
// from user when the stored timezone changed after user was loaded.
func (s *Settler) SettleUser(ctx context.Context, user domain.User, now time.Time) (Result, error) {
	dateKey := datekey.Shift(datekey.InZone(now, user.TimezoneName()), -1)
	res := Result{UserID: user.ID, DateKey: dateKey}

	done, err := s.settled(ctx, user.ID, dateKey)
	if err != nil || done {
		return res, err
	}

	standings, err := s.standings.Daily(ctx, user.ID, -1, now)
	if err != nil {
		settlementsTotal.WithLabelValues("error").Inc()
		return res, fmt.Errorf("rank %s: %w", dateKey, err)
	}
	if self, ok := standings.Self(); ok {
		res.Rank = self.Rank
		if self.PeriodKey != "" && self.PeriodKey != dateKey {
			dateKey = self.PeriodKey
			res.DateKey = dateKey
			done, err = s.settled(ctx, user.ID, dateKey)
			if err != nil || done {
				return res, err
			}
		}
	}
	res.Coins = s.schedule.Coins(res.Rank)

	applied, err := s.store.Settle(ctx, &domain.DailyRewardSettlement{
		UserID:       user.ID,
		DateKey:      dateKey,
		Rank:         res.Rank,
		CoinsAwarded: res.Coins,
	})
	if err != nil {
		settlementsTotal.WithLabelValues("error").Inc()
		return res, fmt.Errorf("settle %s: %w", dateKey, err)
	}

	res.Applied = applied
	if !applied {
		settlementsTotal.WithLabelValues("already_settled").Inc()
		return res, nil
	}
	settlementsTotal.WithLabelValues("applied").Inc()
	coinsAwardedTotal.Add(float64(res.Coins))
	return res, nil
}

func (s *Settler) settled(ctx context.Context, userID int64, dateKey string) (bool, error) {
	done, err := s.store.Exists(ctx, userID, dateKey)
	if err != nil {
		settlementsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("check settlement: %w", err)
	}
	if done {
		settlementsTotal.WithLabelValues("already_settled").Inc()
	}
	return done, nil
}

// SettleAll settles every user, isolating failures per user. It returns the results of
// the attempts that did not fail.
func (s *Settler) SettleAll(ctx context.Context, users []domain.User, now time.Time) ([]Result, error) {
	results := make([]Result, len(users))
	index := make(map[int64]int, len(users))
	for i, u := range users {
		index[u.ID] = i
	}

	_, err := batch.Run(ctx, users, func(ctx context.Context, u domain.User) error {
		res, err := s.SettleUser(ctx, u, now)
		if err != nil {
			return err
		}
		results[index[u.ID]] = res
		return nil
	}, batch.Options[domain.User]{
		BatchSize: s.batchSize,
		OnError:   s.onError,
	})

	out := results[:0]
	for _, r := range results {
		if r.UserID != 0 {
			out = append(out, r)
		}
	}
	return out, err
}
