package repository

import (
	"context"
	"errors"

	"codeleague/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStatNotFound = errors.New("stat not found")

type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// UpsertDaily writes the day's stat. A provider error never replaces an ok row, so a
// failed fetch keeps the last good total.
func (r *StatsRepository) UpsertDaily(ctx context.Context, s *domain.DailyStat) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO daily_stats (user_id, date_key, total_seconds, status, error, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date_key) DO UPDATE
		SET total_seconds = EXCLUDED.total_seconds,
		    status = EXCLUDED.status,
		    error = EXCLUDED.error,
		    fetched_at = EXCLUDED.fetched_at
		WHERE NOT (EXCLUDED.status = 'error' AND daily_stats.status = 'ok')
	`, s.UserID, s.DateKey, s.TotalSeconds, s.Status, s.Error, s.FetchedAt)
	return err
}

func (r *StatsRepository) UpsertWeekly(ctx context.Context, s *domain.WeeklyStat) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO weekly_stats (user_id, range_key, total_seconds, daily_average_seconds, status, error, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, range_key) DO UPDATE
		SET total_seconds = EXCLUDED.total_seconds,
		    daily_average_seconds = EXCLUDED.daily_average_seconds,
		    status = EXCLUDED.status,
		    error = EXCLUDED.error,
		    fetched_at = EXCLUDED.fetched_at
		WHERE NOT (EXCLUDED.status = 'error' AND weekly_stats.status = 'ok')
	`, s.UserID, s.RangeKey, s.TotalSeconds, s.DailyAverageSeconds, s.Status, s.Error, s.FetchedAt)
	return err
}

func (r *StatsRepository) GetDaily(ctx context.Context, userID int64, dateKey string) (*domain.DailyStat, error) {
	var s domain.DailyStat
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, date_key, total_seconds, status, error, fetched_at
		FROM daily_stats
		WHERE user_id = $1 AND date_key = $2
	`, userID, dateKey).Scan(&s.ID, &s.UserID, &s.DateKey, &s.TotalSeconds, &s.Status, &s.Error, &s.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DailyStatsByKey loads, for each user, the stat of that user's own date key.
func (r *StatsRepository) DailyStatsByKey(ctx context.Context, keys map[int64]string) (map[int64]domain.DailyStat, error) {
	out := make(map[int64]domain.DailyStat, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(keys))
	dates := make([]string, 0, len(keys))
	for id, key := range keys {
		ids = append(ids, id)
		dates = append(dates, key)
	}

	rows, err := r.db.Query(ctx, `
		SELECT d.id, d.user_id, d.date_key, d.total_seconds, d.status, d.error, d.fetched_at
		FROM daily_stats d
		JOIN unnest($1::bigint[], $2::text[]) AS k(user_id, date_key)
		  ON d.user_id = k.user_id AND d.date_key = k.date_key
	`, ids, dates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.DailyStat
		if err := rows.Scan(&s.ID, &s.UserID, &s.DateKey, &s.TotalSeconds, &s.Status, &s.Error, &s.FetchedAt); err != nil {
			return nil, err
		}
		out[s.UserID] = s
	}
	return out, rows.Err()
}

func (r *StatsRepository) WeeklyStats(ctx context.Context, userIDs []int64, rangeKey string) (map[int64]domain.WeeklyStat, error) {
	out := make(map[int64]domain.WeeklyStat, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, range_key, total_seconds, daily_average_seconds, status, error, fetched_at
		FROM weekly_stats
		WHERE user_id = ANY($1) AND range_key = $2
	`, userIDs, rangeKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.WeeklyStat
		if err := rows.Scan(&s.ID, &s.UserID, &s.RangeKey, &s.TotalSeconds, &s.DailyAverageSeconds,
			&s.Status, &s.Error, &s.FetchedAt); err != nil {
			return nil, err
		}
		out[s.UserID] = s
	}
	return out, rows.Err()
}
