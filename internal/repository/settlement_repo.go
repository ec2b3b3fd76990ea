package repository

import (
	"context"
	"errors"

	"codeleague/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSettlementNotFound = errors.New("settlement not found")

type SettlementRepository struct {
	db *pgxpool.Pool
}

func NewSettlementRepository(db *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{db: db}
}

func (r *SettlementRepository) Exists(ctx context.Context, userID int64, dateKey string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM daily_reward_settlements WHERE user_id = $1 AND date_key = $2)`,
		userID, dateKey,
	).Scan(&exists)
	return exists, err
}

// CreateWithTx inserts the settlement row. Its (user_id, date_key) unique constraint
// fails the insert for a day that is already settled.
func (r *SettlementRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, s *domain.DailyRewardSettlement) error {
	return tx.QueryRow(ctx, `
		INSERT INTO daily_reward_settlements (user_id, date_key, rank, coins_awarded)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, s.UserID, s.DateKey, s.Rank, s.CoinsAwarded).Scan(&s.ID, &s.CreatedAt)
}

func (r *SettlementRepository) Get(ctx context.Context, userID int64, dateKey string) (*domain.DailyRewardSettlement, error) {
	var s domain.DailyRewardSettlement
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, date_key, rank, coins_awarded, created_at
		FROM daily_reward_settlements
		WHERE user_id = $1 AND date_key = $2
	`, userID, dateKey).Scan(&s.ID, &s.UserID, &s.DateKey, &s.Rank, &s.CoinsAwarded, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSettlementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns a user's settlements, newest day first
func (r *SettlementRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.DailyRewardSettlement, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, date_key, rank, coins_awarded, created_at
		FROM daily_reward_settlements
		WHERE user_id = $1
		ORDER BY date_key DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.DailyRewardSettlement
	for rows.Next() {
		var s domain.DailyRewardSettlement
		if err := rows.Scan(&s.ID, &s.UserID, &s.DateKey, &s.Rank, &s.CoinsAwarded, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &s)
	}
	return res, rows.Err()
}
