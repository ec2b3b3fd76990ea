package repository

import (
	"context"

	"codeleague/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderLogRepository stores provider call logs
type ProviderLogRepository struct {
	db *pgxpool.Pool
}

func NewProviderLogRepository(db *pgxpool.Pool) *ProviderLogRepository {
	return &ProviderLogRepository{db: db}
}

// Create inserts a new provider call log entry
func (r *ProviderLogRepository) Create(ctx context.Context, l *domain.ProviderCallLog) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO provider_call_logs (user_id, endpoint, status, http_status, from_cache, error, network_error)
		VALUES ($1, $2, $3, NULLIF($4, 0), $5, NULLIF($6, ''), NULLIF($7, ''))
		RETURNING id, created_at
	`, l.UserID, l.Endpoint, l.Status, l.HTTPStatus, l.FromCache, l.Error, l.NetworkError,
	).Scan(&l.ID, &l.CreatedAt)
}

// GetByUserID returns the most recent calls for a user
func (r *ProviderLogRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.ProviderCallLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, endpoint, status, COALESCE(http_status, 0), from_cache,
		       COALESCE(error, ''), COALESCE(network_error, ''), created_at
		FROM provider_call_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProviderLogs(rows)
}

// DeleteOlderThan prunes logs past the retention window
func (r *ProviderLogRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM provider_call_logs WHERE created_at < NOW() - make_interval(days => $1)`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanProviderLogs(rows pgx.Rows) ([]*domain.ProviderCallLog, error) {
	var logs []*domain.ProviderCallLog
	for rows.Next() {
		var l domain.ProviderCallLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Endpoint, &l.Status, &l.HTTPStatus, &l.FromCache,
			&l.Error, &l.NetworkError, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
