package repository

import (
	"context"

	"codeleague/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetByUserID returns recent ledger entries for a user, newest first
func (r *LedgerRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.CoinLedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, amount, reason, meta, created_at
		 FROM coin_ledger
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLedger(rows)
}

// CreateWithTx appends an entry inside the caller's transaction. Balance changes and
// their ledger row always share one transaction.
func (r *LedgerRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, e *domain.CoinLedgerEntry) error {
	metaJSON, err := sonic.Marshal(e.Meta)
	if err != nil || e.Meta == nil {
		metaJSON = []byte("{}")
	}

	return tx.QueryRow(ctx,
		`INSERT INTO coin_ledger (user_id, amount, reason, meta)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.UserID, e.Amount, e.Reason, metaJSON,
	).Scan(&e.ID, &e.CreatedAt)
}

// SumByUser returns the total of all entries; it equals the balance when every
// mutation went through the ledger.
func (r *LedgerRepository) SumByUser(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM coin_ledger WHERE user_id = $1`, userID,
	).Scan(&sum)
	return sum, err
}

func scanLedger(rows pgx.Rows) ([]*domain.CoinLedgerEntry, error) {
	var result []*domain.CoinLedgerEntry
	for rows.Next() {
		var (
			e        domain.CoinLedgerEntry
			metaJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Reason, &metaJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			_ = sonic.Unmarshal(metaJSON, &e.Meta)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
