package service

import (
	"context"

	"codeleague/internal/db"
	"codeleague/internal/domain"
	"codeleague/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RewardLedger is the transactional store behind daily reward settlement.
type RewardLedger struct {
	db          *pgxpool.Pool
	settlements *repository.SettlementRepository
	wallet      *WalletService
}

func NewRewardLedger(pool *pgxpool.Pool, wallet *WalletService) *RewardLedger {
	return &RewardLedger{
		db:          pool,
		settlements: repository.NewSettlementRepository(pool),
		wallet:      wallet,
	}
}

func (l *RewardLedger) Exists(ctx context.Context, userID int64, dateKey string) (bool, error) {
	return l.settlements.Exists(ctx, userID, dateKey)
}

// Settle inserts the settlement row and credits any coins in one transaction. A unique
// violation on the settlement means another run got there first; that returns false
// with no error.
func (l *RewardLedger) Settle(ctx context.Context, s *domain.DailyRewardSettlement) (bool, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := l.settlements.CreateWithTx(ctx, tx, s); err != nil {
		if db.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	if s.CoinsAwarded > 0 {
		meta := map[string]interface{}{
			"date_key": s.DateKey,
			"rank":     s.Rank,
		}
		if _, err := l.wallet.CreditWithTx(ctx, tx, s.UserID, s.CoinsAwarded, domain.LedgerReasonDailyRankReward, meta); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if db.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
