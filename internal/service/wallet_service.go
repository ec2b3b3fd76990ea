package service

import (
	"context"
	"errors"

	"codeleague/internal/domain"
	"codeleague/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidAmount = errors.New("invalid amount")

// WalletService owns coin balance changes. Every change writes one ledger row in the
// same transaction.
type WalletService struct {
	db         *pgxpool.Pool
	userRepo   *repository.UserRepository
	ledgerRepo *repository.LedgerRepository
}

func NewWalletService(db *pgxpool.Pool) *WalletService {
	return &WalletService{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		ledgerRepo: repository.NewLedgerRepository(db),
	}
}

// GetBalance returns user's current coin balance
func (s *WalletService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.userRepo.GetCoins(ctx, userID)
}

// History returns the user's ledger, newest first
func (s *WalletService) History(ctx context.Context, userID int64, limit int) ([]*domain.CoinLedgerEntry, error) {
	return s.ledgerRepo.GetByUserID(ctx, userID, limit)
}

// CreditWithTx adds amount inside tx and appends the matching ledger entry.
func (s *WalletService) CreditWithTx(ctx context.Context, tx pgx.Tx, userID, amount int64, reason string, meta map[string]interface{}) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.applyWithTx(ctx, tx, userID, amount, reason, meta)
}

// DebitWithTx removes amount inside tx and appends the matching ledger entry. It fails
// with repository.ErrInsufficientFunds rather than going negative.
func (s *WalletService) DebitWithTx(ctx context.Context, tx pgx.Tx, userID, amount int64, reason string, meta map[string]interface{}) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.applyWithTx(ctx, tx, userID, -amount, reason, meta)
}

// Debit is DebitWithTx in its own transaction, for purchases.
func (s *WalletService) Debit(ctx context.Context, userID, amount int64, reason string, meta map[string]interface{}) (int64, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, err := s.DebitWithTx(ctx, tx, userID, amount, reason, meta)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *WalletService) applyWithTx(ctx context.Context, tx pgx.Tx, userID, delta int64, reason string, meta map[string]interface{}) (int64, error) {
	balance, err := s.userRepo.AddCoinsWithTx(ctx, tx, userID, delta)
	if err != nil {
		return 0, err
	}

	entry := &domain.CoinLedgerEntry{
		UserID: userID,
		Amount: delta,
		Reason: reason,
		Meta:   meta,
	}
	if err := s.ledgerRepo.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, err
	}
	return balance, nil
}
