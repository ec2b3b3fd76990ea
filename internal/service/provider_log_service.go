package service

import (
	"context"

	"codeleague/internal/domain"
	"codeleague/internal/logger"
	"codeleague/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderLogService records provider calls made during syncs
type ProviderLogService struct {
	repo *repository.ProviderLogRepository
}

func NewProviderLogService(db *pgxpool.Pool) *ProviderLogService {
	return &ProviderLogService{
		repo: repository.NewProviderLogRepository(db),
	}
}

// LogCall stores one provider call
func (s *ProviderLogService) LogCall(ctx context.Context, entry *domain.ProviderCallLog) error {
	return s.repo.Create(ctx, entry)
}

// Recent returns the latest calls for a user
func (s *ProviderLogService) Recent(ctx context.Context, userID int64, limit int) ([]*domain.ProviderCallLog, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}

// Prune drops logs older than days
func (s *ProviderLogService) Prune(ctx context.Context, days int) {
	n, err := s.repo.DeleteOlderThan(ctx, days)
	if err != nil {
		logger.Error("failed to prune provider call logs", "error", err)
		return
	}
	if n > 0 {
		logger.Info("pruned provider call logs", "deleted", n, "older_than_days", days)
	}
}
