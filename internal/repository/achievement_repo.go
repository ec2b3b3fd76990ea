package repository

import (
	"context"

	"codeleague/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AchievementRepository struct {
	db *pgxpool.Pool
}

func NewAchievementRepository(db *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// UpsertGrant inserts a grant or, for an existing context, refreshes awarded_at and
// metadata. It reports whether the row is new.
func (r *AchievementRepository) UpsertGrant(ctx context.Context, g *domain.AchievementGrant) (bool, error) {
	metaJSON, err := sonic.Marshal(g.Metadata)
	if err != nil || g.Metadata == nil {
		metaJSON = []byte("{}")
	}

	var inserted bool
	err = r.db.QueryRow(ctx, `
		INSERT INTO achievement_grants (user_id, achievement_id, context_kind, context_key, awarded_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, achievement_id, context_kind, context_key) DO UPDATE
		SET awarded_at = EXCLUDED.awarded_at,
		    metadata = EXCLUDED.metadata
		RETURNING id, (xmax = 0)
	`, g.UserID, g.AchievementID, g.ContextKind, g.ContextKey, g.AwardedAt, metaJSON).Scan(&g.ID, &inserted)
	return inserted, err
}

// ListGrants returns all of a user's grants, oldest first
func (r *AchievementRepository) ListGrants(ctx context.Context, userID int64) ([]domain.AchievementGrant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, achievement_id, context_kind, context_key, awarded_at, metadata
		FROM achievement_grants
		WHERE user_id = $1
		ORDER BY awarded_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.AchievementGrant
	for rows.Next() {
		var (
			g        domain.AchievementGrant
			metaJSON []byte
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.AchievementID, &g.ContextKind, &g.ContextKey, &g.AwardedAt, &metaJSON); err != nil {
			return nil, err
		}
		if err := sonic.Unmarshal(metaJSON, &g.Metadata); err != nil {
			g.Metadata = make(map[string]interface{})
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
