package domain

import "time"

// ContextKind scopes an achievement grant to a day or a week.
type ContextKind string

const (
	ContextDaily  ContextKind = "daily"
	ContextWeekly ContextKind = "weekly"
)

// AchievementGrant is unique per (user, achievement, context kind, context key).
type AchievementGrant struct {
	ID            int64                  `db:"id" json:"id"`
	UserID        int64                  `db:"user_id" json:"user_id"`
	AchievementID string                 `db:"achievement_id" json:"achievement_id"`
	ContextKind   ContextKind            `db:"context_kind" json:"context_kind"`
	ContextKey    string                 `db:"context_key" json:"context_key"`
	AwardedAt     time.Time              `db:"awarded_at" json:"awarded_at"`
	Metadata      map[string]interface{} `db:"metadata" json:"metadata,omitempty"`
}
