package domain

import "time"

// DailyRewardSettlement records that a user's rank reward for a day was settled.
// Its (user_id, date_key) uniqueness is what makes settlement happen once.
type DailyRewardSettlement struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	DateKey      string    `db:"date_key" json:"date_key"`
	Rank         *int      `db:"rank" json:"rank"`
	CoinsAwarded int64     `db:"coins_awarded" json:"coins_awarded"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
