package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// BoardStore is the read side the leaderboard ranks from: the social graph plus stats.
type BoardStore struct {
	*SocialRepository
	*StatsRepository
}

func NewBoardStore(db *pgxpool.Pool) *BoardStore {
	return &BoardStore{
		SocialRepository: NewSocialRepository(db),
		StatsRepository:  NewStatsRepository(db),
	}
}
