package repository

import (
	"context"

	"codeleague/internal/domain"
	"codeleague/internal/leaderboard"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SocialRepository struct {
	db *pgxpool.Pool
}

func NewSocialRepository(db *pgxpool.Pool) *SocialRepository {
	return &SocialRepository{db: db}
}

// AddFriend records a one-directional edge; it is a no-op when it already exists.
func (r *SocialRepository) AddFriend(ctx context.Context, userID, friendID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2)
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`, userID, friendID)
	return err
}

func (r *SocialRepository) CreateGroup(ctx context.Context, ownerID int64, name string) (*domain.Group, error) {
	g := domain.Group{OwnerID: ownerID, Name: name}
	err := r.db.QueryRow(ctx, `
		INSERT INTO groups (owner_id, name) VALUES ($1, $2)
		RETURNING id, created_at
	`, ownerID, name).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *SocialRepository) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID)
	return err
}

// Population returns the competing users among the user, the user's friends and the
// owners and members of every group the user owns or belongs to.
func (r *SocialRepository) Population(ctx context.Context, userID int64) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `
		WITH my_groups AS (
			SELECT group_id AS id FROM group_members WHERE user_id = $1
			UNION
			SELECT id FROM groups WHERE owner_id = $1
		),
		candidates AS (
			SELECT $1::bigint AS id
			UNION
			SELECT friend_id FROM friendships WHERE user_id = $1
			UNION
			SELECT gm.user_id FROM group_members gm JOIN my_groups mg ON mg.id = gm.group_id
			UNION
			SELECT g.owner_id FROM groups g JOIN my_groups mg ON mg.id = g.id
		)
		SELECT `+userColumns+`
		FROM users
		WHERE is_competing AND id IN (SELECT id FROM candidates)
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}

// Relations loads the viewer's friendship and group edges, restricted to candidateIDs.
func (r *SocialRepository) Relations(ctx context.Context, viewerID int64, candidateIDs []int64) (leaderboard.Relations, error) {
	rel := leaderboard.Relations{
		Friends:         map[int64]bool{},
		IncomingFriends: map[int64]bool{},
		GroupPeers:      map[int64]bool{},
	}
	if len(candidateIDs) == 0 {
		return rel, nil
	}

	queries := []struct {
		sql string
		dst map[int64]bool
	}{
		{`SELECT friend_id FROM friendships WHERE user_id = $1 AND friend_id = ANY($2)`, rel.Friends},
		{`SELECT user_id FROM friendships WHERE friend_id = $1 AND user_id = ANY($2)`, rel.IncomingFriends},
		{`
			WITH my_groups AS (
				SELECT group_id AS id FROM group_members WHERE user_id = $1
				UNION
				SELECT id FROM groups WHERE owner_id = $1
			)
			SELECT gm.user_id FROM group_members gm JOIN my_groups mg ON mg.id = gm.group_id
			WHERE gm.user_id = ANY($2) AND gm.user_id <> $1
			UNION
			SELECT g.owner_id FROM groups g JOIN my_groups mg ON mg.id = g.id
			WHERE g.owner_id = ANY($2) AND g.owner_id <> $1`, rel.GroupPeers},
	}

	for _, q := range queries {
		rows, err := r.db.Query(ctx, q.sql, viewerID, candidateIDs)
		if err != nil {
			return rel, err
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return rel, err
			}
			q.dst[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return rel, err
		}
	}
	return rel, nil
}
