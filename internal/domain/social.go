package domain

import "time"

// Friendship is a directed edge; visibility requires both directions.
type Friendship struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	FriendID  int64     `db:"friend_id" json:"friend_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Group struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
