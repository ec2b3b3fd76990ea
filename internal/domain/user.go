package domain

import "time"

// Visibility controls who may see a user's stats on a leaderboard.
type Visibility string

const (
	VisibilityEveryone Visibility = "everyone"
	VisibilityFriends  Visibility = "friends"
	VisibilityNoOne    Visibility = "no_one"
)

type User struct {
	ID                 int64      `db:"id" json:"id"`
	Username           string     `db:"username" json:"username"`
	ProviderCredential string     `db:"provider_credential" json:"-"`
	Timezone           *string    `db:"timezone" json:"timezone,omitempty"`
	Visibility         Visibility `db:"visibility" json:"visibility"`
	IsCompeting        bool       `db:"is_competing" json:"is_competing"`
	Coins              int64      `db:"coins" json:"coins"`
	EquippedSkin       *string    `db:"equipped_skin" json:"equipped_skin,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// TimezoneName returns the stored IANA zone or "" when unknown.
func (u *User) TimezoneName() string {
	if u == nil || u.Timezone == nil {
		return ""
	}
	return *u.Timezone
}

func (u *User) HasCredential() bool {
	return u != nil && u.ProviderCredential != ""
}
