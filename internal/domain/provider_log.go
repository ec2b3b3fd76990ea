package domain

import "time"

// ProviderCallLog represents one logged call to the stats provider
type ProviderCallLog struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	Endpoint     string     `db:"endpoint" json:"endpoint"`
	Status       StatStatus `db:"status" json:"status"`
	HTTPStatus   int        `db:"http_status" json:"http_status,omitempty"`
	FromCache    bool       `db:"from_cache" json:"from_cache"`
	Error        string     `db:"error" json:"error,omitempty"`
	NetworkError string     `db:"network_error" json:"network_error,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Provider endpoints
const (
	ProviderEndpointDaily  = "daily"
	ProviderEndpointWeekly = "weekly"
)
