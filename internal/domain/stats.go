package domain

import "time"

// StatStatus is the outcome of fetching a user's stats from the provider.
type StatStatus string

const (
	StatusOK       StatStatus = "ok"
	StatusPrivate  StatStatus = "private"
	StatusNotFound StatStatus = "not_found"
	StatusError    StatStatus = "error"
	// StatusPending marks a leaderboard member with no persisted stat for the period yet.
	StatusPending StatStatus = "pending"
)

// DailyStat - one row per (user, calendar day in the user's zone)
type DailyStat struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	DateKey      string     `db:"date_key" json:"date_key"`
	TotalSeconds int64      `db:"total_seconds" json:"total_seconds"`
	Status       StatStatus `db:"status" json:"status"`
	Error        *string    `db:"error" json:"error,omitempty"`
	FetchedAt    time.Time  `db:"fetched_at" json:"fetched_at"`
}

// WeeklyStat - one row per (user, rolling range key)
type WeeklyStat struct {
	ID                  int64      `db:"id" json:"id"`
	UserID              int64      `db:"user_id" json:"user_id"`
	RangeKey            string     `db:"range_key" json:"range_key"`
	TotalSeconds        int64      `db:"total_seconds" json:"total_seconds"`
	DailyAverageSeconds int64      `db:"daily_average_seconds" json:"daily_average_seconds"`
	Status              StatStatus `db:"status" json:"status"`
	Error               *string    `db:"error" json:"error,omitempty"`
	FetchedAt           time.Time  `db:"fetched_at" json:"fetched_at"`
}

// NamedDuration is one entry of a per-editor/language/project breakdown.
type NamedDuration struct {
	Name         string  `json:"name"`
	TotalSeconds float64 `json:"total_seconds"`
}

// DayBucket is the total for a single day inside a weekly range.
type DayBucket struct {
	Date         string  `json:"date"`
	TotalSeconds float64 `json:"total_seconds"`
}

// DailySummary is the provider's "today" payload after decoding.
type DailySummary struct {
	TotalSeconds float64         `json:"total_seconds"`
	Date         string          `json:"date,omitempty"`
	Timezone     string          `json:"timezone,omitempty"`
	Editors      []NamedDuration `json:"editors,omitempty"`
	Languages    []NamedDuration `json:"languages,omitempty"`
	Projects     []NamedDuration `json:"projects,omitempty"`
}

// WeeklySummary is the provider's range payload after decoding.
type WeeklySummary struct {
	TotalSeconds        float64         `json:"total_seconds"`
	DailyAverageSeconds float64         `json:"daily_average_seconds"`
	RangeStart          string          `json:"range_start,omitempty"`
	RangeEnd            string          `json:"range_end,omitempty"`
	Timezone            string          `json:"timezone,omitempty"`
	Editors             []NamedDuration `json:"editors,omitempty"`
	Languages           []NamedDuration `json:"languages,omitempty"`
	Projects            []NamedDuration `json:"projects,omitempty"`
	Days                []DayBucket     `json:"days,omitempty"`
}
