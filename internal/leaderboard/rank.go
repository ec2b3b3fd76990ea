// Package leaderboard ranks a viewer's population by tracked time.
package leaderboard

import (
	"sort"

	"codeleague/internal/domain"
)

// Entry is one row of a leaderboard. Rank is nil for members whose stat is not ok.
type Entry struct {
	UserID              int64             `json:"user_id"`
	Username            string            `json:"username"`
	EquippedSkin        *string           `json:"equipped_skin,omitempty"`
	Status              domain.StatStatus `json:"status"`
	PeriodKey           string            `json:"period_key"`
	TotalSeconds        int64             `json:"total_seconds"`
	DailyAverageSeconds int64             `json:"daily_average_seconds,omitempty"`
	Rank                *int              `json:"rank"`
	DeltaSeconds        int64             `json:"delta_seconds"`
	IsSelf              bool              `json:"is_self"`
}

// Rank orders ok entries by total descending, ties keeping input order, and gives
// each a 1-based rank and its gap to the leader. Other entries follow unranked in
// input order. The input slice is not modified.
func Rank(entries []Entry, viewerID int64) []Entry {
	var ranked, unranked []Entry
	for _, e := range entries {
		e.Rank = nil
		e.DeltaSeconds = 0
		e.IsSelf = e.UserID == viewerID
		if e.Status == domain.StatusOK {
			ranked = append(ranked, e)
		} else {
			unranked = append(unranked, e)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalSeconds > ranked[j].TotalSeconds
	})

	for i := range ranked {
		pos := i + 1
		ranked[i].Rank = &pos
		ranked[i].DeltaSeconds = ranked[i].TotalSeconds - ranked[0].TotalSeconds
	}

	return append(ranked, unranked...)
}

// Find returns the entry for userID.
func Find(entries []Entry, userID int64) (Entry, bool) {
	for _, e := range entries {
		if e.UserID == userID {
			return e, true
		}
	}
	return Entry{}, false
}
