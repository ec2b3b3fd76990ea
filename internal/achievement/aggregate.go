package achievement

import (
	"sort"
	"time"

	"codeleague/internal/domain"
)

// Progress is one achievement a user holds, with how often and when.
type Progress struct {
	AchievementID  string             `json:"achievement_id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Category       string             `json:"category"`
	Context        domain.ContextKind `json:"context"`
	Count          int                `json:"count"`
	FirstAwardedAt time.Time          `json:"first_awarded_at"`
	LastAwardedAt  time.Time          `json:"last_awarded_at"`
}

// Aggregate groups grants by achievement id. Results follow catalog order; ids no
// longer in the catalog come last, sorted by id.
func Aggregate(grants []domain.AchievementGrant) []Progress {
	byID := make(map[string]*Progress)
	for _, g := range grants {
		p, ok := byID[g.AchievementID]
		if !ok {
			p = &Progress{
				AchievementID:  g.AchievementID,
				Context:        g.ContextKind,
				FirstAwardedAt: g.AwardedAt,
				LastAwardedAt:  g.AwardedAt,
			}
			if def, found := Lookup(g.AchievementID); found {
				p.Title = def.Title
				p.Description = def.Description
				p.Category = def.Category
				p.Context = def.Context
			}
			byID[g.AchievementID] = p
		}
		p.Count++
		if g.AwardedAt.Before(p.FirstAwardedAt) {
			p.FirstAwardedAt = g.AwardedAt
		}
		if g.AwardedAt.After(p.LastAwardedAt) {
			p.LastAwardedAt = g.AwardedAt
		}
	}

	out := make([]Progress, 0, len(byID))
	for _, def := range catalog {
		if p, ok := byID[def.ID]; ok {
			out = append(out, *p)
			delete(byID, def.ID)
		}
	}

	var rest []Progress
	for _, p := range byID {
		rest = append(rest, *p)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].AchievementID < rest[j].AchievementID })
	return append(out, rest...)
}
