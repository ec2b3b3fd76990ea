// Package achievement evaluates fetched stats against the achievement catalog and
// records grants idempotently per (user, achievement, context).
package achievement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeleague/internal/datekey"
	"codeleague/internal/domain"

	"github.com/hako/durafmt"
)

// GrantStore persists grants. UpsertGrant reports whether a new row was created; for an
// existing (user, achievement, context kind, context key) it only refreshes awarded_at
// and metadata.
type GrantStore interface {
	UpsertGrant(ctx context.Context, g *domain.AchievementGrant) (bool, error)
	ListGrants(ctx context.Context, userID int64) ([]domain.AchievementGrant, error)
}

// DefaultWeekendDays is Friday, Saturday and Sunday.
var DefaultWeekendDays = []time.Weekday{time.Friday, time.Saturday, time.Sunday}

type Options struct {
	WeekendDays []time.Weekday
	Now         func() time.Time
}

type Engine struct {
	store   GrantStore
	weekend map[time.Weekday]bool
	now     func() time.Time
}

// DailyInput is one user's daily stat as it was just fetched.
type DailyInput struct {
	UserID  int64
	DateKey string
	Status  domain.StatStatus
	Summary domain.DailySummary
}

// WeeklyInput is one user's rolling-range stat as it was just fetched.
type WeeklyInput struct {
	UserID    int64
	RangeKey  string
	Status    domain.StatStatus
	Summary   domain.WeeklySummary
	FetchedAt time.Time
}

func NewEngine(store GrantStore, opts Options) *Engine {
	days := opts.WeekendDays
	if len(days) == 0 {
		days = DefaultWeekendDays
	}
	weekend := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		weekend[d] = true
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{store: store, weekend: weekend, now: now}
}

// EvaluateDaily grants every daily achievement the stat satisfies and returns the ids
// that were newly granted. Non-ok stats are ignored.
func (e *Engine) EvaluateDaily(ctx context.Context, in DailyInput) ([]string, error) {
	if in.Status != domain.StatusOK || in.DateKey == "" {
		return nil, nil
	}

	facts := newDailyFacts(in.DateKey, in.Summary, e.weekend)
	meta := map[string]interface{}{
		"date_key":      in.DateKey,
		"total_seconds": in.Summary.TotalSeconds,
		"total_text":    humanize(in.Summary.TotalSeconds),
	}

	var matched []Definition
	for _, def := range catalog {
		if def.Context == domain.ContextDaily && def.matchDaily(facts) {
			matched = append(matched, def)
		}
	}
	return e.grant(ctx, in.UserID, domain.ContextDaily, in.DateKey, matched, meta)
}

// EvaluateWeekly grants every weekly achievement the stat satisfies. The context key
// pins the grant to the ISO week the range ends in, so a rolling range grants at most
// once per week.
func (e *Engine) EvaluateWeekly(ctx context.Context, in WeeklyInput) ([]string, error) {
	if in.Status != domain.StatusOK {
		return nil, nil
	}

	fetchedAt := in.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = e.now()
	}
	key := WeeklyContextKey(in.RangeKey, in.Summary, fetchedAt)

	facts := newWeeklyFacts(in.Summary)
	meta := map[string]interface{}{
		"range_key":             in.RangeKey,
		"total_seconds":         in.Summary.TotalSeconds,
		"total_text":            humanize(in.Summary.TotalSeconds),
		"daily_average_seconds": in.Summary.DailyAverageSeconds,
	}

	var matched []Definition
	for _, def := range catalog {
		if def.Context == domain.ContextWeekly && def.matchWeekly(facts) {
			matched = append(matched, def)
		}
	}
	return e.grant(ctx, in.UserID, domain.ContextWeekly, key, matched, meta)
}

func (e *Engine) grant(ctx context.Context, userID int64, kind domain.ContextKind, key string, defs []Definition, meta map[string]interface{}) ([]string, error) {
	var (
		granted []string
		errs    []error
	)
	for _, def := range defs {
		g := &domain.AchievementGrant{
			UserID:        userID,
			AchievementID: def.ID,
			ContextKind:   kind,
			ContextKey:    key,
			AwardedAt:     e.now(),
			Metadata:      meta,
		}
		created, err := e.store.UpsertGrant(ctx, g)
		if err != nil {
			errs = append(errs, fmt.Errorf("grant %s: %w", def.ID, err))
			continue
		}
		if created {
			granted = append(granted, def.ID)
		}
	}
	return granted, errors.Join(errs...)
}

// WeeklyContextKey is "<rangeKey>:<ISO week>" where the week is taken from the
// range end (in the range's own zone when known) or else fetchedAt.
func WeeklyContextKey(rangeKey string, s domain.WeeklySummary, fetchedAt time.Time) string {
	ref := fetchedAt.UTC()
	if end, ok := datekey.ParseInstant(s.RangeEnd); ok {
		ref = end
		if loc := datekey.Location(s.Timezone); loc != nil {
			ref = end.In(loc)
		}
	}
	return rangeKey + ":" + datekey.ISOWeek(ref)
}

// Summary returns the user's earned achievements grouped by id.
func (e *Engine) Summary(ctx context.Context, userID int64) ([]Progress, error) {
	grants, err := e.store.ListGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Aggregate(grants), nil
}

// ParseWeekendDays parses a comma separated list like "fri,sat,sun". Unknown names
// are skipped.
func ParseWeekendDays(s string) []time.Weekday {
	names := map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
		"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	}
	var out []time.Weekday
	seen := map[time.Weekday]bool{}
	for _, part := range strings.Split(s, ",") {
		p := strings.ToLower(strings.TrimSpace(part))
		if len(p) < 3 {
			continue
		}
		if wd, ok := names[p[:3]]; ok && !seen[wd] {
			seen[wd] = true
			out = append(out, wd)
		}
	}
	return out
}

func humanize(seconds float64) string {
	if seconds <= 0 {
		return "0 seconds"
	}
	return durafmt.Parse(time.Duration(seconds) * time.Second).LimitFirstN(2).String()
}
