package leaderboard

import (
	"context"
	"fmt"
	"time"

	"codeleague/internal/datekey"
	"codeleague/internal/domain"
)

// Store is the read side the board needs.
type Store interface {
	// Population returns the competing users among self, the user's friends and the
	// owners and members of every group the user owns or belongs to.
	Population(ctx context.Context, userID int64) ([]domain.User, error)
	// Relations restricts friendship and group lookups to candidateIDs.
	Relations(ctx context.Context, viewerID int64, candidateIDs []int64) (Relations, error)
	// DailyStatsByKey loads one stat per user for that user's own date key.
	DailyStatsByKey(ctx context.Context, keys map[int64]string) (map[int64]domain.DailyStat, error)
	WeeklyStats(ctx context.Context, userIDs []int64, rangeKey string) (map[int64]domain.WeeklyStat, error)
}

// Standings is a ranked leaderboard for one viewer and period.
type Standings struct {
	ViewerID int64   `json:"viewer_id"`
	Period   string  `json:"period"`
	Key      string  `json:"key"`
	Entries  []Entry `json:"entries"`
}

// Self returns the viewer's own row, if the viewer is in the population.
func (s Standings) Self() (Entry, bool) {
	return Find(s.Entries, s.ViewerID)
}

type Board struct {
	store Store
}

func NewBoard(store Store) *Board {
	return &Board{store: store}
}

// Daily ranks the viewer's population for the day offsetDays from now. Every member is
// scored on their own local calendar day, so members in different zones may be
// compared on different date keys.
func (b *Board) Daily(ctx context.Context, viewerID int64, offsetDays int, now time.Time) (Standings, error) {
	members, rel, err := b.load(ctx, viewerID)
	if err != nil {
		return Standings{}, err
	}

	keys := make(map[int64]string, len(members))
	viewerKey := datekey.Shift(datekey.UTC(now), offsetDays)
	for _, m := range members {
		keys[m.ID] = datekey.Shift(datekey.InZone(now, m.TimezoneName()), offsetDays)
		if m.ID == viewerID {
			viewerKey = keys[m.ID]
		}
	}

	stats, err := b.store.DailyStatsByKey(ctx, keys)
	if err != nil {
		return Standings{}, fmt.Errorf("load daily stats: %w", err)
	}

	entries := make([]Entry, 0, len(members))
	for i := range members {
		m := &members[i]
		e := newEntry(m, keys[m.ID])
		if !rel.CanSee(viewerID, m) {
			e.Status = domain.StatusPrivate
		} else if st, ok := stats[m.ID]; ok {
			e.Status = st.Status
			e.TotalSeconds = st.TotalSeconds
		}
		entries = append(entries, e)
	}

	return Standings{
		ViewerID: viewerID,
		Period:   string(domain.ContextDaily),
		Key:      viewerKey,
		Entries:  Rank(entries, viewerID),
	}, nil
}

// Weekly ranks the viewer's population on the rolling range rangeKey.
func (b *Board) Weekly(ctx context.Context, viewerID int64, rangeKey string) (Standings, error) {
	members, rel, err := b.load(ctx, viewerID)
	if err != nil {
		return Standings{}, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	stats, err := b.store.WeeklyStats(ctx, ids, rangeKey)
	if err != nil {
		return Standings{}, fmt.Errorf("load weekly stats: %w", err)
	}

	entries := make([]Entry, 0, len(members))
	for i := range members {
		m := &members[i]
		e := newEntry(m, rangeKey)
		if !rel.CanSee(viewerID, m) {
			e.Status = domain.StatusPrivate
		} else if st, ok := stats[m.ID]; ok {
			e.Status = st.Status
			e.TotalSeconds = st.TotalSeconds
			e.DailyAverageSeconds = st.DailyAverageSeconds
		}
		entries = append(entries, e)
	}

	return Standings{
		ViewerID: viewerID,
		Period:   string(domain.ContextWeekly),
		Key:      rangeKey,
		Entries:  Rank(entries, viewerID),
	}, nil
}

func (b *Board) load(ctx context.Context, viewerID int64) ([]domain.User, Relations, error) {
	members, err := b.store.Population(ctx, viewerID)
	if err != nil {
		return nil, Relations{}, fmt.Errorf("load population: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	rel, err := b.store.Relations(ctx, viewerID, ids)
	if err != nil {
		return nil, Relations{}, fmt.Errorf("load relations: %w", err)
	}
	return members, rel, nil
}

// newEntry starts a member as pending; a persisted stat or the visibility gate
// overrides that.
func newEntry(m *domain.User, periodKey string) Entry {
	return Entry{
		UserID:       m.ID,
		Username:     m.Username,
		EquippedSkin: m.EquippedSkin,
		Status:       domain.StatusPending,
		PeriodKey:    periodKey,
	}
}
