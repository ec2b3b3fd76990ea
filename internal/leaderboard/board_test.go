package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeleague/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users     []domain.User
	relations Relations
	daily     map[int64]domain.DailyStat // by user, only returned when the key matches
	weekly    map[int64]domain.WeeklyStat
	gotKeys   map[int64]string
	err       error
}

func (f *fakeStore) Population(context.Context, int64) ([]domain.User, error) {
	return f.users, f.err
}

func (f *fakeStore) Relations(context.Context, int64, []int64) (Relations, error) {
	return f.relations, nil
}

func (f *fakeStore) DailyStatsByKey(_ context.Context, keys map[int64]string) (map[int64]domain.DailyStat, error) {
	f.gotKeys = keys
	out := map[int64]domain.DailyStat{}
	for id, key := range keys {
		if st, ok := f.daily[id]; ok && st.DateKey == key {
			out[id] = st
		}
	}
	return out, nil
}

func (f *fakeStore) WeeklyStats(_ context.Context, ids []int64, rangeKey string) (map[int64]domain.WeeklyStat, error) {
	out := map[int64]domain.WeeklyStat{}
	for _, id := range ids {
		if st, ok := f.weekly[id]; ok && st.RangeKey == rangeKey {
			out[id] = st
		}
	}
	return out, nil
}

func tz(s string) *string { return &s }

func TestBoard_DailyUsesEachMembersOwnDay(t *testing.T) {
	// 02:00 UTC on the 21st is still the 20th in New York.
	now := time.Date(2026, 2, 21, 2, 0, 0, 0, time.UTC)
	store := &fakeStore{
		users: []domain.User{
			{ID: 1, Username: "amy", Visibility: domain.VisibilityEveryone},
			{ID: 2, Username: "ben", Visibility: domain.VisibilityEveryone, Timezone: tz("America/New_York")},
		},
		daily: map[int64]domain.DailyStat{
			1: {UserID: 1, DateKey: "2026-02-20", Status: domain.StatusOK, TotalSeconds: 3600},
			2: {UserID: 2, DateKey: "2026-02-19", Status: domain.StatusOK, TotalSeconds: 7200},
		},
	}

	standings, err := NewBoard(store).Daily(context.Background(), 1, -1, now)
	require.NoError(t, err)

	assert.Equal(t, map[int64]string{1: "2026-02-20", 2: "2026-02-19"}, store.gotKeys)
	assert.Equal(t, "2026-02-20", standings.Key)

	self, found := standings.Self()
	require.True(t, found)
	require.NotNil(t, self.Rank)
	assert.Equal(t, 2, *self.Rank)
	assert.Equal(t, int64(-3600), self.DeltaSeconds)
}

func TestBoard_VisibilityGate(t *testing.T) {
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
	stat := func(id, secs int64) domain.DailyStat {
		return domain.DailyStat{UserID: id, DateKey: "2026-02-20", Status: domain.StatusOK, TotalSeconds: secs}
	}
	store := &fakeStore{
		users: []domain.User{
			{ID: 1, Username: "viewer", Visibility: domain.VisibilityNoOne},
			{ID: 2, Username: "mutual", Visibility: domain.VisibilityFriends},
			{ID: 3, Username: "oneway", Visibility: domain.VisibilityFriends},
			{ID: 4, Username: "grouped", Visibility: domain.VisibilityFriends},
			{ID: 5, Username: "hidden", Visibility: domain.VisibilityNoOne},
			{ID: 6, Username: "fresh", Visibility: domain.VisibilityEveryone},
		},
		relations: Relations{
			Friends:         map[int64]bool{2: true, 3: true},
			IncomingFriends: map[int64]bool{2: true},
			GroupPeers:      map[int64]bool{4: true, 5: true},
		},
		daily: map[int64]domain.DailyStat{
			1: stat(1, 100), 2: stat(2, 200), 3: stat(3, 300), 4: stat(4, 400), 5: stat(5, 500),
		},
	}

	standings, err := NewBoard(store).Daily(context.Background(), 1, 0, now)
	require.NoError(t, err)

	byName := map[string]Entry{}
	for _, e := range standings.Entries {
		byName[e.Username] = e
	}
	assert.Equal(t, domain.StatusOK, byName["viewer"].Status)
	assert.Equal(t, domain.StatusOK, byName["mutual"].Status)
	assert.Equal(t, domain.StatusOK, byName["grouped"].Status)

	assert.Equal(t, domain.StatusPrivate, byName["oneway"].Status)
	assert.Zero(t, byName["oneway"].TotalSeconds)
	assert.Nil(t, byName["oneway"].Rank)
	assert.Equal(t, domain.StatusPrivate, byName["hidden"].Status)

	assert.Equal(t, domain.StatusPending, byName["fresh"].Status)
	assert.Nil(t, byName["fresh"].Rank)

	assert.Equal(t, 1, *byName["grouped"].Rank)
	assert.Equal(t, 3, *byName["viewer"].Rank)
}

func TestBoard_Weekly(t *testing.T) {
	store := &fakeStore{
		users: []domain.User{
			{ID: 1, Username: "amy", Visibility: domain.VisibilityEveryone},
			{ID: 2, Username: "ben", Visibility: domain.VisibilityEveryone},
		},
		weekly: map[int64]domain.WeeklyStat{
			1: {UserID: 1, RangeKey: "last_7_days", Status: domain.StatusOK, TotalSeconds: 100000, DailyAverageSeconds: 14285},
			2: {UserID: 2, RangeKey: "last_7_days", Status: domain.StatusNotFound},
		},
	}

	standings, err := NewBoard(store).Weekly(context.Background(), 2, "last_7_days")
	require.NoError(t, err)

	require.Len(t, standings.Entries, 2)
	assert.Equal(t, int64(1), standings.Entries[0].UserID)
	assert.Equal(t, int64(14285), standings.Entries[0].DailyAverageSeconds)
	self, _ := standings.Self()
	assert.Equal(t, domain.StatusNotFound, self.Status)
	assert.Nil(t, self.Rank)
}

func TestBoard_PropagatesStoreErrors(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}

	_, err := NewBoard(store).Daily(context.Background(), 1, 0, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
