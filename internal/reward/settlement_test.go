package reward

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"codeleague/internal/domain"
	"codeleague/internal/leaderboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	rows     map[string]domain.DailyRewardSettlement
	balances map[int64]int64
	ledger   []domain.CoinLedgerEntry
	// skipExists simulates a concurrent settler that passed the pre-check.
	skipExists bool
	failUser   int64
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]domain.DailyRewardSettlement{}, balances: map[int64]int64{}}
}

func key(userID int64, dateKey string) string {
	return fmt.Sprintf("%d/%s", userID, dateKey)
}

func (m *memStore) Exists(_ context.Context, userID int64, dateKey string) (bool, error) {
	if m.skipExists {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[key(userID, dateKey)]
	return ok, nil
}

func (m *memStore) Settle(_ context.Context, s *domain.DailyRewardSettlement) (bool, error) {
	if s.UserID == m.failUser {
		return false, errors.New("tx aborted")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(s.UserID, s.DateKey)
	if _, ok := m.rows[k]; ok {
		return false, nil
	}
	m.rows[k] = *s
	if s.CoinsAwarded > 0 {
		m.balances[s.UserID] += s.CoinsAwarded
		m.ledger = append(m.ledger, domain.CoinLedgerEntry{
			UserID: s.UserID, Amount: s.CoinsAwarded, Reason: domain.LedgerReasonDailyRankReward,
		})
	}
	return true, nil
}

type fixedStandings struct {
	totals map[int64]int64
	calls  int
	mu     sync.Mutex
}

func (f *fixedStandings) Daily(_ context.Context, viewerID int64, offset int, _ time.Time) (leaderboard.Standings, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	var entries []leaderboard.Entry
	for _, id := range []int64{1, 2, 3, 4} {
		if secs, ok := f.totals[id]; ok {
			entries = append(entries, leaderboard.Entry{UserID: id, Status: domain.StatusOK, TotalSeconds: secs})
		}
	}
	return leaderboard.Standings{ViewerID: viewerID, Entries: leaderboard.Rank(entries, viewerID)}, nil
}

var now = time.Date(2026, 2, 22, 8, 0, 0, 0, time.UTC)

func TestSettleUser_CreditsOnce(t *testing.T) {
	store := newMemStore()
	standings := &fixedStandings{totals: map[int64]int64{1: 3600, 2: 1800, 3: 900}}
	s := NewSettler(store, standings, Options{})

	res, err := s.SettleUser(context.Background(), domain.User{ID: 1}, now)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, "2026-02-21", res.DateKey)
	assert.Equal(t, 1, *res.Rank)
	assert.Equal(t, int64(3), res.Coins)

	again, err := s.SettleUser(context.Background(), domain.User{ID: 1}, now)
	require.NoError(t, err)
	assert.False(t, again.Applied)

	assert.Equal(t, int64(3), store.balances[1])
	assert.Len(t, store.ledger, 1)
	assert.Equal(t, 1, standings.calls, "pre-check must skip ranking for a settled day")
}

func TestSettleUser_UniqueViolationIsNoop(t *testing.T) {
	store := newMemStore()
	store.skipExists = true
	s := NewSettler(store, &fixedStandings{totals: map[int64]int64{2: 100}}, Options{})

	_, err := s.SettleUser(context.Background(), domain.User{ID: 2}, now)
	require.NoError(t, err)
	res, err := s.SettleUser(context.Background(), domain.User{ID: 2}, now)
	require.NoError(t, err)

	assert.False(t, res.Applied)
	assert.Equal(t, int64(3), store.balances[2])
	assert.Len(t, store.ledger, 1)
}

func TestSettleUser_OffPodiumRecordsZero(t *testing.T) {
	store := newMemStore()
	s := NewSettler(store, &fixedStandings{totals: map[int64]int64{1: 100, 2: 90, 3: 80, 4: 70}}, Options{})

	res, err := s.SettleUser(context.Background(), domain.User{ID: 4}, now)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 4, *res.Rank)
	assert.Zero(t, res.Coins)
	assert.Empty(t, store.ledger)
	assert.Contains(t, store.rows, key(4, "2026-02-21"))
}

func TestSettleUser_UsesUsersOwnYesterday(t *testing.T) {
	store := newMemStore()
	s := NewSettler(store, &fixedStandings{}, Options{})
	tokyo := "Asia/Tokyo"

	// 20:00 UTC on the 22nd is already the 23rd in Tokyo.
	res, err := s.SettleUser(context.Background(), domain.User{ID: 1, Timezone: &tokyo}, now.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "2026-02-22", res.DateKey)
	assert.Nil(t, res.Rank)
}

// boardStore serves a one-member population whose stored zone may be newer than the
// user value handed to the settler.
type boardStore struct {
	user domain.User
}

func (b boardStore) Population(context.Context, int64) ([]domain.User, error) {
	return []domain.User{b.user}, nil
}

func (b boardStore) Relations(context.Context, int64, []int64) (leaderboard.Relations, error) {
	return leaderboard.Relations{}, nil
}

func (b boardStore) DailyStatsByKey(_ context.Context, keys map[int64]string) (map[int64]domain.DailyStat, error) {
	out := make(map[int64]domain.DailyStat, len(keys))
	for id, k := range keys {
		out[id] = domain.DailyStat{UserID: id, DateKey: k, Status: domain.StatusOK, TotalSeconds: 3600}
	}
	return out, nil
}

func (b boardStore) WeeklyStats(context.Context, []int64, string) (map[int64]domain.WeeklyStat, error) {
	return nil, nil
}

func TestSettleUser_LearnedZonePaysRankedDayOnce(t *testing.T) {
	sydney := "Australia/Sydney"
	store := newMemStore()
	board := leaderboard.NewBoard(boardStore{user: domain.User{ID: 1, Timezone: &sydney, IsCompeting: true}})
	s := NewSettler(store, board, Options{})

	// 15:00 UTC on the 22nd is 02:00 on the 23rd in Sydney.
	at := time.Date(2026, 2, 22, 15, 0, 0, 0, time.UTC)

	first, err := s.SettleUser(context.Background(), domain.User{ID: 1}, at)
	require.NoError(t, err)
	assert.True(t, first.Applied)
	assert.Equal(t, "2026-02-22", first.DateKey)

	second, err := s.SettleUser(context.Background(), domain.User{ID: 1, Timezone: &sydney}, at)
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Equal(t, "2026-02-22", second.DateKey)

	assert.Equal(t, int64(3), store.balances[1])
	assert.Len(t, store.ledger, 1)
	assert.NotContains(t, store.rows, key(1, "2026-02-21"))
}

func TestSettleAll_IsolatesFailures(t *testing.T) {
	store := newMemStore()
	store.failUser = 2
	var failed []int64
	var mu sync.Mutex
	s := NewSettler(store, &fixedStandings{totals: map[int64]int64{1: 300, 2: 200, 3: 100}}, Options{
		BatchSize: 2,
		OnError: func(u domain.User, err error) {
			mu.Lock()
			failed = append(failed, u.ID)
			mu.Unlock()
		},
	})

	results, err := s.SettleAll(context.Background(), []domain.User{{ID: 1}, {ID: 2}, {ID: 3}}, now)
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, failed)
	require.Len(t, results, 2)
	assert.Equal(t, int64(3), store.balances[1])
	assert.Equal(t, int64(1), store.balances[3])
}

func TestSchedule(t *testing.T) {
	s, err := ParseSchedule([]byte("[ranks]\n1 = 10\n2 = 5\n5 = 1\n"))
	require.NoError(t, err)

	one, five, six := 1, 5, 6
	assert.Equal(t, int64(10), s.Coins(&one))
	assert.Equal(t, int64(1), s.Coins(&five))
	assert.Zero(t, s.Coins(&six))
	assert.Zero(t, s.Coins(nil))

	roundTrip, err := ParseSchedule([]byte(s.String()))
	require.NoError(t, err)
	assert.Equal(t, s, roundTrip)
}

func TestSchedule_Invalid(t *testing.T) {
	cases := map[string]string{
		"no table":  "1 = 3\n",
		"bad rank":  "[ranks]\nfirst = 3\n",
		"zero rank": "[ranks]\n0 = 3\n",
		"negative":  "[ranks]\n1 = -3\n",
		"float":     "[ranks]\n1 = 1.5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSchedule([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadSchedule_DefaultWhenUnset(t *testing.T) {
	s, err := LoadSchedule("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule(), s)
}
