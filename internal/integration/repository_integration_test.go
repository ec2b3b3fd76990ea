package integration

import (
	"context"
	"testing"
	"time"

	"codeleague/internal/domain"
	"codeleague/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_ErrorKeepsLastGoodTotal(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	repo := repository.NewStatsRepository(pool)
	u := newUser(t, pool, "stats")

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpsertDaily(ctx, &domain.DailyStat{
		UserID: u.ID, DateKey: "2026-02-20", TotalSeconds: 7200, Status: domain.StatusOK, FetchedAt: now,
	}))

	msg := "provider returned 500"
	require.NoError(t, repo.UpsertDaily(ctx, &domain.DailyStat{
		UserID: u.ID, DateKey: "2026-02-20", Status: domain.StatusError, Error: &msg, FetchedAt: now.Add(time.Minute),
	}))

	got, err := repo.GetDaily(ctx, u.ID, "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, got.Status)
	assert.Equal(t, int64(7200), got.TotalSeconds)
	assert.Nil(t, got.Error)

	// a definitive non-ok status does replace it
	require.NoError(t, repo.UpsertDaily(ctx, &domain.DailyStat{
		UserID: u.ID, DateKey: "2026-02-20", Status: domain.StatusPrivate, FetchedAt: now.Add(2 * time.Minute),
	}))
	got, err = repo.GetDaily(ctx, u.ID, "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPrivate, got.Status)
	assert.Zero(t, got.TotalSeconds)

	_, err = repo.GetDaily(ctx, u.ID, "2026-02-21")
	assert.ErrorIs(t, err, repository.ErrStatNotFound)
}

func TestStatsRepository_DailyStatsByKeyUsesEachUsersDay(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	repo := repository.NewStatsRepository(pool)
	a := newUser(t, pool, "keys-a")
	b := newUser(t, pool, "keys-b")

	now := time.Now().UTC()
	for _, s := range []domain.DailyStat{
		{UserID: a.ID, DateKey: "2026-02-20", TotalSeconds: 100, Status: domain.StatusOK, FetchedAt: now},
		{UserID: a.ID, DateKey: "2026-02-21", TotalSeconds: 200, Status: domain.StatusOK, FetchedAt: now},
		{UserID: b.ID, DateKey: "2026-02-21", TotalSeconds: 300, Status: domain.StatusOK, FetchedAt: now},
	} {
		require.NoError(t, repo.UpsertDaily(ctx, &s))
	}

	got, err := repo.DailyStatsByKey(ctx, map[int64]string{a.ID: "2026-02-20", b.ID: "2026-02-21"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[a.ID].TotalSeconds)
	assert.Equal(t, int64(300), got[b.ID].TotalSeconds)
}

func TestAchievementRepository_UpsertGrantOnce(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	repo := repository.NewAchievementRepository(pool)
	u := newUser(t, pool, "grants")

	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	g := &domain.AchievementGrant{
		UserID: u.ID, AchievementID: "weekend-warrior-4h",
		ContextKind: domain.ContextDaily, ContextKey: "2026-02-21",
		AwardedAt: first, Metadata: map[string]interface{}{"total": "4 hours"},
	}
	inserted, err := repo.UpsertGrant(ctx, g)
	require.NoError(t, err)
	assert.True(t, inserted)

	again := *g
	again.AwardedAt = first.Add(30 * time.Minute)
	again.Metadata = map[string]interface{}{"total": "5 hours"}
	inserted, err = repo.UpsertGrant(ctx, &again)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, g.ID, again.ID)

	other := *g
	other.ContextKey = "2026-02-22"
	inserted, err = repo.UpsertGrant(ctx, &other)
	require.NoError(t, err)
	assert.True(t, inserted)

	grants, err := repo.ListGrants(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, grants, 2)
	byKey := map[string]domain.AchievementGrant{}
	for _, gr := range grants {
		byKey[gr.ContextKey] = gr
	}
	refreshed := byKey["2026-02-21"]
	assert.Equal(t, "5 hours", refreshed.Metadata["total"])
	assert.WithinDuration(t, again.AwardedAt, refreshed.AwardedAt, time.Second)
}

func TestBoardStore_PopulationAndRelations(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	store := repository.NewBoardStore(pool)

	viewer := newUser(t, pool, "viewer")
	friend := newUser(t, pool, "friend")
	follower := newUser(t, pool, "follower")
	peer := newUser(t, pool, "peer")
	retired := newUser(t, pool, "retired", func(u *domain.User) { u.IsCompeting = false })

	befriend(t, pool, viewer.ID, friend.ID)
	require.NoError(t, store.AddFriend(ctx, follower.ID, viewer.ID))
	require.NoError(t, store.AddFriend(ctx, viewer.ID, retired.ID))

	group, err := store.CreateGroup(ctx, peer.ID, "night owls")
	require.NoError(t, err)
	require.NoError(t, store.AddGroupMember(ctx, group.ID, viewer.ID))

	members, err := store.Population(ctx, viewer.ID)
	require.NoError(t, err)
	var ids []int64
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []int64{viewer.ID, friend.ID, peer.ID}, ids)

	rel, err := store.Relations(ctx, viewer.ID, []int64{friend.ID, follower.ID, peer.ID})
	require.NoError(t, err)
	assert.True(t, rel.Mutual(friend.ID))
	assert.False(t, rel.Mutual(follower.ID))
	assert.True(t, rel.IncomingFriends[follower.ID])
	assert.True(t, rel.GroupPeers[peer.ID])
}

func TestUserRepository_ListCompetingIncludesUsersWithoutCredential(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)

	keyless := newUser(t, pool, "keyless")
	synced := newUser(t, pool, "synced", withCredential("waka_x"))
	watcher := newUser(t, pool, "watcher", withCredential("waka_y"), func(u *domain.User) { u.IsCompeting = false })

	competing, err := users.ListCompeting(ctx)
	require.NoError(t, err)

	ids := map[int64]bool{}
	for _, u := range competing {
		ids[u.ID] = true
	}
	assert.True(t, ids[keyless.ID])
	assert.True(t, ids[synced.ID])
	assert.False(t, ids[watcher.ID])

	tz := "Australia/Sydney"
	require.NoError(t, users.UpdateTimezone(ctx, synced.ID, tz))
	competing, err = users.ListCompeting(ctx)
	require.NoError(t, err)
	for _, u := range competing {
		if u.ID == synced.ID {
			assert.Equal(t, tz, u.TimezoneName())
		}
	}
}
