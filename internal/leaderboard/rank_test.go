package leaderboard

import (
	"testing"

	"codeleague/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(id int64, name string, secs int64) Entry {
	return Entry{UserID: id, Username: name, Status: domain.StatusOK, TotalSeconds: secs}
}

func TestRank_GapToLeader(t *testing.T) {
	out := Rank([]Entry{ok(2, "ben", 1800), ok(3, "mo", 900), ok(1, "amy", 3600)}, 2)

	require.Len(t, out, 3)
	names := []string{out[0].Username, out[1].Username, out[2].Username}
	assert.Equal(t, []string{"amy", "ben", "mo"}, names)

	for i, want := range []struct {
		rank  int
		delta int64
	}{{1, 0}, {2, -1800}, {3, -2700}} {
		require.NotNil(t, out[i].Rank)
		assert.Equal(t, want.rank, *out[i].Rank)
		assert.Equal(t, want.delta, out[i].DeltaSeconds)
	}
	assert.True(t, out[1].IsSelf)
	assert.False(t, out[0].IsSelf)
}

func TestRank_NonOKUnranked(t *testing.T) {
	in := []Entry{
		{UserID: 4, Status: domain.StatusPrivate, TotalSeconds: 99999},
		ok(1, "amy", 100),
		{UserID: 5, Status: domain.StatusPending},
		{UserID: 6, Status: domain.StatusError, DeltaSeconds: -5},
	}

	out := Rank(in, 1)

	require.Len(t, out, 4)
	assert.Equal(t, int64(1), out[0].UserID)
	assert.Equal(t, 1, *out[0].Rank)
	for _, e := range out[1:] {
		assert.Nil(t, e.Rank)
		assert.Zero(t, e.DeltaSeconds)
	}
	assert.Equal(t, []int64{4, 5, 6}, []int64{out[1].UserID, out[2].UserID, out[3].UserID})
	assert.Equal(t, domain.StatusPrivate, out[1].Status)
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	out := Rank([]Entry{ok(1, "a", 50), ok(2, "b", 100), ok(3, "c", 100)}, 0)

	assert.Equal(t, []int64{2, 3, 1}, []int64{out[0].UserID, out[1].UserID, out[2].UserID})
	assert.Equal(t, 2, *out[1].Rank)
	assert.Zero(t, out[1].DeltaSeconds)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []Entry{ok(1, "a", 10), ok(2, "b", 20)}
	Rank(in, 1)

	assert.Nil(t, in[0].Rank)
	assert.Equal(t, int64(1), in[0].UserID)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil, 1))
}
