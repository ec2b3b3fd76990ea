package datekey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShift(t *testing.T) {
	cases := []struct {
		key    string
		offset int
		want   string
	}{
		{"2026-02-22", -1, "2026-02-21"},
		{"2026-03-01", -1, "2026-02-28"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2025-12-31", 1, "2026-01-01"},
		{"2026-02-22", 0, "2026-02-22"},
		{"not-a-date", -1, "not-a-date"},
		{"", 3, ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Shift(tc.key, tc.offset), "Shift(%q, %d)", tc.key, tc.offset)
	}
}

func TestInZone(t *testing.T) {
	instant := time.Date(2026, 2, 22, 3, 30, 0, 0, time.UTC)

	t.Run("empty zone falls back to UTC", func(t *testing.T) {
		assert.Equal(t, UTC(instant), InZone(instant, ""))
	})

	t.Run("invalid zone falls back to UTC", func(t *testing.T) {
		assert.Equal(t, "2026-02-22", InZone(instant, "Mars/Olympus_Mons"))
	})

	t.Run("zone behind UTC sees the previous day", func(t *testing.T) {
		assert.Equal(t, "2026-02-21", InZone(instant, "America/New_York"))
	})

	t.Run("zone ahead of UTC", func(t *testing.T) {
		late := time.Date(2026, 2, 22, 20, 0, 0, 0, time.UTC)
		assert.Equal(t, "2026-02-23", InZone(late, "Asia/Tokyo"))
	})
}

func TestWeekday(t *testing.T) {
	wd, ok := Weekday("2026-02-20")
	require.True(t, ok)
	assert.Equal(t, time.Friday, wd)

	_, ok = Weekday("garbage")
	assert.False(t, ok)
}

func TestISOWeek(t *testing.T) {
	assert.Equal(t, "2026-W08", ISOWeek(time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)))
	// Jan 1st 2027 is a Friday and belongs to the last ISO week of 2026.
	assert.Equal(t, "2026-W53", ISOWeek(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseInstant(t *testing.T) {
	ts, ok := ParseInstant("2026-02-22T04:59:59Z")
	require.True(t, ok)
	assert.Equal(t, 2026, ts.Year())

	day, ok := ParseInstant("2026-02-22")
	require.True(t, ok)
	assert.Equal(t, time.February, day.Month())

	_, ok = ParseInstant("yesterday")
	assert.False(t, ok)
}
