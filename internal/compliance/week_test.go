package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_AlwaysSaturdayThroughFriday(t *testing.T) {
	loc := time.UTC
	// One "now" per weekday, all in the same week of 2024.
	for day := 7; day <= 13; day++ {
		now := time.Date(2024, time.October, day, 15, 30, 0, 0, loc)
		start, end := Window(now, loc)

		assert.Equal(t, time.Saturday, start.Weekday(), "start weekday for now=%s", now)
		assert.Equal(t, time.Friday, end.Weekday(), "end weekday for now=%s", now)

		assert.Equal(t, 0, start.Hour())
		assert.Equal(t, 0, start.Minute())
		assert.Equal(t, 0, start.Second())
		assert.Equal(t, 0, start.Nanosecond())

		assert.Equal(t, 23, end.Hour())
		assert.Equal(t, 59, end.Minute())
		assert.Equal(t, 59, end.Second())
		assert.Equal(t, int(999*time.Millisecond), end.Nanosecond())

		// Saturday 00:00 through Friday end spans six days plus the last
		// millisecond short of seven.
		assert.Equal(t, 7*24*time.Hour-time.Millisecond, end.Sub(start))
		assert.True(t, end.Before(now), "window must lie in the past for now=%s", now)
	}
}

func TestWindow_SaturdayNowExcludesToday(t *testing.T) {
	loc := time.UTC
	// 2024-10-12 is a Saturday. The most recent completed Saturday must be a
	// week earlier, so the window is Sep 28 .. Oct 4.
	now := time.Date(2024, time.October, 12, 0, 0, 1, 0, loc)
	start, end := Window(now, loc)

	require.Equal(t, time.Date(2024, time.September, 28, 0, 0, 0, 0, loc), start)
	require.Equal(t, time.Date(2024, time.October, 4, 23, 59, 59, int(999*time.Millisecond), loc), end)
}

func TestWindow_MidweekPicksLastCompletedWeek(t *testing.T) {
	loc := time.UTC
	// Wednesday 2024-10-09: previous Saturday is Oct 5, so the completed week
	// is Sep 28 .. Oct 4.
	now := time.Date(2024, time.October, 9, 12, 0, 0, 0, loc)
	start, end := Window(now, loc)

	require.Equal(t, time.Date(2024, time.September, 28, 0, 0, 0, 0, loc), start)
	require.Equal(t, time.October, end.Month())
	require.Equal(t, 4, end.Day())
}

func TestWindow_RespectsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 01:00 UTC Sunday Oct 13 is still Saturday evening in New York. UTC
	// would bucket against Oct 12 as the last completed Saturday; New York
	// is still on that Saturday, so its window starts a week earlier.
	now := time.Date(2024, time.October, 13, 1, 0, 0, 0, time.UTC)

	startUTC, _ := Window(now, time.UTC)
	assert.Equal(t, time.Date(2024, time.October, 5, 0, 0, 0, 0, time.UTC), startUTC)

	startNY, _ := Window(now, loc)
	assert.Equal(t, time.Saturday, startNY.Weekday())
	assert.Equal(t, time.Date(2024, time.September, 28, 0, 0, 0, 0, loc), startNY)
}
