package mood

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStreaks_Empty(t *testing.T) {
	current, longest := Streaks(nil, day0)
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestStreaks_ConsecutiveDays(t *testing.T) {
	entries := []Entry{on(0, Happy), on(1, Sad), on(2, Calm), on(3, Happy)}

	current, longest := Streaks(entries, day0.AddDate(0, 0, 3))

	assert.Equal(t, 4, current)
	assert.Equal(t, 4, longest)
}

func TestStreaks_GapBreaksCurrentRun(t *testing.T) {
	entries := []Entry{on(0, Happy), on(1, Happy), on(3, Happy)}

	current, longest := Streaks(entries, day0.AddDate(0, 0, 3))

	assert.Equal(t, 1, current)
	assert.Equal(t, 2, longest)
}

func TestStreaks_LastEntryYesterdayStillCounts(t *testing.T) {
	entries := []Entry{on(0, Happy), on(1, Happy)}

	current, _ := Streaks(entries, day0.AddDate(0, 0, 2))

	assert.Equal(t, 2, current)
}

func TestStreaks_StaleLastEntryResetsCurrent(t *testing.T) {
	entries := []Entry{on(0, Happy), on(1, Happy), on(2, Happy)}

	current, longest := Streaks(entries, day0.AddDate(0, 0, 4))

	assert.Equal(t, 0, current)
	assert.Equal(t, 3, longest)
}

func TestStreaks_SameDayEntriesResetTheRun(t *testing.T) {
	// D, D+1, D+1, D+2: the same-day pair has a gap of 0 and restarts the
	// run, so neither streak reaches 3.
	entries := []Entry{
		on(0, Happy),
		on(1, Happy),
		{Mood: Sad, CreatedAt: day0.AddDate(0, 0, 1).Add(2 * time.Hour)},
		on(2, Happy),
	}

	current, longest := Streaks(entries, day0.AddDate(0, 0, 2))

	assert.Equal(t, 2, current)
	assert.Equal(t, 2, longest)
}

func TestStreaks_SameDayPairThenConsecutiveDays(t *testing.T) {
	entries := []Entry{
		on(0, Happy),
		{Mood: Calm, CreatedAt: day0.Add(3 * time.Hour)},
		on(1, Happy),
		on(2, Happy),
	}

	current, longest := Streaks(entries, day0.AddDate(0, 0, 2))

	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreaks_LongestRunBeforeLatestRun(t *testing.T) {
	entries := []Entry{
		on(0, Happy), on(1, Happy), on(2, Happy), on(3, Happy),
		on(10, Sad), on(11, Sad),
	}

	current, longest := Streaks(entries, day0.AddDate(0, 0, 11))

	assert.Equal(t, 2, current)
	assert.Equal(t, 4, longest)
}

func TestStreaks_CalendarDaysNotDurations(t *testing.T) {
	// 23:50 and 00:10 the next day are twenty minutes apart but one calendar
	// day apart.
	a := time.Date(2024, 5, 1, 23, 50, 0, 0, time.UTC)
	b := time.Date(2024, 5, 2, 0, 10, 0, 0, time.UTC)

	current, longest := Streaks([]Entry{{Happy, a}, {Happy, b}}, b)

	assert.Equal(t, 2, current)
	assert.Equal(t, 2, longest)
}

func TestStreaks_DaysFollowNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 22:00 UTC on May 1 is already May 2 in UTC+3.
	a := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	b := time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, loc)

	current, longest := Streaks([]Entry{{Happy, a}, {Happy, b}}, now)

	assert.Equal(t, 2, current)
	assert.Equal(t, 2, longest)

	current, longest = Streaks([]Entry{{Happy, a}, {Happy, b}}, now.UTC())
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
}
