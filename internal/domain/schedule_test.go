package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func TestDayOf_IndependentOfInputZone(t *testing.T) {
	loc := saoPaulo(t)

	// 01:00 UTC on March 10 is 22:00 on March 9 in São Paulo.
	instant := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	day := DayOf(instant, loc)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, loc), day)

	// The same instant expressed in any zone yields the same day.
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	assert.True(t, day.Equal(DayOf(instant.In(tokyo), loc)))
}

func TestDayRange_HalfOpen(t *testing.T) {
	loc := saoPaulo(t)

	noon := time.Date(2026, 8, 29, 12, 0, 0, 0, loc)
	start, end := DayRange(noon, loc)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, loc), end)

	// Midnight belongs to the day; the next midnight does not.
	inDay := func(x time.Time) bool { return !x.Before(start) && x.Before(end) }
	assert.True(t, inDay(start))
	assert.True(t, inDay(end.Add(-time.Second)))
	assert.False(t, inDay(end))
}

func TestDayRange_CrossesCivilMidnightNotUTC(t *testing.T) {
	loc := saoPaulo(t)

	// 23:30 UTC and 02:30 UTC straddle UTC midnight but fall on the same
	// São Paulo day (20:30 and 23:30).
	a := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	b := time.Date(2026, 8, 30, 2, 30, 0, 0, time.UTC)

	startA, endA := DayRange(a, loc)
	startB, endB := DayRange(b, loc)
	assert.True(t, startA.Equal(startB))
	assert.True(t, endA.Equal(endB))

	// 03:30 UTC is past São Paulo midnight and belongs to the next day.
	c := time.Date(2026, 8, 30, 3, 30, 0, 0, time.UTC)
	startC, _ := DayRange(c, loc)
	assert.True(t, startC.Equal(endA))
}

func TestDayRange_ConsecutiveDaysTile(t *testing.T) {
	loc := saoPaulo(t)

	// Every day's end is the next day's start, including across month
	// boundaries, leaving no gap or overlap for an instant to fall into.
	day := time.Date(2026, 8, 28, 10, 0, 0, 0, loc)
	for i := 0; i < 10; i++ {
		_, end := DayRange(day, loc)
		nextStart, _ := DayRange(end, loc)
		assert.True(t, end.Equal(nextStart))
		day = end.Add(time.Hour)
	}
}
