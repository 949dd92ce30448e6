package activity

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekOfThursday(t *testing.T) {
	w := WeekOf(time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 3, 16, 23, 59, 59, 999_000_000, time.UTC), w.End)
	assert.Equal(t, time.Sunday, w.Start.Weekday())
	assert.Equal(t, time.Saturday, w.End.Weekday())
}

func TestWeekOfEdges(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 3, 16, 23, 59, 59, 999_000_000, time.UTC)

	assert.Equal(t, WeekOf(sunday), WeekOf(saturday))
	assert.Equal(t, sunday, WeekOf(saturday).Start)

	next := WeekOf(saturday.Add(time.Millisecond))
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), next.Start)
}

func TestWeekOfKeepsCalendarDaysAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ref := time.Date(2024, 3, 14, 12, 0, 0, 0, loc)
	w := WeekOf(ref)

	assert.True(t, w.Contains(ref))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, loc), w.Start)
	assert.Equal(t, time.Date(2024, 3, 16, 23, 59, 59, 999_000_000, loc), w.End)
	// clocks jumped forward on 2024-03-10
	assert.Equal(t, 7*24*time.Hour-time.Hour-time.Millisecond, w.End.Sub(w.Start))
}

func TestWindowContains(t *testing.T) {
	w := WeekOf(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC))

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Millisecond)))
	assert.False(t, w.Contains(w.End.Add(time.Millisecond)))
}

func TestDayWindow(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	w := DayWindow(time.Date(2024, 3, 14, 23, 0, 0, 0, loc))

	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, loc), w.Start)
	assert.Equal(t, time.Date(2024, 3, 14, 23, 59, 59, 999_000_000, loc), w.End)
}

func TestMonthWindow(t *testing.T) {
	feb := MonthWindow(2024, time.February, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), feb.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999_000_000, time.UTC), feb.End)

	dec := MonthWindow(2023, time.December, time.UTC)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 999_000_000, time.UTC), dec.End)
}
