package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeek(t *testing.T) {
	// 2024-01-03 is a Wednesday.
	wed := time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-01", FormatDay(StartOfWeek(wed, time.Monday)))
	assert.Equal(t, "2023-12-31", FormatDay(StartOfWeek(wed, time.Sunday)))
	assert.Equal(t, "2024-01-03", FormatDay(StartOfWeek(wed, time.Wednesday)))
	assert.Equal(t, "2024-01-07", FormatDay(EndOfWeek(wed, time.Monday)))
}

func TestStartOfMonth(t *testing.T) {
	d := time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-01", FormatDay(StartOfMonth(d)))
}

func TestCanonicalDays(t *testing.T) {
	assert.True(t, IsCanonicalDay("2024-01-03"))
	assert.False(t, IsCanonicalDay("2024-1-3"))
	assert.False(t, IsCanonicalDay("2024-02-30"))
	assert.False(t, IsCanonicalDay("03/01/2024"))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 14, DaysBetween(a, b))
	assert.Equal(t, -14, DaysBetween(b, a))
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("sun")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)

	d, err = ParseWeekday("Monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)

	_, err = ParseWeekday("funday")
	assert.Error(t, err)
}

func TestClocks(t *testing.T) {
	pinned := time.Date(2024, 1, 3, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-03", FormatDay(Today(FixedClock(pinned))))
	assert.Equal(t, time.UTC, NewSystemClock(nil).Now().Location())
}
