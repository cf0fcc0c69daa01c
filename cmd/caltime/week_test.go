package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISOWeek(t *testing.T) {
	t.Run("valid week", func(t *testing.T) {
		year, week, err := parseISOWeek("2024-W05")
		require.NoError(t, err)
		assert.Equal(t, 2024, year)
		assert.Equal(t, 5, week)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, _, err := parseISOWeek("2024-05")
		assert.Error(t, err)
	})

	t.Run("week out of range", func(t *testing.T) {
		_, _, err := parseISOWeek("2024-W54")
		assert.Error(t, err)
	})
}

func TestISOWeekRange(t *testing.T) {
	t.Run("2024 week 1 starts on January 1st", func(t *testing.T) {
		start, end := isoWeekRange(2024, 1)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("2021 week 1 starts on January 4th", func(t *testing.T) {
		start, end := isoWeekRange(2021, 1)
		assert.Equal(t, time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("round-trips with time.ISOWeek", func(t *testing.T) {
		start, end := isoWeekRange(2024, 31)
		y, w := start.ISOWeek()
		assert.Equal(t, 2024, y)
		assert.Equal(t, 31, w)
		assert.Equal(t, start.AddDate(0, 0, 6), end)
	})
}
