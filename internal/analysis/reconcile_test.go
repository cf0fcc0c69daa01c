package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	series := weeklySeries()
	instants := []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
	}

	t.Run("plain instances use nominal duration and default summary", func(t *testing.T) {
		diags := &Diagnostics{}
		pool := NewOverridePool(nil)

		out := Reconcile(series, instants, pool, diags)
		require.Len(t, out, 2)
		for i, occ := range out {
			assert.True(t, occ.Start.Equal(instants[i]))
			assert.Equal(t, time.Hour, occ.Duration)
			assert.Equal(t, "[OPS] weekly", occ.Title)
		}
		assert.True(t, diags.Empty())
	})

	t.Run("exact match consumes the override once", func(t *testing.T) {
		diags := &Diagnostics{}
		pool := NewOverridePool([]OverrideRecord{{
			SeriesUID:         "series-1",
			RecurrenceInstant: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
			ActualStart:       time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC),
			ActualDuration:    90 * time.Minute,
			Summary:           "[OPS] weekly (moved)",
		}})

		out := Reconcile(series, instants, pool, diags)
		require.Len(t, out, 2)
		assert.True(t, out[1].Start.Equal(time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC)))
		assert.Equal(t, 90*time.Minute, out[1].Duration)
		assert.Equal(t, "[OPS] weekly (moved)", out[1].Title)
		assert.Equal(t, 0, pool.Len())
		assert.Empty(t, diags.RelaxedMatches)
	})

	t.Run("exact match across offsets", func(t *testing.T) {
		diags := &Diagnostics{}
		plusOne := time.FixedZone("UTC+1", 3600)
		pool := NewOverridePool([]OverrideRecord{{
			SeriesUID:         "series-1",
			RecurrenceInstant: time.Date(2024, 1, 8, 10, 0, 0, 0, plusOne),
			ActualStart:       time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC),
			ActualDuration:    time.Hour,
		}})

		out := Reconcile(series, instants, pool, diags)
		require.Len(t, out, 2)
		assert.True(t, out[1].Start.Equal(time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)))
		assert.Empty(t, diags.RelaxedMatches, "same instant must not count as relaxed")
	})

	t.Run("relaxed match on the reference-zone date", func(t *testing.T) {
		diags := &Diagnostics{}
		// Corrupted recurrence timestamp: five minutes off but the same
		// calendar date.
		pool := NewOverridePool([]OverrideRecord{{
			SeriesUID:         "series-1",
			RecurrenceInstant: time.Date(2024, 1, 8, 9, 5, 0, 0, time.UTC),
			ActualStart:       time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC),
			ActualDuration:    time.Hour,
		}})

		out := Reconcile(series, instants, pool, diags)
		require.Len(t, out, 2)
		assert.True(t, out[1].Start.Equal(time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC)))
		require.Len(t, diags.RelaxedMatches, 1)
		assert.Equal(t, "series-1", diags.RelaxedMatches[0].SeriesUID)
		assert.Equal(t, 0, pool.Len())
	})

	t.Run("override with empty summary falls back to series summary", func(t *testing.T) {
		diags := &Diagnostics{}
		pool := NewOverridePool([]OverrideRecord{{
			SeriesUID:         "series-1",
			RecurrenceInstant: instants[0],
			ActualStart:       instants[0],
			ActualDuration:    2 * time.Hour,
		}})

		out := Reconcile(series, instants, pool, diags)
		require.Len(t, out, 2)
		assert.Equal(t, "[OPS] weekly", out[0].Title)
		assert.Equal(t, 2*time.Hour, out[0].Duration)
	})

	t.Run("duplicate exact candidates take first in pool order", func(t *testing.T) {
		diags := &Diagnostics{}
		pool := NewOverridePool([]OverrideRecord{
			{
				SeriesUID:         "series-1",
				RecurrenceInstant: instants[0],
				ActualStart:       instants[0],
				ActualDuration:    time.Hour,
				Summary:           "first",
			},
			{
				SeriesUID:         "series-1",
				RecurrenceInstant: instants[0],
				ActualStart:       instants[0],
				ActualDuration:    time.Hour,
				Summary:           "second",
			},
		})

		out := Reconcile(series, instants[:1], pool, diags)
		require.Len(t, out, 1)
		assert.Equal(t, "first", out[0].Title)
		require.Len(t, diags.AmbiguousMatches, 1)
		assert.Equal(t, 2, diags.AmbiguousMatches[0].Candidates)
		// The loser stays in the pool as a future orphan.
		assert.Equal(t, 1, pool.Len())
	})

	t.Run("conservation: one occurrence per generated instant", func(t *testing.T) {
		diags := &Diagnostics{}
		pool := NewOverridePool([]OverrideRecord{{
			SeriesUID:         "series-1",
			RecurrenceInstant: instants[1],
			ActualStart:       instants[1],
			ActualDuration:    time.Hour,
		}})

		out := Reconcile(series, instants, pool, diags)
		assert.Len(t, out, len(instants))
	})

	t.Run("records of other series are never touched", func(t *testing.T) {
		diags := &Diagnostics{}
		pool := NewOverridePool([]OverrideRecord{{
			SeriesUID:         "other-series",
			RecurrenceInstant: instants[0],
			ActualStart:       instants[0],
			ActualDuration:    time.Hour,
		}})

		out := Reconcile(series, instants, pool, diags)
		require.Len(t, out, 2)
		assert.Equal(t, 1, pool.Len())
		assert.Equal(t, "[OPS] weekly", out[0].Title)
	})
}
