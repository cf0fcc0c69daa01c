package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/friedrich-daniel/calendar-time-analysis/internal/analysis"
)

func TestRender(t *testing.T) {
	report := analysis.Report{
		WindowStart:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:    time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		CountedTotal: 90 * time.Minute,
		Buckets: []analysis.CategoryBucket{{
			Name:  "DEV",
			Total: 90 * time.Minute,
			Events: []analysis.ResolvedOccurrence{{
				Start:    time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
				Duration: 90 * time.Minute,
				Title:    "[DEV] standup",
				Category: "DEV",
			}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, New(time.UTC).Render(&buf, report, "in 2024-W01"))
	out := buf.String()

	assert.Contains(t, out, "# Calendar times from 2024-01-01 until 2024-01-07 in 2024-W01 (hours:1.50)")
	assert.Contains(t, out, "## DEV - hours: 1.50")
	assert.Contains(t, out, " * 2024-01-03 09:00 UTC 1h30m0s [DEV] standup")
}

func TestRenderWithoutWeekTag(t *testing.T) {
	report := analysis.Report{
		WindowStart: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, New(time.UTC).Render(&buf, report, ""))
	assert.Equal(t, "# Calendar times from 2024-01-31 until 2024-01-31 (hours:0.00)\n", buf.String())
}
