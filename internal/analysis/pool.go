package analysis

import (
	"time"

	appLog "github.com/friedrich-daniel/calendar-time-analysis/internal/log"
)

// OverridePool holds the not-yet-consumed override records of one run. A
// single pool is shared across all series; records are scanned per series
// UID rather than indexed by timestamp, because exported recurrence
// timestamps may disagree across timezone representations.
//
// Take is the only mutating operation and removes the chosen record in the
// same step, so a record can never be consumed twice.
type OverridePool struct {
	records []OverrideRecord
}

// NewOverridePool builds a pool preserving the feed order of records.
func NewOverridePool(records []OverrideRecord) *OverridePool {
	p := &OverridePool{records: make([]OverrideRecord, len(records))}
	copy(p.records, records)
	return p
}

// Len returns the number of unconsumed records.
func (p *OverridePool) Len() int { return len(p.records) }

// Take resolves the generated instant against the pool: first an exact
// instant match among all remaining candidates of the series, then a relaxed
// match on the reference-zone (UTC) calendar date. The matched record is
// removed from the pool and returned. Relaxed and ambiguous matches are
// recorded on diags.
func (p *OverridePool) Take(seriesUID string, instant time.Time, diags *Diagnostics) (OverrideRecord, bool) {
	ref := instant.UTC()

	exact := -1
	exactCount := 0
	for i, rec := range p.records {
		if rec.SeriesUID != seriesUID {
			continue
		}
		if rec.RecurrenceInstant.UTC().Equal(ref) {
			if exact == -1 {
				exact = i
			}
			exactCount++
		}
	}

	if exactCount > 1 {
		// Untrusted input: several records claim the same instant.
		// First in pool order wins.
		diags.AmbiguousMatches = append(diags.AmbiguousMatches, AmbiguousMatch{
			SeriesUID:        seriesUID,
			GeneratedInstant: instant,
			Candidates:       exactCount,
		})
		appLog.Warn("ambiguous override match",
			"uid", seriesUID,
			"instant", instant.Format(time.RFC3339),
			"candidates", exactCount,
		)
	}
	if exact != -1 {
		return p.remove(exact), true
	}

	// Relaxed fallback: some exporters corrupt the recurrence timestamp
	// but preserve the calendar date.
	refY, refM, refD := ref.Date()
	for i, rec := range p.records {
		if rec.SeriesUID != seriesUID {
			continue
		}
		y, m, d := rec.RecurrenceInstant.UTC().Date()
		if y == refY && m == refM && d == refD {
			diags.RelaxedMatches = append(diags.RelaxedMatches, RelaxedMatch{
				SeriesUID:         seriesUID,
				GeneratedInstant:  instant,
				RecurrenceInstant: rec.RecurrenceInstant,
			})
			appLog.Info("relaxed override match",
				"uid", seriesUID,
				"instant", instant.Format(time.RFC3339),
				"recurrence_id", rec.RecurrenceInstant.Format(time.RFC3339),
			)
			return p.remove(i), true
		}
	}

	return OverrideRecord{}, false
}

// Remaining returns the unconsumed records in pool order. After a full run
// these are the orphaned overrides.
func (p *OverridePool) Remaining() []OverrideRecord {
	out := make([]OverrideRecord, len(p.records))
	copy(out, p.records)
	return out
}

func (p *OverridePool) remove(i int) OverrideRecord {
	rec := p.records[i]
	p.records = append(p.records[:i], p.records[i+1:]...)
	return rec
}
