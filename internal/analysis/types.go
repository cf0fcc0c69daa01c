// Package analysis implements the recurrence-reconciliation core: it expands
// recurring series into concrete occurrences, reconciles them against
// per-instance overrides and exclusions, and aggregates durations per
// category over a bounded date window.
package analysis

import "time"

// SeriesDefinition is one recurring event definition as supplied by the
// upstream parser. It is immutable and consumed exactly once by Expand.
type SeriesDefinition struct {
	// UID identifies the series within one feed.
	UID string

	// Start is the first occurrence, carrying the series' own timezone.
	Start time.Time

	// Rule is the raw recurrence rule text (RRULE value). Opaque to the
	// core beyond producing a bounded sequence of instants.
	Rule string

	// Exclusions are instants removed from the generated sequence. Their
	// offsets may differ from the series' own; comparison is
	// offset-insensitive.
	Exclusions []time.Time

	// NominalDuration is the span of the prototypical occurrence, used
	// for instances with no matching override.
	NominalDuration time.Duration

	// Summary is the default title for non-overridden instances.
	Summary string
}

// OverrideRecord is one explicitly modified instance of a series.
type OverrideRecord struct {
	// SeriesUID names the series this record overrides.
	SeriesUID string

	// RecurrenceInstant is the original, un-overridden instant this
	// record replaces.
	RecurrenceInstant time.Time

	// ActualStart and ActualDuration describe the instance as it really
	// happened, possibly moved or resized.
	ActualStart    time.Time
	ActualDuration time.Duration

	// Summary optionally replaces the series' default title.
	Summary string
}

// PlainEvent is a non-recurring event precursor. It bypasses expansion and
// reconciliation entirely.
type PlainEvent struct {
	Start    time.Time
	Duration time.Duration
	Summary  string
}

// ResolvedOccurrence is the unit fed to classification and aggregation.
type ResolvedOccurrence struct {
	Start    time.Time
	Duration time.Duration
	Title    string
	Category string
}

// Input bundles everything one reconciliation run consumes.
type Input struct {
	Plain    []PlainEvent
	Series   []SeriesDefinition
	Override []OverrideRecord
}
