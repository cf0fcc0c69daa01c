package analysis

import (
	"fmt"
	"time"
)

// MalformedRuleError reports a recurrence rule that could not be turned into
// a bounded sequence of instants. It is fatal for its series only; other
// series continue.
type MalformedRuleError struct {
	SeriesUID string
	Rule      string
	Reason    string
	Err       error
}

func (e *MalformedRuleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed rule for series %q: %s: %v", e.SeriesUID, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed rule for series %q: %s", e.SeriesUID, e.Reason)
}

func (e *MalformedRuleError) Unwrap() error { return e.Err }

// RelaxedMatch records an override matched only by date-level tolerance.
type RelaxedMatch struct {
	SeriesUID         string
	GeneratedInstant  time.Time
	RecurrenceInstant time.Time
}

// AmbiguousMatch records an instant for which more than one unconsumed
// override qualified as an exact match. The first in pool order was taken.
type AmbiguousMatch struct {
	SeriesUID        string
	GeneratedInstant time.Time
	Candidates       int
}

// Diagnostics accumulates the recoverable conditions of one run. It is owned
// by the caller; nothing here aborts processing.
type Diagnostics struct {
	// RuleErrors holds per-series expansion failures. The affected series
	// contribute nothing to the report; all other series still do.
	RuleErrors []*MalformedRuleError

	RelaxedMatches   []RelaxedMatch
	AmbiguousMatches []AmbiguousMatch

	// OrphanOverrides are records never matched by any generated instant.
	OrphanOverrides []OverrideRecord

	// DateOnlySkipped counts events dropped upstream for lacking a time
	// component (not duration-measurable).
	DateOnlySkipped int
}

// Empty reports whether the run completed without any recorded condition.
func (d *Diagnostics) Empty() bool {
	return len(d.RuleErrors) == 0 &&
		len(d.RelaxedMatches) == 0 &&
		len(d.AmbiguousMatches) == 0 &&
		len(d.OrphanOverrides) == 0 &&
		d.DateOnlySkipped == 0
}
