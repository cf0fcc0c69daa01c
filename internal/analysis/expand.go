package analysis

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "github.com/friedrich-daniel/calendar-time-analysis/internal/log"
)

// Expand turns a series definition into the ascending, duplicate-free
// sequence of occurrence instants, with exclusion dates removed.
//
// A rule that cannot be parsed, or that carries neither COUNT nor UNTIL and
// would therefore never terminate, yields a *MalformedRuleError. The caller
// decides whether to continue with other series.
func Expand(series SeriesDefinition) ([]time.Time, error) {
	r, err := rrule.StrToRRule(series.Rule)
	if err != nil {
		return nil, &MalformedRuleError{
			SeriesUID: series.UID,
			Rule:      series.Rule,
			Reason:    "cannot parse rule",
			Err:       err,
		}
	}

	opts := r.OrigOptions
	if opts.Count == 0 && opts.Until.IsZero() {
		return nil, &MalformedRuleError{
			SeriesUID: series.UID,
			Rule:      series.Rule,
			Reason:    "rule has no COUNT or UNTIL bound",
		}
	}

	r.DTStart(series.Start)

	// EXDATE entries exported by some tools carry a different but
	// equivalent offset than the series itself; align them with the
	// series' own zone so the comparison below is purely instant-based.
	exclusions := make([]time.Time, len(series.Exclusions))
	for i, ex := range series.Exclusions {
		exclusions[i] = ex.In(series.Start.Location())
	}

	all := r.All()
	out := make([]time.Time, 0, len(all))
	for _, instant := range all {
		if containsInstant(exclusions, instant) {
			appLog.Debug("excluded instant removed",
				"uid", series.UID,
				"instant", instant.Format(time.RFC3339),
			)
			continue
		}
		out = append(out, instant)
	}
	return out, nil
}

// containsInstant reports whether ts holds an instant equal to t, regardless
// of the offsets the entries are expressed in.
func containsInstant(ts []time.Time, t time.Time) bool {
	for _, e := range ts {
		if e.Equal(t) {
			return true
		}
	}
	return false
}
