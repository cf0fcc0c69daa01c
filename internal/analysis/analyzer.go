package analysis

import (
	"errors"
	"time"

	appLog "github.com/friedrich-daniel/calendar-time-analysis/internal/log"
)

// Options configures one analysis run.
type Options struct {
	// WindowStart and WindowEnd are the inclusive date bounds of the
	// report; only their date portions are used.
	WindowStart time.Time
	WindowEnd   time.Time

	// Classify maps titles to category labels.
	Classify Classifier

	// IgnoredCategory is the sentinel label Classify returns for
	// unmatched titles; its bucket is excluded from the counted total.
	IgnoredCategory string
}

// Analyze runs the full pipeline: plain events go straight to the report
// builder; each series is expanded and reconciled against the shared
// override pool. A malformed rule drops only its own series; everything else
// still contributes. Diagnostics are returned alongside the report and never
// abort the run.
func Analyze(in Input, opts Options) (Report, *Diagnostics) {
	diags := &Diagnostics{}
	builder := NewBuilder(opts.Classify, opts.IgnoredCategory, opts.WindowStart, opts.WindowEnd)

	for _, ev := range in.Plain {
		builder.Add(ResolvedOccurrence{
			Start:    ev.Start,
			Duration: ev.Duration,
			Title:    ev.Summary,
		})
	}

	pool := NewOverridePool(in.Override)

	for _, series := range in.Series {
		instants, err := Expand(series)
		if err != nil {
			var mre *MalformedRuleError
			if errors.As(err, &mre) {
				diags.RuleErrors = append(diags.RuleErrors, mre)
			} else {
				diags.RuleErrors = append(diags.RuleErrors, &MalformedRuleError{
					SeriesUID: series.UID,
					Rule:      series.Rule,
					Reason:    "expansion failed",
					Err:       err,
				})
			}
			appLog.Error("series expansion failed, skipping series", err, "uid", series.UID)
			continue
		}

		for _, occ := range Reconcile(series, instants, pool, diags) {
			builder.Add(occ)
		}
	}

	diags.OrphanOverrides = pool.Remaining()
	for _, rec := range diags.OrphanOverrides {
		appLog.Warn("orphaned override record",
			"uid", rec.SeriesUID,
			"recurrence_id", rec.RecurrenceInstant.Format(time.RFC3339),
		)
	}

	return builder.Finalize(), diags
}
