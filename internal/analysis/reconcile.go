package analysis

import "time"

// Reconcile resolves each generated instant of a series to either a matching
// override's data or a plain instance synthesized from the series itself.
// Exactly one ResolvedOccurrence is produced per instant.
func Reconcile(series SeriesDefinition, instants []time.Time, pool *OverridePool, diags *Diagnostics) []ResolvedOccurrence {
	out := make([]ResolvedOccurrence, 0, len(instants))

	for _, g := range instants {
		rec, ok := pool.Take(series.UID, g, diags)
		if !ok {
			out = append(out, ResolvedOccurrence{
				Start:    g,
				Duration: series.NominalDuration,
				Title:    series.Summary,
			})
			continue
		}

		title := rec.Summary
		if title == "" {
			title = series.Summary
		}
		out = append(out, ResolvedOccurrence{
			Start:    rec.ActualStart,
			Duration: rec.ActualDuration,
			Title:    title,
		})
	}

	return out
}
