// Package render turns a finished report into the plain-text output format:
// a header with the window and counted total, one section per category, one
// line per event.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/friedrich-daniel/calendar-time-analysis/internal/analysis"
)

// Renderer writes text reports with event starts converted into a fixed
// display zone.
type Renderer struct {
	Location *time.Location
}

func New(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{Location: loc}
}

// Render writes the report. weekTag, when non-empty, is appended to the
// header (e.g. "in 2024-W05").
func (r *Renderer) Render(w io.Writer, rep analysis.Report, weekTag string) error {
	header := fmt.Sprintf("# Calendar times from %s until %s",
		rep.WindowStart.Format("2006-01-02"),
		rep.WindowEnd.Format("2006-01-02"),
	)
	if weekTag != "" {
		header += " " + weekTag
	}
	header += fmt.Sprintf(" (hours:%.2f)", rep.CountedTotal.Hours())

	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, bucket := range rep.Buckets {
		if _, err := fmt.Fprintf(w, "## %s - hours: %.2f\n", bucket.Name, bucket.Total.Hours()); err != nil {
			return err
		}
		for _, ev := range bucket.Events {
			start := ev.Start.In(r.Location).Format("2006-01-02 15:04 MST")
			if _, err := fmt.Fprintf(w, " * %s %s %s\n", start, ev.Duration, ev.Title); err != nil {
				return err
			}
		}
	}
	return nil
}
