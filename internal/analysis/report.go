package analysis

import (
	"sort"
	"strings"
	"time"
)

// maxTitleLen is the rune limit applied to titles before classification.
const maxTitleLen = 200

// Classifier maps a (truncated) title to a category label. It must be a
// deterministic total function; the sentinel label marks unmatched titles.
type Classifier func(title string) string

// CategoryBucket is the aggregation unit of one logical category.
type CategoryBucket struct {
	// Name carries the casing of the first occurrence seen for this
	// category; later casings are folded in.
	Name   string
	Total  time.Duration
	Events []ResolvedOccurrence
}

// Report is the final result of one run.
type Report struct {
	// WindowStart and WindowEnd are the inclusive date bounds.
	WindowStart time.Time
	WindowEnd   time.Time

	// Buckets are sorted by name; events within each bucket by start.
	Buckets []CategoryBucket

	// CountedTotal sums all bucket durations except the ignored
	// (uncategorized) bucket.
	CountedTotal time.Duration
}

// Builder accumulates occurrences into category buckets for one run. Each
// run constructs its own Builder; there is no process-wide state.
type Builder struct {
	classify    Classifier
	ignored     string
	windowStart time.Time
	windowEnd   time.Time

	buckets map[string]*CategoryBucket // keyed by lower-cased name
	counted time.Duration
}

// NewBuilder creates a report builder for the inclusive date window
// [windowStart, windowEnd]. Only the date portions of the bounds are used.
// ignored names the sentinel category excluded from the counted total.
func NewBuilder(classify Classifier, ignored string, windowStart, windowEnd time.Time) *Builder {
	return &Builder{
		classify:    classify,
		ignored:     ignored,
		windowStart: dateOf(windowStart),
		windowEnd:   dateOf(windowEnd),
		buckets:     make(map[string]*CategoryBucket),
	}
}

// Add classifies and accumulates one occurrence. Occurrences whose local
// start date falls outside the window are discarded. The occurrence's
// Category field is ignored on input and set to the bucket's canonical name.
func (b *Builder) Add(occ ResolvedOccurrence) {
	// Window membership uses the occurrence's own local date, not a
	// reference-zone date.
	d := dateOf(occ.Start)
	if d.Before(b.windowStart) || d.After(b.windowEnd) {
		return
	}

	occ.Title = truncateTitle(occ.Title)

	category := b.classify(occ.Title)
	if category != b.ignored {
		b.counted += occ.Duration
	}

	key := strings.ToLower(category)
	bucket, ok := b.buckets[key]
	if !ok {
		bucket = &CategoryBucket{Name: category}
		b.buckets[key] = bucket
	}
	occ.Category = bucket.Name
	bucket.Total += occ.Duration
	bucket.Events = append(bucket.Events, occ)
}

// Finalize produces the report: buckets sorted by name, events per bucket
// sorted by start time. The builder itself is left untouched, so calling
// Finalize again yields the same report.
func (b *Builder) Finalize() Report {
	buckets := make([]CategoryBucket, 0, len(b.buckets))
	for _, bucket := range b.buckets {
		events := make([]ResolvedOccurrence, len(bucket.Events))
		copy(events, bucket.Events)
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Start.Before(events[j].Start)
		})
		buckets = append(buckets, CategoryBucket{
			Name:   bucket.Name,
			Total:  bucket.Total,
			Events: events,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Name < buckets[j].Name
	})

	return Report{
		WindowStart:  b.windowStart,
		WindowEnd:    b.windowEnd,
		Buckets:      buckets,
		CountedTotal: b.counted,
	}
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}
	return string(runes[:maxTitleLen])
}

// dateOf strips the time of day, keeping year/month/day as observed in the
// timestamp's own location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
