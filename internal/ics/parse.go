package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/friedrich-daniel/calendar-time-analysis/internal/analysis"
	appLog "github.com/friedrich-daniel/calendar-time-analysis/internal/log"
)

// ParseStats summarizes what one ICS payload contributed.
type ParseStats struct {
	Plain           int
	Series          int
	Overrides       int
	DateOnlySkipped int
}

// Parse turns an ICS payload into analysis inputs. VEVENTs carrying a
// RECURRENCE-ID become override records; VEVENTs with an RRULE become series
// definitions; everything else becomes a plain event. Date-only events have
// no measurable duration and are skipped with a counted diagnostic.
func Parse(body []byte) (analysis.Input, ParseStats, error) {
	var in analysis.Input
	var stats ParseStats

	if len(body) == 0 {
		return in, stats, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return in, stats, err
	}

	for _, ve := range cal.Events() {
		uid := propValue(ve, ical.ComponentPropertyUniqueId)
		summary := propValue(ve, ical.ComponentPropertySummary)

		if isDateOnly(ve) {
			stats.DateOnlySkipped++
			appLog.Debug("date-only event skipped", "uid", uid, "summary", summary)
			continue
		}

		start, err := ve.GetStartAt()
		if err != nil {
			appLog.Error("event has no usable DTSTART, skipping", err, "uid", uid, "summary", summary)
			continue
		}
		duration := time.Duration(0)
		if end, err := ve.GetEndAt(); err == nil {
			duration = end.Sub(start)
		} else {
			appLog.Debug("event has no DTEND, assuming zero duration", "uid", uid, "summary", summary)
		}

		if rid := ve.GetProperty("RECURRENCE-ID"); rid != nil {
			instant, perr := parseICSTime(rid.Value, rid.ICalParameters)
			if perr != nil {
				appLog.Error("unparseable RECURRENCE-ID, skipping override", perr, "uid", uid, "value", rid.Value)
				continue
			}
			in.Override = append(in.Override, analysis.OverrideRecord{
				SeriesUID:         uid,
				RecurrenceInstant: instant,
				ActualStart:       start,
				ActualDuration:    duration,
				Summary:           summary,
			})
			stats.Overrides++
			continue
		}

		if rule := propValue(ve, ical.ComponentPropertyRrule); rule != "" {
			in.Series = append(in.Series, analysis.SeriesDefinition{
				UID:             uid,
				Start:           start,
				Rule:            rule,
				Exclusions:      parseExDates(ve, uid),
				NominalDuration: duration,
				Summary:         summary,
			})
			stats.Series++
			continue
		}

		in.Plain = append(in.Plain, analysis.PlainEvent{
			Start:    start,
			Duration: duration,
			Summary:  summary,
		})
		stats.Plain++
	}

	appLog.Info("ics parse completed",
		"plain", stats.Plain,
		"series", stats.Series,
		"overrides", stats.Overrides,
		"date_only_skipped", stats.DateOnlySkipped,
	)
	return in, stats, nil
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

// isDateOnly reports whether DTSTART carries a bare date (VALUE=DATE or a
// value without a time component).
func isDateOnly(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

// parseExDates collects all EXDATE entries of an event. A single property
// may carry a comma-separated list.
func parseExDates(ve *ical.VEvent, uid string) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, err := parseICSTime(part, p.ICalParameters)
			if err != nil {
				appLog.Error("unparseable EXDATE entry, ignoring", err, "uid", uid, "value", part)
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

// parseICSTime parses an ICS DATE-TIME (or DATE) value, honoring a TZID
// parameter when present.
func parseICSTime(value string, params map[string][]string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if tzids, ok := params["TZID"]; ok && len(tzids) > 0 {
		loc, err := time.LoadLocation(tzids[0])
		if err != nil {
			return time.Time{}, err
		}
		return time.ParseInLocation("20060102T150405", value, loc)
	}

	if strings.HasSuffix(value, "Z") {
		return time.Parse("20060102T150405Z", value)
	}
	if strings.Contains(value, "T") {
		return time.ParseInLocation("20060102T150405", value, time.Local)
	}
	return time.ParseInLocation("20060102", value, time.Local)
}
