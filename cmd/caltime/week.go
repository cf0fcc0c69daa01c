package main

import (
	"fmt"
	"time"
)

// parseISOWeek parses an ISO 8601 calendar week string like "2024-W05".
func parseISOWeek(s string) (year, week int, err error) {
	if _, err := fmt.Sscanf(s, "%d-W%d", &year, &week); err != nil {
		return 0, 0, fmt.Errorf("invalid ISO week %q: %w", s, err)
	}
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("invalid ISO week %q: week out of range", s)
	}
	return year, week, nil
}

// isoWeekRange returns the Monday and Sunday dates of the given ISO week.
func isoWeekRange(year, week int) (start, end time.Time) {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	start = monday.AddDate(0, 0, (week-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end
}
