package domain

import "time"

// eventDateLayout is the day-first format used by all three source streams.
const eventDateLayout = "02-01-2006"

// weekLabelLayout formats a week-start date as the week identifier.
const weekLabelLayout = "2006-01-02"

// ParseEventDate parses a DD-MM-YYYY event date. The second return value is
// false when the value cannot be parsed; callers keep the row but exclude it
// from weekly bucketing.
func ParseEventDate(s string) (time.Time, bool) {
	t, err := time.Parse(eventDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// WeekStart returns the start date of the 7-day span containing d, where
// weeks begin on the anchor weekday. The legacy aggregation used Tuesday
// through Monday periods, so the default anchor is Tuesday.
func WeekStart(d time.Time, anchor time.Weekday) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) - int(anchor) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekLabel formats a week-start date as the canonical week identifier.
func WeekLabel(start time.Time) string {
	return start.Format(weekLabelLayout)
}
