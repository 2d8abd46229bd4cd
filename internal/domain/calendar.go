package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire and storage format.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, NewValidationError("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// DateOf drops the clock part of t, keeping its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing t, at UTC midnight.
func WeekStart(t time.Time) time.Time {
	day := DateOf(t)
	// time.Weekday is Sunday=0; shift so Monday=0 and Sunday=6.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseWeekStart parses any date and snaps it to the Monday of its week.
func ParseWeekStart(s string) (time.Time, error) {
	d, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return WeekStart(d), nil
}

// WeekDates returns Monday..Sunday for the week starting at monday.
func WeekDates(monday time.Time) [7]time.Time {
	start := WeekStart(monday)
	var out [7]time.Time
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// WeekEnd returns the Sunday closing the week that starts at monday.
func WeekEnd(monday time.Time) time.Time {
	return WeekStart(monday).AddDate(0, 0, 6)
}

// ISOWeek returns the ISO 8601 year and week number of t.
func ISOWeek(t time.Time) (year, week int) {
	return DateOf(t).ISOWeek()
}

// WeekLabel renders a week for navigation, e.g. "2026-W02".
func WeekLabel(monday time.Time) string {
	y, w := ISOWeek(monday)
	return fmt.Sprintf("%04d-W%02d", y, w)
}
