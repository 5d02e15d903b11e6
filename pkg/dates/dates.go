// Package dates converts between calendar dates, wall-clock times and display strings.
// Every function takes the reference instant explicitly.
package dates

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the ISO 8601 calendar date used in task records.
	DateLayout = "2006-01-02"
	// ClockLayout is the 24h wall-clock time used in task records.
	ClockLayout = "15:04"

	shortLayout   = "Mon, Jan 2"
	displayLayout = "Monday, January 2, 2006"
)

// Combine joins a YYYY-MM-DD date and an HH:MM time into an instant in loc.
// A nil loc means the local timezone.
func Combine(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// FormatDate renders a task date relative to now: "Today", "Tomorrow" or "Mon, Jan 2".
func FormatDate(date string, now time.Time) string {
	d, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return date
	}
	switch date {
	case CurrentDate(now):
		return "Today"
	case CurrentDate(AddDays(now, 1)):
		return "Tomorrow"
	}
	return d.Format(shortLayout)
}

// FormatTime turns "14:05" into "2:05 PM".
func FormatTime(clock string) string {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}

func CurrentDate(now time.Time) string {
	return now.Format(DateLayout)
}

func CurrentTime(now time.Time) string {
	return now.Format(ClockLayout)
}

// WeekDays returns the seven days (at midnight) of the Sunday-based week containing t.
func WeekDays(t time.Time) []time.Time {
	start := midnight(t)
	start = AddDays(start, -int(start.Weekday()))

	days := make([]time.Time, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, AddDays(start, i))
	}
	return days
}

// AddDays moves t by n calendar days, keeping the wall-clock time.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// FormatForDisplay renders "Monday, January 2, 2006".
func FormatForDisplay(t time.Time) string {
	return t.Format(displayLayout)
}

func IsToday(date string, now time.Time) bool {
	return date == CurrentDate(now)
}

func IsTomorrow(date string, now time.Time) bool {
	return date == CurrentDate(AddDays(now, 1))
}

// TimeOf returns the HH:MM wall-clock time of t.
func TimeOf(t time.Time) string {
	return t.Format(ClockLayout)
}

// WeekNumber returns the ISO 8601 week of t.
func WeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
