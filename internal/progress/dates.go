package progress

import (
	"fmt"
	"strings"
	"time"
)

// Quiz dates are written by the app as DD-MM-YYYY. Older records may carry
// DD-MM, and imports may use ISO dates or full timestamps.
var quizDateLayouts = []string{
	"2-1-2006",
	"2006-1-2",
}

// ParseQuizDate returns the calendar day of a stored quiz date as midnight in
// now's location. DD-MM dates take the most recent year that does not put
// them after today.
func ParseQuizDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	loc := now.Location()

	for _, layout := range quizDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
		}
	}

	if t, err := time.Parse("2-1", s); err == nil {
		return dayMonthDate(t.Day(), t.Month(), now)
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t = t.In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
	}

	return time.Time{}, false
}

// dayMonthDate places a DD-MM date in now's year, or the year before when
// that would be in the future. 29-02 only exists in leap years.
func dayMonthDate(day int, month time.Month, now time.Time) (time.Time, bool) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	year := now.Year()
	if time.Date(year, month, day, 0, 0, 0, 0, loc).After(today) {
		year--
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

// daysBetween counts calendar days from a to b, ignoring time of day and
// daylight-saving shifts.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// FormatDateDMY formats t as DD-MM-YYYY.
func FormatDateDMY(t time.Time) string {
	return fmt.Sprintf("%02d-%02d-%d", t.Day(), int(t.Month()), t.Year())
}

// FormatDateTimeDM formats t as DD-MM HH:MM.
func FormatDateTimeDM(t time.Time) string {
	return fmt.Sprintf("%02d-%02d %02d:%02d", t.Day(), int(t.Month()), t.Hour(), t.Minute())
}
