// Package timeutil provides calendar-day helpers for the tracker.
// Dates are exchanged as canonical "YYYY-MM-DD" strings so that lexical order
// equals chronological order; times are interpreted in a configured location.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// FormatDate is the canonical calendar-day format (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// ══════════════════════════════════════════════════════════════════════════════
// CLOCK
// ══════════════════════════════════════════════════════════════════════════════

// Clock supplies the current instant. Everything that needs "today" takes it
// from a Clock so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// NewSystemClock returns a SystemClock for loc (UTC when nil).
func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return SystemClock{Location: loc}
}

// Now returns the current time in the clock's location.
func (c SystemClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now implements Clock.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Today returns the start of the current day according to clock.
func Today(clock Clock) time.Time {
	return StartOfDay(clock.Now())
}

// ══════════════════════════════════════════════════════════════════════════════
// CALENDAR DAYS
// ══════════════════════════════════════════════════════════════════════════════

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the most recent day (including t) that falls on first.
func StartOfWeek(t time.Time, first time.Weekday) time.Time {
	day := StartOfDay(t)
	back := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// EndOfWeek returns the last day of the 7-day week that starts on first.
func EndOfWeek(t time.Time, first time.Weekday) time.Time {
	return StartOfWeek(t, first).AddDate(0, 0, 6)
}

// StartOfMonth returns day 1 of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// FormatDay formats t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(FormatDate)
}

// ParseDay parses a canonical YYYY-MM-DD string as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(FormatDate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// IsCanonicalDay reports whether s is a valid date already in canonical form.
// "2024-1-3" parses nowhere, but "2024-02-30" is rejected as well.
func IsCanonicalDay(s string) bool {
	t, err := ParseDay(s)
	return err == nil && FormatDay(t) == s
}

// DaysBetween returns the number of whole days from a to b (negative when b
// is before a). Both are compared as calendar days.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// ParseWeekday parses an English weekday name ("monday", "Sun").
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("unknown weekday %q", s)
}

// LoadLocation loads a named location, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
