package metrics

import (
	"sort"
	"time"

	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAKS
// ══════════════════════════════════════════════════════════════════════════════

// DateSet is the set of distinct days on which practice was logged.
type DateSet map[string]struct{}

// NewDateSet collapses dates (duplicates allowed) into a set.
func NewDateSet(dates []string) DateSet {
	set := make(DateSet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// Has reports whether day has a session.
func (s DateSet) Has(day time.Time) bool {
	_, ok := s[timeutil.FormatDay(day)]
	return ok
}

// runEndingAt counts consecutive days with sessions walking backward from day.
func (s DateSet) runEndingAt(day time.Time) int {
	n := 0
	for s.Has(day) {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// StreakStatus is the streak with its one-day grace window applied.
type StreakStatus struct {
	Streak         int  `json:"streak"`
	AtRisk         bool `json:"at_risk"`
	GraceActive    bool `json:"grace_active"`
	PracticedToday bool `json:"practiced_today"`
}

// CurrentStreak is the strict streak: consecutive days ending today, or 0 when
// today has no session.
func CurrentStreak(dates DateSet, today time.Time) int {
	return dates.runEndingAt(timeutil.StartOfDay(today))
}

// StreakWithGrace keeps yesterday's run alive (flagged at risk) until the end
// of today.
func StreakWithGrace(dates DateSet, today time.Time) StreakStatus {
	today = timeutil.StartOfDay(today)
	if dates.Has(today) {
		return StreakStatus{Streak: dates.runEndingAt(today), PracticedToday: true}
	}

	yesterday := today.AddDate(0, 0, -1)
	if dates.Has(yesterday) {
		return StreakStatus{
			Streak:      dates.runEndingAt(yesterday),
			AtRisk:      true,
			GraceActive: true,
		}
	}
	return StreakStatus{}
}

// LongestStreak is the longest run of consecutive days anywhere in dates.
func LongestStreak(dates DateSet) int {
	if len(dates) == 0 {
		return 0
	}
	days := make([]time.Time, 0, len(dates))
	for d := range dates {
		t, err := timeutil.ParseDay(d)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, run := 0, 0
	for i, d := range days {
		if i > 0 && timeutil.DaysBetween(days[i-1], d) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}
