package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// ══════════════════════════════════════════════════════════════════════════════
// STREAKS
// ══════════════════════════════════════════════════════════════════════════════

func TestCurrentStreak(t *testing.T) {
	dates := NewDateSet([]string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-03"})
	assert.Equal(t, 3, CurrentStreak(dates, day("2024-01-03")))
	assert.Equal(t, 0, CurrentStreak(dates, day("2024-01-04")))
	assert.Equal(t, 0, CurrentStreak(NewDateSet(nil), day("2024-01-04")))
}

func TestStreakWithGrace(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		today string
		want  StreakStatus
	}{
		{
			name:  "practiced today",
			dates: []string{"2023-12-31", "2024-01-01", "2024-01-02", "2024-01-03"},
			today: "2024-01-03",
			want:  StreakStatus{Streak: 4, PracticedToday: true},
		},
		{
			name:  "grace from yesterday",
			dates: []string{"2024-01-01", "2024-01-02"},
			today: "2024-01-03",
			want:  StreakStatus{Streak: 2, AtRisk: true, GraceActive: true},
		},
		{
			name:  "two days ago only",
			dates: []string{"2024-01-01"},
			today: "2024-01-03",
			want:  StreakStatus{},
		},
		{
			name:  "gap breaks the run",
			dates: []string{"2024-01-01", "2024-01-03", "2024-01-04"},
			today: "2024-01-04",
			want:  StreakStatus{Streak: 2, PracticedToday: true},
		},
		{
			name:  "empty",
			today: "2024-01-04",
			want:  StreakStatus{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StreakWithGrace(NewDateSet(tt.dates), day(tt.today))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStreakWithGrace_MatchesMaximalRunEndingToday(t *testing.T) {
	today := day("2024-03-10")
	for run := 1; run <= 20; run++ {
		var dates []string
		for i := 0; i < run; i++ {
			dates = append(dates, today.AddDate(0, 0, -i).Format("2006-01-02"))
		}
		// a separate earlier run must not be counted
		dates = append(dates, today.AddDate(0, 0, -run-2).Format("2006-01-02"))

		got := StreakWithGrace(NewDateSet(dates), today)
		assert.Equal(t, run, got.Streak, "run %d", run)
		assert.Equal(t, run, CurrentStreak(NewDateSet(dates), today))
	}
}

func TestStreakWithGrace_AcrossMonthBoundary(t *testing.T) {
	dates := NewDateSet([]string{"2024-02-28", "2024-02-29", "2024-03-01"})
	assert.Equal(t, 3, CurrentStreak(dates, day("2024-03-01")))
}

func TestLongestStreak(t *testing.T) {
	dates := NewDateSet([]string{
		"2024-01-01", "2024-01-02",
		"2024-01-05", "2024-01-06", "2024-01-07", "2024-01-08",
		"2024-01-10",
	})
	assert.Equal(t, 4, LongestStreak(dates))
	assert.Equal(t, 0, LongestStreak(NewDateSet(nil)))
}

// ══════════════════════════════════════════════════════════════════════════════
// ROLLUPS
// ══════════════════════════════════════════════════════════════════════════════

func TestPeriodsFor(t *testing.T) {
	// Wednesday
	p := PeriodsFor(day("2024-01-10"), time.Monday)
	assert.Equal(t, tracking.Between("2024-01-08", "2024-01-14"), p.Week)
	assert.Equal(t, tracking.Between("2024-01-01", "2024-01-10"), p.Month)
	assert.Equal(t, "2024-01-10", p.Today)

	sunday := PeriodsFor(day("2024-01-10"), time.Sunday)
	assert.Equal(t, tracking.Between("2024-01-07", "2024-01-13"), sunday.Week)
}

func TestRollup_ScaleRounded(t *testing.T) {
	r := Rollup{Today: 90, Week: 120, Month: 140, AllTime: 170}
	assert.Equal(t, Rollup{Today: 1.5, Week: 2, Month: 2.3, AllTime: 2.8}, r.Scale(1.0/60).Rounded())
}

// ══════════════════════════════════════════════════════════════════════════════
// PACING
// ══════════════════════════════════════════════════════════════════════════════

func TestPace(t *testing.T) {
	p := Pace(PacingInput{
		Total:        100,
		Target:       600,
		TargetDate:   day("2024-12-30"),
		Today:        day("2024-01-01"),
		WeeklyTarget: 7,
	})
	// 364 days is 52 weeks, 500/52 = 9.615...
	assert.Equal(t, 500.0, p.HoursRemaining)
	assert.Equal(t, 52.0, p.WeeksRemaining)
	assert.Equal(t, 9.6, p.RequiredWeeklyRate)
	assert.False(t, p.OnTrack)
}

func TestPace_TargetReachedIsZeroRate(t *testing.T) {
	for _, targetDate := range []string{"2023-01-01", "2024-01-02", "2030-01-01"} {
		p := Pace(PacingInput{Total: 600, Target: 600, TargetDate: day(targetDate), Today: day("2024-01-01"), WeeklyTarget: 0})
		assert.Zero(t, p.RequiredWeeklyRate, targetDate)
		assert.True(t, p.OnTrack)
	}
}

func TestPace_PastDeadlineUsesOneWeek(t *testing.T) {
	p := Pace(PacingInput{Total: 590, Target: 600, TargetDate: day("2023-06-01"), Today: day("2024-01-01"), WeeklyTarget: 7})
	assert.Equal(t, 1.0, p.WeeksRemaining)
	assert.Equal(t, 10.0, p.RequiredWeeklyRate)
}

// ══════════════════════════════════════════════════════════════════════════════
// PERCENT / GRADE / ADJUSTMENT
// ══════════════════════════════════════════════════════════════════════════════

func TestPercent(t *testing.T) {
	assert.Equal(t, 50, Percent(3.5, 7))
	assert.Equal(t, 100, Percent(20, 7))
	assert.Equal(t, 100, Percent(0, 0))
	// float products are truncated as-is, never nudged up
	assert.Equal(t, 28, Percent(2.9, 10))
	assert.Equal(t, 28, Percent(0.29, 1))
	assert.Equal(t, 0, Percent(0, 10))
	assert.Equal(t, 14, Percent(1, 7))
}

func TestGrade_Boundaries(t *testing.T) {
	assert.Equal(t, "A", Grade(90))
	assert.Equal(t, "B", Grade(89.99))
	assert.Equal(t, "B", Grade(75))
	assert.Equal(t, "C", Grade(60))
	assert.Equal(t, "D", Grade(59.99))
	assert.Equal(t, "A", Grade(Average(100, 90, 80)))
}

func TestProposeAdjustment(t *testing.T) {
	labels := DefaultLabels()
	assert.Nil(t, ProposeAdjustment(50, 10, 10, 7, labels))
	assert.Nil(t, ProposeAdjustment(10, 50, 10, 7, labels))

	adj := ProposeAdjustment(49, 49, 10, 5, labels)
	require.NotNil(t, adj)
	assert.Equal(t, 7, adj.StudyWeeklyTarget)
	assert.Equal(t, 4, adj.LanguageWeeklyTarget)
	assert.Equal(t, "Consider adjusting targets: Python to 7h/week, Vietnamese to 4h/week", adj.Message)
}

func TestRunwayMonths(t *testing.T) {
	d := decimal.RequireFromString
	assert.Equal(t, 6, RunwayMonths(d("10000"), d("1500")))
	assert.Equal(t, 0, RunwayMonths(d("10000"), decimal.Zero))
	assert.Equal(t, 0, RunwayMonths(decimal.Zero, d("1500")))
	assert.True(t, IncomeGap(d("2000"), d("2500")).IsZero())
	assert.True(t, IncomeGap(d("2000"), d("500")).Equal(d("1500")))
}

func TestMotivation(t *testing.T) {
	assert.Equal(t, motivations[0], Motivation(FixedChooser(0)))
	assert.Equal(t, motivations[1], Motivation(FixedChooser(len(motivations)+1)))
	assert.NotEmpty(t, Motivation(RandomChooser{}))
}
