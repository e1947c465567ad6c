package query

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relohub/progress-tracker/internal/domain/metrics"
	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/memory"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// 2024-01-03 is a Wednesday; the Monday week is 01-01..01-07.
var wednesday = timeutil.FixedClock(time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC))

func session(t *testing.T, s tracking.Store, kind tracking.SessionKind, date string, amount float64) {
	t.Helper()
	_, err := s.CreateSession(context.Background(), tracking.PracticeSession{Kind: kind, Date: date, Amount: amount})
	require.NoError(t, err)
}

func income(t *testing.T, s tracking.Store, date, amount string, hours float64) {
	t.Helper()
	_, err := s.CreateIncome(context.Background(), tracking.IncomeEvent{
		Title: "gig " + date, Date: date, Amount: decimal.RequireFromString(amount), Hours: hours,
	})
	require.NoError(t, err)
}

func milestone(t *testing.T, s tracking.Store, title, date string, done bool) {
	t.Helper()
	_, err := s.CreateMilestone(context.Background(), tracking.Milestone{Title: title, TargetDate: date, Completed: done})
	require.NoError(t, err)
}

// busyWeek: study 5h this week, language 60 min on each of 01-01..01-03,
// 1000 earned this month over 10 hours and 500 last month.
func busyWeek(t *testing.T) tracking.Store {
	s := memory.New()
	session(t, s, tracking.SessionStudy, "2024-01-02", 2)
	session(t, s, tracking.SessionStudy, "2024-01-03", 3)
	session(t, s, tracking.SessionStudy, "2023-12-28", 4)
	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		session(t, s, tracking.SessionLanguage, d, 60)
	}
	income(t, s, "2024-01-02", "1000", 10)
	income(t, s, "2023-12-20", "500", 0)
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetStats_EmptyStore(t *testing.T) {
	h := NewGetStatsHandler(memory.New(), wednesday, DefaultOptions())

	got, err := h.Handle(context.Background(), GetStatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-03", got.Date)
	assert.Equal(t, metrics.Rollup{}, got.Study.Hours)
	assert.Equal(t, 0, got.Language.Streak.Streak)
	assert.Equal(t, 0, got.Language.LongestStreak)
	assert.True(t, got.Income.Total.IsZero())
	assert.True(t, got.Income.AverageHourlyRate.IsZero())
	assert.Equal(t, 0, got.Finance.RunwayMonths)
	assert.Equal(t, CompletionDTO{}, got.Skills)
	assert.Equal(t, "D", got.Grade)
}

func TestGetStats_BusyWeek(t *testing.T) {
	s := busyWeek(t)
	savings := decimal.RequireFromString("9000")
	require.NoError(t, s.MergeSettings(context.Background(), tracking.SettingsPatch{Savings: &savings}))

	got, err := NewGetStatsHandler(s, wednesday, DefaultOptions()).Handle(context.Background(), GetStatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, 3.0, got.Study.Hours.Today)
	assert.Equal(t, 5.0, got.Study.Hours.Week)
	assert.Equal(t, 9.0, got.Study.Hours.AllTime)
	assert.Equal(t, 50, got.Study.WeekPercent)

	assert.Equal(t, 180.0, got.Language.Minutes.Week)
	assert.Equal(t, 3.0, got.Language.Hours.Week)
	assert.Equal(t, 42, got.Language.WeekPercent)
	assert.Equal(t, 3, got.Language.CurrentStreak)
	assert.Equal(t, 3, got.Language.LongestStreak)
	assert.True(t, got.Language.Streak.PracticedToday)

	assert.Equal(t, "1500", got.Income.Total.String())
	assert.Equal(t, "1000", got.Income.Month.String())
	assert.Equal(t, 50, got.Income.MonthPercent)
	assert.Equal(t, "1000", got.Income.Gap.String())
	assert.Equal(t, 2, got.Income.Events)
	assert.Equal(t, "150", got.Income.AverageHourlyRate.String())

	// 9000 / 1500 default burn
	assert.Equal(t, 6, got.Finance.RunwayMonths)
	assert.Equal(t, "D", got.Grade)
}

func TestGetStats_DateOverride(t *testing.T) {
	s := busyWeek(t)
	h := NewGetStatsHandler(s, wednesday, DefaultOptions())

	got, err := h.Handle(context.Background(), GetStatsQuery{Date: "2024-01-02"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Study.Hours.Today)
	assert.Equal(t, 2, got.Language.CurrentStreak)

	_, err = h.Handle(context.Background(), GetStatsQuery{Date: "2024-1-2"})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestGetStats_DaysRemaining(t *testing.T) {
	s := memory.New()
	target := "2024-01-13"
	require.NoError(t, s.MergeSettings(context.Background(), tracking.SettingsPatch{TargetDate: &target}))

	got, err := NewGetStatsHandler(s, wednesday, DefaultOptions()).Handle(context.Background(), GetStatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 10, got.DaysRemaining)

	got, err = NewGetStatsHandler(s, wednesday, DefaultOptions()).Handle(context.Background(), GetStatsQuery{Date: "2024-02-01"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.DaysRemaining)
}

// ══════════════════════════════════════════════════════════════════════════════
// TODAY
// ══════════════════════════════════════════════════════════════════════════════

func TestGetToday(t *testing.T) {
	s := busyWeek(t)
	milestone(t, s, "overdue", "2023-12-30", false)
	milestone(t, s, "this week", "2024-01-05", false)
	milestone(t, s, "done", "2024-01-04", true)
	milestone(t, s, "later", "2024-01-20", false)

	h := NewGetTodayHandler(s, wednesday, metrics.FixedChooser(0), DefaultOptions())
	got, err := h.Handle(context.Background(), GetTodayQuery{})
	require.NoError(t, err)

	assert.Equal(t, "Wednesday", got.Weekday)
	assert.Equal(t, "2024-01-01", got.WeekStart)
	assert.Equal(t, "2024-01-07", got.WeekEnd)
	assert.Equal(t, metrics.Motivation(metrics.FixedChooser(0)), got.Motivation)

	assert.Equal(t, "Python", got.Study.Label)
	assert.Equal(t, "hours", got.Study.Unit)
	assert.Equal(t, 3.0, got.Study.Today)
	assert.Equal(t, 1.4, got.Study.DailyTarget)
	assert.Len(t, got.Study.Sessions, 1)

	assert.Equal(t, "minutes", got.Language.Unit)
	assert.Equal(t, 60.0, got.Language.Today)
	assert.Equal(t, 60.0, got.Language.DailyTarget)
	assert.Equal(t, 420.0, got.Language.WeeklyTarget)
	assert.Equal(t, 180.0, got.Language.Week)

	assert.Equal(t, "1000", got.Income.Gap.String())
	assert.Equal(t, 50, got.Income.Percent)

	require.Len(t, got.UpcomingMilestones, 2)
	assert.Equal(t, "overdue", got.UpcomingMilestones[0].Title)
	assert.Equal(t, "this week", got.UpcomingMilestones[1].Title)
}

func TestGetToday_EmptyListsAreNotNil(t *testing.T) {
	h := NewGetTodayHandler(memory.New(), wednesday, metrics.FixedChooser(0), DefaultOptions())
	got, err := h.Handle(context.Background(), GetTodayQuery{})
	require.NoError(t, err)
	assert.NotNil(t, got.Study.Sessions)
	assert.NotNil(t, got.Language.Sessions)
	assert.NotNil(t, got.UpcomingMilestones)
	// nothing earned against the default target
	assert.Equal(t, 0, got.Income.Percent)
}

func TestGetToday_SundayWeekStart(t *testing.T) {
	opts := DefaultOptions()
	opts.FirstWeekday = time.Sunday
	got, err := NewGetTodayHandler(memory.New(), wednesday, nil, opts).Handle(context.Background(), GetTodayQuery{})
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", got.WeekStart)
	assert.Equal(t, "2024-01-06", got.WeekEnd)
}

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATIONS
// ══════════════════════════════════════════════════════════════════════════════

func recommendations(t *testing.T, s tracking.Store) *RecommendationsDTO {
	t.Helper()
	opts := DefaultOptions()
	h := NewGetRecommendationsHandler(s, wednesday, metrics.NewRecommender(opts.Labels, metrics.FixedChooser(0)), opts)
	got, err := h.Handle(context.Background(), GetRecommendationsQuery{})
	require.NoError(t, err)
	return got
}

func TestGetRecommendations_LanguageBehind(t *testing.T) {
	got := recommendations(t, busyWeek(t))

	assert.Equal(t, metrics.AreaLanguage, got.Focus.Area)
	assert.Equal(t, metrics.PriorityHigh, got.Focus.Priority)
	assert.Equal(t, "You're at 42% of your Vietnamese target (vs 50% Python)", got.Focus.Reason)
	assert.Equal(t, metrics.DefaultSuggestionPools().Language[0], got.Focus.Suggestion)

	assert.Equal(t, 50, got.Weekly.StudyPercent)
	assert.Equal(t, 42, got.Weekly.LanguagePercent)
	assert.Equal(t, 50, got.Weekly.IncomePercent)
	assert.Equal(t, 47.3, got.Weekly.Average)
	assert.Equal(t, "D", got.Weekly.Grade)

	// study is at exactly 50, so no adjustment
	assert.Nil(t, got.Adjustment)
}

func TestGetRecommendations_StreakAtRiskWins(t *testing.T) {
	s := memory.New()
	session(t, s, tracking.SessionLanguage, "2024-01-01", 30)
	session(t, s, tracking.SessionLanguage, "2024-01-02", 30)

	got := recommendations(t, s)
	assert.Equal(t, metrics.PriorityUrgent, got.Focus.Priority)
	assert.Equal(t, "Your 2-day streak is at risk!", got.Focus.Reason)
	assert.Equal(t, "Just 60 more minutes of Vietnamese to keep it alive", got.Focus.Suggestion)
	assert.Equal(t, metrics.StreakStatus{Streak: 2, AtRisk: true, GraceActive: true}, got.Streak)

	require.NotNil(t, got.Adjustment)
	assert.Equal(t, 7, got.Adjustment.StudyWeeklyTarget)
	assert.Equal(t, 4, got.Adjustment.LanguageWeeklyTarget)
	assert.True(t, strings.HasPrefix(got.Adjustment.Message, "Consider adjusting targets"))
}

func TestGetRecommendations_Pacing(t *testing.T) {
	s := memory.New()
	target := "2024-01-31"
	require.NoError(t, s.MergeSettings(context.Background(), tracking.SettingsPatch{TargetDate: &target}))
	session(t, s, tracking.SessionLanguage, "2023-12-01", 6000) // 100 hours

	got := recommendations(t, s)
	assert.Equal(t, 100.0, got.Pacing.Total)
	assert.Equal(t, 500.0, got.Pacing.HoursRemaining)
	assert.Equal(t, 4.0, got.Pacing.WeeksRemaining)
	assert.Equal(t, 125.0, got.Pacing.RequiredWeeklyRate)
	assert.False(t, got.Pacing.OnTrack)
}

// ══════════════════════════════════════════════════════════════════════════════
// LISTS
// ══════════════════════════════════════════════════════════════════════════════

func TestListSessions(t *testing.T) {
	s := busyWeek(t)
	h := NewListSessionsHandler(s)

	got, err := h.Handle(context.Background(), ListSessionsQuery{Kind: "vietnamese", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, tracking.SessionLanguage, got.Kind)
	assert.Equal(t, "minutes", got.Unit)
	require.Len(t, got.Sessions, 2)
	assert.Equal(t, "2024-01-03", got.Sessions[0].Date)

	_, err = h.Handle(context.Background(), ListSessionsQuery{Kind: "chess"})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), ListSessionsQuery{Kind: "study", Limit: -1})
	assert.True(t, shared.IsValidation(err))
}

func TestListIncome_Converted(t *testing.T) {
	s := memory.New()
	income(t, s, "2024-01-02", "108", 2)
	h := NewListIncomeHandler(s)

	got, err := h.Handle(context.Background(), ListIncomeQuery{Currency: "eur"})
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "EUR", got.Currency)
	require.NotNil(t, got.Events[0].Converted)
	assert.Equal(t, "100", got.Events[0].Converted.String())
	assert.Equal(t, "54", got.Events[0].HourlyRate.String())

	_, err = h.Handle(context.Background(), ListIncomeQuery{Currency: "XXQ"})
	assert.True(t, shared.IsValidation(err))

	// a valid code without a configured rate
	_, err = h.Handle(context.Background(), ListIncomeQuery{Currency: "JPY"})
	assert.True(t, shared.IsValidation(err))
}

func TestListMilestones(t *testing.T) {
	s := memory.New()
	milestone(t, s, "a", "2024-02-01", true)
	milestone(t, s, "b", "2024-03-01", false)
	h := NewListMilestonesHandler(s)

	got, err := h.Handle(context.Background(), ListMilestonesQuery{})
	require.NoError(t, err)
	assert.Len(t, got.Milestones, 2)
	assert.Equal(t, CompletionDTO{Completed: 1, Total: 2, Percent: 50}, got.Progress)

	got, err = h.Handle(context.Background(), ListMilestonesQuery{PendingOnly: true})
	require.NoError(t, err)
	require.Len(t, got.Milestones, 1)
	assert.Equal(t, "b", got.Milestones[0].Title)
	assert.Equal(t, 2, got.Progress.Total)
}

func TestListSkills_GroupedByPhase(t *testing.T) {
	s := memory.New()
	_, err := s.SeedSkills(context.Background(), []tracking.Skill{
		{SkillID: "b", Name: "B", Phase: 2},
		{SkillID: "a", Name: "A", Phase: 1},
		{SkillID: "c", Name: "C", Phase: 2},
	})
	require.NoError(t, err)
	done := true
	require.NoError(t, s.UpdateSkill(context.Background(), "c", tracking.SkillPatch{Completed: &done}))

	got, err := NewListSkillsHandler(s).Handle(context.Background(), ListSkillsQuery{})
	require.NoError(t, err)
	require.Len(t, got.Phases, 2)
	assert.Equal(t, 1, got.Phases[0].Phase)
	assert.Equal(t, CompletionDTO{Completed: 1, Total: 2, Percent: 50}, got.Phases[1].Progress)
	assert.Equal(t, CompletionDTO{Completed: 1, Total: 3, Percent: 33}, got.Progress)
}

type upperRenderer struct{}

func (upperRenderer) Render(md string) (string, error) { return "<p>" + strings.ToUpper(md) + "</p>", nil }

func TestListNotes_Rendered(t *testing.T) {
	s := memory.New()
	_, err := s.CreateNote(context.Background(), tracking.Note{Content: "hello", CreatedAt: time.Time(wednesday)})
	require.NoError(t, err)

	got, err := NewListNotesHandler(s, upperRenderer{}).Handle(context.Background(), ListNotesQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "<p>HELLO</p>", got[0].HTML)

	got, err = NewListNotesHandler(s, nil).Handle(context.Background(), ListNotesQuery{})
	require.NoError(t, err)
	assert.Empty(t, got[0].HTML)
}

func TestGetSettings(t *testing.T) {
	got, err := NewGetSettingsHandler(memory.New()).Handle(context.Background(), GetSettingsQuery{})
	require.NoError(t, err)
	assert.Equal(t, tracking.DefaultSettings(), got.Settings)
	assert.Equal(t, "USD", got.BaseCurrency)
	assert.Equal(t, []string{"EUR", "USD", "VND"}, got.Currencies)
}
