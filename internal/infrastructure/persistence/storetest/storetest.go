// Package storetest holds the behaviour every tracking.Store backend must
// share. Backends call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

// Factory returns a fresh, empty store. The store is closed by Run.
type Factory func(t *testing.T) tracking.Store

// Run exercises the full Store contract against stores made by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s tracking.Store)
	}{
		{"sessions", testSessions},
		{"session ids are never reused", testSessionIDs},
		{"empty sums are zero", testEmptySums},
		{"income", testIncome},
		{"milestones", testMilestones},
		{"skills", testSkills},
		{"notes", testNotes},
		{"settings", testSettings},
		{"unknown ids are no-ops", testUnknownIDs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tt.fn(t, s)
		})
	}
}

func testSessions(t *testing.T, s tracking.Store) {
	ctx := context.Background()

	for _, ps := range []tracking.PracticeSession{
		{Kind: tracking.SessionLanguage, Date: "2024-01-01", Amount: 30, Category: "speaking"},
		{Kind: tracking.SessionLanguage, Date: "2024-01-02", Amount: 45},
		{Kind: tracking.SessionLanguage, Date: "2024-01-02", Amount: 15, Note: "flashcards"},
		{Kind: tracking.SessionStudy, Date: "2024-01-02", Amount: 1.5},
	} {
		id, err := s.CreateSession(ctx, ps)
		require.NoError(t, err)
		assert.Positive(t, id)
	}

	total, err := s.SumSessions(ctx, tracking.SessionLanguage, tracking.AllTime)
	require.NoError(t, err)
	assert.Equal(t, 90.0, total)

	week, err := s.SumSessions(ctx, tracking.SessionLanguage, tracking.Between("2024-01-02", "2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 60.0, week)

	study, err := s.SumSessions(ctx, tracking.SessionStudy, tracking.AllTime)
	require.NoError(t, err)
	assert.Equal(t, 1.5, study)

	dates, err := s.SessionDates(ctx, tracking.SessionLanguage)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, dates)

	on, err := s.SessionsOn(ctx, tracking.SessionLanguage, "2024-01-02")
	require.NoError(t, err)
	require.Len(t, on, 2)
	assert.Equal(t, 45.0, on[0].Amount)
	assert.Equal(t, "flashcards", on[1].Note)

	list, err := s.ListSessions(ctx, tracking.SessionLanguage, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-01-02", list[0].Date)
	assert.Equal(t, tracking.SessionLanguage, list[0].Kind)

	all, err := s.ListSessions(ctx, tracking.SessionLanguage, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "speaking", all[2].Category)

	require.NoError(t, s.DeleteSession(ctx, tracking.SessionLanguage, all[2].ID))
	dates, err = s.SessionDates(ctx, tracking.SessionLanguage)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02"}, dates)
}

func testSessionIDs(t *testing.T, s tracking.Store) {
	ctx := context.Background()
	ps := tracking.PracticeSession{Kind: tracking.SessionStudy, Date: "2024-01-01", Amount: 1}

	first, err := s.CreateSession(ctx, ps)
	require.NoError(t, err)
	second, err := s.CreateSession(ctx, ps)
	require.NoError(t, err)
	require.NoError(t, s.DeleteSession(ctx, tracking.SessionStudy, second))

	third, err := s.CreateSession(ctx, ps)
	require.NoError(t, err)
	assert.Greater(t, second, first)
	assert.Greater(t, third, second)
}

func testEmptySums(t *testing.T, s tracking.Store) {
	ctx := context.Background()

	for _, kind := range tracking.SessionKinds {
		total, err := s.SumSessions(ctx, kind, tracking.AllTime)
		require.NoError(t, err)
		assert.Zero(t, total)

		dates, err := s.SessionDates(ctx, kind)
		require.NoError(t, err)
		assert.Empty(t, dates)
	}

	income, err := s.SumIncome(ctx, tracking.IncomeAmount, tracking.Between("2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.Zero(t, income)
}

func testIncome(t *testing.T, s tracking.Store) {
	ctx := context.Background()

	_, err := s.CreateIncome(ctx, tracking.IncomeEvent{
		Title: "Landing page", Date: "2024-01-05", Amount: decimal.RequireFromString("300.50"),
		Hours: 6, Platform: "Upwork", Description: "React + Tailwind",
	})
	require.NoError(t, err)
	_, err = s.CreateIncome(ctx, tracking.IncomeEvent{
		Title: "Logo", Date: "2024-02-01", Amount: decimal.RequireFromString("120"),
	})
	require.NoError(t, err)

	jan, err := s.SumIncome(ctx, tracking.IncomeAmount, tracking.Between("2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.InDelta(t, 300.5, jan, 1e-9)

	hours, err := s.SumIncome(ctx, tracking.IncomeHours, tracking.AllTime)
	require.NoError(t, err)
	assert.Equal(t, 6.0, hours)

	list, err := s.ListIncome(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Logo", list[0].Title)
	assert.True(t, list[1].Amount.Equal(decimal.RequireFromString("300.5")), list[1].Amount.String())
	assert.Equal(t, "Upwork", list[1].Platform)

	require.NoError(t, s.DeleteIncome(ctx, list[0].ID))
	list, err = s.ListIncome(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testMilestones(t *testing.T, s tracking.Store) {
	ctx := context.Background()

	exam, err := s.CreateMilestone(ctx, tracking.Milestone{Title: "B1 exam", TargetDate: "2024-06-01", Category: "language"})
	require.NoError(t, err)
	_, err = s.CreateMilestone(ctx, tracking.Milestone{Title: "First client", TargetDate: "2024-03-01"})
	require.NoError(t, err)
	_, err = s.CreateMilestone(ctx, tracking.Milestone{Title: "Visa", TargetDate: "2024-09-01"})
	require.NoError(t, err)

	done := true
	notes := "booked for June"
	require.NoError(t, s.UpdateMilestone(ctx, exam, tracking.MilestonePatch{Notes: &notes}))

	all, err := s.ListMilestones(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "First client", all[0].Title)
	assert.Equal(t, "booked for June", all[1].Notes)
	assert.Equal(t, "language", all[1].Category)

	require.NoError(t, s.UpdateMilestone(ctx, all[0].ID, tracking.MilestonePatch{Completed: &done}))

	upcoming, err := s.UpcomingMilestones(ctx, "2024-06-30", 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "B1 exam", upcoming[0].Title)

	require.NoError(t, s.DeleteMilestone(ctx, exam))
	all, err = s.ListMilestones(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func testSkills(t *testing.T, s tracking.Store) {
	ctx := context.Background()
	seed := []tracking.Skill{
		{SkillID: "py-basics", Name: "Python basics", Phase: 1},
		{SkillID: "py-async", Name: "asyncio", Phase: 2},
		{SkillID: "py-types", Name: "Typing", Phase: 1},
	}

	added, err := s.SeedSkills(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	url := "https://github.com/me/crawler"
	done := true
	require.NoError(t, s.UpdateSkill(ctx, "py-basics", tracking.SkillPatch{Completed: &done, ProjectURL: &url}))

	// reseeding keeps existing progress
	added, err = s.SeedSkills(ctx, append(seed, tracking.Skill{SkillID: "py-web", Name: "FastAPI", Phase: 3}))
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	skills, err := s.ListSkills(ctx)
	require.NoError(t, err)
	require.Len(t, skills, 4)
	assert.Equal(t, []string{"py-basics", "py-types", "py-async", "py-web"},
		[]string{skills[0].SkillID, skills[1].SkillID, skills[2].SkillID, skills[3].SkillID})
	assert.True(t, skills[0].Completed)
	require.NotNil(t, skills[0].ProjectURL)
	assert.Equal(t, url, *skills[0].ProjectURL)
	assert.Nil(t, skills[1].ProjectURL)

	empty := ""
	require.NoError(t, s.UpdateSkill(ctx, "py-basics", tracking.SkillPatch{ProjectURL: &empty}))
	skills, err = s.ListSkills(ctx)
	require.NoError(t, err)
	assert.Nil(t, skills[0].ProjectURL)
	assert.True(t, skills[0].Completed)
}

func testNotes(t *testing.T, s tracking.Store) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	first, err := s.CreateNote(ctx, tracking.Note{Title: "Week 1", Category: "language", Content: "Started **tones**", CreatedAt: t0, UpdatedAt: t0})
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, tracking.Note{Content: "Second", CreatedAt: t0.Add(time.Hour), UpdatedAt: t0.Add(time.Hour)})
	require.NoError(t, err)

	content := "Started tones and numbers"
	at := t0.Add(2 * time.Hour)
	require.NoError(t, s.UpdateNote(ctx, first, tracking.NotePatch{Content: &content}, at))

	notes, err := s.ListNotes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Second", notes[0].Content)
	assert.Equal(t, content, notes[1].Content)
	assert.Equal(t, "Week 1", notes[1].Title)
	assert.Equal(t, "language", notes[1].Category)
	assert.Empty(t, notes[0].Category)
	assert.True(t, notes[1].CreatedAt.Equal(t0))
	assert.True(t, notes[1].UpdatedAt.Equal(at))

	category := "reflection"
	require.NoError(t, s.UpdateNote(ctx, first, tracking.NotePatch{Category: &category}, at))
	notes, err = s.ListNotes(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "reflection", notes[1].Category)
	assert.Equal(t, content, notes[1].Content)

	require.NoError(t, s.DeleteNote(ctx, first))
	notes, err = s.ListNotes(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func testSettings(t *testing.T, s tracking.Store) {
	ctx := context.Background()

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, tracking.DefaultSettings(), got)

	target := decimal.RequireFromString("3500")
	require.NoError(t, s.MergeSettings(ctx, tracking.SettingsPatch{IncomeTarget: &target}))
	require.NoError(t, s.MergeSettings(ctx, tracking.SettingsPatch{
		ExchangeRates: map[string]decimal.Decimal{"GBP": decimal.RequireFromString("1.27")},
	}))

	got, err = s.GetSettings(ctx)
	require.NoError(t, err)
	def := tracking.DefaultSettings()
	assert.True(t, got.IncomeTarget.Equal(target))
	assert.Equal(t, def.TargetDate, got.TargetDate)
	assert.Equal(t, def.LanguageWeeklyTarget, got.LanguageWeeklyTarget)
	assert.True(t, got.ExchangeRates["EUR"].Equal(def.ExchangeRates["EUR"]))
	assert.True(t, got.ExchangeRates["GBP"].Equal(decimal.RequireFromString("1.27")))
}

func testUnknownIDs(t *testing.T, s tracking.Store) {
	ctx := context.Background()
	done := true
	content := "x"

	assert.NoError(t, s.DeleteSession(ctx, tracking.SessionLanguage, 999))
	assert.NoError(t, s.DeleteIncome(ctx, 999))
	assert.NoError(t, s.UpdateMilestone(ctx, 999, tracking.MilestonePatch{Completed: &done}))
	assert.NoError(t, s.DeleteMilestone(ctx, 999))
	assert.NoError(t, s.UpdateSkill(ctx, "missing", tracking.SkillPatch{Completed: &done}))
	assert.NoError(t, s.UpdateNote(ctx, 999, tracking.NotePatch{Content: &content}, time.Now()))
	assert.NoError(t, s.DeleteNote(ctx, 999))

	milestones, err := s.ListMilestones(ctx)
	require.NoError(t, err)
	assert.Empty(t, milestones)
}
