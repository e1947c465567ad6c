package tracking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange(t *testing.T) {
	r := Between("2024-01-01", "2024-01-07")
	assert.True(t, r.Contains("2024-01-01"))
	assert.True(t, r.Contains("2024-01-07"))
	assert.False(t, r.Contains("2023-12-31"))
	assert.False(t, r.Contains("2024-01-08"))
	assert.True(t, AllTime.Contains("1999-01-01"))
	assert.True(t, AllTime.IsAllTime())
}

func TestSessionKind(t *testing.T) {
	k, ok := ParseSessionKind("Vietnamese")
	require.True(t, ok)
	assert.Equal(t, SessionLanguage, k)
	assert.Equal(t, "minutes", k.Unit())
	assert.Equal(t, 1.5, k.ToHours(90))

	k, ok = ParseSessionKind("python")
	require.True(t, ok)
	assert.Equal(t, 2.0, k.ToHours(2))

	_, ok = ParseSessionKind("guitar")
	assert.False(t, ok)
}

func TestPracticeSession_Validate(t *testing.T) {
	s := PracticeSession{Kind: SessionStudy, Date: "2024-01-03", Amount: 1.5}
	assert.NoError(t, s.Validate())

	s.Date = "3 Jan"
	assert.Error(t, s.Validate())

	s.Date = "2024-01-03"
	s.Amount = 0
	assert.Error(t, s.Validate())

	s.Amount = 1
	s.Kind = "guitar"
	assert.Error(t, s.Validate())
}

func TestIncomeConversion(t *testing.T) {
	rates := DefaultSettings().ExchangeRates

	got, err := ToBase(dec("100"), "eur", rates)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("108")), got.String())

	back, err := FromBase(dec("108"), "EUR", rates)
	require.NoError(t, err)
	assert.True(t, back.Equal(dec("100")), back.String())

	same, err := ToBase(dec("42"), "", rates)
	require.NoError(t, err)
	assert.True(t, same.Equal(dec("42")))

	_, err = ToBase(dec("1"), "JPY", rates)
	assert.Error(t, err)

	assert.True(t, ValidCurrency("vnd"))
	assert.False(t, ValidCurrency("ZZZ"))
}

func TestIncomeEvent(t *testing.T) {
	e := IncomeEvent{Title: "Logo", Date: "2024-01-05", Amount: dec("300"), Hours: 4}
	assert.NoError(t, e.Validate())
	assert.True(t, e.HourlyRate().Equal(dec("75")))

	e.Hours = 0
	assert.True(t, e.HourlyRate().IsZero())

	e.Amount = decimal.Zero
	assert.Error(t, e.Validate())
}

func TestMilestonePatch(t *testing.T) {
	m := Milestone{ID: 3, Title: "B1 exam", TargetDate: "2024-06-01", Category: "language"}
	done := true
	notes := "booked"
	p := MilestonePatch{Completed: &done, Notes: &notes}

	require.NoError(t, p.Validate())
	got := p.Apply(m)
	assert.True(t, got.Completed)
	assert.Equal(t, "booked", got.Notes)
	assert.Equal(t, "B1 exam", got.Title)
	assert.Equal(t, int64(3), got.ID)

	bad := "June"
	assert.Error(t, MilestonePatch{TargetDate: &bad}.Validate())
	assert.True(t, MilestonePatch{}.IsEmpty())
}

func TestSkillPatch(t *testing.T) {
	s := Skill{SkillID: "py-async", Name: "asyncio", Phase: 2}
	url := "https://github.com/me/crawler"
	got := SkillPatch{ProjectURL: &url}.Apply(s)
	require.NotNil(t, got.ProjectURL)
	assert.Equal(t, url, *got.ProjectURL)
	assert.Equal(t, 2, got.Phase)

	empty := ""
	cleared := SkillPatch{ProjectURL: &empty}.Apply(got)
	assert.Nil(t, cleared.ProjectURL)

	skills := []Skill{{SkillID: "b", Phase: 2}, {SkillID: "z", Phase: 1}, {SkillID: "a", Phase: 2}}
	SortSkills(skills)
	assert.Equal(t, []string{"z", "a", "b"}, []string{skills[0].SkillID, skills[1].SkillID, skills[2].SkillID})
}

func TestNotePatch(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)
	n := Note{ID: 1, Content: "first", CreatedAt: created, UpdatedAt: created}

	content := "second"
	got := NotePatch{Content: &content}.Apply(n, later)
	assert.Equal(t, "second", got.Content)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)

	category := "language"
	got = NotePatch{Category: &category}.Apply(got, later)
	assert.Equal(t, "language", got.Category)
	assert.Equal(t, "second", got.Content)

	assert.True(t, NotePatch{}.IsEmpty())
	assert.False(t, NotePatch{Category: &category}.IsEmpty())

	blank := "  "
	assert.Error(t, NotePatch{Content: &blank}.Validate())
}
