package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommend_Cascade(t *testing.T) {
	pools := DefaultSuggestionPools()
	r := NewRecommender(DefaultLabels(), FixedChooser(1))

	tests := []struct {
		name           string
		in             FocusInput
		wantArea       Area
		wantPriority   Priority
		wantReason     string
		wantSuggestion string
	}{
		{
			name: "streak at risk beats language behind",
			in: FocusInput{
				StudyPercent: 90, LanguagePercent: 10, IncomePercent: 0,
				Streak:               StreakStatus{Streak: 5, AtRisk: true, GraceActive: true},
				LanguageMinutesToday: 0,
			},
			wantArea:       AreaLanguage,
			wantPriority:   PriorityUrgent,
			wantReason:     "Your 5-day streak is at risk!",
			wantSuggestion: "Just 60 more minutes of Vietnamese to keep it alive",
		},
		{
			name: "streak top-up never below fifteen",
			in: FocusInput{
				StudyPercent: 90, LanguagePercent: 90,
				Streak:               StreakStatus{Streak: 2, AtRisk: true},
				LanguageMinutesToday: 55,
			},
			wantArea:       AreaLanguage,
			wantPriority:   PriorityUrgent,
			wantReason:     "Your 2-day streak is at risk!",
			wantSuggestion: "Just 15 more minutes of Vietnamese to keep it alive",
		},
		{
			name:           "language behind study",
			in:             FocusInput{StudyPercent: 80, LanguagePercent: 40, IncomePercent: 100},
			wantArea:       AreaLanguage,
			wantPriority:   PriorityHigh,
			wantReason:     "You're at 40% of your Vietnamese target (vs 80% Python)",
			wantSuggestion: pools.Language[1],
		},
		{
			name:           "study behind language",
			in:             FocusInput{StudyPercent: 20, LanguagePercent: 65, IncomePercent: 100},
			wantArea:       AreaStudy,
			wantPriority:   PriorityHigh,
			wantReason:     "You're at 20% of your Python target (vs 65% Vietnamese)",
			wantSuggestion: pools.Study[1],
		},
		{
			name:           "income lagging",
			in:             FocusInput{StudyPercent: 75, LanguagePercent: 70, IncomePercent: 49},
			wantArea:       AreaIncome,
			wantPriority:   PriorityMedium,
			wantReason:     "Learning is on track! Income is at 49% of target",
			wantSuggestion: pools.Income[1],
		},
		{
			name:           "everything excellent",
			in:             FocusInput{StudyPercent: 80, LanguagePercent: 95, IncomePercent: 50},
			wantArea:       AreaBalanced,
			wantPriority:   PriorityLow,
			wantReason:     "You're crushing it this week!",
			wantSuggestion: pools.Balanced[1],
		},
		{
			name:           "tie goes to study",
			in:             FocusInput{StudyPercent: 75, LanguagePercent: 75, IncomePercent: 60},
			wantArea:       AreaStudy,
			wantPriority:   PriorityMedium,
			wantReason:     "Python is at 75% - room for improvement",
			wantSuggestion: pools.Study[1],
		},
		{
			name:           "lower language in default branch",
			in:             FocusInput{StudyPercent: 79, LanguagePercent: 72, IncomePercent: 60},
			wantArea:       AreaLanguage,
			wantPriority:   PriorityMedium,
			wantReason:     "Vietnamese is at 72% - room for improvement",
			wantSuggestion: pools.Language[1],
		},
		{
			name:           "both low and equal falls through to default",
			in:             FocusInput{StudyPercent: 30, LanguagePercent: 30, IncomePercent: 0},
			wantArea:       AreaStudy,
			wantPriority:   PriorityMedium,
			wantReason:     "Python is at 30% - room for improvement",
			wantSuggestion: pools.Study[1],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Recommend(tt.in)
			assert.Equal(t, tt.wantArea, got.Area)
			assert.Equal(t, tt.wantPriority, got.Priority)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Equal(t, tt.wantSuggestion, got.Suggestion)
			assert.NotEmpty(t, got.Icon)
		})
	}
}

func TestRecommend_PracticedTodayIsNotUrgent(t *testing.T) {
	r := NewRecommender(DefaultLabels(), FixedChooser(0))
	got := r.Recommend(FocusInput{
		StudyPercent: 90, LanguagePercent: 90, IncomePercent: 90,
		Streak: StreakStatus{Streak: 3, PracticedToday: true},
	})
	assert.Equal(t, PriorityLow, got.Priority)
}

func TestRecommend_CustomLabelsAndPools(t *testing.T) {
	r := NewRecommender(Labels{Language: "Spanish", Study: "Go"}, FixedChooser(0)).
		WithPools(SuggestionPools{Language: []string{"Read one article in El País"}})

	got := r.Recommend(FocusInput{StudyPercent: 60, LanguagePercent: 10})
	assert.Equal(t, "You're at 10% of your Spanish target (vs 60% Go)", got.Reason)
	assert.Equal(t, "Read one article in El País", got.Suggestion)

	got = r.Recommend(FocusInput{StudyPercent: 10, LanguagePercent: 60})
	assert.Equal(t, DefaultSuggestionPools().Study[0], got.Suggestion)
}

func TestFixedChooser(t *testing.T) {
	assert.Equal(t, 2, FixedChooser(5).Intn(3))
	assert.Equal(t, 2, FixedChooser(-1).Intn(3))
	assert.Equal(t, 0, FixedChooser(3).Intn(0))
}
