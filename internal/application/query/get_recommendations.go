package query

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/internal/domain/metrics"
	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RECOMMENDATIONS QUERY
// The daily focus, language pacing, and the weekly report card.
// ══════════════════════════════════════════════════════════════════════════════

// GetRecommendationsQuery contains the parameters of the recommendations view.
type GetRecommendationsQuery struct {
	// Date overrides today (YYYY-MM-DD). Empty means today.
	Date string
}

// Validate checks the query.
func (q *GetRecommendationsQuery) Validate() error {
	if q.Date != "" && !timeutil.IsCanonicalDay(q.Date) {
		return fmt.Errorf("date must be YYYY-MM-DD, got %q", q.Date)
	}
	return nil
}

// RecommendationsDTO is the recommendations snapshot.
type RecommendationsDTO struct {
	Date       string                 `json:"date"`
	Labels     metrics.Labels         `json:"labels"`
	Focus      metrics.Recommendation `json:"focus"`
	Pacing     metrics.Pacing         `json:"pacing"`
	Streak     metrics.StreakStatus   `json:"streak"`
	Weekly     WeeklySummaryDTO       `json:"weekly_summary"`
	Adjustment *metrics.Adjustment    `json:"adjustment"`
}

// WeeklySummaryDTO grades the current week.
type WeeklySummaryDTO struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`

	StudyHours   float64 `json:"study_hours"`
	StudyTarget  float64 `json:"study_target"`
	StudyPercent int     `json:"study_percent"`

	LanguageHours   float64 `json:"language_hours"`
	LanguageTarget  float64 `json:"language_target"`
	LanguagePercent int     `json:"language_percent"`

	IncomeMonth   decimal.Decimal `json:"income_month"`
	IncomeTarget  decimal.Decimal `json:"income_target"`
	IncomePercent int             `json:"income_percent"`

	Average float64 `json:"average"`
	Grade   string  `json:"grade"`
}

// GetRecommendationsHandler handles the recommendations query.
type GetRecommendationsHandler struct {
	store       tracking.Store
	clock       timeutil.Clock
	recommender *metrics.Recommender
	opts        Options
}

// NewGetRecommendationsHandler creates a new handler. A nil recommender uses
// the configured labels and random suggestions.
func NewGetRecommendationsHandler(store tracking.Store, clock timeutil.Clock, recommender *metrics.Recommender, opts Options) *GetRecommendationsHandler {
	opts = opts.withDefaults()
	if recommender == nil {
		recommender = metrics.NewRecommender(opts.Labels, nil)
	}
	return &GetRecommendationsHandler{store: store, clock: clock, recommender: recommender, opts: opts}
}

// Handle executes the query.
func (h *GetRecommendationsHandler) Handle(ctx context.Context, q GetRecommendationsQuery) (*RecommendationsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetRecommendations", shared.ErrValidation, err.Error(), err)
	}
	today, err := resolveDay(h.clock, q.Date, "GetRecommendations")
	if err != nil {
		return nil, err
	}

	p, err := loadProgress(ctx, h.store, today, h.opts)
	if err != nil {
		return nil, fmt.Errorf("get_recommendations: %w", err)
	}
	s := p.settings
	labels := h.recommender.Labels()

	focus := h.recommender.Recommend(metrics.FocusInput{
		StudyPercent:         p.studyPercent,
		LanguagePercent:      p.languagePercent,
		IncomePercent:        p.incomePercent,
		Streak:               p.streak,
		LanguageMinutesToday: p.language.Today,
	})

	targetDate, err := timeutil.ParseDay(s.TargetDate)
	if err != nil {
		targetDate = today
	}
	pacing := metrics.Pace(metrics.PacingInput{
		Total:        tracking.SessionLanguage.ToHours(p.language.AllTime),
		Target:       h.opts.LanguageGoalHours,
		TargetDate:   targetDate,
		Today:        today,
		WeeklyTarget: s.LanguageWeeklyTarget,
	})

	avg := p.average()

	return &RecommendationsDTO{
		Date:   p.periods.Today,
		Labels: labels,
		Focus:  focus,
		Pacing: pacing,
		Streak: p.streak,
		Weekly: WeeklySummaryDTO{
			WeekStart:       p.periods.Week.From,
			WeekEnd:         p.periods.Week.To,
			StudyHours:      metrics.Round1(p.study.Week),
			StudyTarget:     s.StudyWeeklyTarget,
			StudyPercent:    p.studyPercent,
			LanguageHours:   metrics.Round1(tracking.SessionLanguage.ToHours(p.language.Week)),
			LanguageTarget:  s.LanguageWeeklyTarget,
			LanguagePercent: p.languagePercent,
			IncomeMonth:     p.incomeMonth,
			IncomeTarget:    s.IncomeTarget,
			IncomePercent:   p.incomePercent,
			Average:         metrics.Round1(avg),
			Grade:           metrics.Grade(avg),
		},
		Adjustment: metrics.ProposeAdjustment(p.studyPercent, p.languagePercent,
			s.StudyWeeklyTarget, s.LanguageWeeklyTarget, labels),
	}, nil
}
