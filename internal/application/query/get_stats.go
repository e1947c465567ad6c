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
// GET STATS QUERY
// Overall snapshot: totals, this week, this month, streaks and runway.
// ══════════════════════════════════════════════════════════════════════════════

// GetStatsQuery contains the parameters of the stats snapshot.
type GetStatsQuery struct {
	// Date overrides today (YYYY-MM-DD). Empty means today.
	Date string
}

// Validate checks the query.
func (q *GetStatsQuery) Validate() error {
	if q.Date != "" && !timeutil.IsCanonicalDay(q.Date) {
		return fmt.Errorf("date must be YYYY-MM-DD, got %q", q.Date)
	}
	return nil
}

// StatsDTO is the stats snapshot.
type StatsDTO struct {
	// ─────────────────────────────────────────────────────────────────────────
	// Timeline
	// ─────────────────────────────────────────────────────────────────────────

	Date          string         `json:"date"`
	TargetDate    string         `json:"target_date"`
	DaysRemaining int            `json:"days_remaining"`
	Labels        metrics.Labels `json:"labels"`

	// ─────────────────────────────────────────────────────────────────────────
	// Tracks
	// ─────────────────────────────────────────────────────────────────────────

	Study    StudyStatsDTO    `json:"study"`
	Language LanguageStatsDTO `json:"language"`

	// ─────────────────────────────────────────────────────────────────────────
	// Money
	// ─────────────────────────────────────────────────────────────────────────

	Income  IncomeStatsDTO  `json:"income"`
	Finance FinanceStatsDTO `json:"finance"`

	// ─────────────────────────────────────────────────────────────────────────
	// Checklists
	// ─────────────────────────────────────────────────────────────────────────

	Skills     CompletionDTO `json:"skills"`
	Milestones CompletionDTO `json:"milestones"`

	Grade string `json:"grade"`
}

// StudyStatsDTO summarizes the study track, in hours.
type StudyStatsDTO struct {
	Hours        metrics.Rollup `json:"hours"`
	WeeklyTarget float64        `json:"weekly_target"`
	WeekPercent  int            `json:"week_percent"`
}

// LanguageStatsDTO summarizes the language track. Minutes are as logged;
// hours are derived.
type LanguageStatsDTO struct {
	Minutes       metrics.Rollup       `json:"minutes"`
	Hours         metrics.Rollup       `json:"hours"`
	WeeklyTarget  float64              `json:"weekly_target"`
	WeekPercent   int                  `json:"week_percent"`
	Streak        metrics.StreakStatus `json:"streak"`
	CurrentStreak int                  `json:"current_streak"`
	LongestStreak int                  `json:"longest_streak"`
}

// IncomeStatsDTO summarizes income in the base currency.
type IncomeStatsDTO struct {
	Currency          string          `json:"currency"`
	Total             decimal.Decimal `json:"total"`
	Month             decimal.Decimal `json:"month"`
	MonthlyTarget     decimal.Decimal `json:"monthly_target"`
	MonthPercent      int             `json:"month_percent"`
	Gap               decimal.Decimal `json:"gap"`
	Events            int             `json:"events"`
	Hours             float64         `json:"hours"`
	AverageHourlyRate decimal.Decimal `json:"average_hourly_rate"`
}

// FinanceStatsDTO is the savings runway.
type FinanceStatsDTO struct {
	Savings      decimal.Decimal `json:"savings"`
	MonthlyBurn  decimal.Decimal `json:"monthly_burn"`
	RunwayMonths int             `json:"runway_months"`
}

// CompletionDTO counts completed items.
type CompletionDTO struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

func completion(done, total int) CompletionDTO {
	pct := 0
	if total > 0 {
		pct = metrics.Percent(float64(done), float64(total))
	}
	return CompletionDTO{Completed: done, Total: total, Percent: pct}
}

// GetStatsHandler handles the stats query.
type GetStatsHandler struct {
	store tracking.Store
	clock timeutil.Clock
	opts  Options
}

// NewGetStatsHandler creates a new handler.
func NewGetStatsHandler(store tracking.Store, clock timeutil.Clock, opts Options) *GetStatsHandler {
	return &GetStatsHandler{store: store, clock: clock, opts: opts.withDefaults()}
}

// Handle executes the query.
func (h *GetStatsHandler) Handle(ctx context.Context, q GetStatsQuery) (*StatsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStats", shared.ErrValidation, err.Error(), err)
	}
	today, err := resolveDay(h.clock, q.Date, "GetStats")
	if err != nil {
		return nil, err
	}

	p, err := loadProgress(ctx, h.store, today, h.opts)
	if err != nil {
		return nil, fmt.Errorf("get_stats: %w", err)
	}
	s := p.settings

	events, err := h.store.ListIncome(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("get_stats: income: %w", err)
	}
	incomeHours, err := h.store.SumIncome(ctx, tracking.IncomeHours, tracking.AllTime)
	if err != nil {
		return nil, fmt.Errorf("get_stats: income hours: %w", err)
	}
	total := sumIncome(events, tracking.AllTime)
	avgRate := decimal.Zero
	if incomeHours > 0 {
		avgRate = total.Div(decimal.NewFromFloat(incomeHours)).Round(2)
	}

	skills, err := h.store.ListSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_stats: skills: %w", err)
	}
	skillsDone := 0
	for _, sk := range skills {
		if sk.Completed {
			skillsDone++
		}
	}

	milestones, err := h.store.ListMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_stats: milestones: %w", err)
	}
	milestonesDone := 0
	for _, m := range milestones {
		if m.Completed {
			milestonesDone++
		}
	}

	return &StatsDTO{
		Date:          p.periods.Today,
		TargetDate:    s.TargetDate,
		DaysRemaining: p.daysRemaining(),
		Labels:        h.opts.Labels,
		Study: StudyStatsDTO{
			Hours:        p.study.Rounded(),
			WeeklyTarget: s.StudyWeeklyTarget,
			WeekPercent:  p.studyPercent,
		},
		Language: LanguageStatsDTO{
			Minutes:       p.language,
			Hours:         p.language.Scale(1.0 / 60).Rounded(),
			WeeklyTarget:  s.LanguageWeeklyTarget,
			WeekPercent:   p.languagePercent,
			Streak:        p.streak,
			CurrentStreak: metrics.CurrentStreak(p.dates, today),
			LongestStreak: metrics.LongestStreak(p.dates),
		},
		Income: IncomeStatsDTO{
			Currency:          tracking.BaseCurrency,
			Total:             total,
			Month:             p.incomeMonth,
			MonthlyTarget:     s.IncomeTarget,
			MonthPercent:      p.incomePercent,
			Gap:               metrics.IncomeGap(s.IncomeTarget, p.incomeMonth),
			Events:            len(events),
			Hours:             metrics.Round1(incomeHours),
			AverageHourlyRate: avgRate,
		},
		Finance: FinanceStatsDTO{
			Savings:      s.Savings,
			MonthlyBurn:  s.MonthlyBurn,
			RunwayMonths: metrics.RunwayMonths(s.Savings, s.MonthlyBurn),
		},
		Skills:     completion(skillsDone, len(skills)),
		Milestones: completion(milestonesDone, len(milestones)),
		Grade:      metrics.Grade(p.average()),
	}, nil
}
