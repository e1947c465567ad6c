package query

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/internal/domain/metrics"
	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TODAY QUERY
// What was done today, where the week stands, and what is due soon.
// ══════════════════════════════════════════════════════════════════════════════

// GetTodayQuery contains the parameters of the today snapshot.
type GetTodayQuery struct {
	// Date overrides today (YYYY-MM-DD). Empty means today.
	Date string
}

// Validate checks the query.
func (q *GetTodayQuery) Validate() error {
	if q.Date != "" && !timeutil.IsCanonicalDay(q.Date) {
		return fmt.Errorf("date must be YYYY-MM-DD, got %q", q.Date)
	}
	return nil
}

// TodayDTO is the today snapshot.
type TodayDTO struct {
	Date          string `json:"date"`
	Weekday       string `json:"weekday"`
	WeekStart     string `json:"week_start"`
	WeekEnd       string `json:"week_end"`
	DaysRemaining int    `json:"days_remaining"`
	Motivation    string `json:"motivation"`

	// ─────────────────────────────────────────────────────────────────────────
	// Tracks
	// ─────────────────────────────────────────────────────────────────────────

	Study    TrackTodayDTO        `json:"study"`
	Language TrackTodayDTO        `json:"language"`
	Streak   metrics.StreakStatus `json:"streak"`

	// ─────────────────────────────────────────────────────────────────────────
	// Money & plan
	// ─────────────────────────────────────────────────────────────────────────

	Income             IncomeTodayDTO       `json:"income"`
	UpcomingMilestones []tracking.Milestone `json:"upcoming_milestones"`
}

// TrackTodayDTO is one learning track, in the unit the track is logged in.
type TrackTodayDTO struct {
	Label        string                     `json:"label"`
	Unit         string                     `json:"unit"`
	Today        float64                    `json:"today"`
	DailyTarget  float64                    `json:"daily_target"`
	Week         float64                    `json:"week"`
	WeeklyTarget float64                    `json:"weekly_target"`
	WeekPercent  int                        `json:"week_percent"`
	Sessions     []tracking.PracticeSession `json:"sessions"`
}

// IncomeTodayDTO is this month's income against the monthly target.
type IncomeTodayDTO struct {
	Month   decimal.Decimal `json:"month"`
	Target  decimal.Decimal `json:"target"`
	Gap     decimal.Decimal `json:"gap"`
	Percent int             `json:"percent"`
}

// GetTodayHandler handles the today query.
type GetTodayHandler struct {
	store   tracking.Store
	clock   timeutil.Clock
	chooser metrics.Chooser
	opts    Options
}

// NewGetTodayHandler creates a new handler. A nil chooser picks at random.
func NewGetTodayHandler(store tracking.Store, clock timeutil.Clock, chooser metrics.Chooser, opts Options) *GetTodayHandler {
	if chooser == nil {
		chooser = metrics.RandomChooser{}
	}
	return &GetTodayHandler{store: store, clock: clock, chooser: chooser, opts: opts.withDefaults()}
}

// Handle executes the query.
func (h *GetTodayHandler) Handle(ctx context.Context, q GetTodayQuery) (*TodayDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetToday", shared.ErrValidation, err.Error(), err)
	}
	today, err := resolveDay(h.clock, q.Date, "GetToday")
	if err != nil {
		return nil, err
	}

	p, err := loadProgress(ctx, h.store, today, h.opts)
	if err != nil {
		return nil, fmt.Errorf("get_today: %w", err)
	}
	s := p.settings

	studySessions, err := h.store.SessionsOn(ctx, tracking.SessionStudy, p.periods.Today)
	if err != nil {
		return nil, fmt.Errorf("get_today: study sessions: %w", err)
	}
	languageSessions, err := h.store.SessionsOn(ctx, tracking.SessionLanguage, p.periods.Today)
	if err != nil {
		return nil, fmt.Errorf("get_today: language sessions: %w", err)
	}
	upcoming, err := h.store.UpcomingMilestones(ctx, p.periods.Week.To, h.opts.UpcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("get_today: milestones: %w", err)
	}

	languageWeeklyMinutes := s.LanguageWeeklyTarget * 60

	return &TodayDTO{
		Date:          p.periods.Today,
		Weekday:       today.Weekday().String(),
		WeekStart:     p.periods.Week.From,
		WeekEnd:       p.periods.Week.To,
		DaysRemaining: p.daysRemaining(),
		Motivation:    metrics.Motivation(h.chooser),
		Study: TrackTodayDTO{
			Label:        h.opts.Labels.Study,
			Unit:         tracking.SessionStudy.Unit(),
			Today:        metrics.Round1(p.study.Today),
			DailyTarget:  metrics.Round1(s.StudyWeeklyTarget / 7),
			Week:         metrics.Round1(p.study.Week),
			WeeklyTarget: s.StudyWeeklyTarget,
			WeekPercent:  p.studyPercent,
			Sessions:     nonNil(studySessions),
		},
		Language: TrackTodayDTO{
			Label:        h.opts.Labels.Language,
			Unit:         tracking.SessionLanguage.Unit(),
			Today:        p.language.Today,
			DailyTarget:  math.Floor(languageWeeklyMinutes / 7),
			Week:         p.language.Week,
			WeeklyTarget: languageWeeklyMinutes,
			WeekPercent:  p.languagePercent,
			Sessions:     nonNil(languageSessions),
		},
		Streak: p.streak,
		Income: IncomeTodayDTO{
			Month:   p.incomeMonth,
			Target:  s.IncomeTarget,
			Gap:     metrics.IncomeGap(s.IncomeTarget, p.incomeMonth),
			Percent: p.incomePercent,
		},
		UpcomingMilestones: nonNil(upcoming),
	}, nil
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
