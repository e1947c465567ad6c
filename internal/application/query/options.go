// Package query contains read operations (CQRS - Queries).
// Every handler re-reads the store and recomputes from scratch; nothing is
// cached between calls.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/internal/domain/metrics"
	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// OPTIONS
// ══════════════════════════════════════════════════════════════════════════════

// Options tune the derived metrics that are not part of the settings record.
type Options struct {
	// FirstWeekday anchors "this week".
	FirstWeekday time.Weekday

	// LanguageGoalHours is the absolute language target used for pacing.
	LanguageGoalHours float64

	// UpcomingLimit caps the milestones shown on the today view.
	UpcomingLimit int

	// Labels name the two learning tracks.
	Labels metrics.Labels
}

// DefaultOptions returns a Monday week, a 600 hour language goal and five
// upcoming milestones.
func DefaultOptions() Options {
	return Options{
		FirstWeekday:      time.Monday,
		LanguageGoalHours: 600,
		UpcomingLimit:     5,
		Labels:            metrics.DefaultLabels(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LanguageGoalHours <= 0 {
		o.LanguageGoalHours = d.LanguageGoalHours
	}
	if o.UpcomingLimit <= 0 {
		o.UpcomingLimit = d.UpcomingLimit
	}
	if o.Labels.Language == "" || o.Labels.Study == "" {
		o.Labels = d.Labels
	}
	return o
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED LOADING
// ══════════════════════════════════════════════════════════════════════════════

// resolveDay returns the reference day: today from clock, or the override.
func resolveDay(clock timeutil.Clock, date, op string) (time.Time, error) {
	if date == "" {
		return timeutil.Today(clock), nil
	}
	if !timeutil.IsCanonicalDay(date) {
		return time.Time{}, shared.ValidationError("query", op, "date", "expected YYYY-MM-DD")
	}
	day, _ := timeutil.ParseDay(date)
	return day, nil
}

// progress is the per-request snapshot every dashboard view starts from.
type progress struct {
	today    time.Time
	settings tracking.Settings
	periods  metrics.Periods

	// study is in hours, language in minutes.
	study    metrics.Rollup
	language metrics.Rollup

	incomeMonth decimal.Decimal

	studyPercent    int
	languagePercent int
	incomePercent   int

	dates  metrics.DateSet
	streak metrics.StreakStatus
}

// average is the unweighted mean of the three percents.
func (p *progress) average() float64 {
	return metrics.Average(p.studyPercent, p.languagePercent, p.incomePercent)
}

// daysRemaining counts days until the target date, never negative.
func (p *progress) daysRemaining() int {
	target, err := timeutil.ParseDay(p.settings.TargetDate)
	if err != nil {
		return 0
	}
	return max(0, timeutil.DaysBetween(p.today, target))
}

func loadProgress(ctx context.Context, store tracking.Store, today time.Time, opts Options) (*progress, error) {
	settings, err := store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	p := &progress{
		today:    today,
		settings: settings,
		periods:  metrics.PeriodsFor(today, opts.FirstWeekday),
	}

	if p.study, err = sumWindows(ctx, store, tracking.SessionStudy, p.periods); err != nil {
		return nil, err
	}
	if p.language, err = sumWindows(ctx, store, tracking.SessionLanguage, p.periods); err != nil {
		return nil, err
	}

	events, err := store.ListIncome(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("income: %w", err)
	}
	p.incomeMonth = sumIncome(events, p.periods.Month)

	dates, err := store.SessionDates(ctx, tracking.SessionLanguage)
	if err != nil {
		return nil, fmt.Errorf("session dates: %w", err)
	}
	p.dates = metrics.NewDateSet(dates)
	p.streak = metrics.StreakWithGrace(p.dates, today)

	p.studyPercent = metrics.Percent(p.study.Week, settings.StudyWeeklyTarget)
	p.languagePercent = metrics.Percent(tracking.SessionLanguage.ToHours(p.language.Week), settings.LanguageWeeklyTarget)
	p.incomePercent = metrics.Percent(p.incomeMonth.InexactFloat64(), settings.IncomeTarget.InexactFloat64())

	return p, nil
}

// sumWindows asks the store for the four standard rollups of one kind.
func sumWindows(ctx context.Context, store tracking.SessionRepository, kind tracking.SessionKind, p metrics.Periods) (metrics.Rollup, error) {
	var r metrics.Rollup
	windows := []struct {
		dst *float64
		rng tracking.DateRange
	}{
		{&r.Today, tracking.Between(p.Today, p.Today)},
		{&r.Week, p.Week},
		{&r.Month, p.Month},
		{&r.AllTime, tracking.AllTime},
	}
	for _, w := range windows {
		v, err := store.SumSessions(ctx, kind, w.rng)
		if err != nil {
			return metrics.Rollup{}, fmt.Errorf("sum %s sessions: %w", kind, err)
		}
		*w.dst = v
	}
	return r, nil
}

// sumIncome totals amounts exactly; store sums are float.
func sumIncome(events []tracking.IncomeEvent, r tracking.DateRange) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		if r.Contains(e.Date) {
			total = total.Add(e.Amount)
		}
	}
	return total
}
