package metrics

import (
	"time"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// Periods are the rollup windows anchored to a reference day.
type Periods struct {
	Today string             `json:"today"`
	Week  tracking.DateRange `json:"-"`
	Month tracking.DateRange `json:"-"`
}

// PeriodsFor builds the windows for today. The week is the fixed 7-day window
// starting on firstWeekday; the month runs from day 1 to today.
func PeriodsFor(today time.Time, firstWeekday time.Weekday) Periods {
	return Periods{
		Today: timeutil.FormatDay(today),
		Week: tracking.Between(
			timeutil.FormatDay(timeutil.StartOfWeek(today, firstWeekday)),
			timeutil.FormatDay(timeutil.EndOfWeek(today, firstWeekday)),
		),
		Month: tracking.Between(
			timeutil.FormatDay(timeutil.StartOfMonth(today)),
			timeutil.FormatDay(today),
		),
	}
}

// Rollup is the scalar sums for the standard windows.
type Rollup struct {
	Today   float64 `json:"today"`
	Week    float64 `json:"week"`
	Month   float64 `json:"month"`
	AllTime float64 `json:"all_time"`
}

// Scale multiplies every window, e.g. to turn minutes into hours.
func (r Rollup) Scale(f float64) Rollup {
	return Rollup{
		Today:   r.Today * f,
		Week:    r.Week * f,
		Month:   r.Month * f,
		AllTime: r.AllTime * f,
	}
}

// Rounded rounds every window to one decimal.
func (r Rollup) Rounded() Rollup {
	return Rollup{
		Today:   Round1(r.Today),
		Week:    Round1(r.Week),
		Month:   Round1(r.Month),
		AllTime: Round1(r.AllTime),
	}
}
