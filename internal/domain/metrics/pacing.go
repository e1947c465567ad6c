package metrics

import (
	"math"
	"time"

	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// PacingInput describes progress toward an absolute target by a date.
type PacingInput struct {
	// Total accumulated so far (hours).
	Total float64
	// Target is the absolute quantity to reach, e.g. 600 hours.
	Target float64
	// TargetDate is the deadline.
	TargetDate time.Time
	// Today is the reference day.
	Today time.Time
	// WeeklyTarget is the currently configured weekly rate.
	WeeklyTarget float64
}

// Pacing is the projection for one track.
type Pacing struct {
	Total              float64 `json:"total"`
	Target             float64 `json:"target"`
	HoursRemaining     float64 `json:"hours_remaining"`
	WeeksRemaining     float64 `json:"weeks_remaining"`
	RequiredWeeklyRate float64 `json:"required_weekly_rate"`
	CurrentWeeklyRate  float64 `json:"current_weekly_target"`
	OnTrack            bool    `json:"on_track"`
}

// Pace converts the remaining quantity into the weekly rate needed to finish
// on time. Weeks remaining never drops below 1.
func Pace(in PacingInput) Pacing {
	remaining := math.Max(0, in.Target-in.Total)
	weeks := math.Max(1, float64(timeutil.DaysBetween(in.Today, in.TargetDate))/7)
	rate := Round1(remaining / weeks)

	return Pacing{
		Total:              Round1(in.Total),
		Target:             in.Target,
		HoursRemaining:     Round1(remaining),
		WeeksRemaining:     Round1(weeks),
		RequiredWeeklyRate: rate,
		CurrentWeeklyRate:  in.WeeklyTarget,
		OnTrack:            rate <= in.WeeklyTarget,
	}
}
