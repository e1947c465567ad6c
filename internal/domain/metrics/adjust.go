package metrics

import (
	"fmt"
	"math"
)

// adjustBelow is the percent under which both tracks must fall before a lower
// target is proposed.
const adjustBelow = 50

// Adjustment proposes softer weekly targets.
type Adjustment struct {
	Message              string `json:"message"`
	StudyWeeklyTarget    int    `json:"study_weekly_target"`
	LanguageWeeklyTarget int    `json:"language_weekly_target"`
}

// ProposeAdjustment returns nil unless both learning tracks are under 50% of
// their weekly targets. Proposed targets are 70% of the current ones, floored,
// and never below 4 hours.
func ProposeAdjustment(studyPercent, languagePercent int, studyTarget, languageTarget float64, labels Labels) *Adjustment {
	if studyPercent >= adjustBelow || languagePercent >= adjustBelow {
		return nil
	}
	study := softer(studyTarget)
	language := softer(languageTarget)
	return &Adjustment{
		Message: fmt.Sprintf("Consider adjusting targets: %s to %dh/week, %s to %dh/week",
			labels.Study, study, labels.Language, language),
		StudyWeeklyTarget:    study,
		LanguageWeeklyTarget: language,
	}
}

func softer(target float64) int {
	return max(4, int(math.Floor(target*0.7)))
}
