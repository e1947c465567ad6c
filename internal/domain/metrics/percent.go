package metrics

import "math"

// Percent returns actual/target as an integer percentage, truncated toward zero
// and capped at 100. No rounding: 2.9 of 10 is 28. A target of zero (or less)
// counts as fully met.
func Percent(actual, target float64) int {
	if target <= 0 {
		return 100
	}
	p := int(actual / target * 100)
	switch {
	case p > 100:
		return 100
	case p < 0:
		return 0
	}
	return p
}

// Average is the unweighted mean of the given percentages.
func Average(percents ...int) float64 {
	if len(percents) == 0 {
		return 0
	}
	sum := 0
	for _, p := range percents {
		sum += p
	}
	return float64(sum) / float64(len(percents))
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
