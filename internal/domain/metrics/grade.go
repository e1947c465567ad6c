package metrics

// Grade maps an averaged percentage to a letter.
func Grade(avg float64) string {
	switch {
	case avg >= 90:
		return "A"
	case avg >= 75:
		return "B"
	case avg >= 60:
		return "C"
	default:
		return "D"
	}
}
