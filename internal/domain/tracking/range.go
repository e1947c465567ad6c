package tracking

// DateRange is an inclusive [From, To] filter over canonical dates. An empty
// bound is open.
type DateRange struct {
	From string
	To   string
}

// AllTime is the unfiltered range.
var AllTime = DateRange{}

// Between builds an inclusive range.
func Between(from, to string) DateRange {
	return DateRange{From: from, To: to}
}

// Contains reports whether date falls inside the range. Comparison is lexical,
// which matches chronological order for canonical dates.
func (r DateRange) Contains(date string) bool {
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

// IsAllTime reports whether neither bound is set.
func (r DateRange) IsAllTime() bool {
	return r.From == "" && r.To == ""
}
