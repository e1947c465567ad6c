package tracking

import (
	"strings"

	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRACTICE SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

// SessionKind distinguishes the two practice tracks.
type SessionKind string

const (
	// SessionLanguage is language practice, logged in minutes.
	SessionLanguage SessionKind = "language"
	// SessionStudy is programming study, logged in hours.
	SessionStudy SessionKind = "study"
)

// SessionKinds lists every kind in display order.
var SessionKinds = []SessionKind{SessionStudy, SessionLanguage}

// ParseSessionKind accepts the kind name or the track alias used by the
// dashboard ("vietnamese", "python").
func ParseSessionKind(s string) (SessionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "language", "vietnamese", "lang":
		return SessionLanguage, true
	case "study", "python", "code":
		return SessionStudy, true
	default:
		return "", false
	}
}

// Valid reports whether k is a known kind.
func (k SessionKind) Valid() bool {
	return k == SessionLanguage || k == SessionStudy
}

// Unit is the unit Amount is recorded in.
func (k SessionKind) Unit() string {
	if k == SessionLanguage {
		return "minutes"
	}
	return "hours"
}

// ToHours converts an amount recorded in k's unit to hours.
func (k SessionKind) ToHours(amount float64) float64 {
	if k == SessionLanguage {
		return amount / 60
	}
	return amount
}

// PracticeSession is one logged block of practice. Sessions are created and
// deleted, never updated.
type PracticeSession struct {
	ID       int64       `json:"id"`
	Kind     SessionKind `json:"kind"`
	Date     string      `json:"date"`
	Amount   float64     `json:"amount"`
	Category string      `json:"category,omitempty"`
	Note     string      `json:"note,omitempty"`
}

// Validate checks the fields a caller supplies on creation.
func (s PracticeSession) Validate() error {
	if !s.Kind.Valid() {
		return shared.ValidationError("session", "Validate", "kind", "must be language or study")
	}
	if err := ValidateDate("session", "date", s.Date); err != nil {
		return err
	}
	if s.Amount <= 0 {
		return shared.ValidationError("session", "Validate", "amount", "must be positive")
	}
	return nil
}

// ValidateDate rejects anything that is not a canonical YYYY-MM-DD date.
func ValidateDate(domain, field, date string) error {
	if date == "" {
		return shared.ValidationError(domain, "Validate", field, "is required")
	}
	if !timeutil.IsCanonicalDay(date) {
		return shared.ValidationError(domain, "Validate", field, "expected YYYY-MM-DD")
	}
	return nil
}
