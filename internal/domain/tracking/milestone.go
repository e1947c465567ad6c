package tracking

import (
	"strings"

	"github.com/relohub/progress-tracker/internal/domain/shared"
)

// Milestone is a dated goal on the plan. Every field except ID can be patched.
type Milestone struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	TargetDate string `json:"target_date"`
	Category   string `json:"category,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Completed  bool   `json:"completed"`
}

// Validate checks the fields a caller supplies on creation.
func (m Milestone) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return shared.ValidationError("milestone", "Validate", "title", "is required")
	}
	return ValidateDate("milestone", "target_date", m.TargetDate)
}

// MilestonePatch carries the subset of fields an update changes. Nil fields
// are left untouched.
type MilestonePatch struct {
	Title      *string `json:"title,omitempty"`
	TargetDate *string `json:"target_date,omitempty"`
	Category   *string `json:"category,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	Completed  *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p MilestonePatch) IsEmpty() bool {
	return p.Title == nil && p.TargetDate == nil && p.Category == nil && p.Notes == nil && p.Completed == nil
}

// Validate checks the supplied fields.
func (p MilestonePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return shared.ValidationError("milestone", "Update", "title", "cannot be empty")
	}
	if p.TargetDate != nil {
		return ValidateDate("milestone", "target_date", *p.TargetDate)
	}
	return nil
}

// Apply returns m with the patch merged in.
func (p MilestonePatch) Apply(m Milestone) Milestone {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.TargetDate != nil {
		m.TargetDate = *p.TargetDate
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	if p.Completed != nil {
		m.Completed = *p.Completed
	}
	return m
}
