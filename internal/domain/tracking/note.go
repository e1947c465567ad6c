package tracking

import (
	"strings"
	"time"

	"github.com/relohub/progress-tracker/internal/domain/shared"
)

// Note is a free-form journal entry written in markdown.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title,omitempty"`
	Category  string    `json:"category,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields a caller supplies on creation.
func (n Note) Validate() error {
	if strings.TrimSpace(n.Content) == "" {
		return shared.ValidationError("note", "Validate", "content", "is required")
	}
	return nil
}

// NotePatch updates any of title, category and content.
type NotePatch struct {
	Title    *string `json:"title,omitempty"`
	Category *string `json:"category,omitempty"`
	Content  *string `json:"content,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Category == nil && p.Content == nil
}

// Validate checks the supplied fields.
func (p NotePatch) Validate() error {
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return shared.ValidationError("note", "Update", "content", "cannot be empty")
	}
	return nil
}

// Apply returns n with the patch merged in and UpdatedAt set to now.
func (p NotePatch) Apply(n Note, now time.Time) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	n.UpdatedAt = now
	return n
}
