// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOG SESSION COMMAND
// Records one block of practice. Sessions are never edited, only deleted and
// logged again.
// ══════════════════════════════════════════════════════════════════════════════

// LogSessionCommand contains the data of a practice session.
type LogSessionCommand struct {
	// Kind accepts the kind name or a track alias ("python", "vietnamese").
	Kind string

	// Date of the session. Empty means today.
	Date string

	// Amount is minutes for language practice and hours for study.
	Amount float64

	Category string
	Note     string
}

// LogSessionResult is the stored session.
type LogSessionResult struct {
	Session tracking.PracticeSession `json:"session"`
}

// LogSessionHandler handles LogSessionCommand.
type LogSessionHandler struct {
	store tracking.SessionRepository
	clock timeutil.Clock
}

// NewLogSessionHandler creates a new handler.
func NewLogSessionHandler(store tracking.SessionRepository, clock timeutil.Clock) *LogSessionHandler {
	return &LogSessionHandler{store: store, clock: clock}
}

// Handle executes the command.
func (h *LogSessionHandler) Handle(ctx context.Context, cmd LogSessionCommand) (*LogSessionResult, error) {
	kind, ok := tracking.ParseSessionKind(cmd.Kind)
	if !ok {
		return nil, shared.ValidationError("session", "Log", "kind", "must be language or study")
	}

	s := tracking.PracticeSession{
		Kind:     kind,
		Date:     defaultDate(cmd.Date, h.clock),
		Amount:   cmd.Amount,
		Category: strings.TrimSpace(cmd.Category),
		Note:     strings.TrimSpace(cmd.Note),
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("log_session: %w", err)
	}

	id, err := h.store.CreateSession(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("log_session: %w", err)
	}
	s.ID = id
	return &LogSessionResult{Session: s}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE SESSION COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// DeleteSessionCommand identifies the session to remove.
type DeleteSessionCommand struct {
	Kind string
	ID   int64
}

// DeleteSessionHandler handles DeleteSessionCommand. Unknown ids are a no-op.
type DeleteSessionHandler struct {
	store tracking.SessionRepository
}

// NewDeleteSessionHandler creates a new handler.
func NewDeleteSessionHandler(store tracking.SessionRepository) *DeleteSessionHandler {
	return &DeleteSessionHandler{store: store}
}

// Handle executes the command.
func (h *DeleteSessionHandler) Handle(ctx context.Context, cmd DeleteSessionCommand) error {
	kind, ok := tracking.ParseSessionKind(cmd.Kind)
	if !ok {
		return shared.ValidationError("session", "Delete", "kind", "must be language or study")
	}
	if err := validateID("session", cmd.ID); err != nil {
		return err
	}
	if err := h.store.DeleteSession(ctx, kind, cmd.ID); err != nil {
		return fmt.Errorf("delete_session: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

// defaultDate fills an empty date with today.
func defaultDate(date string, clock timeutil.Clock) string {
	if date = strings.TrimSpace(date); date != "" {
		return date
	}
	return timeutil.FormatDay(timeutil.Today(clock))
}

func validateID(domain string, id int64) error {
	if id <= 0 {
		return shared.ValidationError(domain, "Validate", "id", "must be positive")
	}
	return nil
}
