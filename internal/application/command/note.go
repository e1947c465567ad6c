package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTE COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// CreateNoteCommand contains a new journal entry.
type CreateNoteCommand struct {
	Title    string
	Category string
	Content  string
}

// CreateNoteHandler handles CreateNoteCommand.
type CreateNoteHandler struct {
	store tracking.NoteRepository
	clock timeutil.Clock
}

// NewCreateNoteHandler creates a new handler.
func NewCreateNoteHandler(store tracking.NoteRepository, clock timeutil.Clock) *CreateNoteHandler {
	return &CreateNoteHandler{store: store, clock: clock}
}

// Handle executes the command.
func (h *CreateNoteHandler) Handle(ctx context.Context, cmd CreateNoteCommand) (*tracking.Note, error) {
	now := h.clock.Now()
	n := tracking.Note{
		Title:     strings.TrimSpace(cmd.Title),
		Category:  strings.TrimSpace(cmd.Category),
		Content:   cmd.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("create_note: %w", err)
	}
	id, err := h.store.CreateNote(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("create_note: %w", err)
	}
	n.ID = id
	return &n, nil
}

// UpdateNoteCommand patches a note.
type UpdateNoteCommand struct {
	ID    int64
	Patch tracking.NotePatch
}

// UpdateNoteHandler handles UpdateNoteCommand. Unknown ids are a no-op.
type UpdateNoteHandler struct {
	store tracking.NoteRepository
	clock timeutil.Clock
}

// NewUpdateNoteHandler creates a new handler.
func NewUpdateNoteHandler(store tracking.NoteRepository, clock timeutil.Clock) *UpdateNoteHandler {
	return &UpdateNoteHandler{store: store, clock: clock}
}

// Handle executes the command.
func (h *UpdateNoteHandler) Handle(ctx context.Context, cmd UpdateNoteCommand) error {
	if err := validateID("note", cmd.ID); err != nil {
		return err
	}
	if err := cmd.Patch.Validate(); err != nil {
		return fmt.Errorf("update_note: %w", err)
	}
	if cmd.Patch.IsEmpty() {
		return nil
	}
	if err := h.store.UpdateNote(ctx, cmd.ID, cmd.Patch, h.clock.Now()); err != nil {
		return fmt.Errorf("update_note: %w", err)
	}
	return nil
}

// DeleteNoteCommand identifies the note to remove.
type DeleteNoteCommand struct {
	ID int64
}

// DeleteNoteHandler handles DeleteNoteCommand.
type DeleteNoteHandler struct {
	store tracking.NoteRepository
}

// NewDeleteNoteHandler creates a new handler.
func NewDeleteNoteHandler(store tracking.NoteRepository) *DeleteNoteHandler {
	return &DeleteNoteHandler{store: store}
}

// Handle executes the command.
func (h *DeleteNoteHandler) Handle(ctx context.Context, cmd DeleteNoteCommand) error {
	if err := validateID("note", cmd.ID); err != nil {
		return err
	}
	if err := h.store.DeleteNote(ctx, cmd.ID); err != nil {
		return fmt.Errorf("delete_note: %w", err)
	}
	return nil
}
