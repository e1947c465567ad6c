package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// CreateMilestoneCommand contains the data of a new milestone.
type CreateMilestoneCommand struct {
	Title      string
	TargetDate string
	Category   string
	Notes      string
	Completed  bool
}

// CreateMilestoneHandler handles CreateMilestoneCommand.
type CreateMilestoneHandler struct {
	store tracking.MilestoneRepository
}

// NewCreateMilestoneHandler creates a new handler.
func NewCreateMilestoneHandler(store tracking.MilestoneRepository) *CreateMilestoneHandler {
	return &CreateMilestoneHandler{store: store}
}

// Handle executes the command.
func (h *CreateMilestoneHandler) Handle(ctx context.Context, cmd CreateMilestoneCommand) (*tracking.Milestone, error) {
	m := tracking.Milestone{
		Title:      strings.TrimSpace(cmd.Title),
		TargetDate: strings.TrimSpace(cmd.TargetDate),
		Category:   strings.TrimSpace(cmd.Category),
		Notes:      cmd.Notes,
		Completed:  cmd.Completed,
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("create_milestone: %w", err)
	}
	id, err := h.store.CreateMilestone(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create_milestone: %w", err)
	}
	m.ID = id
	return &m, nil
}

// UpdateMilestoneCommand patches any subset of a milestone's fields.
type UpdateMilestoneCommand struct {
	ID    int64
	Patch tracking.MilestonePatch
}

// UpdateMilestoneHandler handles UpdateMilestoneCommand. Unknown ids and
// empty patches are a no-op.
type UpdateMilestoneHandler struct {
	store tracking.MilestoneRepository
}

// NewUpdateMilestoneHandler creates a new handler.
func NewUpdateMilestoneHandler(store tracking.MilestoneRepository) *UpdateMilestoneHandler {
	return &UpdateMilestoneHandler{store: store}
}

// Handle executes the command.
func (h *UpdateMilestoneHandler) Handle(ctx context.Context, cmd UpdateMilestoneCommand) error {
	if err := validateID("milestone", cmd.ID); err != nil {
		return err
	}
	if err := cmd.Patch.Validate(); err != nil {
		return fmt.Errorf("update_milestone: %w", err)
	}
	if cmd.Patch.IsEmpty() {
		return nil
	}
	if err := h.store.UpdateMilestone(ctx, cmd.ID, cmd.Patch); err != nil {
		return fmt.Errorf("update_milestone: %w", err)
	}
	return nil
}

// DeleteMilestoneCommand identifies the milestone to remove.
type DeleteMilestoneCommand struct {
	ID int64
}

// DeleteMilestoneHandler handles DeleteMilestoneCommand.
type DeleteMilestoneHandler struct {
	store tracking.MilestoneRepository
}

// NewDeleteMilestoneHandler creates a new handler.
func NewDeleteMilestoneHandler(store tracking.MilestoneRepository) *DeleteMilestoneHandler {
	return &DeleteMilestoneHandler{store: store}
}

// Handle executes the command.
func (h *DeleteMilestoneHandler) Handle(ctx context.Context, cmd DeleteMilestoneCommand) error {
	if err := validateID("milestone", cmd.ID); err != nil {
		return err
	}
	if err := h.store.DeleteMilestone(ctx, cmd.ID); err != nil {
		return fmt.Errorf("delete_milestone: %w", err)
	}
	return nil
}
