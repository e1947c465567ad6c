package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// SKILL COMMANDS
// The checklist is seeded once; afterwards only completion and the project
// link change.
// ══════════════════════════════════════════════════════════════════════════════

// SeedSkillsCommand carries the checklist to seed.
type SeedSkillsCommand struct {
	Skills []tracking.Skill
}

// Validate checks every entry and rejects duplicate ids.
func (c SeedSkillsCommand) Validate() error {
	seen := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.SkillID] {
			return shared.ValidationError("skill", "Seed", "id", "duplicate "+s.SkillID)
		}
		seen[s.SkillID] = true
	}
	return nil
}

// SeedSkillsResult reports how many skills were new.
type SeedSkillsResult struct {
	Added int `json:"added"`
	Total int `json:"total"`
}

// SeedSkillsHandler handles SeedSkillsCommand. Seeding is idempotent:
// existing skills keep their progress.
type SeedSkillsHandler struct {
	store tracking.SkillRepository
}

// NewSeedSkillsHandler creates a new handler.
func NewSeedSkillsHandler(store tracking.SkillRepository) *SeedSkillsHandler {
	return &SeedSkillsHandler{store: store}
}

// Handle executes the command.
func (h *SeedSkillsHandler) Handle(ctx context.Context, cmd SeedSkillsCommand) (*SeedSkillsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("seed_skills: %w", err)
	}
	added, err := h.store.SeedSkills(ctx, cmd.Skills)
	if err != nil {
		return nil, fmt.Errorf("seed_skills: %w", err)
	}
	all, err := h.store.ListSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed_skills: %w", err)
	}
	return &SeedSkillsResult{Added: added, Total: len(all)}, nil
}

// UpdateSkillCommand toggles completion and/or sets the project link.
type UpdateSkillCommand struct {
	SkillID string
	Patch   tracking.SkillPatch
}

// UpdateSkillHandler handles UpdateSkillCommand. Unknown skill ids are a
// no-op.
type UpdateSkillHandler struct {
	store tracking.SkillRepository
}

// NewUpdateSkillHandler creates a new handler.
func NewUpdateSkillHandler(store tracking.SkillRepository) *UpdateSkillHandler {
	return &UpdateSkillHandler{store: store}
}

// Handle executes the command.
func (h *UpdateSkillHandler) Handle(ctx context.Context, cmd UpdateSkillCommand) error {
	id := strings.TrimSpace(cmd.SkillID)
	if id == "" {
		return shared.ValidationError("skill", "Update", "skill_id", "is required")
	}
	if cmd.Patch.ProjectURL != nil {
		url := strings.TrimSpace(*cmd.Patch.ProjectURL)
		cmd.Patch.ProjectURL = &url
	}
	if err := h.store.UpdateSkill(ctx, id, cmd.Patch); err != nil {
		return fmt.Errorf("update_skill: %w", err)
	}
	return nil
}
