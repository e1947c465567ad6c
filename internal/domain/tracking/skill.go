package tracking

import (
	"sort"

	"github.com/relohub/progress-tracker/internal/domain/shared"
)

// Skill is one item of the seeded checklist. SkillID and Phase never change
// after seeding; only Completed and ProjectURL are mutable.
type Skill struct {
	SkillID    string  `json:"skill_id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Phase      int     `json:"phase" yaml:"phase"`
	Completed  bool    `json:"completed" yaml:"-"`
	ProjectURL *string `json:"project_url" yaml:"-"`
}

// Validate checks a seed entry.
func (s Skill) Validate() error {
	if s.SkillID == "" {
		return shared.ValidationError("skill", "Seed", "id", "is required")
	}
	if s.Name == "" {
		return shared.ValidationError("skill", "Seed", "name", "is required")
	}
	if s.Phase < 1 {
		return shared.ValidationError("skill", "Seed", "phase", "must be at least 1")
	}
	return nil
}

// SkillPatch updates the mutable fields. A ProjectURL pointing at an empty
// string clears the link.
type SkillPatch struct {
	Completed  *bool   `json:"completed,omitempty"`
	ProjectURL *string `json:"project_url,omitempty"`
}

// Apply returns s with the patch merged in.
func (p SkillPatch) Apply(s Skill) Skill {
	if p.Completed != nil {
		s.Completed = *p.Completed
	}
	if p.ProjectURL != nil {
		if *p.ProjectURL == "" {
			s.ProjectURL = nil
		} else {
			url := *p.ProjectURL
			s.ProjectURL = &url
		}
	}
	return s
}

// SortSkills orders skills by phase, then by id.
func SortSkills(skills []Skill) {
	sort.SliceStable(skills, func(i, j int) bool {
		if skills[i].Phase != skills[j].Phase {
			return skills[i].Phase < skills[j].Phase
		}
		return skills[i].SkillID < skills[j].SkillID
	})
}
