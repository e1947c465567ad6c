// Package seed loads the skill checklist that is inserted on first start.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

//go:embed skills.yaml
var defaultSkills []byte

type file struct {
	Skills []tracking.Skill `yaml:"skills"`
}

// DefaultSkills returns the built-in checklist.
func DefaultSkills() ([]tracking.Skill, error) {
	return Parse(defaultSkills)
}

// LoadSkills reads a checklist from path, or the built-in one when path is
// empty.
func LoadSkills(path string) ([]tracking.Skill, error) {
	if path == "" {
		return DefaultSkills()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a checklist. Duplicate ids are rejected.
func Parse(data []byte) ([]tracking.Skill, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: decode skills: %w", err)
	}

	seen := make(map[string]bool, len(f.Skills))
	for i, sk := range f.Skills {
		if err := sk.Validate(); err != nil {
			return nil, fmt.Errorf("seed: skill %d: %w", i, err)
		}
		if seen[sk.SkillID] {
			return nil, fmt.Errorf("seed: duplicate skill id %q", sk.SkillID)
		}
		seen[sk.SkillID] = true
	}
	return f.Skills, nil
}
