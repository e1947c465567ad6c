package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSkills(t *testing.T) {
	skills, err := DefaultSkills()
	require.NoError(t, err)
	require.Len(t, skills, 13)
	assert.Equal(t, "python_basics", skills[0].SkillID)
	assert.Equal(t, "Python Basics & Syntax", skills[0].Name)
	assert.Equal(t, 1, skills[0].Phase)
	assert.False(t, skills[0].Completed)
	assert.Nil(t, skills[0].ProjectURL)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("skills:\n  - {id: a, name: A, phase: 1}\n  - {id: a, name: B, phase: 2}\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("skills:\n  - {name: A, phase: 1}\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("skills: [oops"))
	assert.Error(t, err)
}

func TestLoadSkills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills:\n  - {id: go_basics, name: Go basics, phase: 1}\n"), 0o600))

	skills, err := LoadSkills(path)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "go_basics", skills[0].SkillID)

	_, err = LoadSkills(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
