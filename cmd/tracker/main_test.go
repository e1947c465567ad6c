package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// run executes the root command against an in-memory store.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TRACKER_CONFIG", "")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLog(t *testing.T) {
	out, err := run(t, "log", "language", "30", "--date", "2024-01-03", "--note", "tones")
	require.NoError(t, err)
	assert.Equal(t, "✓ logged 30 minutes of language on 2024-01-03 (#1)\n", out)
}

func TestLog_JSON(t *testing.T) {
	out, err := run(t, "--json", "log", "python", "1.5", "--date", "2024-01-03")
	require.NoError(t, err)

	var s struct {
		Kind   string  `json:"kind"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "study", s.Kind)
	assert.Equal(t, 1.5, s.Amount)
	assert.Equal(t, "2024-01-03", s.Date)
}

func TestLog_Errors(t *testing.T) {
	_, err := run(t, "log", "language", "lots")
	assert.ErrorContains(t, err, `amount "lots" is not a number`)

	_, err = run(t, "log", "language", "0")
	assert.Error(t, err)

	_, err = run(t, "log", "language")
	assert.Error(t, err)
}

func TestIncome(t *testing.T) {
	out, err := run(t, "income", "250", "--title", "Landing page", "--date", "2024-01-03", "--hours", "10")
	require.NoError(t, err)
	assert.Equal(t, "✓ recorded 250.00 USD for \"Landing page\" on 2024-01-03 (#1)\n", out)

	_, err = run(t, "income", "ten")
	assert.Error(t, err)
}

func TestViews(t *testing.T) {
	out, err := run(t, "stats", "--date", "2024-01-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress")
	assert.Contains(t, out, "2024-01-03")

	out, err = run(t, "today", "--date", "2024-01-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Wednesday 2024-01-03")

	out, err = run(t, "focus", "--date", "2024-01-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Focus")

	_, err = run(t, "stats", "--date", "2024-1-3")
	assert.Error(t, err)
}

func TestToday_MotivationFlag(t *testing.T) {
	t.Setenv("FEATURE_TODAY_MOTIVATION", "false")
	out, err := run(t, "--json", "today", "--date", "2024-01-03")
	require.NoError(t, err)

	var today struct {
		Motivation string `json:"motivation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &today))
	assert.Empty(t, today.Motivation)
}

func TestSeedAndSkills(t *testing.T) {
	out, err := run(t, "--json", "seed")
	require.NoError(t, err)

	var res struct {
		Added int `json:"added"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Positive(t, res.Added)
	assert.Equal(t, res.Added, res.Total)

	out, err = run(t, "skills")
	require.NoError(t, err)
	assert.Contains(t, out, "0/0 complete (0%)", "memory store is fresh per command")
}

func TestSeed_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
skills:
  - {id: go_basics, name: "Go basics", phase: 1}
  - {id: go_http, name: "net/http", phase: 2}
`), 0o600))

	out, err := run(t, "seed", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ seeded 2 new skills (2 in checklist)\n", out)

	_, err = run(t, "seed", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  first_weekday: someday\n"), 0o600))

	_, err := run(t, "--config", path, "stats")
	assert.ErrorContains(t, err, "APP_FIRST_WEEKDAY")
}

func TestMigrate(t *testing.T) {
	t.Setenv("TRACKER_CONFIG", "")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "tracker.db"))
	t.Setenv("STORAGE_DRIVER", "sqlite")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"migrate"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "schema up to date (sqlite)\n", out.String())
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "hash-password", "s3cret")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetIn(strings.NewReader("from-stdin\n"))
	root.SetArgs([]string{"hash-password"})
	require.NoError(t, root.Execute())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(buf.String())), []byte("from-stdin")))

	root = newRootCmd()
	root.SetIn(strings.NewReader("\n"))
	root.SetArgs([]string{"hash-password"})
	assert.Error(t, root.Execute())
}
