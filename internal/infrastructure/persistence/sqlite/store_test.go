package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) tracking.Store {
		s, err := Open(context.Background(), filepath.Join(t.TempDir(), "tracker.db"))
		require.NoError(t, err)
		return s
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tracker.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.CreateSession(ctx, tracking.PracticeSession{Kind: tracking.SessionLanguage, Date: "2024-01-01", Amount: 20})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	total, err := s.SumSessions(ctx, tracking.SessionLanguage, tracking.AllTime)
	require.NoError(t, err)
	assert.Equal(t, 20.0, total)
	assert.NoError(t, s.Ping(ctx))
}

func TestStore_AddsNoteCategoryToOldFiles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE notes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	now := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
	_, err = s.CreateNote(ctx, tracking.Note{Category: "language", Content: "tones", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	notes, err := s.ListNotes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "language", notes[0].Category)

	// reopening leaves the column alone
	require.NoError(t, s.addColumn(ctx, "notes", "category", "TEXT NOT NULL DEFAULT ''"))
}

func TestRangeClause(t *testing.T) {
	clause, args := rangeClause("session_date", tracking.Between("2024-01-01", ""), []any{"study"})
	assert.Equal(t, " AND session_date >= ?", clause)
	assert.Equal(t, []any{"study", "2024-01-01"}, args)

	clause, args = rangeClause("income_date", tracking.AllTime, []any{"x"})
	assert.Empty(t, clause)
	assert.Equal(t, []any{"x"}, args)
}
