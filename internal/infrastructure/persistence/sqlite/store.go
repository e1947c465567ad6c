// Package sqlite is the single-file Store backend, built on the pure-Go
// modernc.org/sqlite driver through database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

// fixed-width so timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements tracking.Store on one SQLite database file.
type Store struct {
	db *sql.DB
}

var _ tracking.Store = (*Store)(nil)

// Open creates (if needed) and opens the database at path, then ensures the
// schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  session_date TEXT NOT NULL,
  amount REAL NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  note TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sessions_kind_date ON sessions(kind, session_date);

CREATE TABLE IF NOT EXISTS income (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  income_date TEXT NOT NULL,
  amount TEXT NOT NULL,
  hours REAL NOT NULL DEFAULT 0,
  platform TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_income_date ON income(income_date);

CREATE TABLE IF NOT EXISTS milestones (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  target_date TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  completed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS skills (
  skill_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phase INTEGER NOT NULL,
  completed INTEGER NOT NULL DEFAULT 0,
  project_url TEXT
);

CREATE TABLE IF NOT EXISTS notes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create schema: %w", err)
	}
	// files created before notes had a category
	return s.addColumn(ctx, "notes", "category", "TEXT NOT NULL DEFAULT ''")
}

func (s *Store) addColumn(ctx context.Context, table, column, decl string) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n)
	if err != nil {
		return fmt.Errorf("sqlite: inspect %s: %w", table, err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "ALTER TABLE "+table+" ADD COLUMN "+column+" "+decl); err != nil {
		return fmt.Errorf("sqlite: add %s.%s: %w", table, column, err)
	}
	return nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func storageErr(op string, err error) error {
	return shared.StorageError("sqlite", op, err)
}

// rangeClause appends an inclusive date filter on column to args.
func rangeClause(column string, r tracking.DateRange, args []any) (string, []any) {
	if r.IsAllTime() {
		return "", args
	}
	clause := ""
	if r.From != "" {
		clause += " AND " + column + " >= ?"
		args = append(args, r.From)
	}
	if r.To != "" {
		clause += " AND " + column + " <= ?"
		args = append(args, r.To)
	}
	return clause, args
}

func limitClause(limit int) string {
	if limit > 0 {
		return fmt.Sprintf(" LIMIT %d", limit)
	}
	return ""
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateSession(ctx context.Context, ps tracking.PracticeSession) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (kind, session_date, amount, category, note) VALUES (?, ?, ?, ?, ?)`,
		string(ps.Kind), ps.Date, ps.Amount, ps.Category, ps.Note)
	if err != nil {
		return 0, storageErr("CreateSession", err)
	}
	return res.LastInsertId()
}

func (s *Store) DeleteSession(ctx context.Context, kind tracking.SessionKind, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE kind = ? AND id = ?`, string(kind), id); err != nil {
		return storageErr("DeleteSession", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, kind tracking.SessionKind, limit int) ([]tracking.PracticeSession, error) {
	return s.querySessions(ctx, "ListSessions",
		`SELECT id, kind, session_date, amount, category, note FROM sessions
		 WHERE kind = ? ORDER BY session_date DESC, id DESC`+limitClause(limit),
		string(kind))
}

func (s *Store) SessionsOn(ctx context.Context, kind tracking.SessionKind, date string) ([]tracking.PracticeSession, error) {
	return s.querySessions(ctx, "SessionsOn",
		`SELECT id, kind, session_date, amount, category, note FROM sessions
		 WHERE kind = ? AND session_date = ? ORDER BY id`,
		string(kind), date)
}

func (s *Store) querySessions(ctx context.Context, op, query string, args ...any) ([]tracking.PracticeSession, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var out []tracking.PracticeSession
	for rows.Next() {
		var ps tracking.PracticeSession
		var kind string
		if err := rows.Scan(&ps.ID, &kind, &ps.Date, &ps.Amount, &ps.Category, &ps.Note); err != nil {
			return nil, storageErr(op, err)
		}
		ps.Kind = tracking.SessionKind(kind)
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}

func (s *Store) SumSessions(ctx context.Context, kind tracking.SessionKind, r tracking.DateRange) (float64, error) {
	clause, args := rangeClause("session_date", r, []any{string(kind)})
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0.0) FROM sessions WHERE kind = ?`+clause, args...).Scan(&total)
	if err != nil {
		return 0, storageErr("SumSessions", err)
	}
	return total, nil
}

func (s *Store) SessionDates(ctx context.Context, kind tracking.SessionKind) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT session_date FROM sessions WHERE kind = ? ORDER BY session_date`, string(kind))
	if err != nil {
		return nil, storageErr("SessionDates", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, storageErr("SessionDates", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// INCOME
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateIncome(ctx context.Context, e tracking.IncomeEvent) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO income (title, income_date, amount, hours, platform, description) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Title, e.Date, e.Amount.String(), e.Hours, e.Platform, e.Description)
	if err != nil {
		return 0, storageErr("CreateIncome", err)
	}
	return res.LastInsertId()
}

func (s *Store) DeleteIncome(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM income WHERE id = ?`, id); err != nil {
		return storageErr("DeleteIncome", err)
	}
	return nil
}

func (s *Store) ListIncome(ctx context.Context, limit int) ([]tracking.IncomeEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, income_date, amount, hours, platform, description FROM income
		 ORDER BY income_date DESC, id DESC`+limitClause(limit))
	if err != nil {
		return nil, storageErr("ListIncome", err)
	}
	defer rows.Close()

	var out []tracking.IncomeEvent
	for rows.Next() {
		var e tracking.IncomeEvent
		var amount string
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &amount, &e.Hours, &e.Platform, &e.Description); err != nil {
			return nil, storageErr("ListIncome", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, storageErr("ListIncome", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) SumIncome(ctx context.Context, field tracking.IncomeField, r tracking.DateRange) (float64, error) {
	column := "CAST(amount AS REAL)"
	if field == tracking.IncomeHours {
		column = "hours"
	}
	clause, args := rangeClause("income_date", r, nil)
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(`+column+`), 0.0) FROM income WHERE 1 = 1`+clause, args...).Scan(&total)
	if err != nil {
		return 0, storageErr("SumIncome", err)
	}
	return total, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateMilestone(ctx context.Context, m tracking.Milestone) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO milestones (title, target_date, category, notes, completed) VALUES (?, ?, ?, ?, ?)`,
		m.Title, m.TargetDate, m.Category, m.Notes, m.Completed)
	if err != nil {
		return 0, storageErr("CreateMilestone", err)
	}
	return res.LastInsertId()
}

func (s *Store) UpdateMilestone(ctx context.Context, id int64, p tracking.MilestonePatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("UpdateMilestone", err)
	}
	defer func() { _ = tx.Rollback() }()

	m, err := scanMilestone(tx.QueryRowContext(ctx,
		`SELECT id, title, target_date, category, notes, completed FROM milestones WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return storageErr("UpdateMilestone", err)
	}

	m = p.Apply(m)
	if _, err := tx.ExecContext(ctx,
		`UPDATE milestones SET title = ?, target_date = ?, category = ?, notes = ?, completed = ? WHERE id = ?`,
		m.Title, m.TargetDate, m.Category, m.Notes, m.Completed, id); err != nil {
		return storageErr("UpdateMilestone", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("UpdateMilestone", err)
	}
	return nil
}

func (s *Store) DeleteMilestone(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM milestones WHERE id = ?`, id); err != nil {
		return storageErr("DeleteMilestone", err)
	}
	return nil
}

func (s *Store) ListMilestones(ctx context.Context) ([]tracking.Milestone, error) {
	return s.queryMilestones(ctx, "ListMilestones",
		`SELECT id, title, target_date, category, notes, completed FROM milestones
		 ORDER BY target_date, id`)
}

func (s *Store) UpcomingMilestones(ctx context.Context, until string, limit int) ([]tracking.Milestone, error) {
	return s.queryMilestones(ctx, "UpcomingMilestones",
		`SELECT id, title, target_date, category, notes, completed FROM milestones
		 WHERE completed = 0 AND target_date <= ? ORDER BY target_date, id`+limitClause(limit), until)
}

func (s *Store) queryMilestones(ctx context.Context, op, query string, args ...any) ([]tracking.Milestone, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var out []tracking.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMilestone(row scanner) (tracking.Milestone, error) {
	var m tracking.Milestone
	err := row.Scan(&m.ID, &m.Title, &m.TargetDate, &m.Category, &m.Notes, &m.Completed)
	return m, err
}

// ══════════════════════════════════════════════════════════════════════════════
// SKILLS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) SeedSkills(ctx context.Context, skills []tracking.Skill) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("SeedSkills", err)
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, sk := range skills {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO skills (skill_id, name, phase) VALUES (?, ?, ?) ON CONFLICT(skill_id) DO NOTHING`,
			sk.SkillID, sk.Name, sk.Phase)
		if err != nil {
			return 0, storageErr("SeedSkills", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, storageErr("SeedSkills", err)
	}
	return added, nil
}

func (s *Store) ListSkills(ctx context.Context) ([]tracking.Skill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT skill_id, name, phase, completed, project_url FROM skills ORDER BY phase, skill_id`)
	if err != nil {
		return nil, storageErr("ListSkills", err)
	}
	defer rows.Close()

	var out []tracking.Skill
	for rows.Next() {
		var sk tracking.Skill
		var url sql.NullString
		if err := rows.Scan(&sk.SkillID, &sk.Name, &sk.Phase, &sk.Completed, &url); err != nil {
			return nil, storageErr("ListSkills", err)
		}
		if url.Valid {
			sk.ProjectURL = &url.String
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func (s *Store) UpdateSkill(ctx context.Context, skillID string, p tracking.SkillPatch) error {
	if p.Completed != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE skills SET completed = ? WHERE skill_id = ?`, *p.Completed, skillID); err != nil {
			return storageErr("UpdateSkill", err)
		}
	}
	if p.ProjectURL != nil {
		var url any
		if *p.ProjectURL != "" {
			url = *p.ProjectURL
		}
		if _, err := s.db.ExecContext(ctx,
			`UPDATE skills SET project_url = ? WHERE skill_id = ?`, url, skillID); err != nil {
			return storageErr("UpdateSkill", err)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateNote(ctx context.Context, n tracking.Note) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (title, category, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		n.Title, n.Category, n.Content, n.CreatedAt.UTC().Format(timeLayout), n.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, storageErr("CreateNote", err)
	}
	return res.LastInsertId()
}

func (s *Store) UpdateNote(ctx context.Context, id int64, p tracking.NotePatch, at time.Time) error {
	stamp := at.UTC().Format(timeLayout)
	if p.Title != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE notes SET title = ?, updated_at = ? WHERE id = ?`, *p.Title, stamp, id); err != nil {
			return storageErr("UpdateNote", err)
		}
	}
	if p.Category != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE notes SET category = ?, updated_at = ? WHERE id = ?`, *p.Category, stamp, id); err != nil {
			return storageErr("UpdateNote", err)
		}
	}
	if p.Content != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE notes SET content = ?, updated_at = ? WHERE id = ?`, *p.Content, stamp, id); err != nil {
			return storageErr("UpdateNote", err)
		}
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return storageErr("DeleteNote", err)
	}
	return nil
}

func (s *Store) ListNotes(ctx context.Context, limit int) ([]tracking.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, category, content, created_at, updated_at FROM notes
		 ORDER BY created_at DESC, id DESC`+limitClause(limit))
	if err != nil {
		return nil, storageErr("ListNotes", err)
	}
	defer rows.Close()

	var out []tracking.Note
	for rows.Next() {
		var n tracking.Note
		var created, updated string
		if err := rows.Scan(&n.ID, &n.Title, &n.Category, &n.Content, &created, &updated); err != nil {
			return nil, storageErr("ListNotes", err)
		}
		if n.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, storageErr("ListNotes", err)
		}
		if n.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
			return nil, storageErr("ListNotes", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) GetSettings(ctx context.Context) (tracking.Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return tracking.Settings{}, storageErr("GetSettings", err)
	}
	defer rows.Close()

	kv := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return tracking.Settings{}, storageErr("GetSettings", err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return tracking.Settings{}, storageErr("GetSettings", err)
	}
	return tracking.SettingsFromValues(kv), nil
}

func (s *Store) MergeSettings(ctx context.Context, p tracking.SettingsPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("MergeSettings", err)
	}
	defer func() { _ = tx.Rollback() }()

	for k, v := range p.Values() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v); err != nil {
			return storageErr("MergeSettings", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("MergeSettings", err)
	}
	return nil
}
