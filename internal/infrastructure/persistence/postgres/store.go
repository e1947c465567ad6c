package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

// Store implements tracking.Store over a Connection. Dates travel as
// canonical text and are cast to DATE in SQL; money travels as NUMERIC text.
type Store struct {
	conn *Connection
}

var _ tracking.Store = (*Store)(nil)

// NewStore wraps an open connection. Run the Migrator first.
func NewStore(conn *Connection) *Store {
	return &Store{conn: conn}
}

// Open connects, applies pending migrations and returns the store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	conn, err := NewConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := NewMigrator(conn).Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return NewStore(conn), nil
}

// Ping checks the pool.
func (s *Store) Ping(ctx context.Context) error { return s.conn.Ping(ctx) }

// Close closes the pool.
func (s *Store) Close() error {
	s.conn.Close()
	return nil
}

// Connection exposes the pool for migrations and health checks.
func (s *Store) Connection() *Connection { return s.conn }

func storageErr(op string, err error) error {
	return shared.StorageError("postgres", op, err)
}

// rangeClause appends an inclusive date filter on column, numbering
// placeholders after args.
func rangeClause(column string, r tracking.DateRange, args []any) (string, []any) {
	if r.IsAllTime() {
		return "", args
	}
	clause := ""
	if r.From != "" {
		args = append(args, r.From)
		clause += fmt.Sprintf(" AND %s >= $%d::date", column, len(args))
	}
	if r.To != "" {
		args = append(args, r.To)
		clause += fmt.Sprintf(" AND %s <= $%d::date", column, len(args))
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

const sessionColumns = `id, kind, session_date::text, amount, category, note`

func (s *Store) CreateSession(ctx context.Context, ps tracking.PracticeSession) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx,
		`INSERT INTO sessions (kind, session_date, amount, category, note)
		 VALUES ($1, $2::date, $3, $4, $5) RETURNING id`,
		string(ps.Kind), ps.Date, ps.Amount, ps.Category, ps.Note).Scan(&id)
	if err != nil {
		return 0, storageErr("CreateSession", err)
	}
	return id, nil
}

func (s *Store) DeleteSession(ctx context.Context, kind tracking.SessionKind, id int64) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM sessions WHERE kind = $1 AND id = $2`, string(kind), id); err != nil {
		return storageErr("DeleteSession", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, kind tracking.SessionKind, limit int) ([]tracking.PracticeSession, error) {
	return s.querySessions(ctx, "ListSessions",
		`SELECT `+sessionColumns+` FROM sessions WHERE kind = $1
		 ORDER BY session_date DESC, id DESC`+limitClause(limit), string(kind))
}

func (s *Store) SessionsOn(ctx context.Context, kind tracking.SessionKind, date string) ([]tracking.PracticeSession, error) {
	return s.querySessions(ctx, "SessionsOn",
		`SELECT `+sessionColumns+` FROM sessions WHERE kind = $1 AND session_date = $2::date ORDER BY id`,
		string(kind), date)
}

func (s *Store) querySessions(ctx context.Context, op, query string, args ...any) ([]tracking.PracticeSession, error) {
	rows, err := s.conn.Query(ctx, query, args...)
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
	err := s.conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::float8 FROM sessions WHERE kind = $1`+clause, args...).Scan(&total)
	if err != nil {
		return 0, storageErr("SumSessions", err)
	}
	return total, nil
}

func (s *Store) SessionDates(ctx context.Context, kind tracking.SessionKind) ([]string, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT DISTINCT session_date::text FROM sessions WHERE kind = $1 ORDER BY 1`, string(kind))
	if err != nil {
		return nil, storageErr("SessionDates", err)
	}
	dates, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storageErr("SessionDates", err)
	}
	return dates, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INCOME
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateIncome(ctx context.Context, e tracking.IncomeEvent) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx,
		`INSERT INTO income (title, income_date, amount, hours, platform, description)
		 VALUES ($1, $2::date, $3::numeric, $4, $5, $6) RETURNING id`,
		e.Title, e.Date, e.Amount.String(), e.Hours, e.Platform, e.Description).Scan(&id)
	if err != nil {
		return 0, storageErr("CreateIncome", err)
	}
	return id, nil
}

func (s *Store) DeleteIncome(ctx context.Context, id int64) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM income WHERE id = $1`, id); err != nil {
		return storageErr("DeleteIncome", err)
	}
	return nil
}

func (s *Store) ListIncome(ctx context.Context, limit int) ([]tracking.IncomeEvent, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id, title, income_date::text, amount::text, hours, platform, description
		 FROM income ORDER BY income_date DESC, id DESC`+limitClause(limit))
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
	if err := rows.Err(); err != nil {
		return nil, storageErr("ListIncome", err)
	}
	return out, nil
}

func (s *Store) SumIncome(ctx context.Context, field tracking.IncomeField, r tracking.DateRange) (float64, error) {
	column := "amount"
	if field == tracking.IncomeHours {
		column = "hours"
	}
	clause, args := rangeClause("income_date", r, nil)
	var total float64
	err := s.conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(`+column+`), 0)::float8 FROM income WHERE TRUE`+clause, args...).Scan(&total)
	if err != nil {
		return 0, storageErr("SumIncome", err)
	}
	return total, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONES
// ══════════════════════════════════════════════════════════════════════════════

const milestoneColumns = `id, title, target_date::text, category, notes, completed`

func (s *Store) CreateMilestone(ctx context.Context, m tracking.Milestone) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx,
		`INSERT INTO milestones (title, target_date, category, notes, completed)
		 VALUES ($1, $2::date, $3, $4, $5) RETURNING id`,
		m.Title, m.TargetDate, m.Category, m.Notes, m.Completed).Scan(&id)
	if err != nil {
		return 0, storageErr("CreateMilestone", err)
	}
	return id, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, id int64, p tracking.MilestonePatch) error {
	err := s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+milestoneColumns+` FROM milestones WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		m, err := pgx.CollectOneRow(rows, scanMilestone)
		if IsNoRows(err) {
			return nil
		}
		if err != nil {
			return err
		}

		m = p.Apply(m)
		_, err = tx.Exec(ctx,
			`UPDATE milestones SET title = $1, target_date = $2::date, category = $3, notes = $4, completed = $5
			 WHERE id = $6`,
			m.Title, m.TargetDate, m.Category, m.Notes, m.Completed, id)
		return err
	})
	if err != nil {
		return storageErr("UpdateMilestone", err)
	}
	return nil
}

func (s *Store) DeleteMilestone(ctx context.Context, id int64) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, id); err != nil {
		return storageErr("DeleteMilestone", err)
	}
	return nil
}

func (s *Store) ListMilestones(ctx context.Context) ([]tracking.Milestone, error) {
	return s.queryMilestones(ctx, "ListMilestones",
		`SELECT `+milestoneColumns+` FROM milestones ORDER BY target_date, id`)
}

func (s *Store) UpcomingMilestones(ctx context.Context, until string, limit int) ([]tracking.Milestone, error) {
	return s.queryMilestones(ctx, "UpcomingMilestones",
		`SELECT `+milestoneColumns+` FROM milestones
		 WHERE NOT completed AND target_date <= $1::date ORDER BY target_date, id`+limitClause(limit), until)
}

func (s *Store) queryMilestones(ctx context.Context, op, query string, args ...any) ([]tracking.Milestone, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	out, err := pgx.CollectRows(rows, scanMilestone)
	if err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}

func scanMilestone(row pgx.CollectableRow) (tracking.Milestone, error) {
	var m tracking.Milestone
	err := row.Scan(&m.ID, &m.Title, &m.TargetDate, &m.Category, &m.Notes, &m.Completed)
	return m, err
}

// ══════════════════════════════════════════════════════════════════════════════
// SKILLS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) SeedSkills(ctx context.Context, skills []tracking.Skill) (int, error) {
	added := 0
	err := s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		for _, sk := range skills {
			tag, err := tx.Exec(ctx,
				`INSERT INTO skills (skill_id, name, phase) VALUES ($1, $2, $3) ON CONFLICT (skill_id) DO NOTHING`,
				sk.SkillID, sk.Name, sk.Phase)
			if err != nil {
				return err
			}
			added += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, storageErr("SeedSkills", err)
	}
	return added, nil
}

func (s *Store) ListSkills(ctx context.Context) ([]tracking.Skill, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT skill_id, name, phase, completed, project_url FROM skills ORDER BY phase, skill_id`)
	if err != nil {
		return nil, storageErr("ListSkills", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tracking.Skill, error) {
		var sk tracking.Skill
		err := row.Scan(&sk.SkillID, &sk.Name, &sk.Phase, &sk.Completed, &sk.ProjectURL)
		return sk, err
	})
	if err != nil {
		return nil, storageErr("ListSkills", err)
	}
	return out, nil
}

func (s *Store) UpdateSkill(ctx context.Context, skillID string, p tracking.SkillPatch) error {
	var url *string
	if p.ProjectURL != nil && *p.ProjectURL != "" {
		url = p.ProjectURL
	}
	_, err := s.conn.Exec(ctx,
		`UPDATE skills SET
		   completed = COALESCE($2, completed),
		   project_url = CASE WHEN $3 THEN $4 ELSE project_url END
		 WHERE skill_id = $1`,
		skillID, p.Completed, p.ProjectURL != nil, url)
	if err != nil {
		return storageErr("UpdateSkill", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateNote(ctx context.Context, n tracking.Note) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx,
		`INSERT INTO notes (title, category, content, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		n.Title, n.Category, n.Content, n.CreatedAt, n.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, storageErr("CreateNote", err)
	}
	return id, nil
}

func (s *Store) UpdateNote(ctx context.Context, id int64, p tracking.NotePatch, at time.Time) error {
	_, err := s.conn.Exec(ctx,
		`UPDATE notes SET
		   title = COALESCE($2, title),
		   category = COALESCE($3, category),
		   content = COALESCE($4, content),
		   updated_at = $5
		 WHERE id = $1`,
		id, p.Title, p.Category, p.Content, at)
	if err != nil {
		return storageErr("UpdateNote", err)
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id); err != nil {
		return storageErr("DeleteNote", err)
	}
	return nil
}

func (s *Store) ListNotes(ctx context.Context, limit int) ([]tracking.Note, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id, title, category, content, created_at, updated_at FROM notes
		 ORDER BY created_at DESC, id DESC`+limitClause(limit))
	if err != nil {
		return nil, storageErr("ListNotes", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tracking.Note, error) {
		var n tracking.Note
		err := row.Scan(&n.ID, &n.Title, &n.Category, &n.Content, &n.CreatedAt, &n.UpdatedAt)
		return n, err
	})
	if err != nil {
		return nil, storageErr("ListNotes", err)
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) GetSettings(ctx context.Context) (tracking.Settings, error) {
	rows, err := s.conn.Query(ctx, `SELECT key, value FROM settings`)
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
	values := p.Values()
	if len(values) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for k, v := range values {
		batch.Queue(
			`INSERT INTO settings (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, k, v)
	}
	err := s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return storageErr("MergeSettings", err)
	}
	return nil
}
