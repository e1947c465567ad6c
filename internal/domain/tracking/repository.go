package tracking

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Every backend (memory, SQLite, Postgres) implements the full Store. Sums
// over no rows are 0, date filters are inclusive and lexical, and update or
// delete of an unknown id is a silent no-op.
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository stores practice sessions of both kinds.
type SessionRepository interface {
	// CreateSession stores s and returns its new id.
	CreateSession(ctx context.Context, s PracticeSession) (int64, error)

	// DeleteSession removes a session.
	DeleteSession(ctx context.Context, kind SessionKind, id int64) error

	// ListSessions returns sessions newest first. limit <= 0 means no limit.
	ListSessions(ctx context.Context, kind SessionKind, limit int) ([]PracticeSession, error)

	// SessionsOn returns the sessions logged on date in id order.
	SessionsOn(ctx context.Context, kind SessionKind, date string) ([]PracticeSession, error)

	// SumSessions totals Amount over the range.
	SumSessions(ctx context.Context, kind SessionKind, r DateRange) (float64, error)

	// SessionDates returns each date with at least one session, ascending.
	SessionDates(ctx context.Context, kind SessionKind) ([]string, error)
}

// IncomeRepository stores income events.
type IncomeRepository interface {
	CreateIncome(ctx context.Context, e IncomeEvent) (int64, error)
	DeleteIncome(ctx context.Context, id int64) error

	// ListIncome returns events newest first. limit <= 0 means no limit.
	ListIncome(ctx context.Context, limit int) ([]IncomeEvent, error)

	// SumIncome totals field over the range.
	SumIncome(ctx context.Context, field IncomeField, r DateRange) (float64, error)
}

// MilestoneRepository stores milestones.
type MilestoneRepository interface {
	CreateMilestone(ctx context.Context, m Milestone) (int64, error)
	UpdateMilestone(ctx context.Context, id int64, p MilestonePatch) error
	DeleteMilestone(ctx context.Context, id int64) error

	// ListMilestones returns all milestones ordered by target date.
	ListMilestones(ctx context.Context) ([]Milestone, error)

	// UpcomingMilestones returns incomplete milestones due on or before until
	// (overdue ones included), soonest first. limit <= 0 means no limit.
	UpcomingMilestones(ctx context.Context, until string, limit int) ([]Milestone, error)
}

// SkillRepository stores the seeded skill checklist.
type SkillRepository interface {
	// SeedSkills inserts skills whose SkillID is not yet stored and returns
	// how many were added. Existing rows are left alone.
	SeedSkills(ctx context.Context, skills []Skill) (int, error)

	// ListSkills returns skills ordered by phase, then id.
	ListSkills(ctx context.Context) ([]Skill, error)

	UpdateSkill(ctx context.Context, skillID string, p SkillPatch) error
}

// NoteRepository stores journal notes.
type NoteRepository interface {
	CreateNote(ctx context.Context, n Note) (int64, error)
	// UpdateNote applies p and stamps UpdatedAt with at.
	UpdateNote(ctx context.Context, id int64, p NotePatch, at time.Time) error
	DeleteNote(ctx context.Context, id int64) error

	// ListNotes returns notes newest first. limit <= 0 means no limit.
	ListNotes(ctx context.Context, limit int) ([]Note, error)
}

// SettingsRepository stores the settings record.
type SettingsRepository interface {
	// GetSettings returns the complete record; missing keys carry defaults.
	GetSettings(ctx context.Context) (Settings, error)

	// MergeSettings writes only the keys present in p.
	MergeSettings(ctx context.Context, p SettingsPatch) error
}

// Store is the whole event store.
type Store interface {
	SessionRepository
	IncomeRepository
	MilestoneRepository
	SkillRepository
	NoteRepository
	SettingsRepository

	Ping(ctx context.Context) error
	Close() error
}
