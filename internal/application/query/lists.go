package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST QUERIES
// Plain reads of the stored collections.
// ══════════════════════════════════════════════════════════════════════════════

// maxListLimit caps any explicit limit.
const maxListLimit = 1000

func validateLimit(limit int) error {
	if limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if limit > maxListLimit {
		return fmt.Errorf("limit cannot exceed %d", maxListLimit)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

// ListSessionsQuery lists sessions of one kind, newest first.
type ListSessionsQuery struct {
	// Kind accepts the kind name or a track alias.
	Kind string
	// Limit of 0 returns everything.
	Limit int

	kind tracking.SessionKind
}

// Validate checks the query and resolves the kind.
func (q *ListSessionsQuery) Validate() error {
	kind, ok := tracking.ParseSessionKind(q.Kind)
	if !ok {
		return fmt.Errorf("unknown session kind %q", q.Kind)
	}
	q.kind = kind
	return validateLimit(q.Limit)
}

// SessionListDTO is a list of sessions with their unit.
type SessionListDTO struct {
	Kind     tracking.SessionKind       `json:"kind"`
	Unit     string                     `json:"unit"`
	Sessions []tracking.PracticeSession `json:"sessions"`
}

// ListSessionsHandler handles ListSessionsQuery.
type ListSessionsHandler struct {
	store tracking.SessionRepository
}

// NewListSessionsHandler creates a new handler.
func NewListSessionsHandler(store tracking.SessionRepository) *ListSessionsHandler {
	return &ListSessionsHandler{store: store}
}

// Handle executes the query.
func (h *ListSessionsHandler) Handle(ctx context.Context, q ListSessionsQuery) (*SessionListDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListSessions", shared.ErrValidation, err.Error(), err)
	}
	sessions, err := h.store.ListSessions(ctx, q.kind, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list_sessions: %w", err)
	}
	return &SessionListDTO{Kind: q.kind, Unit: q.kind.Unit(), Sessions: nonNil(sessions)}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Income
// ─────────────────────────────────────────────────────────────────────────────

// ListIncomeQuery lists income events, newest first.
type ListIncomeQuery struct {
	Limit int
	// Currency, when set, adds each amount converted from the base currency.
	Currency string
}

// Validate checks the query.
func (q *ListIncomeQuery) Validate() error {
	if q.Currency != "" {
		q.Currency = tracking.NormalizeCurrency(q.Currency)
		if !tracking.ValidCurrency(q.Currency) {
			return fmt.Errorf("unknown currency %q", q.Currency)
		}
	}
	return validateLimit(q.Limit)
}

// IncomeEventDTO is a stored event plus its optional conversion.
type IncomeEventDTO struct {
	tracking.IncomeEvent
	HourlyRate decimal.Decimal  `json:"hourly_rate"`
	Converted  *decimal.Decimal `json:"converted,omitempty"`
}

// IncomeListDTO is the list of income events.
type IncomeListDTO struct {
	BaseCurrency string           `json:"base_currency"`
	Currency     string           `json:"currency,omitempty"`
	Events       []IncomeEventDTO `json:"events"`
}

// ListIncomeHandler handles ListIncomeQuery.
type ListIncomeHandler struct {
	store tracking.Store
}

// NewListIncomeHandler creates a new handler.
func NewListIncomeHandler(store tracking.Store) *ListIncomeHandler {
	return &ListIncomeHandler{store: store}
}

// Handle executes the query.
func (h *ListIncomeHandler) Handle(ctx context.Context, q ListIncomeQuery) (*IncomeListDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListIncome", shared.ErrValidation, err.Error(), err)
	}
	events, err := h.store.ListIncome(ctx, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list_income: %w", err)
	}

	var rates map[string]decimal.Decimal
	if q.Currency != "" {
		settings, err := h.store.GetSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("list_income: settings: %w", err)
		}
		rates = settings.ExchangeRates
	}

	out := &IncomeListDTO{
		BaseCurrency: tracking.BaseCurrency,
		Currency:     q.Currency,
		Events:       make([]IncomeEventDTO, 0, len(events)),
	}
	for _, e := range events {
		dto := IncomeEventDTO{IncomeEvent: e, HourlyRate: e.HourlyRate()}
		if q.Currency != "" {
			converted, err := tracking.FromBase(e.Amount, q.Currency, rates)
			if err != nil {
				return nil, err
			}
			dto.Converted = &converted
		}
		out.Events = append(out.Events, dto)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Milestones
// ─────────────────────────────────────────────────────────────────────────────

// ListMilestonesQuery lists milestones by target date.
type ListMilestonesQuery struct {
	// PendingOnly hides completed milestones.
	PendingOnly bool
}

// MilestoneListDTO is the milestone list with its completion count.
type MilestoneListDTO struct {
	Milestones []tracking.Milestone `json:"milestones"`
	Progress   CompletionDTO        `json:"progress"`
}

// ListMilestonesHandler handles ListMilestonesQuery.
type ListMilestonesHandler struct {
	store tracking.MilestoneRepository
}

// NewListMilestonesHandler creates a new handler.
func NewListMilestonesHandler(store tracking.MilestoneRepository) *ListMilestonesHandler {
	return &ListMilestonesHandler{store: store}
}

// Handle executes the query. Progress always counts every milestone.
func (h *ListMilestonesHandler) Handle(ctx context.Context, q ListMilestonesQuery) (*MilestoneListDTO, error) {
	all, err := h.store.ListMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_milestones: %w", err)
	}
	done := 0
	shown := make([]tracking.Milestone, 0, len(all))
	for _, m := range all {
		if m.Completed {
			done++
			if q.PendingOnly {
				continue
			}
		}
		shown = append(shown, m)
	}
	return &MilestoneListDTO{Milestones: shown, Progress: completion(done, len(all))}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Skills
// ─────────────────────────────────────────────────────────────────────────────

// ListSkillsQuery lists the checklist grouped by phase.
type ListSkillsQuery struct{}

// SkillPhaseDTO is one phase of the checklist.
type SkillPhaseDTO struct {
	Phase    int              `json:"phase"`
	Skills   []tracking.Skill `json:"skills"`
	Progress CompletionDTO    `json:"progress"`
}

// SkillListDTO is the whole checklist.
type SkillListDTO struct {
	Phases   []SkillPhaseDTO `json:"phases"`
	Progress CompletionDTO   `json:"progress"`
}

// ListSkillsHandler handles ListSkillsQuery.
type ListSkillsHandler struct {
	store tracking.SkillRepository
}

// NewListSkillsHandler creates a new handler.
func NewListSkillsHandler(store tracking.SkillRepository) *ListSkillsHandler {
	return &ListSkillsHandler{store: store}
}

// Handle executes the query.
func (h *ListSkillsHandler) Handle(ctx context.Context, _ ListSkillsQuery) (*SkillListDTO, error) {
	skills, err := h.store.ListSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_skills: %w", err)
	}
	tracking.SortSkills(skills)

	out := &SkillListDTO{Phases: []SkillPhaseDTO{}}
	done := 0
	for _, s := range skills {
		if len(out.Phases) == 0 || out.Phases[len(out.Phases)-1].Phase != s.Phase {
			out.Phases = append(out.Phases, SkillPhaseDTO{Phase: s.Phase})
		}
		ph := &out.Phases[len(out.Phases)-1]
		ph.Skills = append(ph.Skills, s)
		ph.Progress.Total++
		if s.Completed {
			ph.Progress.Completed++
			done++
		}
	}
	for i := range out.Phases {
		pr := out.Phases[i].Progress
		out.Phases[i].Progress = completion(pr.Completed, pr.Total)
	}
	out.Progress = completion(done, len(skills))
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Notes
// ─────────────────────────────────────────────────────────────────────────────

// NoteRenderer turns a markdown body into HTML.
type NoteRenderer interface {
	Render(markdown string) (string, error)
}

// ListNotesQuery lists notes, newest first.
type ListNotesQuery struct {
	Limit int
	// Plain skips markdown rendering.
	Plain bool
}

// Validate checks the query.
func (q *ListNotesQuery) Validate() error {
	return validateLimit(q.Limit)
}

// NoteDTO is a note with its rendered body.
type NoteDTO struct {
	tracking.Note
	HTML string `json:"html,omitempty"`
}

// ListNotesHandler handles ListNotesQuery.
type ListNotesHandler struct {
	store    tracking.NoteRepository
	renderer NoteRenderer
}

// NewListNotesHandler creates a new handler. A nil renderer leaves HTML empty.
func NewListNotesHandler(store tracking.NoteRepository, renderer NoteRenderer) *ListNotesHandler {
	return &ListNotesHandler{store: store, renderer: renderer}
}

// Handle executes the query.
func (h *ListNotesHandler) Handle(ctx context.Context, q ListNotesQuery) ([]NoteDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListNotes", shared.ErrValidation, err.Error(), err)
	}
	notes, err := h.store.ListNotes(ctx, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list_notes: %w", err)
	}
	out := make([]NoteDTO, 0, len(notes))
	for _, n := range notes {
		dto := NoteDTO{Note: n}
		if h.renderer != nil && !q.Plain {
			html, err := h.renderer.Render(n.Content)
			if err != nil {
				return nil, fmt.Errorf("list_notes: render note %d: %w", n.ID, err)
			}
			dto.HTML = html
		}
		out = append(out, dto)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetSettingsQuery reads the settings record.
type GetSettingsQuery struct{}

// SettingsDTO is the settings record plus the currencies with a known rate.
type SettingsDTO struct {
	tracking.Settings
	BaseCurrency string   `json:"base_currency"`
	Currencies   []string `json:"currencies"`
}

// GetSettingsHandler handles GetSettingsQuery.
type GetSettingsHandler struct {
	store tracking.SettingsRepository
}

// NewGetSettingsHandler creates a new handler.
func NewGetSettingsHandler(store tracking.SettingsRepository) *GetSettingsHandler {
	return &GetSettingsHandler{store: store}
}

// Handle executes the query.
func (h *GetSettingsHandler) Handle(ctx context.Context, _ GetSettingsQuery) (*SettingsDTO, error) {
	s, err := h.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_settings: %w", err)
	}
	return &SettingsDTO{Settings: s, BaseCurrency: tracking.BaseCurrency, Currencies: s.Currencies()}, nil
}
