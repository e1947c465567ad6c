// Package memory is an in-process Store. It is the default backend for tests
// and for running without a database; data lives only as long as the process.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

// Store keeps every collection in maps guarded by one RWMutex. Ids are
// monotonic per collection and never reused.
type Store struct {
	mu sync.RWMutex

	sessions   map[tracking.SessionKind]map[int64]tracking.PracticeSession
	income     map[int64]tracking.IncomeEvent
	milestones map[int64]tracking.Milestone
	skills     map[string]tracking.Skill
	notes      map[int64]tracking.Note
	settings   map[string]string

	// next id per collection
	seq map[string]int64
}

var _ tracking.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	s := &Store{
		sessions:   make(map[tracking.SessionKind]map[int64]tracking.PracticeSession),
		income:     make(map[int64]tracking.IncomeEvent),
		milestones: make(map[int64]tracking.Milestone),
		skills:     make(map[string]tracking.Skill),
		notes:      make(map[int64]tracking.Note),
		settings:   make(map[string]string),
		seq:        make(map[string]int64),
	}
	for _, k := range tracking.SessionKinds {
		s.sessions[k] = make(map[int64]tracking.PracticeSession)
	}
	return s
}

func (s *Store) nextID(collection string) int64 {
	s.seq[collection]++
	return s.seq[collection]
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// ══════════════════════════════════════════════════════════════════════════════
// SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateSession(_ context.Context, ps tracking.PracticeSession) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps.ID = s.nextID("session:" + string(ps.Kind))
	s.sessions[ps.Kind][ps.ID] = ps
	return ps.ID, nil
}

func (s *Store) DeleteSession(_ context.Context, kind tracking.SessionKind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions[kind], id)
	return nil
}

func (s *Store) ListSessions(_ context.Context, kind tracking.SessionKind, limit int) ([]tracking.PracticeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]tracking.PracticeSession, 0, len(s.sessions[kind]))
	for _, ps := range s.sessions[kind] {
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return truncate(out, limit), nil
}

func (s *Store) SessionsOn(_ context.Context, kind tracking.SessionKind, date string) ([]tracking.PracticeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []tracking.PracticeSession
	for _, ps := range s.sessions[kind] {
		if ps.Date == date {
			out = append(out, ps)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SumSessions(_ context.Context, kind tracking.SessionKind, r tracking.DateRange) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0.0
	for _, ps := range s.sessions[kind] {
		if r.Contains(ps.Date) {
			total += ps.Amount
		}
	}
	return total, nil
}

func (s *Store) SessionDates(_ context.Context, kind tracking.SessionKind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, ps := range s.sessions[kind] {
		seen[ps.Date] = struct{}{}
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INCOME
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateIncome(_ context.Context, e tracking.IncomeEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID("income")
	s.income[e.ID] = e
	return e.ID, nil
}

func (s *Store) DeleteIncome(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.income, id)
	return nil
}

func (s *Store) ListIncome(_ context.Context, limit int) ([]tracking.IncomeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]tracking.IncomeEvent, 0, len(s.income))
	for _, e := range s.income {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return truncate(out, limit), nil
}

func (s *Store) SumIncome(_ context.Context, field tracking.IncomeField, r tracking.DateRange) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0.0
	for _, e := range s.income {
		if !r.Contains(e.Date) {
			continue
		}
		switch field {
		case tracking.IncomeHours:
			total += e.Hours
		default:
			total += e.Amount.InexactFloat64()
		}
	}
	return total, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateMilestone(_ context.Context, m tracking.Milestone) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.nextID("milestone")
	s.milestones[m.ID] = m
	return m.ID, nil
}

func (s *Store) UpdateMilestone(_ context.Context, id int64, p tracking.MilestonePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.milestones[id]
	if !ok {
		return nil
	}
	s.milestones[id] = p.Apply(m)
	return nil
}

func (s *Store) DeleteMilestone(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.milestones, id)
	return nil
}

func (s *Store) ListMilestones(_ context.Context) ([]tracking.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]tracking.Milestone, 0, len(s.milestones))
	for _, m := range s.milestones {
		out = append(out, m)
	}
	sortMilestones(out)
	return out, nil
}

func (s *Store) UpcomingMilestones(_ context.Context, until string, limit int) ([]tracking.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []tracking.Milestone
	for _, m := range s.milestones {
		if !m.Completed && m.TargetDate <= until {
			out = append(out, m)
		}
	}
	sortMilestones(out)
	return truncate(out, limit), nil
}

func sortMilestones(ms []tracking.Milestone) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].TargetDate != ms[j].TargetDate {
			return ms[i].TargetDate < ms[j].TargetDate
		}
		return ms[i].ID < ms[j].ID
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SKILLS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) SeedSkills(_ context.Context, skills []tracking.Skill) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, sk := range skills {
		if _, ok := s.skills[sk.SkillID]; ok {
			continue
		}
		s.skills[sk.SkillID] = sk
		added++
	}
	return added, nil
}

func (s *Store) ListSkills(_ context.Context) ([]tracking.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]tracking.Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		out = append(out, sk)
	}
	tracking.SortSkills(out)
	return out, nil
}

func (s *Store) UpdateSkill(_ context.Context, skillID string, p tracking.SkillPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.skills[skillID]
	if !ok {
		return nil
	}
	s.skills[skillID] = p.Apply(sk)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) CreateNote(_ context.Context, n tracking.Note) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = s.nextID("note")
	s.notes[n.ID] = n
	return n.ID, nil
}

func (s *Store) UpdateNote(_ context.Context, id int64, p tracking.NotePatch, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return nil
	}
	s.notes[id] = p.Apply(n, at)
	return nil
}

func (s *Store) DeleteNote(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, id)
	return nil
}

func (s *Store) ListNotes(_ context.Context, limit int) ([]tracking.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]tracking.Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return truncate(out, limit), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Store) GetSettings(_ context.Context) (tracking.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tracking.SettingsFromValues(s.settings), nil
}

func (s *Store) MergeSettings(_ context.Context, p tracking.SettingsPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range p.Values() {
		s.settings[k] = v
	}
	return nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
