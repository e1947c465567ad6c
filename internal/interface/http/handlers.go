package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/relohub/progress-tracker/config"
	"github.com/relohub/progress-tracker/internal/application/command"
	"github.com/relohub/progress-tracker/internal/application/query"
	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "progress-tracker",
		"version": s.config.Version,
		"endpoints": map[string]string{
			"health":          "/health",
			"stats":           "/api/v1/stats",
			"today":           "/api/v1/today",
			"recommendations": "/api/v1/recommendations",
			"sessions":        "/api/v1/sessions/{kind}",
			"income":          "/api/v1/income",
			"milestones":      "/api/v1/milestones",
			"skills":          "/api/v1/skills",
			"notes":           "/api/v1/notes",
			"settings":        "/api/v1/settings",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": s.config.Version,
	})
}

// handleReady handles the readiness probe endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// handleGetFeatures handles GET /api/v1/features
func (s *Server) handleGetFeatures(w http.ResponseWriter, r *http.Request) {
	if s.deps.Features == nil {
		writeJSON(w, r, http.StatusOK, config.NewFeatureFlags().All())
		return
	}
	writeJSON(w, r, http.StatusOK, s.deps.Features.All())
}

// ══════════════════════════════════════════════════════════════════════════════
// DERIVED VIEWS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetStats handles GET /api/v1/stats?date=YYYY-MM-DD
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.App.Queries.Stats.Handle(r.Context(), query.GetStatsQuery{
		Date: r.URL.Query().Get("date"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto)
}

// handleGetToday handles GET /api/v1/today?date=YYYY-MM-DD
func (s *Server) handleGetToday(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.App.Queries.Today.Handle(r.Context(), query.GetTodayQuery{
		Date: r.URL.Query().Get("date"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !s.enabled(config.FeatureMotivation) {
		dto.Motivation = ""
	}
	writeJSON(w, r, http.StatusOK, dto)
}

// handleGetRecommendations handles GET /api/v1/recommendations?date=YYYY-MM-DD
func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.App.Queries.Recommendations.Handle(r.Context(), query.GetRecommendationsQuery{
		Date: r.URL.Query().Get("date"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !s.enabled(config.FeatureAdjustment) {
		dto.Adjustment = nil
	}
	writeJSON(w, r, http.StatusOK, dto)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type logSessionRequest struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
}

// handleListSessions handles GET /api/v1/sessions/{kind}?limit=N
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := getQueryParamInt(r, "limit", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	dto, err := s.deps.App.Queries.Sessions.Handle(r.Context(), query.ListSessionsQuery{
		Kind:  r.PathValue("kind"),
		Limit: limit,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, dto, &ResponseMeta{TotalCount: len(dto.Sessions)})
}

// handleLogSession handles POST /api/v1/sessions/{kind}
func (s *Server) handleLogSession(w http.ResponseWriter, r *http.Request) {
	var req logSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	res, err := s.deps.App.Commands.LogSession.Handle(r.Context(), command.LogSessionCommand{
		Kind:     r.PathValue("kind"),
		Date:     req.Date,
		Amount:   req.Amount,
		Category: req.Category,
		Note:     req.Note,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "log_session",
		logger.Track(string(res.Session.Kind)),
		logger.Date(res.Session.Date),
		logger.RecordID(res.Session.ID))
	writeJSON(w, r, http.StatusCreated, res.Session)
}

// handleDeleteSession handles DELETE /api/v1/sessions/{kind}/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	err = s.deps.App.Commands.DeleteSession.Handle(r.Context(), command.DeleteSessionCommand{
		Kind: r.PathValue("kind"),
		ID:   id,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "delete_session", logger.Track(r.PathValue("kind")), logger.RecordID(id))
	writeJSON(w, r, http.StatusOK, deleted(id))
}

// ══════════════════════════════════════════════════════════════════════════════
// INCOME HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recordIncomeRequest struct {
	Title       string          `json:"title"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Hours       float64         `json:"hours"`
	Platform    string          `json:"platform"`
	Description string          `json:"description"`
}

// handleListIncome handles GET /api/v1/income?limit=N&currency=EUR
func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	limit, err := getQueryParamInt(r, "limit", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	dto, err := s.deps.App.Queries.Income.Handle(r.Context(), query.ListIncomeQuery{
		Limit:    limit,
		Currency: r.URL.Query().Get("currency"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, dto, &ResponseMeta{TotalCount: len(dto.Events)})
}

// handleRecordIncome handles POST /api/v1/income
func (s *Server) handleRecordIncome(w http.ResponseWriter, r *http.Request) {
	var req recordIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	res, err := s.deps.App.Commands.RecordIncome.Handle(r.Context(), command.RecordIncomeCommand{
		Title:       req.Title,
		Date:        req.Date,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Hours:       req.Hours,
		Platform:    req.Platform,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "record_income", logger.Date(res.Event.Date), logger.RecordID(res.Event.ID))
	writeJSON(w, r, http.StatusCreated, res)
}

// handleDeleteIncome handles DELETE /api/v1/income/{id}
func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.deps.App.Commands.DeleteIncome.Handle(r.Context(), command.DeleteIncomeCommand{ID: id}); err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "delete_income", logger.RecordID(id))
	writeJSON(w, r, http.StatusOK, deleted(id))
}

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createMilestoneRequest struct {
	Title      string `json:"title"`
	TargetDate string `json:"target_date"`
	Category   string `json:"category"`
	Notes      string `json:"notes"`
	Completed  bool   `json:"completed"`
}

// handleListMilestones handles GET /api/v1/milestones?pending=true
func (s *Server) handleListMilestones(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.App.Queries.Milestones.Handle(r.Context(), query.ListMilestonesQuery{
		PendingOnly: getQueryParamBool(r, "pending"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto)
}

// handleCreateMilestone handles POST /api/v1/milestones
func (s *Server) handleCreateMilestone(w http.ResponseWriter, r *http.Request) {
	var req createMilestoneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	m, err := s.deps.App.Commands.CreateMilestone.Handle(r.Context(), command.CreateMilestoneCommand(req))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "create_milestone", logger.Date(m.TargetDate), logger.RecordID(m.ID))
	writeJSON(w, r, http.StatusCreated, m)
}

// handleUpdateMilestone handles PATCH /api/v1/milestones/{id}
func (s *Server) handleUpdateMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var patch tracking.MilestonePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDomainError(w, r, err)
		return
	}
	err = s.deps.App.Commands.UpdateMilestone.Handle(r.Context(), command.UpdateMilestoneCommand{ID: id, Patch: patch})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "update_milestone", logger.RecordID(id))
	writeJSON(w, r, http.StatusOK, map[string]any{"id": id, "updated": true})
}

// handleDeleteMilestone handles DELETE /api/v1/milestones/{id}
func (s *Server) handleDeleteMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.deps.App.Commands.DeleteMilestone.Handle(r.Context(), command.DeleteMilestoneCommand{ID: id}); err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "delete_milestone", logger.RecordID(id))
	writeJSON(w, r, http.StatusOK, deleted(id))
}

// ══════════════════════════════════════════════════════════════════════════════
// SKILL HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListSkills handles GET /api/v1/skills
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.App.Queries.Skills.Handle(r.Context(), query.ListSkillsQuery{})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto)
}

// handleUpdateSkill handles PATCH /api/v1/skills/{id}
// The id is the checklist's string skill id, not a row id.
func (s *Server) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	var patch tracking.SkillPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDomainError(w, r, err)
		return
	}
	skillID := r.PathValue("id")
	err := s.deps.App.Commands.UpdateSkill.Handle(r.Context(), command.UpdateSkillCommand{SkillID: skillID, Patch: patch})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "update_skill", logger.SkillID(skillID))
	writeJSON(w, r, http.StatusOK, map[string]any{"skill_id": skillID, "updated": true})
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createNoteRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// handleListNotes handles GET /api/v1/notes?limit=N
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	limit, err := getQueryParamInt(r, "limit", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	notes, err := s.deps.App.Queries.Notes.Handle(r.Context(), query.ListNotesQuery{
		Limit: limit,
		Plain: !s.enabled(config.FeatureNotesHTML),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, notes, &ResponseMeta{TotalCount: len(notes)})
}

// handleCreateNote handles POST /api/v1/notes
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	n, err := s.deps.App.Commands.CreateNote.Handle(r.Context(), command.CreateNoteCommand(req))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "create_note", logger.RecordID(n.ID))
	writeJSON(w, r, http.StatusCreated, n)
}

// handleUpdateNote handles PATCH /api/v1/notes/{id}
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var patch tracking.NotePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.deps.App.Commands.UpdateNote.Handle(r.Context(), command.UpdateNoteCommand{ID: id, Patch: patch}); err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "update_note", logger.RecordID(id))
	writeJSON(w, r, http.StatusOK, map[string]any{"id": id, "updated": true})
}

// handleDeleteNote handles DELETE /api/v1/notes/{id}
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.deps.App.Commands.DeleteNote.Handle(r.Context(), command.DeleteNoteCommand{ID: id}); err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "delete_note", logger.RecordID(id))
	writeJSON(w, r, http.StatusOK, deleted(id))
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetSettings handles GET /api/v1/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.App.Queries.Settings.Handle(r.Context(), query.GetSettingsQuery{})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto)
}

// handleUpdateSettings handles PATCH /api/v1/settings
// Only the keys present in the body change.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch tracking.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDomainError(w, r, err)
		return
	}
	settings, err := s.deps.App.Commands.UpdateSettings.Handle(r.Context(), command.UpdateSettingsCommand{Patch: patch})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logWrite(r, "update_settings")
	writeJSON(w, r, http.StatusOK, settings)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// logWrite records a successful mutation on the request logger.
func logWrite(r *http.Request, op string, fields ...logger.Field) {
	logger.FromContext(r.Context()).Info("record written", append([]logger.Field{logger.Operation(op)}, fields...)...)
}

// decodeJSON reads a single JSON object. Malformed bodies and unknown fields
// are validation errors.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return shared.NewDomainError("http", "Decode", shared.ErrValidation, "request body is empty")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return shared.NewDomainError("http", "Decode", shared.ErrValidation, "request body too large")
		}
		return shared.WrapError("http", "Decode", shared.ErrValidation, "invalid JSON body: "+err.Error(), err)
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ValidationError("http", "Path", "id", "must be a positive integer")
	}
	return id, nil
}

func deleted(id int64) map[string]any {
	return map[string]any{"id": id, "deleted": true}
}
