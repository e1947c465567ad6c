// Package application wires every command and query handler over one store so
// the HTTP API and the CLI share the same use cases.
package application

import (
	"github.com/relohub/progress-tracker/internal/application/command"
	"github.com/relohub/progress-tracker/internal/application/query"
	"github.com/relohub/progress-tracker/internal/domain/metrics"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

// Queries groups the read side.
type Queries struct {
	Stats           *query.GetStatsHandler
	Today           *query.GetTodayHandler
	Recommendations *query.GetRecommendationsHandler

	Sessions   *query.ListSessionsHandler
	Income     *query.ListIncomeHandler
	Milestones *query.ListMilestonesHandler
	Skills     *query.ListSkillsHandler
	Notes      *query.ListNotesHandler
	Settings   *query.GetSettingsHandler
}

// Commands groups the write side.
type Commands struct {
	LogSession    *command.LogSessionHandler
	DeleteSession *command.DeleteSessionHandler

	RecordIncome *command.RecordIncomeHandler
	DeleteIncome *command.DeleteIncomeHandler

	CreateMilestone *command.CreateMilestoneHandler
	UpdateMilestone *command.UpdateMilestoneHandler
	DeleteMilestone *command.DeleteMilestoneHandler

	SeedSkills  *command.SeedSkillsHandler
	UpdateSkill *command.UpdateSkillHandler

	CreateNote *command.CreateNoteHandler
	UpdateNote *command.UpdateNoteHandler
	DeleteNote *command.DeleteNoteHandler

	UpdateSettings *command.UpdateSettingsHandler
}

// Application is the full set of use cases.
type Application struct {
	Queries  Queries
	Commands Commands
}

// Options configures New.
type Options struct {
	Query query.Options

	// Chooser picks motivation lines and suggestions. Nil picks at random.
	Chooser metrics.Chooser

	// Suggestions override the built-in recommendation pools.
	Suggestions metrics.SuggestionPools

	// Renderer turns note markdown into HTML. Nil leaves notes unrendered.
	Renderer query.NoteRenderer
}

// New builds every handler over store.
func New(store tracking.Store, clock timeutil.Clock, opts Options) *Application {
	if clock == nil {
		clock = timeutil.NewSystemClock(nil)
	}
	labels := opts.Query.Labels
	if labels.Language == "" || labels.Study == "" {
		labels = metrics.DefaultLabels()
	}
	recommender := metrics.NewRecommender(labels, opts.Chooser).WithPools(opts.Suggestions)

	return &Application{
		Queries: Queries{
			Stats:           query.NewGetStatsHandler(store, clock, opts.Query),
			Today:           query.NewGetTodayHandler(store, clock, opts.Chooser, opts.Query),
			Recommendations: query.NewGetRecommendationsHandler(store, clock, recommender, opts.Query),
			Sessions:        query.NewListSessionsHandler(store),
			Income:          query.NewListIncomeHandler(store),
			Milestones:      query.NewListMilestonesHandler(store),
			Skills:          query.NewListSkillsHandler(store),
			Notes:           query.NewListNotesHandler(store, opts.Renderer),
			Settings:        query.NewGetSettingsHandler(store),
		},
		Commands: Commands{
			LogSession:      command.NewLogSessionHandler(store, clock),
			DeleteSession:   command.NewDeleteSessionHandler(store),
			RecordIncome:    command.NewRecordIncomeHandler(store, clock),
			DeleteIncome:    command.NewDeleteIncomeHandler(store),
			CreateMilestone: command.NewCreateMilestoneHandler(store),
			UpdateMilestone: command.NewUpdateMilestoneHandler(store),
			DeleteMilestone: command.NewDeleteMilestoneHandler(store),
			SeedSkills:      command.NewSeedSkillsHandler(store),
			UpdateSkill:     command.NewUpdateSkillHandler(store),
			CreateNote:      command.NewCreateNoteHandler(store, clock),
			UpdateNote:      command.NewUpdateNoteHandler(store, clock),
			DeleteNote:      command.NewDeleteNoteHandler(store),
			UpdateSettings:  command.NewUpdateSettingsHandler(store),
		},
	}
}
