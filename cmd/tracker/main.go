// Package main is the entry point of the progress tracker.
//
// The same binary serves the JSON API (tracker serve) and answers one-off
// questions from the terminal (tracker today, tracker log language 30).
// Every command reads the same configuration, so the CLI and the server see
// the same store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relohub/progress-tracker/config"
	"github.com/relohub/progress-tracker/internal/application"
	"github.com/relohub/progress-tracker/internal/application/query"
	"github.com/relohub/progress-tracker/internal/domain/metrics"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/internal/infrastructure/markdown"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/postgres"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/redis"
	"github.com/relohub/progress-tracker/internal/interface/cli"
	"github.com/relohub/progress-tracker/pkg/logger"
	"github.com/relohub/progress-tracker/pkg/timeutil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	json       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Personal relocation progress tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.configPath != "" {
				return os.Setenv("TRACKER_CONFIG", opts.configPath)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (overrides TRACKER_CONFIG)")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of rendered views")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newTodayCmd(opts))
	root.AddCommand(newFocusCmd(opts))
	root.AddCommand(newLogCmd(opts))
	root.AddCommand(newIncomeCmd(opts))
	root.AddCommand(newSkillsCmd(opts))
	root.AddCommand(newHashPasswordCmd())
	return root
}

// ══════════════════════════════════════════════════════════════════════════════
// RUNTIME
// ══════════════════════════════════════════════════════════════════════════════

// runtime is everything a command needs once configuration is loaded.
type runtime struct {
	cfg   *config.Config
	log   *logger.Logger
	store tracking.Store
	app   *application.Application
}

// openRuntime loads configuration, opens the store and builds the
// application. quiet raises the log level to warn so one-off commands keep
// stderr clean.
func openRuntime(ctx context.Context, quiet bool) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output: os.Stderr,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
		Format: logger.ParseFormat(cfg.Observability.LogFormat),
	}).With(logger.String("app", cfg.App.Name), logger.String("env", string(cfg.App.Environment)))
	if quiet && !log.Enabled(logger.LevelDebug) {
		log = log.WithLevel(logger.LevelWarn)
	}

	store, err := persistence.Open(ctx, storeOptions(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	app := application.New(store, timeutil.NewSystemClock(cfg.App.Location), application.Options{
		Query: query.Options{
			FirstWeekday:      cfg.App.Weekday,
			LanguageGoalHours: cfg.Tracking.LanguageGoalHours,
			UpcomingLimit:     cfg.Tracking.UpcomingLimit,
			Labels:            cfg.Labels(),
		},
		Chooser:     metrics.RandomChooser{},
		Suggestions: cfg.Tracking.Suggestions,
		Renderer:    markdown.NewRenderer(),
	})

	return &runtime{cfg: cfg, log: log, store: store, app: app}, nil
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		rt.log.Error("failed to close store", logger.Err(err))
	}
}

func storeOptions(cfg *config.Config, log *logger.Logger) persistence.Options {
	pg := postgres.DefaultConfig()
	if cfg.Storage.MaxConns > 0 {
		pg.MaxConns = cfg.Storage.MaxConns
	}
	if cfg.Storage.ConnMaxLifetime > 0 {
		pg.MaxConnLifetime = cfg.Storage.ConnMaxLifetime
	}

	opts := persistence.Options{
		Driver:      string(cfg.Storage.Driver),
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresURL: cfg.Storage.DatabaseURL,
		Postgres:    pg,
		Logger:      log,
	}

	if cfg.Redis.Enabled {
		opts.Redis = &redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			Namespace:    cfg.Redis.Namespace,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}
	}
	return opts
}

// output renders v as JSON when --json is set and with view otherwise.
func output(cmd *cobra.Command, opts *rootOptions, v any, view func(*cli.Renderer)) error {
	r := cli.NewRenderer(cmd.OutOrStdout())
	if opts.json {
		return r.JSON(v)
	}
	view(r)
	return nil
}
