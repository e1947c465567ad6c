package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/relohub/progress-tracker/config"
	"github.com/relohub/progress-tracker/internal/application/command"
	"github.com/relohub/progress-tracker/internal/application/query"
	"github.com/relohub/progress-tracker/internal/infrastructure/seed"
	httpserver "github.com/relohub/progress-tracker/internal/interface/http"
	"github.com/relohub/progress-tracker/internal/interface/http/handlers"
	"github.com/relohub/progress-tracker/internal/interface/cli"
	"github.com/relohub/progress-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := openRuntime(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.log.Info("starting progress tracker",
				logger.String("version", rt.cfg.App.Version),
				logger.String("timezone", rt.cfg.App.Location.String()),
				logger.String("first_weekday", rt.cfg.App.Weekday.String()))

			if rt.cfg.Storage.SeedOnStart {
				res, err := seedSkills(ctx, rt, rt.cfg.Storage.SeedFile)
				if err != nil {
					return err
				}
				rt.log.Info("skill checklist seeded", logger.Int("added", res.Added), logger.Int("total", res.Total))
			}

			checker := handlers.NewCompositeHealthChecker(rt.cfg.App.Version)
			checker.AddCheck("store", handlers.NewStoreCheck(rt.store))

			srv := httpserver.NewServer(httpserver.ConfigFrom(rt.cfg.HTTP, rt.cfg.App.Version), httpserver.Dependencies{
				App:           rt.app,
				Features:      rt.cfg.Features,
				Logger:        rt.log,
				HealthChecker: checker,
			})

			errCh := srv.StartAsync()
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			rt.log.Info("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.App.ShutdownTimeout)
			defer cancel()
			uptime := srv.Uptime()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			rt.log.Info("server stopped", logger.Duration("uptime", uptime))
			return nil
		},
	}
}

func newMigrateCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the store schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Opening a store applies its schema.
			rt, err := openRuntime(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", rt.cfg.Storage.Driver)
			return err
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "seed",
		Short: "Add missing skills to the checklist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if file == "" {
				file = rt.cfg.Storage.SeedFile
			}
			res, err := seedSkills(cmd.Context(), rt, file)
			if err != nil {
				return err
			}
			return output(cmd, opts, res, func(r *cli.Renderer) { r.Seeded(res) })
		},
	}
	c.Flags().StringVar(&file, "file", "", "YAML skill list (defaults to the built-in checklist)")
	return c
}

func seedSkills(ctx context.Context, rt *runtime, file string) (*command.SeedSkillsResult, error) {
	skills, err := seed.LoadSkills(file)
	if err != nil {
		return nil, err
	}
	return rt.app.Commands.SeedSkills.Handle(ctx, command.SeedSkillsCommand{Skills: skills})
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEWS
// ══════════════════════════════════════════════════════════════════════════════

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var date string
	c := &cobra.Command{
		Use:   "stats",
		Short: "Show progress across every track",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()

			stats, err := rt.app.Queries.Stats.Handle(cmd.Context(), query.GetStatsQuery{Date: date})
			if err != nil {
				return err
			}
			return output(cmd, opts, stats, func(r *cli.Renderer) { r.Stats(stats) })
		},
	}
	c.Flags().StringVar(&date, "date", "", "evaluate as of YYYY-MM-DD")
	return c
}

func newTodayCmd(opts *rootOptions) *cobra.Command {
	var date string
	c := &cobra.Command{
		Use:   "today",
		Short: "Show today's targets and upcoming milestones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()

			today, err := rt.app.Queries.Today.Handle(cmd.Context(), query.GetTodayQuery{Date: date})
			if err != nil {
				return err
			}
			if !rt.cfg.Features.IsEnabled(config.FeatureMotivation) {
				today.Motivation = ""
			}
			return output(cmd, opts, today, func(r *cli.Renderer) { r.Today(today) })
		},
	}
	c.Flags().StringVar(&date, "date", "", "evaluate as of YYYY-MM-DD")
	return c
}

func newFocusCmd(opts *rootOptions) *cobra.Command {
	var date string
	c := &cobra.Command{
		Use:     "focus",
		Aliases: []string{"recommendations"},
		Short:   "Show what to work on next",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()

			rec, err := rt.app.Queries.Recommendations.Handle(cmd.Context(), query.GetRecommendationsQuery{Date: date})
			if err != nil {
				return err
			}
			if !rt.cfg.Features.IsEnabled(config.FeatureAdjustment) {
				rec.Adjustment = nil
			}
			return output(cmd, opts, rec, func(r *cli.Renderer) { r.Recommendations(rec) })
		},
	}
	c.Flags().StringVar(&date, "date", "", "evaluate as of YYYY-MM-DD")
	return c
}

func newSkillsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "Show the skill checklist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()

			skills, err := rt.app.Queries.Skills.Handle(cmd.Context(), query.ListSkillsQuery{})
			if err != nil {
				return err
			}
			return output(cmd, opts, skills, func(r *cli.Renderer) { r.Skills(skills) })
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORDS
// ══════════════════════════════════════════════════════════════════════════════

func newLogCmd(opts *rootOptions) *cobra.Command {
	var logCmd command.LogSessionCommand
	c := &cobra.Command{
		Use:   "log <kind> <amount>",
		Short: "Log a practice session (language in minutes, study in hours)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("amount %q is not a number", args[1])
			}
			logCmd.Kind = args[0]
			logCmd.Amount = amount

			rt, err := openRuntime(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.app.Commands.LogSession.Handle(cmd.Context(), logCmd)
			if err != nil {
				return err
			}
			return output(cmd, opts, res.Session, func(r *cli.Renderer) { r.Session(res.Session) })
		},
	}
	c.Flags().StringVar(&logCmd.Date, "date", "", "session date YYYY-MM-DD (defaults to today)")
	c.Flags().StringVar(&logCmd.Category, "category", "", "what kind of practice it was")
	c.Flags().StringVar(&logCmd.Note, "note", "", "free-form note")
	return c
}

func newIncomeCmd(opts *rootOptions) *cobra.Command {
	var incCmd command.RecordIncomeCommand
	c := &cobra.Command{
		Use:   "income <amount>",
		Short: "Record a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("amount %q is not a number", args[0])
			}
			incCmd.Amount = amount

			rt, err := openRuntime(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.app.Commands.RecordIncome.Handle(cmd.Context(), incCmd)
			if err != nil {
				return err
			}
			return output(cmd, opts, res, func(r *cli.Renderer) { r.Income(res) })
		},
	}
	c.Flags().StringVar(&incCmd.Title, "title", "", "what the payment was for")
	c.Flags().StringVar(&incCmd.Date, "date", "", "payment date YYYY-MM-DD (defaults to today)")
	c.Flags().StringVar(&incCmd.Currency, "currency", "", "ISO 4217 code (defaults to USD)")
	c.Flags().Float64Var(&incCmd.Hours, "hours", 0, "hours spent")
	c.Flags().StringVar(&incCmd.Platform, "platform", "", "where the work came from")
	c.Flags().StringVar(&incCmd.Description, "description", "", "free-form description")
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN
// ══════════════════════════════════════════════════════════════════════════════

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for HTTP_AUTH_PASSWORD_HASH",
		Long:  "Print a bcrypt hash for HTTP_AUTH_PASSWORD_HASH. Reads the password from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := handlers.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
