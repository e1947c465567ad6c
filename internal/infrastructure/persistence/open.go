// Package persistence selects and opens the configured tracking.Store.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/memory"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/postgres"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/redis"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/sqlite"
	"github.com/relohub/progress-tracker/pkg/circuitbreaker"
	"github.com/relohub/progress-tracker/pkg/logger"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options describes which backend to open.
type Options struct {
	Driver      string
	SQLitePath  string
	PostgresURL string
	Postgres    postgres.Config

	// Redis, when set, moves the settings record into Redis.
	Redis *redis.Config

	Logger *logger.Logger
}

// Open opens the store for opts.Driver.
func Open(ctx context.Context, opts Options) (tracking.Store, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("persistence"))

	onRetry := func(attempt int, err error, delay time.Duration) {
		log.Warn("store not reachable, retrying",
			logger.String("driver", opts.Driver),
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err))
	}

	var store tracking.Store
	switch opts.Driver {
	case DriverMemory, "":
		store = memory.New()

	case DriverSQLite:
		if opts.SQLitePath == "" {
			return nil, errors.New("persistence: sqlite path is required")
		}
		s, err := sqlite.Open(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = s

	case DriverPostgres:
		cfg := opts.Postgres
		if opts.PostgresURL != "" {
			cfg.URL = opts.PostgresURL
		}
		if cfg.URL == "" {
			return nil, errors.New("persistence: postgres URL is required")
		}
		cfg.OnRetry = onRetry
		s, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store = s

	default:
		return nil, fmt.Errorf("persistence: unknown driver %q", opts.Driver)
	}

	if opts.Redis != nil {
		rcfg := *opts.Redis
		rcfg.OnRetry = onRetry
		cache, err := redis.NewCache(ctx, rcfg)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		breaker := circuitbreaker.New(circuitbreaker.Config{
			Name: "redis-settings",
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				log.Warn("circuit breaker state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()))
			},
		})
		store = newOverlay(store, redis.NewSettingsStore(cache), cache, breaker, log)
		log.Info("settings stored in redis", logger.String("addr", rcfg.Addr()))
	}

	log.Info("store opened", logger.String("driver", opts.Driver))
	return store, nil
}

// pinger is implemented by settings repositories that hold a connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// overlay serves settings from a separate repository and everything else
// from the wrapped store. Writes are mirrored into the wrapped store, which
// answers reads while the breaker is open.
type overlay struct {
	tracking.Store
	settings tracking.SettingsRepository
	conn     io.Closer
	breaker  *circuitbreaker.Breaker
	log      *logger.Logger
}

// newOverlay wraps store. conn, if non-nil, is closed together with the store.
func newOverlay(store tracking.Store, repo tracking.SettingsRepository, conn io.Closer, breaker *circuitbreaker.Breaker, log *logger.Logger) *overlay {
	return &overlay{Store: store, settings: repo, conn: conn, breaker: breaker, log: log}
}

func (o *overlay) GetSettings(ctx context.Context) (tracking.Settings, error) {
	var s tracking.Settings
	err := o.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		s, err = o.settings.GetSettings(ctx)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return o.Store.GetSettings(ctx)
	}
	return s, err
}

func (o *overlay) MergeSettings(ctx context.Context, p tracking.SettingsPatch) error {
	err := o.breaker.Do(ctx, func(ctx context.Context) error {
		return o.settings.MergeSettings(ctx, p)
	})
	if err != nil {
		return err
	}
	if err := o.Store.MergeSettings(ctx, p); err != nil {
		o.log.Warn("settings mirror write failed", logger.Err(err))
	}
	return nil
}

func (o *overlay) Ping(ctx context.Context) error {
	if err := o.Store.Ping(ctx); err != nil {
		return err
	}
	if p, ok := o.settings.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (o *overlay) Close() error {
	err := o.Store.Close()
	if o.conn != nil {
		err = errors.Join(err, o.conn.Close())
	}
	return err
}
