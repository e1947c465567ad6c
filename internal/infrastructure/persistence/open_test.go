package persistence

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/memory"
	"github.com/relohub/progress-tracker/pkg/circuitbreaker"
	"github.com/relohub/progress-tracker/pkg/logger"
)

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	s, err = Open(ctx, Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "t.db")})
	require.NoError(t, err)
	assert.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Driver: DriverSQLite})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: DriverPostgres})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: "mongo"})
	assert.ErrorContains(t, err, "unknown driver")
}

type fakeSettings struct {
	values  map[string]string
	err     error
	pingErr error
	closed  bool
	calls   int
}

func (f *fakeSettings) GetSettings(context.Context) (tracking.Settings, error) {
	f.calls++
	if f.err != nil {
		return tracking.Settings{}, f.err
	}
	return tracking.SettingsFromValues(f.values), nil
}

func (f *fakeSettings) MergeSettings(_ context.Context, p tracking.SettingsPatch) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for k, v := range p.Values() {
		f.values[k] = v
	}
	return nil
}

func (f *fakeSettings) Ping(context.Context) error { return f.pingErr }

func (f *fakeSettings) Close() error {
	f.closed = true
	return nil
}

func newTestOverlay(store tracking.Store, repo tracking.SettingsRepository, conn io.Closer) *overlay {
	return newOverlay(store, repo, conn, circuitbreaker.New(circuitbreaker.DefaultConfig("settings")), logger.Nop())
}

func TestOverlay(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	fake := &fakeSettings{values: map[string]string{}}
	s := newTestOverlay(base, fake, fake)

	target := decimal.RequireFromString("4000")
	require.NoError(t, s.MergeSettings(ctx, tracking.SettingsPatch{IncomeTarget: &target}))
	assert.Equal(t, "4000", fake.values[tracking.KeyIncomeTarget])

	// the wrapped store keeps a mirror
	inner, err := base.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, inner.IncomeTarget.Equal(target))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, got.IncomeTarget.Equal(target))

	// other collections still go to the wrapped store
	_, err = s.CreateSession(ctx, tracking.PracticeSession{Kind: tracking.SessionStudy, Date: "2024-01-01", Amount: 2})
	require.NoError(t, err)
	total, err := base.SumSessions(ctx, tracking.SessionStudy, tracking.AllTime)
	require.NoError(t, err)
	assert.Equal(t, 2.0, total)

	fake.pingErr = errors.New("down")
	assert.Error(t, s.Ping(ctx))

	require.NoError(t, s.Close())
	assert.True(t, fake.closed)
}

func TestOverlay_BreakerFallback(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	fake := &fakeSettings{values: map[string]string{}}
	s := newTestOverlay(base, fake, nil)

	target := decimal.RequireFromString("2500")
	require.NoError(t, s.MergeSettings(ctx, tracking.SettingsPatch{IncomeTarget: &target}))

	fake.err = errors.New("connection refused")
	for range 3 {
		_, err := s.GetSettings(ctx)
		assert.ErrorContains(t, err, "connection refused")
	}
	calls := fake.calls

	// open: reads come from the mirror without touching redis
	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, got.IncomeTarget.Equal(target))
	assert.Equal(t, calls, fake.calls)

	// writes fail fast and leave the mirror alone
	other := decimal.RequireFromString("9999")
	assert.Error(t, s.MergeSettings(ctx, tracking.SettingsPatch{IncomeTarget: &other}))
	inner, err := base.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, inner.IncomeTarget.Equal(target))
}
