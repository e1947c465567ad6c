package redis

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr())

	cfg.DB = 3
	cfg.Password = "secret"
	opts := cfg.Options()
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, "secret", opts.Password)
}

func TestSettingsKey(t *testing.T) {
	assert.Equal(t, "tracker:settings", SettingsKey("tracker"))
	assert.Equal(t, "settings", SettingsKey(""))
}

// TestSettingsStore needs a live server; set TRACKER_TEST_REDIS_ADDR to run it.
func TestSettingsStore(t *testing.T) {
	addr := os.Getenv("TRACKER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRACKER_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Namespace = "tracker-test"
	cfg.DB = 15
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	cfg.Host = host
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	cache, err := NewCache(ctx, cfg)
	require.NoError(t, err)
	defer cache.Close()
	require.NoError(t, cache.Delete(ctx, SettingsKey(cfg.Namespace)))

	store := NewSettingsStore(cache)
	got, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, tracking.DefaultSettings(), got)

	target := decimal.RequireFromString("2500")
	require.NoError(t, store.MergeSettings(ctx, tracking.SettingsPatch{IncomeTarget: &target}))
	require.NoError(t, store.MergeSettings(ctx, tracking.SettingsPatch{
		ExchangeRates: map[string]decimal.Decimal{"GBP": decimal.RequireFromString("1.27")},
	}))

	got, err = store.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, got.IncomeTarget.Equal(target))
	assert.True(t, got.ExchangeRates["GBP"].Equal(decimal.RequireFromString("1.27")))
	assert.True(t, got.ExchangeRates["EUR"].Equal(tracking.DefaultSettings().ExchangeRates["EUR"]))
}
