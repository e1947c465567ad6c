package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TRACKER_CONFIG", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, time.Monday, cfg.App.Weekday)
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.Equal(t, "Vietnamese", cfg.Labels().Language)
	assert.Equal(t, "Python", cfg.Labels().Study)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.Features.IsEnabled(FeatureNotesHTML))
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	doc := `
app:
  first_weekday: sunday
  timezone: Asia/Ho_Chi_Minh
storage:
  driver: memory
http:
  port: 9000
  read_timeout: 3s
tracking:
  language_label: Japanese
  language_goal_hours: 2200
  suggestions:
    language:
      - Read one NHK Easy article
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	t.Setenv("TRACKER_CONFIG", path)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("FEATURE_API_WRITES", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 9100, cfg.HTTP.Port, "environment wins over the file")
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout, "absent keys keep defaults")
	assert.Equal(t, time.Sunday, cfg.App.Weekday)
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.App.Location.String())
	assert.Equal(t, "Japanese", cfg.Tracking.LanguageLabel)
	assert.Equal(t, "Python", cfg.Tracking.StudyLabel)
	assert.InDelta(t, 2200, cfg.Tracking.LanguageGoalHours, 1e-9)
	assert.Equal(t, []string{"Read one NHK Easy article"}, cfg.Tracking.Suggestions.Language)
	assert.False(t, cfg.Features.IsEnabled(FeatureAPIWrites))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("TRACKER_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadWeekday(t *testing.T) {
	t.Setenv("TRACKER_CONFIG", "")
	t.Setenv("APP_FIRST_WEEKDAY", "someday")

	_, err := Load()
	assert.ErrorContains(t, err, "APP_FIRST_WEEKDAY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "mongo" },
			wantErr: "STORAGE_DRIVER",
		},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.Storage.Driver = DriverPostgres },
			wantErr: "DATABASE_URL",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "production without auth",
			mutate:  func(c *Config) { c.App.Environment = EnvProduction },
			wantErr: "HTTP_AUTH_PASSWORD_HASH",
		},
		{
			name:    "empty label",
			mutate:  func(c *Config) { c.Tracking.StudyLabel = "" },
			wantErr: "labels",
		},
		{
			name:    "zero goal",
			mutate:  func(c *Config) { c.Tracking.LanguageGoalHours = 0 },
			wantErr: "TRACKER_LANGUAGE_GOAL_HOURS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetEnvSlice(t *testing.T) {
	t.Setenv("TEST_ORIGINS", " http://a.test , ,http://b.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, getEnvSlice("TEST_ORIGINS", nil))
	assert.Equal(t, []string{"x"}, getEnvSlice("TEST_ORIGINS_UNSET", []string{"x"}))
}

func TestFeatureFlags(t *testing.T) {
	ff := NewFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureAdjustment))
	assert.False(t, ff.IsEnabled("unknown.flag"))

	require.NoError(t, ff.Set(FeatureAdjustment, false))
	assert.False(t, ff.IsEnabled(FeatureAdjustment))
	assert.ErrorIs(t, ff.Set("unknown.flag", true), ErrFeatureNotFound)

	all := ff.All()
	require.Len(t, all, 4)
	assert.Equal(t, FeatureAPIWrites, all[0].Name)

	var none *FeatureFlags
	assert.True(t, none.IsEnabled(FeatureNotesHTML))
	assert.Equal(t, "FEATURE_NOTES_HTML", featureNameToEnvKey(FeatureNotesHTML))
}
