package redis

import (
	"context"

	"github.com/relohub/progress-tracker/internal/domain/shared"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

// SettingsStore keeps the settings record in one Redis hash, one field per
// settings key. HSET only touches the supplied fields, which gives the
// partial-merge semantics for free.
type SettingsStore struct {
	cache *Cache
	key   string
}

var _ tracking.SettingsRepository = (*SettingsStore)(nil)

// NewSettingsStore creates a store under the cache's namespace.
func NewSettingsStore(cache *Cache) *SettingsStore {
	return &SettingsStore{cache: cache, key: SettingsKey(cache.Namespace())}
}

// GetSettings reads the hash; missing fields carry defaults.
func (s *SettingsStore) GetSettings(ctx context.Context) (tracking.Settings, error) {
	kv, err := s.cache.HGetAll(ctx, s.key)
	if err != nil {
		return tracking.Settings{}, shared.StorageError("redis", "GetSettings", err)
	}
	return tracking.SettingsFromValues(kv), nil
}

// MergeSettings writes only the supplied keys.
func (s *SettingsStore) MergeSettings(ctx context.Context, p tracking.SettingsPatch) error {
	if err := s.cache.HSetAll(ctx, s.key, p.Values()); err != nil {
		return shared.StorageError("redis", "MergeSettings", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SettingsStore) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
