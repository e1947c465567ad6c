package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages toggles for optional tracker behavior.
// Flags can be overridden at startup through FEATURE_* environment variables
// and flipped at runtime.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// Feature names.
const (
	// FeatureNotesHTML renders note bodies from markdown to HTML.
	FeatureNotesHTML = "notes.html"

	// FeatureAPIWrites allows mutating API requests. Off means read-only.
	FeatureAPIWrites = "api.writes"

	// FeatureAdjustment proposes softer weekly targets when both tracks lag.
	FeatureAdjustment = "recommendations.adjustment"

	// FeatureMotivation adds a motivational line to the today view.
	FeatureMotivation = "today.motivation"
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := NewFeatureFlags()
	ff.loadFromEnvironment()
	return ff
}

// NewFeatureFlags returns the flags with their default values.
func NewFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{features: make(map[string]*Feature)}
	for _, f := range []Feature{
		{Name: FeatureNotesHTML, Description: "Render note markdown to HTML", Enabled: true},
		{Name: FeatureAPIWrites, Description: "Accept mutating API requests", Enabled: true},
		{Name: FeatureAdjustment, Description: "Propose softer weekly targets", Enabled: true},
		{Name: FeatureMotivation, Description: "Show a motivational message", Enabled: true},
	} {
		ff.features[f.Name] = &f
	}
	return ff
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false
// Example: FEATURE_API_WRITES=false
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}
		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "notes.html" -> "FEATURE_NOTES_HTML"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled reports whether a feature is on. Unknown features are off.
// A nil receiver treats every feature as on.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	if ff == nil {
		return true
	}
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	return ok && f.Enabled
}

// Set flips a feature at runtime.
func (ff *FeatureFlags) Set(name string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	f, ok := ff.features[name]
	if !ok {
		return ErrFeatureNotFound
	}
	f.Enabled = enabled
	return nil
}

// All returns a copy of every flag, sorted by name.
func (ff *FeatureFlags) All() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// --- Errors ---

// ErrFeatureNotFound is returned for an unknown feature name.
var ErrFeatureNotFound = &FeatureFlagError{Message: "feature not found"}

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
