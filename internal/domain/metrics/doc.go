// Package metrics is the derived-metrics engine: pure functions that turn
// logged events into streaks, rollups, pacing projections, grades and a
// single "focus for today" recommendation.
//
// Nothing here reads a clock or a store. Callers pass "today" and the raw
// values in, so every result is deterministic; the only source of variation
// is the Chooser handed to a Recommender.
package metrics
