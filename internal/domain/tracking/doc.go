// Package tracking holds the records the dashboard logs (practice sessions,
// income events, milestones, skills, notes, settings) and the repository
// interfaces every store implements.
//
// Dates are canonical "YYYY-MM-DD" strings. Records are immutable once
// created except for the mutable fields named on each type; ids are assigned
// by the store, increase monotonically per collection and are never reused.
package tracking
