// Package journal persists a per-job audit trail in SQLite: lifecycle
// transitions, throttled progress, and terminal outcomes. The log stream is
// the primary observability surface; the journal makes the same history
// queryable after the fact.
package journal
