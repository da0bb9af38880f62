// Package store persists photomise state in SQLite. Two scopes exist
// with different lifetimes: the shared store (locations and filter
// presets, reused across every project) and the project store (events,
// photos, videos, settings, posts, accounts, and rankings for a single
// project). All writes are keyed upserts so that re-running any
// workflow converges instead of duplicating rows.
package store
