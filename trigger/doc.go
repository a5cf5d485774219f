// Package trigger groups simultaneous Triggers, Observers, and Handlers
// into per-order pools, and pools Stage 1's model queries across a
// simultaneous-event group (PooledStage1) instead of one round trip per
// variable; Stage 2 and Stage 3 still query per variable. The batching shape is
// grounded on a generic Batcher[Job]/BatchProcessor[Job] pair; the
// channel/goroutine machinery is intentionally dropped (see
// DESIGN.md) since the model collaborator is never safe to touch from more
// than one goroutine at a time, so each pool's processor runs inline,
// synchronously, in the caller's own stage ordering.
package trigger
