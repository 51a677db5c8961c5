// Package engine implements the client-side data synchronization core: the
// single write path for every collection, the in-memory state the UI reads,
// and the snapshot listener manager that folds remote changes back in.
//
// # Write path
//
// Every mutation goes through Engine.Apply — nothing writes a collection
// blob behind the engine's back. The engine runs the optimistic-local
// policy: local snapshot first (persisted and visible synchronously), the
// remote write in the background. See the Engine doc comment for the
// failure policy.
//
// # Read path
//
// State holds the current snapshot of each collection. While
// cloud-connected, the Manager keeps one remote subscription per collection
// and merges incoming snapshots (union-merge for users, replace for the
// rest). Subscriptions are epoch-tagged: after a fallback toggle tears them
// down, a late callback from the old epoch is discarded.
//
// Key Types
//
//   - type Engine   — Apply(collection, op, data, id), the single write entry point
//   - type State    — reactive in-memory collection state
//   - type Manager  — snapshot listener manager
package engine
