// Package localstore provides the durable key/value persistence layer the
// sync engine writes through.
//
// # Overview
//
// The package defines a small KV interface with two implementations: a
// Badger-backed store (production, one database directory per profile) and
// an in-memory store (tests). Collection snapshots
// are stored as one JSON blob per collection under "db_" + name, via
// ReadCollection/WriteCollection.
//
// # Corruption policy
//
// ReadCollection never fails on malformed stored data; it treats it as an
// absent collection. Only infrastructure errors (a failing Badger read)
// propagate to the caller.
//
// Key Types
//
//   - type KV           — interface used by the engine and the controllers
//   - type BadgerStore  — durable implementation over dgraph-io/badger
//   - type MemoryStore  — in-memory implementation
package localstore
