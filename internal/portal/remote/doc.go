// Package remote defines the remote collection service interface and its
// MongoDB implementation.
//
// # Overview
//
// Store exposes streaming full-collection snapshots (Subscribe) and
// per-document CRUD (Get/Set/Update/Delete). All implementations normalize
// errors to the sentinels in internal/common so the engine can tell a
// policy rejection (ErrPermissionDenied, which activates fallback mode)
// from a transient failure (ErrUnavailable, which does not).
//
// # MongoDB mapping
//
// Each portal collection maps to a Mongo collection; the record id doubles
// as _id so local and remote copies of a record always agree. Subscriptions
// use change streams, re-reading the full sorted collection per event;
// standalone deployments without change streams degrade to interval polling.
package remote
