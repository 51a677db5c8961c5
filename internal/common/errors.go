// Package common defines shared constants and sentinel errors used across
// the portal sync client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Remote store errors. ErrPermissionDenied is the only error kind that
	// may activate fallback mode; everything else is reported and retried
	// by a forced refresh, never by flipping the operating mode.
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("service unavailable")
	ErrNotFound         = errors.New("not found")

	// Registration errors.
	ErrDuplicateIdentity = errors.New("identity already registered")
	ErrIdentityNotFound  = errors.New("identity not found")

	// Session errors (invalid or expired token).
	ErrInvalidToken = errors.New("invalid session token")

	// Workflow errors.
	ErrRequestResolved = errors.New("request already resolved")

	// Engine errors.
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrMissingID         = errors.New("missing record id")
	ErrMissingData       = errors.New("missing record data")
)
