// Package idgen provides the injectable id-generation strategies used by
// the sync engine: time-ordered ULIDs in production, a sequential generator
// in tests, and the deterministic phone-derived identity ids.
package idgen

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator produces record identifiers, unique per collection with
// overwhelming probability across normal usage volumes.
type Generator interface {
	NewID() string
}

// ULID generates lexicographically time-ordered identifiers. Useful for
// append-mostly collections (messages, notifications) where id order
// roughly follows creation order.
type ULID struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULID() *ULID {
	seed := time.Now().UnixNano()
	return &ULID{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

func (g *ULID) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// UUID generates random v4 identifiers.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequential generates "prefix-1", "prefix-2", ... — deterministic ids for
// tests.
type Sequential struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (g *Sequential) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// UserID derives the deterministic identity id for a phone number, so the
// same phone always maps to the same record across devices. digits must
// already be sanitized (see SanitizePhone).
func UserID(digits string) string {
	return "user_" + digits
}

// SanitizePhone strips non-digits and a leading zero from a raw phone
// input, matching the registration form's normalization.
func SanitizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	return strings.TrimPrefix(digits, "0")
}
