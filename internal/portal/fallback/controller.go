// Package fallback owns the process-wide operating mode flag: cloud-connected
// or local-only. The flag is persisted in the local store, so it survives a
// restart, and is monotone:
// once a remote rejection flips it, only an explicit user reset flips it
// back. Automatic recovery is deliberately not attempted — re-probing the
// remote service mid-session would let the mode flap while the operator is
// still fixing the permission configuration.
package fallback

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/localstore"
)

// Watcher is notified after every mode transition. active is the new state.
type Watcher func(active bool)

type Controller struct {
	mu       sync.Mutex
	store    localstore.KV
	log      logging.Logger
	active   bool
	reason   string
	pinned   bool // no remote store configured: local-only for the whole run
	watchers []Watcher
}

// New restores the persisted flag from the local store. When remoteConfigured
// is false the controller is pinned to local-only for the whole run.
func New(store localstore.KV, remoteConfigured bool, log logging.Logger) *Controller {
	c := &Controller{
		store:   store,
		log:     log.With("component", "fallback"),
		pinned:  !remoteConfigured,
	}
	if c.pinned {
		c.active = true
		c.reason = "remote store not configured"
		return c
	}

	if raw, ok, _ := store.Get(common.FallbackFlagKey); ok && string(raw) == "1" {
		c.active = true
		if r, ok, _ := store.Get(common.FallbackReasonKey); ok {
			c.reason = string(r)
		}
	}
	return c
}

// Active reports whether the system is operating local-only.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Reason returns the recorded cause of the last activation, for display in
// the diagnostics panel.
func (c *Controller) Reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Activate switches to local-only mode and persists the flag. Calling it
// while already active only updates the recorded reason.
func (c *Controller) Activate(ctx context.Context, reason string) {
	c.mu.Lock()
	already := c.active
	c.active = true
	c.reason = reason
	watchers := append([]Watcher(nil), c.watchers...)
	c.mu.Unlock()

	_ = c.store.Set(common.FallbackFlagKey, []byte("1"))
	_ = c.store.Set(common.FallbackReasonKey, []byte(reason))

	if already {
		return
	}
	c.log.Warn(ctx, "fallback mode activated", "reason", reason)
	for _, w := range watchers {
		w(true)
	}
}

// Reset clears the persisted flag and returns to cloud mode. It does not
// repair already-diverged data; the caller is expected to force a reload
// from the remote source of truth afterwards.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	if c.pinned || !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.reason = ""
	watchers := append([]Watcher(nil), c.watchers...)
	c.mu.Unlock()

	_ = c.store.Delete(common.FallbackFlagKey)
	_ = c.store.Delete(common.FallbackReasonKey)

	c.log.Info(ctx, "fallback mode reset, reconnecting")
	for _, w := range watchers {
		w(false)
	}
}

// Watch registers a transition callback. Watchers run on the goroutine that
// triggered the transition, after the flag is already visible.
func (c *Controller) Watch(w Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, w)
}
