package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/fallback"
	"github.com/dmitrijs2005/communityhub/internal/portal/localstore"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
	"github.com/dmitrijs2005/communityhub/internal/portal/remote"
)

// MergePolicy decides how an incoming remote snapshot lands in state.
type MergePolicy int

const (
	// MergeReplace: the incoming snapshot fully replaces in-memory state.
	MergeReplace MergePolicy = iota

	// MergeUnion: remote records stay authoritative, but local records whose
	// id the snapshot does not carry are appended and re-persisted. Used for
	// collections where a just-created local record (the user's own
	// identity) must never flicker away while its write propagates.
	MergeUnion
)

// PolicyFor returns the merge policy for a collection.
func PolicyFor(collection string) MergePolicy {
	if collection == models.CollectionUsers {
		return MergeUnion
	}
	return MergeReplace
}

// Manager owns the set of active remote subscriptions: one per collection
// while fallback mode is inactive, none otherwise. Every mode toggle tears
// all of them down and bumps the epoch; a delayed callback from a previous
// epoch is discarded, never written into current state.
type Manager struct {
	remote remote.Store
	fb     *fallback.Controller
	state  *State
	local  localstore.KV
	log    logging.Logger

	mu    sync.Mutex
	epoch uint64
	subs  []remote.Subscription
	seen  map[string]struct{}
	ready chan struct{}
}

func NewManager(rs remote.Store, fb *fallback.Controller, state *State, local localstore.KV, log logging.Logger) *Manager {
	m := &Manager{
		remote: rs,
		fb:     fb,
		state:  state,
		local:  local,
		log:    log.With("component", "listener"),
		seen:   make(map[string]struct{}),
		ready:  make(chan struct{}),
	}
	fb.Watch(func(active bool) {
		if active {
			m.Stop()
		} else {
			_, _ = m.Start(context.Background())
		}
	})
	return m
}

// Start subscribes to every collection. The returned channel closes once
// each collection has delivered at least one snapshot in this epoch; the
// caller bounds its wait on it (the load timeout) and proceeds with local
// state if the remote service is slow. Idempotent: a second Start tears
// down the previous epoch first.
func (m *Manager) Start(ctx context.Context) (<-chan struct{}, error) {
	m.teardown()

	m.mu.Lock()
	if m.remote == nil || m.fb.Active() {
		ch := m.ready
		m.mu.Unlock()
		return ch, nil
	}
	epoch := m.epoch
	ready := m.ready
	m.mu.Unlock()

	var g errgroup.Group
	for _, collection := range models.Collections {
		g.Go(func() error {
			order, _ := models.OrderOf(collection)
			sub, err := m.remote.Subscribe(ctx, collection, order,
				func(docs []models.Document) { m.apply(epoch, collection, docs) },
				func(err error) { m.fail(epoch, collection, err) },
			)
			if err != nil {
				return fmt.Errorf("failed to subscribe to %q: %w", collection, err)
			}
			m.track(epoch, sub)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ready, err
	}
	return ready, nil
}

// Stop tears down every subscription. Safe to call at any time.
func (m *Manager) Stop() {
	m.teardown()
}

func (m *Manager) teardown() {
	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	m.epoch++
	m.seen = make(map[string]struct{})
	m.ready = make(chan struct{})
	m.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

// track records a live subscription, unless its epoch already expired while
// the subscribe call was in flight.
func (m *Manager) track(epoch uint64, sub remote.Subscription) {
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
}

// apply merges one incoming snapshot into state, provided the epoch is
// still current.
func (m *Manager) apply(epoch uint64, collection string, docs []models.Document) {
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}

	merged := docs
	if PolicyFor(collection) == MergeUnion {
		merged, _ = unionMerge(docs, m.state.Get(collection))
	}
	sortDocs(collection, merged)
	m.state.set(collection, merged)
	// the durable cache mirrors whatever the user last saw, so the next
	// start renders current data before any subscription is live
	if err := localstore.WriteCollection(m.local, collection, merged); err != nil {
		m.log.Error(context.Background(), "failed to persist snapshot", "collection", collection, "error", err)
	}

	if _, ok := m.seen[collection]; !ok {
		m.seen[collection] = struct{}{}
		if len(m.seen) == len(models.Collections) {
			close(m.ready)
		}
	}
	m.mu.Unlock()
}

// fail handles a subscription error callback. Access-denied flips fallback
// mode exactly like a rejected write; anything else is logged and the
// subscription keeps trying.
func (m *Manager) fail(epoch uint64, collection string, err error) {
	m.mu.Lock()
	stale := epoch != m.epoch
	m.mu.Unlock()
	if stale {
		return
	}

	ctx := context.Background()
	if errors.Is(err, common.ErrPermissionDenied) {
		m.fb.Activate(ctx, fmt.Sprintf("subscription to %q rejected: access denied", collection))
		return
	}
	m.log.Warn(ctx, "subscription error", "collection", collection, "error", err)
}
