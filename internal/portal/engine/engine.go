package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/fallback"
	"github.com/dmitrijs2005/communityhub/internal/portal/idgen"
	"github.com/dmitrijs2005/communityhub/internal/portal/localstore"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
	"github.com/dmitrijs2005/communityhub/internal/portal/remote"
)

const remoteWriteTimeout = 12 * time.Second

// ReconcileFunc is invoked when a background remote write failed and the
// collection was force-refreshed from the remote source of truth. The app
// layer uses it to tell the user their action did not persist.
type ReconcileFunc func(collection string, cause error)

// Engine is the single write path for every collection.
//
// Policy: optimistic-local. Apply mutates the cached snapshot, persists it
// through the local store and updates in-memory state synchronously, so the
// caller sees the change with zero latency; the equivalent remote write then
// runs in the background. A PermissionDenied from that write activates
// fallback mode; any other remote failure triggers a forced refresh of the
// affected collection from the remote store (the uniform reconciliation
// strategy, applied to every collection including deletes).
type Engine struct {
	mu     sync.Mutex
	local  localstore.KV
	remote remote.Store // nil when no remote service is configured
	fb     *fallback.Controller
	state  *State
	ids    idgen.Generator
	log    logging.Logger

	onReconcile ReconcileFunc
	reconciles  singleflight.Group
	background  sync.WaitGroup
}

func New(local localstore.KV, rs remote.Store, fb *fallback.Controller, state *State, ids idgen.Generator, log logging.Logger) *Engine {
	return &Engine{
		local:  local,
		remote: rs,
		fb:     fb,
		state:  state,
		ids:    ids,
		log:    log.With("component", "engine"),
	}
}

// OnReconcile registers the reconciliation callback. Must be set before the
// engine is handed to services.
func (e *Engine) OnReconcile(fn ReconcileFunc) {
	e.onReconcile = fn
}

// State returns the in-memory state the engine writes into.
func (e *Engine) State() *State {
	return e.state
}

// Apply routes one operation through the engine and returns the effective
// record id: the known id echoed back for UPDATE/DELETE, the generated one
// for ADD/SET without an id.
//
// The local mutation is visible to the caller before Apply returns; the
// remote write, when one happens, completes in the background and may
// complete out of call order.
func (e *Engine) Apply(ctx context.Context, collection string, op Op, data models.Document, id string) (string, error) {
	if !models.Known(collection) {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownCollection, collection)
	}

	switch op {
	case OpAdd, OpSet:
		if data == nil {
			return "", fmt.Errorf("%w: %s %s", common.ErrMissingData, op, collection)
		}
		if id == "" {
			id = data.ID()
		}
		if id == "" {
			id = e.ids.NewID()
		}
	case OpUpdate:
		if data == nil {
			return "", fmt.Errorf("%w: %s %s", common.ErrMissingData, op, collection)
		}
		if id == "" {
			return "", fmt.Errorf("%w: %s %s", common.ErrMissingID, op, collection)
		}
	case OpDelete:
		if id == "" {
			return "", fmt.Errorf("%w: %s %s", common.ErrMissingID, op, collection)
		}
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnknownOperation, op)
	}

	// Local mutations are applied in call order; the mutex is the Go
	// rendering of the original single-threaded tick.
	e.mu.Lock()
	next, err := applyOp(e.state.Get(collection), op, data, id)
	if err != nil {
		e.mu.Unlock()
		return "", err
	}
	sortDocs(collection, next)
	if err := localstore.WriteCollection(e.local, collection, next); err != nil {
		e.mu.Unlock()
		return "", err
	}
	e.state.set(collection, next)
	e.mu.Unlock()

	if e.remote != nil && !e.fb.Active() {
		snapshot := e.state.Find(collection, id) // nil after DELETE, unused then
		e.background.Add(1)
		go func() {
			defer e.background.Done()
			e.pushRemote(context.WithoutCancel(ctx), collection, op, snapshot, data, id)
		}()
	}

	return id, nil
}

// pushRemote mirrors one already-applied local operation to the remote
// store. Runs on its own goroutine; never blocks a caller.
func (e *Engine) pushRemote(ctx context.Context, collection string, op Op, doc, patch models.Document, id string) {
	ctx, cancel := context.WithTimeout(ctx, remoteWriteTimeout)
	defer cancel()

	var err error
	switch op {
	case OpAdd, OpSet:
		err = e.remote.Set(ctx, collection, id, doc)
	case OpUpdate:
		err = e.remote.Update(ctx, collection, id, patch)
	case OpDelete:
		err = e.remote.Delete(ctx, collection, id)
	}
	if err == nil {
		return
	}

	if errors.Is(err, common.ErrPermissionDenied) {
		e.fb.Activate(ctx, fmt.Sprintf("remote %s on %q rejected: access denied", op, collection))
		return
	}
	if errors.Is(err, common.ErrNotFound) && op == OpUpdate {
		// the record never reached the remote store; promote to a full write
		if doc != nil {
			if err2 := e.remote.Set(ctx, collection, id, doc); err2 == nil {
				return
			}
		}
	}

	e.log.Error(ctx, "background remote write failed", "collection", collection, "op", string(op), "id", id, "error", err)
	e.Reconcile(ctx, collection, err)
}

// Reconcile force-refreshes one collection from the remote source of truth,
// replacing both local storage and in-memory state, then reports through
// the registered callback. Concurrent reconciles of the same collection
// collapse into one.
func (e *Engine) Reconcile(ctx context.Context, collection string, cause error) {
	if e.remote == nil || e.fb.Active() {
		return
	}
	_, _, _ = e.reconciles.Do(collection, func() (any, error) {
		order, _ := models.OrderOf(collection)
		docs, err := e.remote.ReadAll(ctx, collection, order)
		if err != nil {
			if errors.Is(err, common.ErrPermissionDenied) {
				e.fb.Activate(ctx, fmt.Sprintf("reload of %q rejected: access denied", collection))
				return nil, nil
			}
			e.log.Error(ctx, "reconciliation reload failed", "collection", collection, "error", err)
			return nil, nil
		}

		e.mu.Lock()
		sortDocs(collection, docs)
		if err := localstore.WriteCollection(e.local, collection, docs); err != nil {
			e.log.Error(ctx, "reconciliation persist failed", "collection", collection, "error", err)
		}
		e.state.set(collection, docs)
		e.mu.Unlock()

		if e.onReconcile != nil {
			e.onReconcile(collection, cause)
		}
		return nil, nil
	})
}

// Flush waits for in-flight background remote writes. Test hook.
func (e *Engine) Flush() {
	e.background.Wait()
}
