package engine

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/communityhub/internal/portal/localstore"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// State is the in-memory view of every collection, the thing page
// components read. Exactly two producers mutate it: the sync engine (local
// writes) and the snapshot listener manager (remote pushes); the mutex
// stands in for the single-threaded event loop of the original runtime.
type State struct {
	mu          sync.RWMutex
	collections map[string][]models.Document
	watchers    []func(collection string)
}

func NewState() *State {
	return &State{collections: make(map[string][]models.Document)}
}

// Get returns a copy of the current snapshot for a collection.
func (s *State) Get(collection string) []models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.collections[collection]
	out := make([]models.Document, len(docs))
	copy(out, docs)
	return out
}

// Find returns the document with the given id, or nil.
func (s *State) Find(collection, id string) models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.collections[collection] {
		if d.ID() == id {
			return d.Clone()
		}
	}
	return nil
}

// Watch registers a callback invoked after any collection changes. This is
// the reactive hook the UI layer subscribes to.
func (s *State) Watch(fn func(collection string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *State) set(collection string, docs []models.Document) {
	s.mu.Lock()
	s.collections[collection] = docs
	watchers := append(([]func(string))(nil), s.watchers...)
	s.mu.Unlock()

	for _, w := range watchers {
		w(collection)
	}
}

// Load warms the state from the local store snapshots. Called once at
// startup, before any listener is live.
func (s *State) Load(kv localstore.KV) error {
	for _, collection := range models.Collections {
		docs, err := localstore.ReadCollection(kv, collection)
		if err != nil {
			return err
		}
		sortDocs(collection, docs)
		s.set(collection, docs)
	}
	return nil
}

// sortDocs orders a snapshot by the collection's configured field. Order is
// defined by the data, not by arrival order; timestamps are RFC 3339
// strings, so lexicographic comparison is chronological.
func sortDocs(collection string, docs []models.Document) {
	order, ok := models.OrderOf(collection)
	if !ok {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a, _ := docs[i][order.Field].(string)
		b, _ := docs[j][order.Field].(string)
		if order.Descending {
			return a > b
		}
		return a < b
	})
}
