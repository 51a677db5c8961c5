package localstore

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// CollectionKey returns the storage key for a collection snapshot blob.
func CollectionKey(collection string) string {
	return common.CollectionKeyPrefix + collection
}

// ReadCollection loads the snapshot for a collection. An absent key reads as
// an empty collection. Unparseable stored data also reads as empty: the
// store is shared mutable state outside the engine's control (another
// process, a previous schema version) and must never take the caller down.
func ReadCollection(kv KV, collection string) ([]models.Document, error) {
	raw, ok, err := kv.Get(CollectionKey(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %q: %w", collection, err)
	}
	if !ok {
		return []models.Document{}, nil
	}

	var docs []models.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return []models.Document{}, nil
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// WriteCollection persists the full snapshot for a collection as one JSON
// blob.
func WriteCollection(kv KV, collection string, docs []models.Document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to serialize collection %q: %w", collection, err)
	}
	if err := kv.Set(CollectionKey(collection), raw); err != nil {
		return fmt.Errorf("failed to persist collection %q: %w", collection, err)
	}
	return nil
}
