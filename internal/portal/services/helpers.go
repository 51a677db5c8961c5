package services

import (
	"time"

	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// nowFunc is swapped in tests that need deterministic timestamps.
var nowFunc = time.Now

// timestamp returns the RFC 3339 instant stored on dated records. Sorting
// these strings lexicographically is chronological.
func timestamp() string {
	return nowFunc().UTC().Format(time.RFC3339Nano)
}

// listAs decodes the current snapshot of a collection into typed records.
func listAs[T any](st *engine.State, collection string) []T {
	return models.DecodeAll[T](st.Get(collection))
}

// findAs decodes one record by id, returning false when absent.
func findAs[T any](st *engine.State, collection, id string) (T, bool) {
	var v T
	doc := st.Find(collection, id)
	if doc == nil {
		return v, false
	}
	if err := models.FromDocument(doc, &v); err != nil {
		return v, false
	}
	return v, true
}
