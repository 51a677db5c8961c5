package engine

import "github.com/dmitrijs2005/communityhub/internal/portal/models"

// unionMerge combines an incoming remote snapshot with the current local
// state. Remote records are authoritative; local records whose id the
// snapshot does not carry are appended. The second result reports whether
// any local-only record survived, meaning the merged snapshot should be
// re-persisted.
func unionMerge(incoming, local []models.Document) ([]models.Document, bool) {
	present := make(map[string]struct{}, len(incoming))
	merged := make([]models.Document, 0, len(incoming)+len(local))
	for _, d := range incoming {
		id := d.ID()
		if _, dup := present[id]; dup {
			continue
		}
		present[id] = struct{}{}
		merged = append(merged, d)
	}

	appended := false
	for _, d := range local {
		if _, ok := present[d.ID()]; ok {
			continue
		}
		present[d.ID()] = struct{}{}
		merged = append(merged, d)
		appended = true
	}
	return merged, appended
}
