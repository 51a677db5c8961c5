package engine

import (
	"fmt"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// Op is one of the four collection operations routed through the engine.
type Op string

const (
	OpAdd    Op = "ADD"    // append a new record
	OpSet    Op = "SET"    // full-document overwrite, upserting
	OpUpdate Op = "UPDATE" // partial patch of an existing record
	OpDelete Op = "DELETE" // remove by id
)

// applyOp computes the next snapshot of a collection from the current one.
// The input slice is not mutated; documents carried over are shared.
func applyOp(docs []models.Document, op Op, data models.Document, id string) ([]models.Document, error) {
	switch op {
	case OpAdd, OpSet:
		doc := data.Clone()
		doc["id"] = id
		out := make([]models.Document, 0, len(docs)+1)
		replaced := false
		for _, d := range docs {
			if d.ID() == id {
				out = append(out, doc)
				replaced = true
				continue
			}
			out = append(out, d)
		}
		if !replaced {
			out = append(out, doc)
		}
		return out, nil

	case OpUpdate:
		out := make([]models.Document, len(docs))
		copy(out, docs)
		for i, d := range out {
			if d.ID() != id {
				continue
			}
			patched := d.Clone()
			for k, v := range data {
				if k == "id" {
					continue // ids are immutable once assigned
				}
				patched[k] = v
			}
			out[i] = patched
			return out, nil
		}
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, id)

	case OpDelete:
		out := make([]models.Document, 0, len(docs))
		for _, d := range docs {
			if d.ID() != id {
				out = append(out, d)
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownOperation, op)
	}
}
