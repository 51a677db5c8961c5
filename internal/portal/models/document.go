package models

import "encoding/json"

// Document is the schema-free record shape moved by the sync engine and the
// remote store. Every document carries a string "id" field that is unique
// within its collection and immutable once assigned.
type Document map[string]any

// ID returns the document identifier, or "" when absent.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Clone returns a shallow copy of the document. Top-level keys can be added
// or replaced on the copy without affecting the original; nested values are
// shared.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ToDocument converts a typed record into a Document via its JSON form.
func ToDocument(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// FromDocument decodes a Document into the typed record pointed to by out.
func FromDocument(d Document, out any) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// DecodeAll decodes a snapshot into a slice of typed records, skipping
// documents that do not fit the target shape.
func DecodeAll[T any](docs []Document) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := FromDocument(d, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
