package document

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("document not found")

// Repository persists the whole document under a single key.
type Repository interface {
	// Load returns ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
	Close() error
}

// PersistenceError reports a failed write to the store.
// The in-memory document is left as it was before the mutation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persisting " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Encode serializes doc the way every store keeps it.
func Encode(doc Document) ([]byte, error) {
	doc.normalize()
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	return data, nil
}

// Decode parses a stored document. Absent collections decode as empty.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, errors.Wrap(err, "decoding document")
	}
	doc.normalize()
	return doc, nil
}
