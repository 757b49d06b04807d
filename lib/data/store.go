package data

import (
	"context"
	"encoding/json"
	"fmt"

	"opsconsole/lib/models"
)

// Collection names used by the console.
const (
	CollectionUsers       = "users"
	CollectionClients     = "clients"
	CollectionContractors = "contractors"
	CollectionEmployees   = "employees"
	CollectionApprovals   = "approvals"
	CollectionAssets      = "assets"
)

// DefaultFetchCap bounds every listing unless configured otherwise.
const DefaultFetchCap = 1000

// Filter matches documents whose fields equal every given value.
type Filter map[string]interface{}

// FindOptions narrows a Find. An empty Projection returns whole documents;
// a Limit of zero or less is unbounded.
type FindOptions struct {
	Projection []string
	Limit      int
}

// RecordStore persists schemaless documents keyed by a caller-supplied id.
// Every error returned by an implementation is an *apperr.StorageError.
type RecordStore interface {
	Insert(ctx context.Context, collection string, doc models.Document) error
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]models.Document, error)
	// Update shallow-merges partial into the document with the given id and
	// returns the number of documents matched.
	Update(ctx context.Context, collection, id string, partial models.Document) (int64, error)
	Delete(ctx context.Context, collection, id string) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)
	Close(ctx context.Context) error
}

// FindByID returns the document with the given id, or nil when none exists.
func FindByID(ctx context.Context, store RecordStore, collection, id string) (models.Document, error) {
	docs, err := store.Find(ctx, collection, Filter{"id": id}, FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// normalize round-trips v through JSON so that documents from every backend
// share one value shape: numbers as float64, arrays as []interface{}.
func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return out, nil
}

func normalizeDocument(v interface{}) (models.Document, error) {
	n, err := normalize(v)
	if err != nil {
		return nil, err
	}
	m, ok := n.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("normalize: expected an object, got %T", n)
	}
	return models.Document(m), nil
}
