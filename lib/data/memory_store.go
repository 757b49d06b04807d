package data

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"opsconsole/lib/apperr"
	"opsconsole/lib/models"
)

// MemoryStore keeps documents in process memory, preserving insertion order.
// It backs local runs and service tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	order []string
	docs  map[string]models.Document
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string]*memoryCollection{}}
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: map[string]models.Document{}}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc models.Document) error {
	normalized, err := normalizeDocument(doc)
	if err != nil {
		return apperr.Storage("insert", err)
	}
	id := normalized.ID()
	if id == "" {
		return apperr.Storage("insert", errors.New("document has no id"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	if _, exists := c.docs[id]; exists {
		return apperr.Storage("insert", errors.New("duplicate id "+id))
	}
	c.order = append(c.order, id)
	c.docs[id] = normalized
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]models.Document, error) {
	want, err := normalizeFilter(filter)
	if err != nil {
		return nil, apperr.Storage("find", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return []models.Document{}, nil
	}
	out := []models.Document{}
	for _, id := range c.order {
		doc := c.docs[id]
		if !matches(doc, want) {
			continue
		}
		if len(opts.Projection) > 0 {
			out = append(out, doc.Project(opts.Projection))
		} else {
			out = append(out, doc.Clone())
		}
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, partial models.Document) (int64, error) {
	normalized, err := normalizeDocument(partial)
	if err != nil {
		return 0, apperr.Storage("update", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	doc, ok := c.docs[id]
	if !ok {
		return 0, nil
	}
	merged := doc.Clone()
	for k, v := range normalized {
		merged[k] = v
	}
	c.docs[id] = merged
	return 1, nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	if _, ok := c.docs[id]; !ok {
		return 0, nil
	}
	delete(c.docs, id)
	c.order = removeID(c.order, id)
	return 1, nil
}

func (s *MemoryStore) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	want, err := normalizeFilter(filter)
	if err != nil {
		return 0, apperr.Storage("delete many", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	var deleted int64
	kept := c.order[:0]
	for _, id := range c.order {
		if matches(c.docs[id], want) {
			delete(c.docs, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	return deleted, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func normalizeFilter(filter Filter) (models.Document, error) {
	if len(filter) == 0 {
		return models.Document{}, nil
	}
	return normalizeDocument(map[string]interface{}(filter))
}

func matches(doc, want models.Document) bool {
	for k, v := range want {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

func removeID(ids []string, id string) []string {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
