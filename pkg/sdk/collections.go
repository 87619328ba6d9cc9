package sdk

import (
	"context"
	"fmt"
	"time"
)

// CollectionService manages stored collections.
type CollectionService struct {
	svc collectionUseCase
	obs *observer
}

// Put stores items under name, replacing a previous collection of that name.
// The boolean reports whether the collection was newly created.
func (s *CollectionService) Put(ctx context.Context, name string, items []Item) (_ CollectionInfo, created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.put", start, err, "collection", name) }()

	col, created, err := s.svc.Put(ctx, name, items)
	if err != nil {
		return CollectionInfo{}, false, fmt.Errorf("put collection: %w", err)
	}
	return fromInternalCollection(col), created, nil
}

// Get retrieves collection metadata by name.
func (s *CollectionService) Get(ctx context.Context, name string) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.get", start, err, "collection", name) }()

	col, err := s.svc.Get(ctx, name)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("get collection: %w", err)
	}
	return fromInternalCollection(col), nil
}

// Items returns the stored items of a collection in their original order.
func (s *CollectionService) Items(ctx context.Context, name string) (_ []Item, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.items", start, err, "collection", name) }()

	col, err := s.svc.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return col.Items(), nil
}

// List returns all collections, oldest first.
func (s *CollectionService) List(ctx context.Context) (_ []CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.list", start, err) }()

	cols, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := make([]CollectionInfo, len(cols))
	for i, c := range cols {
		out[i] = fromInternalCollection(c)
	}
	return out, nil
}

// Delete removes a collection. Running sessions keep their items.
func (s *CollectionService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.delete", start, err, "collection", name) }()

	if err = s.svc.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}
