package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	domcol "github.com/kailas-cloud/itemfilter/internal/domain/collection"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
)

// Service handles collection CRUD operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a collection service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Put validates and stores a collection. An existing collection of the same name
// is replaced: its creation time is kept and its revision bumped.
// The boolean reports whether the collection was newly created.
func (s *Service) Put(ctx context.Context, name string, items []item.Item) (domcol.Collection, bool, error) {
	col, err := domcol.New(name, items, s.now().UnixMilli())
	if err != nil {
		return domcol.Collection{}, false, fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidCollection, err)
	}

	created := true
	prev, err := s.repo.Get(ctx, name)
	switch {
	case err == nil:
		col = col.Replaces(prev)
		created = false
	case !errors.Is(err, domain.ErrNotFound):
		return domcol.Collection{}, false, fmt.Errorf("get collection: %w", err)
	}

	if err := s.repo.Put(ctx, col); err != nil {
		return domcol.Collection{}, false, fmt.Errorf("put collection: %w", err)
	}
	return col, created, nil
}

// Get retrieves a collection by name.
func (s *Service) Get(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := s.repo.Get(ctx, name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	return col, nil
}

// List returns all collections.
func (s *Service) List(ctx context.Context) ([]domcol.Collection, error) {
	cols, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return cols, nil
}

// Delete removes a collection. Live sessions keep the snapshot they were created with.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}
