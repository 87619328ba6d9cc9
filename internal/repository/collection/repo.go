// Package collection persists item collections in the key-value store.
package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/itemfilter/internal/db"
	"github.com/kailas-cloud/itemfilter/internal/domain"
	domcol "github.com/kailas-cloud/itemfilter/internal/domain/collection"
)

// store is the consumer interface for collections (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/collection.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a collection repository. Keys are "<prefix>collection:<name>".
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Put stores a collection, replacing any previous version.
func (r *Repo) Put(ctx context.Context, col domcol.Collection) error {
	data, err := encode(col)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key(col.Name()), data); err != nil {
		return fmt.Errorf("set collection %s: %w", col.Name(), err)
	}
	return nil
}

// Get retrieves a collection by name.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	data, err := r.store.Get(ctx, r.key(name))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcol.Collection{}, domain.ErrCollectionNotFound
		}
		return domcol.Collection{}, fmt.Errorf("get collection %s: %w", name, err)
	}
	return decode(data)
}

// List returns all collections sorted by creation time, then name.
// Collections deleted between scan and read are skipped.
func (r *Repo) List(ctx context.Context) ([]domcol.Collection, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}

	cols := make([]domcol.Collection, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.Get(ctx, key)
		if errors.Is(err, db.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		col, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		cols = append(cols, col)
	}

	sort.Slice(cols, func(i, j int) bool {
		if cols[i].CreatedAt() != cols[j].CreatedAt() {
			return cols[i].CreatedAt() < cols[j].CreatedAt()
		}
		return cols[i].Name() < cols[j].Name()
	})
	return cols, nil
}

// Delete removes a collection.
func (r *Repo) Delete(ctx context.Context, name string) error {
	key := r.key(name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrCollectionNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del collection %s: %w", name, err)
	}
	return nil
}

func (r *Repo) key(name string) string {
	return fmt.Sprintf("%scollection:%s", r.prefix, name)
}
