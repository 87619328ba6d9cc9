// Package session persists session records with an idle TTL.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/kailas-cloud/itemfilter/internal/db"
	"github.com/kailas-cloud/itemfilter/internal/domain"
	domsession "github.com/kailas-cloud/itemfilter/internal/domain/session"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type recordRow struct {
	ID         string              `json:"id"`
	Collection string              `json:"collection"`
	View       string              `json:"view"`
	Revision   int                 `json:"revision"`
	Groups     []string            `json:"groups"`
	Active     map[string][]string `json:"active,omitempty"`
	Order      []string            `json:"order,omitempty"`
	SortBy     string              `json:"sort_by,omitempty"`
	Ascending  bool                `json:"ascending,omitempty"`
	CreatedAt  int64               `json:"created_at"`
}

// Repo implements usecase/session.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a session repository. Keys are "<prefix>session:<id>".
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Save writes the record and restarts its TTL.
func (r *Repo) Save(ctx context.Context, rec domsession.Record, ttl time.Duration) error {
	data, err := sonic.Marshal(recordRow(rec))
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", rec.ID, err)
	}
	if err := r.store.SetWithTTL(ctx, r.key(rec.ID), data, ttl); err != nil {
		return fmt.Errorf("set session %s: %w", rec.ID, err)
	}
	return nil
}

// Load reads a record.
func (r *Repo) Load(ctx context.Context, id string) (domsession.Record, error) {
	data, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domsession.Record{}, domain.ErrSessionNotFound
		}
		return domsession.Record{}, fmt.Errorf("get session %s: %w", id, err)
	}

	var row recordRow
	if err := sonic.Unmarshal(data, &row); err != nil {
		return domsession.Record{}, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return domsession.Record(row), nil
}

// Touch extends the record TTL.
func (r *Repo) Touch(ctx context.Context, id string, ttl time.Duration) error {
	if err := r.store.Expire(ctx, r.key(id), ttl); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("expire session %s: %w", id, err)
	}
	return nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("del session %s: %w", id, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%ssession:%s", r.prefix, id)
}
