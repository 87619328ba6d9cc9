package session

import (
	"context"
	"time"

	domcol "github.com/kailas-cloud/itemfilter/internal/domain/collection"
	domsession "github.com/kailas-cloud/itemfilter/internal/domain/session"
)

// CollectionReader loads the collection a session runs on.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}

// Repository persists session records.
type Repository interface {
	Save(ctx context.Context, rec domsession.Record, ttl time.Duration) error
	Load(ctx context.Context, id string) (domsession.Record, error)
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
