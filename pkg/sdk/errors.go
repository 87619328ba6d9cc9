package sdk

import "github.com/kailas-cloud/itemfilter/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrCollectionNotFound = domain.ErrCollectionNotFound
	ErrSessionNotFound    = domain.ErrSessionNotFound
	ErrViewNotFound       = domain.ErrViewNotFound
	ErrInvalidItem        = domain.ErrInvalidItem
	ErrInvalidCollection  = domain.ErrInvalidCollection
	ErrInvalidView        = domain.ErrInvalidView
	ErrInvalidSortSpec    = domain.ErrInvalidSortSpec
	ErrUnknownGroup       = domain.ErrUnknownGroup
	ErrUnknownToken       = domain.ErrUnknownToken
	ErrTooManySessions    = domain.ErrTooManySessions
)
