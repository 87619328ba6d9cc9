package itemfilter

import (
	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/engine"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidItem     = domain.ErrInvalidItem
	ErrInvalidSortSpec = domain.ErrInvalidSortSpec
	ErrNoCollection    = domain.ErrNoCollection
	ErrOrderMismatch   = engine.ErrOrderMismatch
)
