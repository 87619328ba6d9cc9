// Package collection holds the named item collections sessions filter and sort.
package collection

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/kailas-cloud/itemfilter/internal/domain/item"
)

// MaxItems bounds the size of one collection.
const MaxItems = 10000

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Collection is a named, ordered set of items (immutable value object).
// Item order is the origin order sorting restores.
type Collection struct {
	name      string
	items     []item.Item
	createdAt int64
	revision  int
}

// ValidateName checks a collection name: ^[a-zA-Z0-9_-]+$, 1-64 chars.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// New validates and creates a Collection at revision 1.
func New(name string, items []item.Item, createdAt int64) (Collection, error) {
	if err := ValidateName(name); err != nil {
		return Collection{}, err
	}
	if len(items) > MaxItems {
		return Collection{}, fmt.Errorf("too many items (max %d)", MaxItems)
	}
	if err := item.ValidateUnique(items); err != nil {
		return Collection{}, err
	}
	if items == nil {
		items = []item.Item{}
	}
	return Collection{name: name, items: slices.Clone(items), createdAt: createdAt, revision: 1}, nil
}

// Reconstruct restores a Collection from storage without validation.
func Reconstruct(name string, items []item.Item, createdAt int64, revision int) Collection {
	return Collection{name: name, items: items, createdAt: createdAt, revision: revision}
}

// Replaces returns c as the successor of prev: creation time is kept, revision bumped.
func (c Collection) Replaces(prev Collection) Collection {
	c.createdAt = prev.createdAt
	c.revision = prev.revision + 1
	return c
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// Items returns the items in origin order.
func (c Collection) Items() []item.Item { return c.items }

// Len returns the number of items.
func (c Collection) Len() int { return len(c.items) }

// CreatedAt returns the creation timestamp in unix milliseconds.
func (c Collection) CreatedAt() int64 { return c.createdAt }

// Revision returns the revision, bumped on each replacement.
func (c Collection) Revision() int { return c.revision }
