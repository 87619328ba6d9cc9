package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrCollectionNotFound signals a missing item collection.
	ErrCollectionNotFound = fmt.Errorf("collection %w", ErrNotFound)
	// ErrSessionNotFound signals a missing or expired session.
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	// ErrViewNotFound signals an unknown view name.
	ErrViewNotFound = fmt.Errorf("view %w", ErrNotFound)

	// ErrInvalidItem signals an item that fails validation.
	ErrInvalidItem = errors.New("invalid item")
	// ErrInvalidCollection signals a collection that fails validation.
	ErrInvalidCollection = errors.New("invalid collection")
	// ErrInvalidSortSpec signals a sort request that cannot be parsed.
	ErrInvalidSortSpec = errors.New("invalid sort spec")
	// ErrInvalidView signals a view definition that cannot be built.
	ErrInvalidView = errors.New("invalid view")
	// ErrUnknownGroup signals a click addressed to an undeclared filter group.
	ErrUnknownGroup = errors.New("unknown filter group")
	// ErrUnknownToken signals a click on a value the group does not declare.
	ErrUnknownToken = errors.New("unknown filter token")

	// ErrNoCollection signals a sort requested before any collection exists.
	ErrNoCollection = errors.New("no collection to operate on")
	// ErrTooManySessions signals the session limit was reached.
	ErrTooManySessions = errors.New("too many sessions")
)

// InvalidItemError wraps ErrInvalidItem with the offending item id.
type InvalidItemError struct {
	ID     string
	Reason string
}

func (e *InvalidItemError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidItem.Error(), e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidItem.Error(), e.ID, e.Reason)
}

func (e *InvalidItemError) Unwrap() error { return ErrInvalidItem }

// NewInvalidItem creates an invalid item error.
func NewInvalidItem(id, reason string) error {
	return &InvalidItemError{ID: id, Reason: reason}
}
