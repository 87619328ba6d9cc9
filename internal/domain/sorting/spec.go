package sorting

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/itemfilter/internal/domain"
)

// KeyType selects how extracted keys are compared.
type KeyType string

const (
	// Number compares the leading numeric value of the key text.
	Number KeyType = "number"
	// String compares key text lexicographically.
	String KeyType = "string"
	// Date compares key text converted by the registered date transform.
	Date KeyType = "date"
	// Origin restores the first observed order.
	Origin KeyType = "origin"
)

// IsValid reports whether the key type is supported.
func (k KeyType) IsValid() bool {
	switch k {
	case Number, String, Date, Origin:
		return true
	}
	return false
}

// AnySelector is the selector of an origin sort.
const AnySelector = "*"

// Spec is a sort request (immutable value object).
type Spec struct {
	selector  string
	keyType   KeyType
	ascending bool
}

// OriginSpec returns the spec restoring the original order.
func OriginSpec() Spec { return Spec{selector: AnySelector, keyType: Origin} }

// NewSpec validates and creates a Spec. Origin specs ignore selector and direction.
func NewSpec(selector string, keyType KeyType, ascending bool) (Spec, error) {
	if !keyType.IsValid() {
		return Spec{}, fmt.Errorf("%w: unknown key type %q", domain.ErrInvalidSortSpec, keyType)
	}
	if keyType == Origin {
		return OriginSpec(), nil
	}
	if selector == "" || selector == AnySelector {
		return Spec{}, fmt.Errorf("%w: %s sort requires a key selector", domain.ErrInvalidSortSpec, keyType)
	}
	return Spec{selector: selector, keyType: keyType, ascending: ascending}, nil
}

// Parse reads a "selector, type" sort attribute ("*" alone means origin).
// Whitespace is ignored.
func Parse(sortBy string, ascending bool) (Spec, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, sortBy)

	if compact == AnySelector {
		return OriginSpec(), nil
	}

	selector, keyType, ok := strings.Cut(compact, ",")
	if !ok || selector == "" {
		return Spec{}, fmt.Errorf("%w: expected \"selector, type\", got %q", domain.ErrInvalidSortSpec, sortBy)
	}
	if extra := strings.IndexByte(keyType, ','); extra >= 0 {
		keyType = keyType[:extra]
	}
	return NewSpec(selector, KeyType(keyType), ascending)
}

// Selector returns the key selector ("*" for origin).
func (s Spec) Selector() string { return s.selector }

// KeyType returns the key type.
func (s Spec) KeyType() KeyType { return s.keyType }

// Ascending reports the sort direction.
func (s Spec) Ascending() bool { return s.ascending }

// Attr renders the spec in the "selector, type" form Parse reads, "*" for origin.
func (s Spec) Attr() string {
	if s.keyType == Origin {
		return AnySelector
	}
	return s.selector + ", " + string(s.keyType)
}

// String renders the spec with its direction, "*" for origin.
func (s Spec) String() string {
	if s.keyType == Origin {
		return AnySelector
	}
	dir := "desc"
	if s.ascending {
		dir = "asc"
	}
	return s.selector + ", " + string(s.keyType) + " " + dir
}
