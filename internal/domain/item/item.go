package item

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/itemfilter/internal/domain"
)

// MaxClasses is the maximum number of classes per item.
const MaxClasses = 64

// Item is a single element of a filterable collection (immutable value object).
// Classes drive selector matching, fields carry the text that sort keys are read from.
type Item struct {
	id        string
	elementID string
	classes   []string
	fields    map[string]string
}

// New validates and creates an Item. Classes are deduplicated, order is kept.
func New(id string, classes []string, fields map[string]string) (Item, error) {
	if strings.TrimSpace(id) == "" {
		return Item{}, domain.NewInvalidItem("", "id is required")
	}
	if len(classes) > MaxClasses {
		return Item{}, domain.NewInvalidItem(id, "too many classes")
	}

	cls := make([]string, 0, len(classes))
	for _, c := range classes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.ContainsAny(c, " \t\n.#:") {
			return Item{}, domain.NewInvalidItem(id, "invalid class name "+c)
		}
		if !slices.Contains(cls, c) {
			cls = append(cls, c)
		}
	}

	f := make(map[string]string, len(fields))
	for k, v := range fields {
		if k == "" {
			return Item{}, domain.NewInvalidItem(id, "empty field name")
		}
		f[k] = v
	}

	return Item{id: id, classes: cls, fields: f}, nil
}

// WithElementID returns a copy carrying the element id matched by "#id" selectors.
func (it Item) WithElementID(elementID string) Item {
	it.elementID = elementID
	return it
}

// ID returns the item identifier.
func (it Item) ID() string { return it.id }

// ElementID returns the element id ("" when unset).
func (it Item) ElementID() string { return it.elementID }

// Classes returns the item classes.
func (it Item) Classes() []string { return it.classes }

// Fields returns the text fields.
func (it Item) Fields() map[string]string { return it.fields }

// HasClass reports whether the item carries class c.
func (it Item) HasClass(c string) bool { return slices.Contains(it.classes, c) }

// Field returns the text of field name.
func (it Item) Field(name string) (string, bool) {
	v, ok := it.fields[name]
	return v, ok
}

// IDs returns the ids of items in order.
func IDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.id
	}
	return ids
}

// ValidateUnique checks that item ids are unique within a collection.
func ValidateUnique(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.id]; ok {
			return domain.NewInvalidItem(it.id, "duplicate id")
		}
		seen[it.id] = struct{}{}
	}
	return nil
}
