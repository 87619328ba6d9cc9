package itemfilter

import "github.com/kailas-cloud/itemfilter/internal/domain/item"

// Item is one element of a collection: an id, CSS-like classes and text fields.
type Item = item.Item

// NewItem validates and creates an Item.
func NewItem(id string, classes []string, fields map[string]string) (Item, error) {
	return item.New(id, classes, fields)
}

// MustItem is NewItem that panics on invalid input. Meant for literals and tests.
func MustItem(id string, classes []string, fields map[string]string) Item {
	it, err := item.New(id, classes, fields)
	if err != nil {
		panic(err)
	}
	return it
}
