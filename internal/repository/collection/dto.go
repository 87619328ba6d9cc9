package collection

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/kailas-cloud/itemfilter/internal/domain/collection"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
)

// itemRow is the stored form of an item.
type itemRow struct {
	ID        string            `json:"id"`
	ElementID string            `json:"element_id,omitempty"`
	Classes   []string          `json:"classes,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// collectionRow is the stored form of a collection: one JSON blob per key.
type collectionRow struct {
	Name      string    `json:"name"`
	CreatedAt int64     `json:"created_at"`
	Revision  int       `json:"revision"`
	Items     []itemRow `json:"items"`
}

func encode(col collection.Collection) ([]byte, error) {
	row := collectionRow{
		Name:      col.Name(),
		CreatedAt: col.CreatedAt(),
		Revision:  col.Revision(),
		Items:     make([]itemRow, col.Len()),
	}
	for i, it := range col.Items() {
		row.Items[i] = itemRow{
			ID:        it.ID(),
			ElementID: it.ElementID(),
			Classes:   it.Classes(),
			Fields:    it.Fields(),
		}
	}

	data, err := sonic.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("marshal collection %s: %w", col.Name(), err)
	}
	return data, nil
}

func decode(data []byte) (collection.Collection, error) {
	var row collectionRow
	if err := sonic.Unmarshal(data, &row); err != nil {
		return collection.Collection{}, fmt.Errorf("unmarshal collection: %w", err)
	}

	items := make([]item.Item, len(row.Items))
	for i, r := range row.Items {
		it, err := item.New(r.ID, r.Classes, r.Fields)
		if err != nil {
			return collection.Collection{}, fmt.Errorf("collection %s item %d: %w", row.Name, i, err)
		}
		items[i] = it.WithElementID(r.ElementID)
	}
	return collection.Reconstruct(row.Name, items, row.CreatedAt, row.Revision), nil
}
