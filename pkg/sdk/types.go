package sdk

import (
	"time"

	"github.com/kailas-cloud/itemfilter"
	domcol "github.com/kailas-cloud/itemfilter/internal/domain/collection"
	"github.com/kailas-cloud/itemfilter/internal/domain/view"
	sessionuc "github.com/kailas-cloud/itemfilter/internal/usecase/session"
)

// Item is one element of a collection.
type Item = itemfilter.Item

// View definition types. A nil section disables the feature.
type (
	ViewDefinition = view.Definition
	FilterDef      = view.FilterDef
	GroupDef       = view.GroupDef
	SortDef        = view.SortDef
	SortOptionDef  = view.SortOptionDef
	CountDef       = view.CountDef
	RuleDef        = view.RuleDef
)

// CollectionInfo describes a stored collection.
type CollectionInfo struct {
	Name      string
	Revision  int
	ItemCount int
	CreatedAt time.Time
}

// Session is the state of a filtering session after an operation.
type Session struct {
	ID         string
	Collection string
	View       string
	Filter     string
	Active     map[string][]string
	Shown      []string
	Hidden     []string
	Order      []string
	Count      string
	Sort       string
	Pending    bool
}

func fromInternalCollection(c domcol.Collection) CollectionInfo {
	return CollectionInfo{
		Name:      c.Name(),
		Revision:  c.Revision(),
		ItemCount: c.Len(),
		CreatedAt: time.UnixMilli(c.CreatedAt()).UTC(),
	}
}

func fromSnapshot(s sessionuc.Snapshot) Session {
	return Session{
		ID:         s.ID,
		Collection: s.Collection,
		View:       s.View,
		Filter:     s.Filter,
		Active:     s.Active,
		Shown:      s.Shown,
		Hidden:     s.Hidden,
		Order:      s.Order,
		Count:      s.Count,
		Sort:       s.Sort,
		Pending:    s.Pending,
	}
}
