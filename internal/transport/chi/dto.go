package chi

import (
	"time"

	domcol "github.com/kailas-cloud/itemfilter/internal/domain/collection"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	"github.com/kailas-cloud/itemfilter/internal/domain/view"
	sessionuc "github.com/kailas-cloud/itemfilter/internal/usecase/session"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest         ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized       ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed   ErrorResponseCode = "validation_failed"
	ErrorResponseCodeCollectionNotFound ErrorResponseCode = "collection_not_found"
	ErrorResponseCodeSessionNotFound    ErrorResponseCode = "session_not_found"
	ErrorResponseCodeViewNotFound       ErrorResponseCode = "view_not_found"
	ErrorResponseCodeNotFound           ErrorResponseCode = "not_found"
	ErrorResponseCodeUnknownGroup       ErrorResponseCode = "unknown_group"
	ErrorResponseCodeUnknownToken       ErrorResponseCode = "unknown_token"
	ErrorResponseCodeInvalidSort        ErrorResponseCode = "invalid_sort"
	ErrorResponseCodeTooManySessions    ErrorResponseCode = "too_many_sessions"
	ErrorResponseCodeInternalError      ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Item is the wire form of an item.
type Item struct {
	ID        string            `json:"id"`
	ElementID string            `json:"element_id,omitempty"`
	Classes   []string          `json:"classes,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// PutCollectionRequest is the body of PUT /collections/{collection}.
type PutCollectionRequest struct {
	Items []Item `json:"items"`
}

// Collection is the wire form of a collection.
type Collection struct {
	Name      string    `json:"name"`
	Revision  int       `json:"revision"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
	Items     []Item    `json:"items,omitempty"`
}

// CollectionListResponse is the body of GET /collections.
type CollectionListResponse struct {
	Items []Collection `json:"items"`
}

// View is the wire form of a view.
type View struct {
	Name        string       `json:"name"`
	Filtering   bool         `json:"filtering"`
	Grouping    bool         `json:"grouping"`
	Mode        string       `json:"mode"`
	Groups      []ViewGroup  `json:"groups,omitempty"`
	Sorting     bool         `json:"sorting"`
	Trigger     string       `json:"trigger,omitempty"`
	SortOptions []SortOption `json:"sort_options,omitempty"`
	Counting    bool         `json:"counting"`
	CountFormat string       `json:"count_format,omitempty"`
	Predicates  []string     `json:"predicates,omitempty"`
}

// ViewGroup lists the buttons of a filter group.
type ViewGroup struct {
	ID      string   `json:"id"`
	Buttons []string `json:"buttons,omitempty"`
}

// SortOption is one configured sort option.
type SortOption struct {
	Index     int    `json:"index"`
	By        string `json:"by"`
	Ascending bool   `json:"ascending"`
}

// ViewListResponse is the body of GET /views.
type ViewListResponse struct {
	Items []View `json:"items"`
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	Collection string `json:"collection"`
	View       string `json:"view,omitempty"`
}

// ClickRequest is the body of POST /sessions/{session}/clicks.
type ClickRequest struct {
	Group string `json:"group,omitempty"`
	Value string `json:"value"`
}

// SortParams are the query parameters of POST /sessions/{session}/sort.
type SortParams struct {
	By        *string
	Ascending *bool
	Option    *int
}

// Session is the wire form of a session snapshot.
type Session struct {
	ID         string              `json:"id"`
	Collection string              `json:"collection"`
	View       string              `json:"view"`
	Filter     string              `json:"filter"`
	Active     map[string][]string `json:"active"`
	Shown      []string            `json:"shown"`
	Hidden     []string            `json:"hidden"`
	Order      []string            `json:"order"`
	Count      string              `json:"count,omitempty"`
	Sort       string              `json:"sort,omitempty"`
	Pending    bool                `json:"pending"`
	Changed    *bool               `json:"changed,omitempty"`
}

func itemsFromWire(in []Item) ([]item.Item, error) {
	out := make([]item.Item, len(in))
	for i, w := range in {
		it, err := item.New(w.ID, w.Classes, w.Fields)
		if err != nil {
			return nil, err
		}
		if w.ElementID != "" {
			it = it.WithElementID(w.ElementID)
		}
		out[i] = it
	}
	return out, nil
}

func itemsToWire(in []item.Item) []Item {
	out := make([]Item, len(in))
	for i, it := range in {
		out[i] = Item{ID: it.ID(), ElementID: it.ElementID(), Classes: it.Classes(), Fields: it.Fields()}
	}
	return out
}

func collectionToWire(c domcol.Collection, withItems bool) Collection {
	resp := Collection{
		Name:      c.Name(),
		Revision:  c.Revision(),
		ItemCount: c.Len(),
		CreatedAt: time.UnixMilli(c.CreatedAt()).UTC(),
	}
	if withItems {
		resp.Items = itemsToWire(c.Items())
	}
	return resp
}

func viewToWire(v *view.View) View {
	resp := View{
		Name:        v.Name(),
		Filtering:   v.Filtering(),
		Grouping:    v.Grouping(),
		Mode:        string(v.Mode()),
		Sorting:     v.Sorting(),
		Counting:    v.Counting(),
		CountFormat: v.CountFormat(),
		Predicates:  v.Predicates().Names(),
	}
	for _, g := range v.Groups() {
		resp.Groups = append(resp.Groups, ViewGroup{ID: g.ID(), Buttons: g.Buttons()})
	}
	if v.Sorting() {
		resp.Trigger = string(v.Trigger())
		for i, o := range v.SortOptions() {
			resp.SortOptions = append(resp.SortOptions, SortOption{Index: i, By: o.Attr(), Ascending: o.Ascending()})
		}
	}
	return resp
}

func sessionToWire(s sessionuc.Snapshot) Session {
	return Session{
		ID:         s.ID,
		Collection: s.Collection,
		View:       s.View,
		Filter:     s.Filter,
		Active:     s.Active,
		Shown:      orEmpty(s.Shown),
		Hidden:     orEmpty(s.Hidden),
		Order:      orEmpty(s.Order),
		Count:      s.Count,
		Sort:       s.Sort,
		Pending:    s.Pending,
	}
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
