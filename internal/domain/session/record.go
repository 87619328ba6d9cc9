// Package session describes the persisted state of a filtering session.
package session

// Record is everything needed to rebuild a session's engine: the collection and
// view it runs on, the active button values per group and the current order.
type Record struct {
	ID         string
	Collection string
	View       string
	// Revision is the collection revision the session was created against.
	Revision int
	// Groups lists group ids in composition order; Active maps each to its raw values.
	Groups []string
	Active map[string][]string
	// Order is set once the session has been sorted.
	Order     []string
	SortBy    string
	Ascending bool
	CreatedAt int64
}

// Sorted reports whether the session carries a sort.
func (r Record) Sorted() bool { return r.SortBy != "" }
