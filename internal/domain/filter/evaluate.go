package filter

import (
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	"github.com/kailas-cloud/itemfilter/internal/domain/predicate"
)

// Matcher tests an item against a selector fragment.
type Matcher interface {
	Matches(it item.Item, selector string) bool
}

// PredicateSource resolves predicate names.
type PredicateSource interface {
	Predicate(name string) (predicate.Func, bool)
}

// Visibility is the show/hide decision for a collection, both lists in collection order.
type Visibility struct {
	Shown  []string
	Hidden []string
}

// Total returns the number of items the decision covers.
func (v Visibility) Total() int { return len(v.Shown) + len(v.Hidden) }

// AllShown returns a decision that shows every item.
func AllShown(items []item.Item) Visibility {
	return Visibility{Shown: item.IDs(items), Hidden: []string{}}
}

// Evaluate decides which items the filter shows.
//
// Predicates run first, in name order, stopping at the first failure. Items passing
// them are shown when the selector side is unrestricted or any term matches.
// Evaluate keeps no state: equal inputs give equal results.
func Evaluate(c Composed, items []item.Item, m Matcher, preds PredicateSource) Visibility {
	fns := make([]predicate.Func, 0, len(c.predicates))
	for _, name := range c.predicates {
		if preds == nil {
			break
		}
		if fn, ok := preds.Predicate(name); ok {
			fns = append(fns, fn)
		}
	}

	v := Visibility{Shown: make([]string, 0, len(items)), Hidden: make([]string, 0)}
	for _, it := range items {
		if show(c, it, m, fns) {
			v.Shown = append(v.Shown, it.ID())
		} else {
			v.Hidden = append(v.Hidden, it.ID())
		}
	}
	return v
}

func show(c Composed, it item.Item, m Matcher, fns []predicate.Func) bool {
	for _, fn := range fns {
		if !fn(it) {
			return false
		}
	}
	if c.unrestricted {
		return true
	}
	for _, t := range c.terms {
		if termMatches(t, it, m) {
			return true
		}
	}
	return false
}

func termMatches(t Term, it item.Item, m Matcher) bool {
	if m == nil {
		return false
	}
	for _, tok := range t.tokens {
		if !m.Matches(it, string(tok)) {
			return false
		}
	}
	return true
}
