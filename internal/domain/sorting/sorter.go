// Package sorting reorders item collections by extracted keys and restores
// the first observed order on demand.
package sorting

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	"github.com/kailas-cloud/itemfilter/internal/domain/number"
	"github.com/kailas-cloud/itemfilter/internal/domain/predicate"
)

// KeyExtractor reads the text a selector points at inside an item.
type KeyExtractor interface {
	ExtractKey(it item.Item, selector string) string
}

// DateSource provides the optional date transform.
type DateSource interface {
	DateFormat() (predicate.DateFormat, bool)
}

// StringComparer compares string keys; strings.Compare when unset.
type StringComparer func(a, b string) int

// Sorter produces stable permutations of a collection. It captures the origin
// order on its first Sort call and never changes it afterwards.
// A Sorter belongs to one engine and is not safe for concurrent use.
type Sorter struct {
	keys     KeyExtractor
	dates    DateSource
	compare  StringComparer
	origin   []item.Item
	captured bool
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithStringComparer replaces byte-wise string comparison (e.g. with a collator).
func WithStringComparer(c StringComparer) Option {
	return func(s *Sorter) {
		if c != nil {
			s.compare = c
		}
	}
}

// NewSorter creates a Sorter. dates may be nil: date sorts then become no-ops.
func NewSorter(keys KeyExtractor, dates DateSource, opts ...Option) *Sorter {
	s := &Sorter{keys: keys, dates: dates, compare: strings.Compare}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Capture records items as the origin order unless one was captured already.
func (s *Sorter) Capture(items []item.Item) {
	if !s.captured {
		s.origin = slices.Clone(items)
		s.captured = true
	}
}

// Sort returns items reordered by spec. The input slice is never modified.
//
// Number keys that do not parse compare as NaN, which cmp.Compare orders before
// every number; date keys that do not parse compare as the zero time. A date sort
// without a registered date transform returns the input order unchanged.
// A nil collection is a caller bug and yields ErrNoCollection.
func (s *Sorter) Sort(items []item.Item, spec Spec) ([]item.Item, error) {
	if items == nil {
		return nil, domain.ErrNoCollection
	}
	s.Capture(items)

	switch spec.keyType {
	case Origin:
		return slices.Clone(s.origin), nil
	case Number:
		return sortByKey(items, spec.ascending, func(it item.Item) float64 {
			return number.Parse(s.keys.ExtractKey(it, spec.selector))
		}, cmp.Compare[float64]), nil
	case String:
		return sortByKey(items, spec.ascending, func(it item.Item) string {
			return s.keys.ExtractKey(it, spec.selector)
		}, s.compare), nil
	case Date:
		if s.dates == nil {
			return slices.Clone(items), nil
		}
		format, ok := s.dates.DateFormat()
		if !ok {
			return slices.Clone(items), nil
		}
		return sortByKey(items, spec.ascending, func(it item.Item) time.Time {
			t, _ := format(s.keys.ExtractKey(it, spec.selector))
			return t
		}, time.Time.Compare), nil
	default:
		return nil, domain.ErrInvalidSortSpec
	}
}

type keyed[K any] struct {
	key K
	it  item.Item
}

// sortByKey extracts every key once, then stable-sorts. Descending negates the
// comparator, so equal keys keep their input order in both directions.
func sortByKey[K any](items []item.Item, ascending bool, key func(item.Item) K, compare func(a, b K) int) []item.Item {
	decorated := make([]keyed[K], len(items))
	for i, it := range items {
		decorated[i] = keyed[K]{key: key(it), it: it}
	}

	slices.SortStableFunc(decorated, func(a, b keyed[K]) int {
		if ascending {
			return compare(a.key, b.key)
		}
		return compare(b.key, a.key)
	})

	out := make([]item.Item, len(decorated))
	for i, d := range decorated {
		out[i] = d.it
	}
	return out
}
