// Package predicate holds the named item predicates a filter can reference,
// plus the date transform used by date sorting.
package predicate

import (
	"maps"
	"slices"
	"time"

	"github.com/kailas-cloud/itemfilter/internal/domain/item"
)

// DateFormatName is the name the date transform is known by in view configuration.
const DateFormatName = "dateFormat"

// Func decides whether an item passes.
type Func func(it item.Item) bool

// DateFormat converts extracted key text into a point in time.
type DateFormat func(text string) (time.Time, bool)

// Registry maps predicate names to functions. It is immutable once built.
type Registry struct {
	funcs      map[string]Func
	dateFormat DateFormat
}

// Option configures a Registry.
type Option func(*Registry)

// WithDateFormat registers the date transform.
func WithDateFormat(f DateFormat) Option {
	return func(r *Registry) { r.dateFormat = f }
}

// NewRegistry builds a registry from funcs. Nil functions are skipped.
func NewRegistry(funcs map[string]Func, opts ...Option) *Registry {
	r := &Registry{funcs: make(map[string]Func, len(funcs))}
	for name, fn := range funcs {
		if fn != nil && name != "" {
			r.funcs[name] = fn
		}
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Empty returns a registry with no predicates and no date transform.
func Empty() *Registry { return NewRegistry(nil) }

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.funcs[name]
	return ok
}

// Predicate returns the function registered under name.
func (r *Registry) Predicate(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.funcs))
}

// DateFormat returns the date transform, if one is registered.
func (r *Registry) DateFormat() (DateFormat, bool) {
	if r == nil || r.dateFormat == nil {
		return nil, false
	}
	return r.dateFormat, true
}

// LayoutDateFormat returns a DateFormat trying each time layout in order.
func LayoutDateFormat(layouts ...string) DateFormat {
	layouts = slices.Clone(layouts)
	return func(text string) (time.Time, bool) {
		for _, l := range layouts {
			if t, err := time.Parse(l, text); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
}
