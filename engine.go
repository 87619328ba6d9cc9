package itemfilter

import (
	"github.com/kailas-cloud/itemfilter/internal/domain/counter"
	"github.com/kailas-cloud/itemfilter/internal/domain/predicate"
	"github.com/kailas-cloud/itemfilter/internal/engine"
)

// Engine filters and sorts one collection. It is not safe for concurrent use;
// only the settle callback runs on another goroutine.
type Engine struct {
	eng *engine.Engine
}

// New creates an Engine over items. Item ids must be unique.
func New(items []Item, opts ...Option) (*Engine, error) {
	c := &engineConfig{
		filtering:   true,
		sorting:     true,
		counting:    true,
		mode:        Exclusive,
		countFormat: counter.DefaultFormat,
	}
	for _, o := range opts {
		o(c)
	}

	var regOpts []predicate.Option
	switch {
	case c.dateFormat != nil:
		regOpts = append(regOpts, predicate.WithDateFormat(c.dateFormat))
	case len(c.dateLayouts) > 0:
		regOpts = append(regOpts, predicate.WithDateFormat(predicate.LayoutDateFormat(c.dateLayouts...)))
	}

	cfg := engine.Config{
		Filtering:   c.filtering,
		Grouping:    len(c.groups) > 0,
		Mode:        c.mode,
		Groups:      c.groups,
		Predicates:  predicate.NewRegistry(c.predicates, regOpts...),
		Sorting:     c.sorting,
		Counting:    c.counting,
		CountFormat: c.countFormat,
		Settle:      c.settle,
		OnSettle:    c.onSettle,
		Logger:      c.logger,
	}
	if c.collation != nil {
		cfg.Compare = engine.Collation(*c.collation)
	}

	eng, err := engine.New(items, cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{eng: eng}, nil
}

// Click presses the button value of group and reports whether the selection
// changed. The group is ignored when the engine has no groups.
func (e *Engine) Click(group, value string) bool { return e.eng.Click(group, value) }

// Sort reorders the collection by a "selector, type" attribute; "*" restores
// the original order. Sorting is stable in both directions.
func (e *Engine) Sort(by string, ascending bool) error { return e.eng.SortBy(by, ascending) }

// SortedBy returns the last applied sort attribute and direction.
func (e *Engine) SortedBy() (by string, ascending bool, ok bool) {
	spec, ok := e.eng.SortSpec()
	if !ok {
		return "", false, false
	}
	return spec.Attr(), spec.Ascending(), true
}

// Visible returns the ids of shown items in display order.
func (e *Engine) Visible() []string { return e.eng.Visible() }

// Hidden returns the ids of hidden items in display order.
func (e *Engine) Hidden() []string { return e.eng.Hidden() }

// Order returns every id in display order.
func (e *Engine) Order() []string { return e.eng.Order() }

// Items returns the collection in display order.
func (e *Engine) Items() []Item { return e.eng.Items() }

// Count returns the count string, "" when counting is disabled.
func (e *Engine) Count() string { return e.eng.Count() }

// Filter returns the composed filter, e.g. ".red.m,.blue.m|inStock" ("*" matches all).
func (e *Engine) Filter() string { return e.eng.Filter().String() }

// Active returns the active values of group.
func (e *Engine) Active(group string) []string { return e.eng.Active(group) }

// Pending reports whether a settle is scheduled.
func (e *Engine) Pending() bool { return e.eng.Pending() }

// Close cancels a pending settle.
func (e *Engine) Close() { e.eng.Close() }
