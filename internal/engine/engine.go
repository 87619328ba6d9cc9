// Package engine owns the filter and sort state of one item collection.
//
// An Engine is single-owner: callers serialise access. Only the settle callback
// runs on another goroutine, and it receives a copy of the state it reports.
package engine

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/itemfilter/internal/domain/counter"
	"github.com/kailas-cloud/itemfilter/internal/domain/filter"
	"github.com/kailas-cloud/itemfilter/internal/domain/item"
	"github.com/kailas-cloud/itemfilter/internal/domain/predicate"
	"github.com/kailas-cloud/itemfilter/internal/domain/selector"
	"github.com/kailas-cloud/itemfilter/internal/domain/sorting"
)

// Kind names the transition a settle event finalizes.
type Kind string

// Transition kinds.
const (
	KindFilter Kind = "filter"
	KindSort   Kind = "sort"
)

// Event is the state an engine settled into.
type Event struct {
	Kind   Kind
	Shown  []string
	Hidden []string
	Order  []string
	Count  string
}

// Config holds engine settings. Disabled features turn their operations into no-ops.
type Config struct {
	Filtering bool
	Grouping  bool
	Mode      filter.Mode
	// Groups fixes the composition order of declared groups.
	Groups     []string
	Predicates *predicate.Registry

	Sorting bool
	// Compare overrides byte-wise ordering of string keys.
	Compare sorting.StringComparer

	Counting    bool
	CountFormat string

	// Settle is the debounce delay; zero settles synchronously.
	Settle   time.Duration
	OnSettle func(Event)

	Matcher filter.Matcher
	Keys    sorting.KeyExtractor
	Logger  *zap.Logger
}

// Collation returns a string comparer for the given locale.
func Collation(tag language.Tag) sorting.StringComparer {
	return collate.New(tag).CompareString
}

// Engine is a filterable, sortable view over one collection.
type Engine struct {
	cfg    Config
	items  []item.Item
	sel    *filter.Selection
	filter filter.Composed
	vis    filter.Visibility
	sorter *sorting.Sorter
	spec   *sorting.Spec
	settle *settler
	logger *zap.Logger
}

// New creates an engine over items. Item ids must be unique. A nil items slice is
// accepted; sorting it reports domain.ErrNoCollection.
func New(items []item.Item, cfg Config) (*Engine, error) {
	if err := item.ValidateUnique(items); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	if cfg.Mode == "" {
		cfg.Mode = filter.Exclusive
	}
	if cfg.CountFormat == "" {
		cfg.CountFormat = counter.DefaultFormat
	}
	if cfg.Matcher == nil {
		cfg.Matcher = selector.NewMatcher(0)
	}
	if cfg.Keys == nil {
		cfg.Keys = selector.Extractor{}
	}
	if cfg.Predicates == nil {
		cfg.Predicates = predicate.Empty()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var sortOpts []sorting.Option
	if cfg.Compare != nil {
		sortOpts = append(sortOpts, sorting.WithStringComparer(cfg.Compare))
	}

	groups := cfg.Groups
	if !cfg.Grouping {
		groups = []string{filter.DefaultGroup}
	}

	e := &Engine{
		cfg:    cfg,
		items:  slices.Clone(items),
		sel:    filter.NewSelection(cfg.Mode, groups...),
		filter: filter.Any(),
		vis:    filter.AllShown(items),
		sorter: sorting.NewSorter(cfg.Keys, cfg.Predicates, sortOpts...),
		settle: newSettler(cfg.Settle),
		logger: logger,
	}
	return e, nil
}

// Click applies a button press and reports whether the selection changed.
// Without grouping the group argument is ignored.
func (e *Engine) Click(group, value string) bool {
	if !e.cfg.Filtering {
		return false
	}
	if !e.cfg.Grouping {
		group = filter.DefaultGroup
	}
	if !e.sel.Record(group, value) {
		return false
	}

	e.filter = filter.Compose(e.sel, e.cfg.Predicates)
	e.vis = filter.Evaluate(e.filter, e.items, e.cfg.Matcher, e.cfg.Predicates)
	e.logger.Debug("filter composed",
		zap.String("group", group),
		zap.String("value", value),
		zap.Stringer("filter", e.filter),
		zap.Int("shown", len(e.vis.Shown)),
		zap.Int("total", e.vis.Total()),
	)
	e.scheduleSettle(KindFilter)
	return true
}

// Sort reorders the collection. Visibility is kept; its lists follow the new order.
// With sorting disabled the call is a no-op.
func (e *Engine) Sort(spec sorting.Spec) error {
	if !e.cfg.Sorting {
		return nil
	}
	sorted, err := e.sorter.Sort(e.items, spec)
	if err != nil {
		return fmt.Errorf("sort %s: %w", spec, err)
	}

	e.items = sorted
	e.spec = &spec
	e.vis = reorder(e.vis, sorted)
	e.logger.Debug("items sorted", zap.Stringer("spec", spec), zap.Int("items", len(sorted)))
	e.scheduleSettle(KindSort)
	return nil
}

// SortBy parses a "selector, type" attribute and sorts by it.
func (e *Engine) SortBy(sortBy string, ascending bool) error {
	spec, err := sorting.Parse(sortBy, ascending)
	if err != nil {
		return err
	}
	return e.Sort(spec)
}

// ErrOrderMismatch is returned by Restore when ids are not a permutation of the collection.
var ErrOrderMismatch = errors.New("order does not match collection")

// Restore puts the collection into a previously observed order without a settle.
// The current order becomes the origin if none was captured yet.
func (e *Engine) Restore(ids []string, spec sorting.Spec) error {
	if len(ids) != len(e.items) {
		return fmt.Errorf("restore: %w: %d ids for %d items", ErrOrderMismatch, len(ids), len(e.items))
	}
	byID := make(map[string]item.Item, len(e.items))
	for _, it := range e.items {
		byID[it.ID()] = it
	}

	order := make([]item.Item, 0, len(ids))
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			return fmt.Errorf("restore: %w: unknown or repeated id %q", ErrOrderMismatch, id)
		}
		delete(byID, id)
		order = append(order, it)
	}

	e.sorter.Capture(e.items)
	e.items = order
	e.spec = &spec
	e.vis = reorder(e.vis, order)
	return nil
}

func reorder(v filter.Visibility, order []item.Item) filter.Visibility {
	shown := make(map[string]struct{}, len(v.Shown))
	for _, id := range v.Shown {
		shown[id] = struct{}{}
	}

	out := filter.Visibility{Shown: make([]string, 0, len(v.Shown)), Hidden: make([]string, 0, len(v.Hidden))}
	for _, it := range order {
		if _, ok := shown[it.ID()]; ok {
			out.Shown = append(out.Shown, it.ID())
		} else {
			out.Hidden = append(out.Hidden, it.ID())
		}
	}
	return out
}

func (e *Engine) scheduleSettle(kind Kind) {
	ev := Event{
		Kind:   kind,
		Shown:  slices.Clone(e.vis.Shown),
		Hidden: slices.Clone(e.vis.Hidden),
		Order:  e.Order(),
		Count:  e.Count(),
	}
	logger, onSettle := e.logger, e.cfg.OnSettle
	e.settle.schedule(func() {
		logger.Debug("settled", zap.String("kind", string(kind)), zap.Int("shown", len(ev.Shown)))
		if onSettle != nil {
			onSettle(ev)
		}
	})
}

// Visible returns shown item ids in display order.
func (e *Engine) Visible() []string { return slices.Clone(e.vis.Shown) }

// Hidden returns hidden item ids in display order.
func (e *Engine) Hidden() []string { return slices.Clone(e.vis.Hidden) }

// Order returns every item id in display order.
func (e *Engine) Order() []string { return item.IDs(e.items) }

// Items returns the collection in display order.
func (e *Engine) Items() []item.Item { return slices.Clone(e.items) }

// Count returns the count string, or "" when counting is disabled.
func (e *Engine) Count() string {
	if !e.cfg.Counting {
		return ""
	}
	return counter.Format(e.cfg.CountFormat, len(e.vis.Shown), len(e.items))
}

// Filter returns the composed filter currently applied.
func (e *Engine) Filter() filter.Composed { return e.filter }

// Active returns the raw active values of group.
func (e *Engine) Active(group string) []string {
	if !e.cfg.Grouping {
		group = filter.DefaultGroup
	}
	return e.sel.Active(group)
}

// Groups returns the known group ids in composition order.
func (e *Engine) Groups() []string { return e.sel.Groups() }

// SortSpec returns the last applied sort.
func (e *Engine) SortSpec() (sorting.Spec, bool) {
	if e.spec == nil {
		return sorting.Spec{}, false
	}
	return *e.spec, true
}

// Pending reports whether a settle is scheduled.
func (e *Engine) Pending() bool { return e.settle.pending() }

// Close cancels a pending settle. It is safe to call more than once.
func (e *Engine) Close() { e.settle.stop() }
