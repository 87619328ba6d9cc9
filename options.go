package itemfilter

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/itemfilter/internal/domain/filter"
	"github.com/kailas-cloud/itemfilter/internal/domain/predicate"
	"github.com/kailas-cloud/itemfilter/internal/engine"
)

// Mode is how buttons inside one group behave.
type Mode = filter.Mode

// Selection modes.
const (
	// Exclusive keeps one active value per group.
	Exclusive = filter.Exclusive
	// Multi toggles values; "*" resets the group.
	Multi = filter.Multi
)

// Event is the state a transition settled into.
type Event = engine.Event

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	filtering bool
	sorting   bool
	counting  bool

	groups      []string
	mode        Mode
	countFormat string

	predicates  map[string]predicate.Func
	dateLayouts []string
	dateFormat  predicate.DateFormat
	collation   *language.Tag

	settle   time.Duration
	onSettle func(Event)
	logger   *zap.Logger
}

// WithGroups enables grouping: clicks name one of groups, and groups compose in
// the given order. Without it every click lands in a single group.
func WithGroups(groups ...string) Option {
	return func(c *engineConfig) { c.groups = groups }
}

// WithMode sets the selection mode (Exclusive by default).
func WithMode(m Mode) Option {
	return func(c *engineConfig) { c.mode = m }
}

// WithPredicate registers a named predicate usable as a button value.
func WithPredicate(name string, fn func(Item) bool) Option {
	return func(c *engineConfig) {
		if c.predicates == nil {
			c.predicates = make(map[string]predicate.Func)
		}
		c.predicates[name] = fn
	}
}

// WithDateLayouts enables date sorting, parsing keys with the first matching time layout.
func WithDateLayouts(layouts ...string) Option {
	return func(c *engineConfig) { c.dateLayouts = layouts }
}

// WithDateFormat enables date sorting with a custom key transform.
func WithDateFormat(fn func(text string) (time.Time, bool)) Option {
	return func(c *engineConfig) { c.dateFormat = fn }
}

// WithCollation compares string keys by the rules of a BCP 47 locale ("de", "sv").
// Unparsable tags are ignored.
func WithCollation(locale string) Option {
	return func(c *engineConfig) {
		if tag, err := language.Parse(locale); err == nil {
			c.collation = &tag
		}
	}
}

// WithCount sets the count format: the first "n" becomes the shown count, the
// first "N" the total. Counting is on by default with "n / N".
func WithCount(format string) Option {
	return func(c *engineConfig) {
		c.counting = true
		c.countFormat = format
	}
}

// WithoutFiltering turns Click into a no-op.
func WithoutFiltering() Option {
	return func(c *engineConfig) { c.filtering = false }
}

// WithoutSorting turns Sort into a no-op.
func WithoutSorting() Option {
	return func(c *engineConfig) { c.sorting = false }
}

// WithoutCount disables the count string.
func WithoutCount() Option {
	return func(c *engineConfig) { c.counting = false }
}

// WithSettle debounces transitions: fn runs once no transition arrived for delay.
// A zero delay calls fn synchronously.
func WithSettle(delay time.Duration, fn func(Event)) Option {
	return func(c *engineConfig) {
		c.settle = delay
		c.onSettle = fn
	}
}

// WithLogger enables debug logging of transitions.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}
