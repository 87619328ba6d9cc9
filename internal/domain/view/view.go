// Package view holds the validated presentation settings a filtering session runs
// with: filter groups and their buttons, sort options, count format and predicates.
package view

import (
	"fmt"
	"slices"

	"golang.org/x/text/language"

	"github.com/kailas-cloud/itemfilter/internal/domain"
	"github.com/kailas-cloud/itemfilter/internal/domain/counter"
	"github.com/kailas-cloud/itemfilter/internal/domain/filter"
	"github.com/kailas-cloud/itemfilter/internal/domain/predicate"
	"github.com/kailas-cloud/itemfilter/internal/domain/sorting"
)

// Trigger is how sort options are presented.
type Trigger string

const (
	// TriggerList presents options as one dropdown.
	TriggerList Trigger = "list"
	// TriggerButton presents each option as its own button.
	TriggerButton Trigger = "button"
)

// Definition is the raw, unvalidated view description. A nil section disables
// the corresponding feature.
type Definition struct {
	Filter      *FilterDef
	Sort        *SortDef
	Count       *CountDef
	Predicates  map[string]RuleDef
	DateLayouts []string
	Collation   string
}

// FilterDef describes filter buttons.
type FilterDef struct {
	Grouping bool
	Mode     string
	Groups   []GroupDef
}

// GroupDef lists the button values of one group. An empty list accepts any value.
type GroupDef struct {
	ID      string
	Buttons []string
}

// SortDef describes sort options.
type SortDef struct {
	Trigger string
	Options []SortOptionDef
}

// SortOptionDef is one sort option in "selector, type" form.
type SortOptionDef struct {
	By        string
	Ascending bool
}

// CountDef describes the count display.
type CountDef struct {
	Format string
}

// RuleDef is a declarative predicate.
type RuleDef struct {
	Field string
	Op    string
	Value string
}

// Group is a validated filter group.
type Group struct {
	id      string
	buttons []string
}

// ID returns the group id.
func (g Group) ID() string { return g.id }

// Buttons returns the declared button values.
func (g Group) Buttons() []string { return g.buttons }

// View is a validated view (immutable).
type View struct {
	name string

	filtering bool
	grouping  bool
	mode      filter.Mode
	groups    []Group

	sorting bool
	trigger Trigger
	options []sorting.Spec

	counting    bool
	countFormat string

	predicates *predicate.Registry
	collation  *language.Tag
}

// New validates def and builds a View.
func New(name string, def Definition) (*View, error) {
	v := &View{name: name, mode: filter.Exclusive, trigger: TriggerList, countFormat: counter.DefaultFormat}

	if def.Filter != nil {
		if err := v.applyFilter(*def.Filter); err != nil {
			return nil, fmt.Errorf("%w %q: %w", domain.ErrInvalidView, name, err)
		}
	}
	if def.Sort != nil {
		if err := v.applySort(*def.Sort); err != nil {
			return nil, fmt.Errorf("%w %q: %w", domain.ErrInvalidView, name, err)
		}
	}
	if def.Count != nil {
		v.counting = true
		if def.Count.Format != "" {
			v.countFormat = def.Count.Format
		}
	}

	reg, err := buildRegistry(def.Predicates, def.DateLayouts)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", domain.ErrInvalidView, name, err)
	}
	v.predicates = reg

	if def.Collation != "" {
		tag, err := language.Parse(def.Collation)
		if err != nil {
			return nil, fmt.Errorf("%w %q: collation: %w", domain.ErrInvalidView, name, err)
		}
		v.collation = &tag
	}
	return v, nil
}

func (v *View) applyFilter(def FilterDef) error {
	mode, err := filter.ParseMode(def.Mode)
	if err != nil {
		return err
	}
	v.filtering = true
	v.grouping = def.Grouping
	v.mode = mode

	if !def.Grouping {
		var buttons []string
		for _, g := range def.Groups {
			buttons = append(buttons, g.Buttons...)
		}
		if len(def.Groups) > 0 {
			v.groups = []Group{{id: filter.DefaultGroup, buttons: compactButtons(buttons)}}
		}
		return nil
	}

	for _, g := range def.Groups {
		if g.ID == "" {
			return fmt.Errorf("filter group id is required when grouping is enabled")
		}
		if slices.ContainsFunc(v.groups, func(x Group) bool { return x.id == g.ID }) {
			return fmt.Errorf("duplicate filter group %q", g.ID)
		}
		v.groups = append(v.groups, Group{id: g.ID, buttons: compactButtons(g.Buttons)})
	}
	return nil
}

func compactButtons(buttons []string) []string {
	out := make([]string, 0, len(buttons))
	for _, b := range buttons {
		if b != "" && !slices.Contains(out, b) {
			out = append(out, b)
		}
	}
	return out
}

func (v *View) applySort(def SortDef) error {
	switch Trigger(def.Trigger) {
	case "", TriggerList:
		v.trigger = TriggerList
	case TriggerButton:
		v.trigger = TriggerButton
	default:
		return fmt.Errorf("unknown sort trigger %q", def.Trigger)
	}

	v.sorting = true
	for i, o := range def.Options {
		spec, err := sorting.Parse(o.By, o.Ascending)
		if err != nil {
			return fmt.Errorf("sort option %d: %w", i, err)
		}
		v.options = append(v.options, spec)
	}
	return nil
}

func buildRegistry(rules map[string]RuleDef, layouts []string) (*predicate.Registry, error) {
	funcs := make(map[string]predicate.Func, len(rules))
	for name, r := range rules {
		if name == predicate.DateFormatName {
			return nil, fmt.Errorf("predicate name %q is reserved", name)
		}
		if filter.Token(name).IsSelector() || name == filter.Wildcard {
			return nil, fmt.Errorf("predicate name %q would be read as a selector", name)
		}
		rule, err := predicate.NewRule(r.Field, predicate.Op(r.Op), r.Value)
		if err != nil {
			return nil, fmt.Errorf("predicate %q: %w", name, err)
		}
		funcs[name] = rule.Func()
	}

	var opts []predicate.Option
	if len(layouts) > 0 {
		opts = append(opts, predicate.WithDateFormat(predicate.LayoutDateFormat(layouts...)))
	}
	return predicate.NewRegistry(funcs, opts...), nil
}

// Name returns the view name.
func (v *View) Name() string { return v.name }

// Filtering reports whether filter buttons are enabled.
func (v *View) Filtering() bool { return v.filtering }

// Grouping reports whether buttons are split into independent groups.
func (v *View) Grouping() bool { return v.grouping }

// Mode returns the selection mode.
func (v *View) Mode() filter.Mode { return v.mode }

// Groups returns the declared groups in composition order.
func (v *View) Groups() []Group { return v.groups }

// GroupIDs returns the declared group ids in composition order.
func (v *View) GroupIDs() []string {
	ids := make([]string, len(v.groups))
	for i, g := range v.groups {
		ids[i] = g.id
	}
	return ids
}

// GroupFor maps a requested group to the group a click lands in.
// Without grouping every click lands in the default group.
func (v *View) GroupFor(group string) string {
	if !v.grouping {
		return filter.DefaultGroup
	}
	return group
}

// ValidateClick checks that value is a declared button of group. The wildcard is
// always accepted. Views without declared groups, or groups without declared
// buttons, accept any value.
func (v *View) ValidateClick(group, value string) error {
	if value == "" {
		return fmt.Errorf("%w: empty value", domain.ErrUnknownToken)
	}
	if len(v.groups) == 0 {
		return nil
	}

	group = v.GroupFor(group)
	i := slices.IndexFunc(v.groups, func(g Group) bool { return g.id == group })
	if i < 0 {
		return fmt.Errorf("%w: %q", domain.ErrUnknownGroup, group)
	}
	g := v.groups[i]
	if value == filter.Wildcard || len(g.buttons) == 0 || slices.Contains(g.buttons, value) {
		return nil
	}
	return fmt.Errorf("%w: %q in group %q", domain.ErrUnknownToken, value, group)
}

// Sorting reports whether sorting is enabled.
func (v *View) Sorting() bool { return v.sorting }

// Trigger returns how sort options are presented.
func (v *View) Trigger() Trigger { return v.trigger }

// SortOptions returns the configured sort options.
func (v *View) SortOptions() []sorting.Spec { return v.options }

// SortOption returns option i.
func (v *View) SortOption(i int) (sorting.Spec, error) {
	if i < 0 || i >= len(v.options) {
		return sorting.Spec{}, fmt.Errorf("%w: no sort option %d", domain.ErrInvalidSortSpec, i)
	}
	return v.options[i], nil
}

// Counting reports whether the count display is enabled.
func (v *View) Counting() bool { return v.counting }

// CountFormat returns the count format.
func (v *View) CountFormat() string { return v.countFormat }

// Predicates returns the predicate registry.
func (v *View) Predicates() *predicate.Registry { return v.predicates }

// Collation returns the locale string keys are collated in, if configured.
func (v *View) Collation() (language.Tag, bool) {
	if v.collation == nil {
		return language.Tag{}, false
	}
	return *v.collation, true
}

// Default returns the view used when a session names none: exclusive filtering
// without declared groups, sorting, and the default count format.
func Default() *View {
	v, _ := New("default", Definition{
		Filter: &FilterDef{},
		Sort:   &SortDef{},
		Count:  &CountDef{},
	})
	return v
}
