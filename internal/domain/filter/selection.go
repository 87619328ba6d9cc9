package filter

import (
	"fmt"
	"slices"
)

// Mode is the selection behaviour of filter buttons.
type Mode string

const (
	// Exclusive allows one active value per group (radio buttons).
	Exclusive Mode = "exclusive"
	// Multi allows any number of active values per group (checkboxes) with a reset value.
	Multi Mode = "multi"
)

// ParseMode parses a mode name. "radio" and "toggle" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "exclusive", "radio":
		return Exclusive, nil
	case "multi", "toggle":
		return Multi, nil
	default:
		return "", fmt.Errorf("unknown selection mode %q", s)
	}
}

// DefaultGroup is the implicit group used when grouping is disabled.
const DefaultGroup = ""

type groupState struct {
	// active holds raw button values in activation order.
	active []string
	reset  bool
}

// Selection records which button values are active in each group.
// Groups are independent: a choice only ever touches its own group.
type Selection struct {
	mode   Mode
	order  []string
	groups map[string]*groupState
}

// NewSelection creates an empty selection. Declared groups fix the composition order;
// groups first seen later are appended.
func NewSelection(mode Mode, groups ...string) *Selection {
	s := &Selection{
		mode:   mode,
		groups: make(map[string]*groupState, len(groups)),
	}
	for _, g := range groups {
		s.group(g)
	}
	return s
}

// Groups returns the group ids in composition order.
func (s *Selection) Groups() []string { return slices.Clone(s.order) }

func (s *Selection) group(id string) *groupState {
	g, ok := s.groups[id]
	if !ok {
		g = &groupState{}
		s.groups[id] = g
		s.order = append(s.order, id)
	}
	return g
}

// Record applies a click on value in group and reports whether any state changed.
func (s *Selection) Record(group, value string) bool {
	g := s.group(group)
	if s.mode == Multi {
		s.toggle(g, value)
		return true
	}

	if len(g.active) == 1 && g.active[0] == value {
		return false
	}
	g.active = []string{value}
	g.reset = value == Wildcard
	return true
}

func (s *Selection) toggle(g *groupState, value string) {
	if value == Wildcard {
		if g.reset {
			g.reset = false
			return
		}
		g.reset = true
		g.active = nil
		return
	}

	g.reset = false
	if i := slices.Index(g.active, value); i >= 0 {
		g.active = slices.Delete(g.active, i, i+1)
		return
	}
	g.active = append(g.active, value)
}

// Active returns the raw values currently active in group, including the wildcard.
func (s *Selection) Active(group string) []string {
	g, ok := s.groups[group]
	if !ok {
		return nil
	}
	if g.reset {
		return []string{Wildcard}
	}
	return slices.Clone(g.active)
}

// Tokens returns the tokens chosen in group, or nil when the group does not filter:
// nothing chosen, wildcard chosen, or (multi mode) every value deselected.
func (s *Selection) Tokens(group string) []Token {
	g, ok := s.groups[group]
	if !ok || g.reset || len(g.active) == 0 {
		return nil
	}
	if s.mode == Exclusive && g.active[0] == Wildcard {
		return nil
	}

	var out []Token
	for _, v := range g.active {
		out = append(out, ParseTokens(v)...)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
