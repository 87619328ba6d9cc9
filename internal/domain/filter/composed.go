package filter

import (
	"slices"
	"strings"
)

// Term is a conjunction of selector tokens, at most one per contributing group.
// Its string form is the concatenated compound selector (".red" + ".xl" = ".red.xl").
type Term struct {
	tokens []Token
	key    string
}

// NewTerm builds a term from tokens.
func NewTerm(tokens ...Token) Term {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(string(t))
	}
	return Term{tokens: slices.Clone(tokens), key: b.String()}
}

// String returns the compound selector form.
func (t Term) String() string { return t.key }

func (t Term) extend(tok Token) Term {
	tokens := make([]Token, 0, len(t.tokens)+1)
	tokens = append(tokens, t.tokens...)
	tokens = append(tokens, tok)
	return Term{tokens: tokens, key: t.key + string(tok)}
}

// Composed is the reduced filter derived from every group's selection.
// An item is shown when it passes all predicates and, unless the selector side is
// unrestricted, matches at least one term.
type Composed struct {
	unrestricted bool
	terms        []Term
	predicates   []string
}

// Any returns the filter that shows everything.
func Any() Composed { return Composed{unrestricted: true} }

// Nothing returns a restricted filter with an empty term set: nothing matches.
func Nothing() Composed { return Composed{} }

// NewComposed builds a restricted filter from terms and predicate names.
// Terms are deduplicated and sorted by their string form, predicates deduplicated and sorted.
func NewComposed(terms []Term, predicates []string) Composed {
	return Composed{terms: normalizeTerms(terms), predicates: normalizeNames(predicates)}
}

// Unrestricted returns a filter with no selector constraint that still applies predicates.
func Unrestricted(predicates []string) Composed {
	return Composed{unrestricted: true, predicates: normalizeNames(predicates)}
}

// IsAny reports whether the filter lets every item through.
func (c Composed) IsAny() bool { return c.unrestricted && len(c.predicates) == 0 }

// Selectors returns the compound selector string of each term.
func (c Composed) Selectors() []string {
	out := make([]string, len(c.terms))
	for i, t := range c.terms {
		out[i] = t.String()
	}
	return out
}

// Predicates returns the AND-ed predicate names in evaluation order.
func (c Composed) Predicates() []string { return c.predicates }

// String renders the filter: "*" for Any, otherwise selectors joined by ","
// followed by "|" and the predicate names.
func (c Composed) String() string {
	if c.IsAny() {
		return Wildcard
	}
	sel := Wildcard
	if !c.unrestricted {
		sel = strings.Join(c.Selectors(), ",")
	}
	if len(c.predicates) == 0 {
		return sel
	}
	return sel + "|" + strings.Join(c.predicates, ",")
}

// Equal reports whether two filters are the same expression.
func (c Composed) Equal(o Composed) bool {
	return c.unrestricted == o.unrestricted &&
		slices.Equal(c.Selectors(), o.Selectors()) &&
		slices.Equal(c.predicates, o.predicates)
}

func normalizeTerms(terms []Term) []Term {
	seen := make(map[string]struct{}, len(terms))
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t.key]; ok {
			continue
		}
		seen[t.key] = struct{}{}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Term) int { return strings.Compare(a.key, b.key) })
	return out
}

func normalizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}
