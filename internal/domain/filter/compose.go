package filter

// Registry reports which predicate names are registered.
type Registry interface {
	Has(name string) bool
}

// Compose reduces the selection of every group into one filter.
//
// Selector tokens are joined across groups as a cartesian product (AND between
// groups, OR within a group). A group without selector tokens is left out of the
// join. Predicate names from all groups are unioned; names missing from reg are dropped.
func Compose(sel *Selection, reg Registry) Composed {
	var (
		terms []Term
		names []string
	)

	for _, id := range sel.Groups() {
		tokens := sel.Tokens(id)
		if tokens == nil {
			continue
		}

		selectors, preds := Partition(tokens)
		names = append(names, preds...)
		if len(selectors) == 0 {
			continue
		}
		terms = join(terms, selectors)
	}

	registered := names[:0]
	for _, n := range names {
		if reg != nil && reg.Has(n) {
			registered = append(registered, n)
		}
	}

	if len(terms) == 0 {
		if len(registered) == 0 {
			return Any()
		}
		return Unrestricted(registered)
	}
	return NewComposed(terms, registered)
}

// join extends every existing term with every selector of the next group.
// An empty accumulator starts a term per selector.
func join(terms []Term, selectors []Token) []Term {
	if len(terms) == 0 {
		out := make([]Term, 0, len(selectors))
		for _, s := range selectors {
			out = append(out, NewTerm(s))
		}
		return normalizeTerms(out)
	}

	out := make([]Term, 0, len(terms)*len(selectors))
	for _, t := range terms {
		for _, s := range selectors {
			out = append(out, t.extend(s))
		}
	}
	return normalizeTerms(out)
}
