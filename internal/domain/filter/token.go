package filter

import (
	"strings"
	"unicode"
)

// Wildcard is the reset token: it clears a group back to "no filter".
const Wildcard = "*"

// Token is a single filter fragment: a selector (".red", ":not(.sold)") or a predicate name.
type Token string

// IsSelector reports whether the token is matched structurally against items.
// The rule is purely syntactic: anything containing "." or ":not" is a selector,
// everything else names a predicate.
func (t Token) IsSelector() bool {
	s := string(t)
	return strings.Contains(s, ".") || strings.Contains(s, ":not")
}

// ParseTokens splits a raw button value into tokens.
// All whitespace is dropped, then the value is split on ",". Empty fragments are discarded.
func ParseTokens(raw string) []Token {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	parts := strings.Split(compact, ",")
	out := make([]Token, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, Token(p))
		}
	}
	return out
}

// Partition splits tokens into selectors and predicate names, keeping input order.
func Partition(tokens []Token) (selectors []Token, predicates []string) {
	for _, t := range tokens {
		if t.IsSelector() {
			selectors = append(selectors, t)
		} else {
			predicates = append(predicates, string(t))
		}
	}
	return selectors, predicates
}
