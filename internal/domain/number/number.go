// Package number parses the leading numeric part of display text.
package number

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads the longest decimal number at the start of text, after leading
// whitespace ("12.5 kg" → 12.5, "-3e2x" → -300, "Infinity" → +Inf).
// Text without a numeric prefix yields NaN.
func Parse(text string) float64 {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)

	for _, inf := range []string{"Infinity", "+Infinity", "-Infinity"} {
		if strings.HasPrefix(s, inf) {
			if inf[0] == '-' {
				return math.Inf(-1)
			}
			return math.Inf(1)
		}
	}

	end := prefixLen(s)
	if end == 0 {
		return math.NaN()
	}
	// The prefix is well formed, so only range errors remain and ParseFloat
	// already returns ±Inf or 0 for those.
	v, _ := strconv.ParseFloat(s[:end], 64)
	return v
}

// prefixLen returns the length of the longest valid decimal literal prefix of s.
func prefixLen(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
