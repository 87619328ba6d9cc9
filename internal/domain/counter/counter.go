// Package counter renders the "shown of total" count string.
package counter

import (
	"strconv"
	"strings"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = "n / N"

// Format substitutes the first "n" with shown and then the first "N" with total.
// Only the first occurrence of each is replaced; other text is kept as is.
func Format(format string, shown, total int) string {
	if format == "" {
		format = DefaultFormat
	}
	out := strings.Replace(format, "n", strconv.Itoa(shown), 1)
	return strings.Replace(out, "N", strconv.Itoa(total), 1)
}
