package selector

import (
	"strings"
	"sync"

	"github.com/kailas-cloud/itemfilter/internal/domain/item"
)

// DefaultCacheSize bounds the number of parsed selectors a Matcher keeps.
const DefaultCacheSize = 1024

type compiled struct {
	sel Selector
	ok  bool
}

// Matcher matches items against selector strings, caching parsed selectors.
// Invalid selectors never match. Safe for concurrent use.
type Matcher struct {
	mu    sync.RWMutex
	cache map[string]compiled
	limit int
}

// NewMatcher creates a Matcher caching up to limit selectors (DefaultCacheSize if <= 0).
func NewMatcher(limit int) *Matcher {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	return &Matcher{cache: make(map[string]compiled), limit: limit}
}

// Matches reports whether it matches selector.
func (m *Matcher) Matches(it item.Item, selector string) bool {
	c := m.compile(selector)
	return c.ok && c.sel.Match(it)
}

func (m *Matcher) compile(src string) compiled {
	m.mu.RLock()
	c, hit := m.cache[src]
	m.mu.RUnlock()
	if hit {
		return c
	}

	sel, err := Parse(src)
	c = compiled{sel: sel, ok: err == nil}

	m.mu.Lock()
	if len(m.cache) < m.limit {
		m.cache[src] = c
	}
	m.mu.Unlock()
	return c
}

// Extractor reads sort keys from item fields.
type Extractor struct{}

// ExtractKey returns the text a sort selector points at: ".price" and "price" both
// read field "price". Missing fields yield "".
func (Extractor) ExtractKey(it item.Item, selector string) string {
	name := strings.TrimSpace(selector)
	if v, ok := it.Field(strings.TrimPrefix(name, ".")); ok {
		return v
	}
	if v, ok := it.Field(name); ok {
		return v
	}
	return ""
}
