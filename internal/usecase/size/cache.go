package size

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kailas-cloud/shardcost/internal/domain/schema"
)

type cacheKey struct {
	schema *schema.Schema
	counts string
}

// Cache memoizes Document results keyed by schema identity and the array
// item counts. It lives outside the entities: a Collection stays a plain
// value and two caches never interfere.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]int64
}

// NewCache creates an empty memo cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]int64)}
}

// Document returns the memoized document size, computing it on first use.
func (c *Cache) Document(s *schema.Schema, arrayItemCounts map[string]int64) int64 {
	key := cacheKey{schema: s, counts: countsKey(arrayItemCounts)}

	c.mu.Lock()
	defer c.mu.Unlock()
	if sz, ok := c.entries[key]; ok {
		return sz
	}
	sz := Document(s, arrayItemCounts)
	c.entries[key] = sz
	return sz
}

// Len returns the number of memoized entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// countsKey canonicalizes the overrides map so that equal maps produce equal
// keys regardless of insertion order.
func countsKey(counts map[string]int64) string {
	if len(counts) == 0 {
		return ""
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatInt(counts[name], 10))
	}
	return b.String()
}
