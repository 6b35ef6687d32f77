// Package catalog supplies fully formed collections and statistics to the
// cost model: schemas, document counts, candidate sharding keys with their
// cardinalities, and the named workload statistics the query templates use
// for selectivities. The operators never parse raw definitions themselves.
package catalog

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
)

// Entry is one catalog collection together with its analysis inputs.
type Entry struct {
	// Base is the collection without partitioning applied.
	Base collection.Collection
	// CandidateKeys maps each candidate sharding key to its distinct-value
	// count.
	CandidateKeys map[string]int64
	// ArrayItemCounts are the assumed array lengths for size estimation.
	ArrayItemCounts map[string]int64
}

// Sharded returns the collection partitioned on one of its candidate keys.
func (e Entry) Sharded(key string) (collection.Collection, error) {
	distinct, ok := e.CandidateKeys[key]
	if !ok {
		return collection.Collection{}, fmt.Errorf(
			"no candidate sharding key %q for collection %q: %w", key, e.Base.Name(), domain.ErrNotFound)
	}
	return e.Base.Resharded(key, distinct)
}

// Catalog is an immutable set of collections plus workload statistics.
type Catalog struct {
	entries map[string]Entry
	names   []string
	stats   map[string]int64
}

// New creates a Catalog from the given entries and statistics.
func New(entries []Entry, stats map[string]int64) (*Catalog, error) {
	byName := make(map[string]Entry, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Base.Name()
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("duplicate collection %q in catalog", name)
		}
		byName[name] = e
		names = append(names, name)
	}
	sort.Strings(names)

	copied := make(map[string]int64, len(stats))
	for k, v := range stats {
		copied[k] = v
	}
	return &Catalog{entries: byName, names: names, stats: copied}, nil
}

// Collection returns a catalog entry by collection name.
func (c *Catalog) Collection(name string) (Entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	return e, nil
}

// Collections returns all entries sorted by collection name.
func (c *Catalog) Collections() []Entry {
	entries := make([]Entry, 0, len(c.names))
	for _, name := range c.names {
		entries = append(entries, c.entries[name])
	}
	return entries
}

// CollectionCount returns the number of collections in the catalog.
func (c *Catalog) CollectionCount() int { return len(c.entries) }

// Statistic returns a named workload statistic.
func (c *Catalog) Statistic(key string) (int64, error) {
	v, ok := c.stats[key]
	if !ok {
		return 0, fmt.Errorf("statistic %q: %w", key, domain.ErrNotFound)
	}
	return v, nil
}
