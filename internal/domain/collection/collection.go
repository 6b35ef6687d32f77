// Package collection holds the sharded collection aggregate: a schema plus
// the catalog statistics (document count, sharding key cardinality) the cost
// model estimates against.
package collection

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/shardcost/internal/domain/schema"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Collection is an immutable value object describing one sharded document
// collection. Operators read it, never mutate it.
type Collection struct {
	name                string
	schema              *schema.Schema
	documentCount       int64
	shardingKey         string
	distinctShardValues int64
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// New validates and creates an unsharded Collection.
func New(name string, sch *schema.Schema, documentCount int64) (Collection, error) {
	if err := validateName(name); err != nil {
		return Collection{}, err
	}
	if sch == nil {
		return Collection{}, fmt.Errorf("collection %q requires a schema", name)
	}
	if documentCount < 0 {
		return Collection{}, fmt.Errorf("collection %q document count must be >= 0, got %d", name, documentCount)
	}
	return Collection{name: name, schema: sch, documentCount: documentCount}, nil
}

// NewSharded validates and creates a Collection partitioned on shardingKey.
// The key must exist in the schema and cannot have more distinct values than
// there are documents.
func NewSharded(name string, sch *schema.Schema, documentCount int64, shardingKey string, distinctShardValues int64) (Collection, error) {
	c, err := New(name, sch, documentCount)
	if err != nil {
		return Collection{}, err
	}
	if shardingKey == "" {
		return Collection{}, fmt.Errorf("collection %q sharding key is required", name)
	}
	if !sch.Has(shardingKey) {
		return Collection{}, fmt.Errorf("sharding key %q not in schema of collection %q", shardingKey, name)
	}
	if distinctShardValues < 1 {
		return Collection{}, fmt.Errorf("collection %q distinct shard values must be >= 1, got %d", name, distinctShardValues)
	}
	if distinctShardValues > documentCount {
		return Collection{}, fmt.Errorf(
			"collection %q sharding key %q has %d distinct values for %d documents",
			name, shardingKey, distinctShardValues, documentCount,
		)
	}
	c.shardingKey = shardingKey
	c.distinctShardValues = distinctShardValues
	return c, nil
}

// Resharded returns a copy of the collection partitioned on a different key.
// Used to evaluate alternative sharding strategies over the same data.
func (c Collection) Resharded(shardingKey string, distinctShardValues int64) (Collection, error) {
	return NewSharded(c.name, c.schema, c.documentCount, shardingKey, distinctShardValues)
}

// Unsharded returns a copy of the collection with no partitioning.
func (c Collection) Unsharded() Collection {
	c.shardingKey = ""
	c.distinctShardValues = 0
	return c
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// Schema returns the document schema.
func (c Collection) Schema() *schema.Schema { return c.schema }

// DocumentCount returns the number of documents in the collection.
func (c Collection) DocumentCount() int64 { return c.documentCount }

// Sharded reports whether the collection is partitioned.
func (c Collection) Sharded() bool { return c.shardingKey != "" }

// ShardingKey returns the partitioning field name, empty if unsharded.
func (c Collection) ShardingKey() string { return c.shardingKey }

// DistinctShardValues returns the sharding key cardinality, 0 if unsharded.
func (c Collection) DistinctShardValues() int64 { return c.distinctShardValues }
