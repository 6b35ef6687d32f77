// Package size estimates document, collection and database sizes from a
// schema alone. Estimation is a pure function; no entity caches anything.
package size

import (
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/domain/schema"
)

// Byte sizes of the scalar field kinds and the per-element overheads of the
// document encoding.
const (
	IntegerSize    = 8
	NumberSize     = 8
	StringSize     = 80
	DateSize       = 20
	LongStringSize = 200

	// KeyValueOverhead is charged once per field, including object and array
	// fields themselves.
	KeyValueOverhead = 12
	// ArrayOverhead is charged once per array value on top of its items.
	ArrayOverhead = 12

	// DefaultArrayItems is assumed for array fields with no override in
	// the item counts.
	DefaultArrayItems = 1
)

var scalarSizes = map[schema.Kind]int64{
	schema.Integer:    IntegerSize,
	schema.Number:     NumberSize,
	schema.String:     StringSize,
	schema.Date:       DateSize,
	schema.LongString: LongStringSize,
}

// Document returns the estimated byte size of one document of the given
// schema. arrayItemCounts overrides the assumed item count per array field
// name; absent entries fall back to DefaultArrayItems. Total function: any
// well-formed schema yields a size, and the size always includes the
// per-field overhead even for empty nested objects.
func Document(s *schema.Schema, arrayItemCounts map[string]int64) int64 {
	var total int64
	for _, f := range s.Fields() {
		total += fieldSize(f, arrayItemCounts)
	}
	return total
}

func fieldSize(f schema.Field, arrayItemCounts map[string]int64) int64 {
	sz := int64(KeyValueOverhead)

	switch f.Kind() {
	case schema.Object:
		sz += Document(f.Nested(), arrayItemCounts)
	case schema.Array:
		count := int64(DefaultArrayItems)
		if n, ok := arrayItemCounts[f.Name()]; ok {
			count = n
		}
		sz += ArrayOverhead + count*Document(f.Items(), arrayItemCounts)
	default:
		sz += scalarSizes[f.Kind()]
	}
	return sz
}

// Collection returns the estimated total byte size of a collection.
func Collection(c collection.Collection, arrayItemCounts map[string]int64) int64 {
	return Document(c.Schema(), arrayItemCounts) * c.DocumentCount()
}

// Database returns the estimated total byte size of a set of collections.
func Database(cols []collection.Collection, arrayItemCounts map[string]int64) int64 {
	var total int64
	for _, c := range cols {
		total += Collection(c, arrayItemCounts)
	}
	return total
}
