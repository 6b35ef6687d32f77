package filter

import (
	"testing"

	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/domain/schema"
	"github.com/kailas-cloud/shardcost/internal/usecase/costmodel"
	"github.com/kailas-cloud/shardcost/internal/usecase/size"
)

// stockSchema is the four-field schema used across the operator tests:
// three integers and one string.
func stockSchema(t *testing.T) *schema.Schema {
	t.Helper()
	fields := make([]schema.Field, 0, 4)
	for _, spec := range []struct {
		name string
		kind schema.Kind
	}{
		{"IDP", schema.Integer},
		{"IDW", schema.Integer},
		{"quantity", schema.Integer},
		{"location", schema.String},
	} {
		f, err := schema.NewField(spec.name, spec.kind, true)
		if err != nil {
			t.Fatalf("NewField(%s): %v", spec.name, err)
		}
		fields = append(fields, f)
	}
	s, err := schema.New("Stock", fields)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

// shardedStock is 20M documents sharded on IDP with 100k distinct values:
// 200 documents per shard value.
func shardedStock(t *testing.T) collection.Collection {
	t.Helper()
	c, err := collection.NewSharded("Stock", stockSchema(t), 20_000_000, "IDP", 100_000)
	if err != nil {
		t.Fatalf("NewSharded: %v", err)
	}
	return c
}

func unshardedStock(t *testing.T) collection.Collection {
	t.Helper()
	c, err := collection.New("Stock", stockSchema(t), 20_000_000)
	if err != nil {
		t.Fatalf("collection.New: %v", err)
	}
	return c
}

func testOperator(t *testing.T) *Operator {
	t.Helper()
	model, err := costmodel.New(costmodel.Defaults())
	if err != nil {
		t.Fatalf("costmodel.New: %v", err)
	}
	return New(model, size.NewCache())
}
