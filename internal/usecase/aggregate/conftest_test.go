package aggregate

import (
	"testing"

	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/domain/schema"
	"github.com/kailas-cloud/shardcost/internal/usecase/costmodel"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
	"github.com/kailas-cloud/shardcost/internal/usecase/size"
)

func orderLineSchema(t *testing.T) *schema.Schema {
	t.Helper()
	fields := make([]schema.Field, 0, 4)
	for _, spec := range []struct {
		name string
		kind schema.Kind
	}{
		{"IDP", schema.Integer},
		{"IDC", schema.Integer},
		{"date", schema.Date},
		{"quantity", schema.Integer},
	} {
		f, err := schema.NewField(spec.name, spec.kind, true)
		if err != nil {
			t.Fatalf("NewField(%s): %v", spec.name, err)
		}
		fields = append(fields, f)
	}
	s, err := schema.New("OrderLine", fields)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

func productSchema(t *testing.T) *schema.Schema {
	t.Helper()
	fields := make([]schema.Field, 0, 3)
	for _, spec := range []struct {
		name string
		kind schema.Kind
	}{
		{"IDP", schema.Integer},
		{"name", schema.String},
		{"brand", schema.String},
		{"price", schema.Number},
	} {
		f, err := schema.NewField(spec.name, spec.kind, true)
		if err != nil {
			t.Fatalf("NewField(%s): %v", spec.name, err)
		}
		fields = append(fields, f)
	}
	s, err := schema.New("Product", fields)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

func orderLinesOn(t *testing.T, key string, distinct int64) collection.Collection {
	t.Helper()
	c, err := collection.NewSharded("OrderLine", orderLineSchema(t), 1_000_000, key, distinct)
	if err != nil {
		t.Fatalf("NewSharded(OrderLine): %v", err)
	}
	return c
}

func productOn(t *testing.T, key string, distinct int64) collection.Collection {
	t.Helper()
	c, err := collection.NewSharded("Product", productSchema(t), 100_000, key, distinct)
	if err != nil {
		t.Fatalf("NewSharded(Product): %v", err)
	}
	return c
}

func testOperator(t *testing.T) *Operator {
	t.Helper()
	model, err := costmodel.New(costmodel.Defaults())
	if err != nil {
		t.Fatalf("costmodel.New: %v", err)
	}
	return New(model, filter.New(model, size.NewCache()))
}
