package join

import (
	"testing"

	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/domain/schema"
	"github.com/kailas-cloud/shardcost/internal/usecase/costmodel"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
	"github.com/kailas-cloud/shardcost/internal/usecase/size"
)

func buildSchema(t *testing.T, name string, fields map[string]schema.Kind, order []string) *schema.Schema {
	t.Helper()
	built := make([]schema.Field, 0, len(order))
	for _, fieldName := range order {
		f, err := schema.NewField(fieldName, fields[fieldName], true)
		if err != nil {
			t.Fatalf("NewField(%s): %v", fieldName, err)
		}
		built = append(built, f)
	}
	s, err := schema.New(name, built)
	if err != nil {
		t.Fatalf("schema.New(%s): %v", name, err)
	}
	return s
}

func stockSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return buildSchema(t, "Stock", map[string]schema.Kind{
		"IDP":      schema.Integer,
		"IDW":      schema.Integer,
		"quantity": schema.Integer,
		"location": schema.String,
	}, []string{"IDP", "IDW", "quantity", "location"})
}

func productSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return buildSchema(t, "Product", map[string]schema.Kind{
		"IDP":   schema.Integer,
		"name":  schema.String,
		"brand": schema.String,
		"price": schema.Number,
	}, []string{"IDP", "name", "brand", "price"})
}

func stockOn(t *testing.T, key string, distinct int64) collection.Collection {
	t.Helper()
	c, err := collection.NewSharded("Stock", stockSchema(t), 20_000_000, key, distinct)
	if err != nil {
		t.Fatalf("NewSharded(Stock): %v", err)
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

func unshardedProduct(t *testing.T) collection.Collection {
	t.Helper()
	c, err := collection.New("Product", productSchema(t), 100_000)
	if err != nil {
		t.Fatalf("collection.New(Product): %v", err)
	}
	return c
}

func operatorWith(t *testing.T, consts costmodel.Constants) *Operator {
	t.Helper()
	model, err := costmodel.New(consts)
	if err != nil {
		t.Fatalf("costmodel.New: %v", err)
	}
	sizes := size.NewCache()
	return New(model, sizes, filter.New(model, sizes))
}

func testOperator(t *testing.T) *Operator {
	t.Helper()
	return operatorWith(t, costmodel.Defaults())
}
