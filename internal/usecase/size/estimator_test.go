package size

import (
	"testing"

	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/domain/schema"
)

func scalarField(t *testing.T, name string, kind schema.Kind) schema.Field {
	t.Helper()
	f, err := schema.NewField(name, kind, true)
	if err != nil {
		t.Fatalf("NewField(%s): %v", name, err)
	}
	return f
}

func mustSchema(t *testing.T, name string, fields ...schema.Field) *schema.Schema {
	t.Helper()
	s, err := schema.New(name, fields)
	if err != nil {
		t.Fatalf("schema.New(%s): %v", name, err)
	}
	return s
}

func TestDocument_ScalarKinds(t *testing.T) {
	s := mustSchema(t, "Product",
		scalarField(t, "IDP", schema.Integer),
		scalarField(t, "price", schema.Number),
		scalarField(t, "name", schema.String),
		scalarField(t, "created", schema.Date),
		scalarField(t, "description", schema.LongString),
	)

	// 5 fields x 12 overhead + 8 + 8 + 80 + 20 + 200
	want := int64(5*KeyValueOverhead + IntegerSize + NumberSize + StringSize + DateSize + LongStringSize)
	if got := Document(s, nil); got != want {
		t.Errorf("expected %d bytes, got %d", want, got)
	}
}

func TestDocument_NestedObject(t *testing.T) {
	address := mustSchema(t, "address",
		scalarField(t, "street", schema.String),
		scalarField(t, "city", schema.String),
	)
	addressField, err := schema.NewObjectField("address", true, address)
	if err != nil {
		t.Fatalf("NewObjectField: %v", err)
	}
	s := mustSchema(t, "Client", addressField)

	// object overhead + two nested string fields
	want := int64(KeyValueOverhead + 2*(KeyValueOverhead+StringSize))
	if got := Document(s, nil); got != want {
		t.Errorf("expected %d bytes, got %d", want, got)
	}
}

func TestDocument_ArrayItemCounts(t *testing.T) {
	item := mustSchema(t, "tags_item", scalarField(t, "value", schema.String))
	tags, err := schema.NewArrayField("tags", true, item)
	if err != nil {
		t.Fatalf("NewArrayField: %v", err)
	}
	s := mustSchema(t, "Product", tags)

	itemSize := int64(KeyValueOverhead + StringSize)

	// Default item count is 1.
	want := int64(KeyValueOverhead + ArrayOverhead + DefaultArrayItems*itemSize)
	if got := Document(s, nil); got != want {
		t.Errorf("expected %d bytes with default count, got %d", want, got)
	}

	// Override charges count times the item document.
	want = int64(KeyValueOverhead+ArrayOverhead) + 3*itemSize
	if got := Document(s, map[string]int64{"tags": 3}); got != want {
		t.Errorf("expected %d bytes with count=3, got %d", want, got)
	}
}

func TestCollection(t *testing.T) {
	s := mustSchema(t, "Stock",
		scalarField(t, "IDP", schema.Integer),
		scalarField(t, "quantity", schema.Integer),
	)
	col, err := collection.New("Stock", s, 1000)
	if err != nil {
		t.Fatalf("collection.New: %v", err)
	}

	docSize := Document(s, nil)
	if got := Collection(col, nil); got != docSize*1000 {
		t.Errorf("expected %d bytes, got %d", docSize*1000, got)
	}
}

func TestDatabase(t *testing.T) {
	s := mustSchema(t, "Stock", scalarField(t, "IDP", schema.Integer))
	a, err := collection.New("A", s, 10)
	if err != nil {
		t.Fatalf("collection.New: %v", err)
	}
	b, err := collection.New("B", s, 5)
	if err != nil {
		t.Fatalf("collection.New: %v", err)
	}

	docSize := Document(s, nil)
	want := docSize*10 + docSize*5
	if got := Database([]collection.Collection{a, b}, nil); got != want {
		t.Errorf("expected %d bytes, got %d", want, got)
	}
}

func TestCache_Memoizes(t *testing.T) {
	s := mustSchema(t, "Product",
		scalarField(t, "IDP", schema.Integer),
		scalarField(t, "name", schema.String),
	)

	c := NewCache()
	first := c.Document(s, nil)
	second := c.Document(s, nil)

	if first != second {
		t.Errorf("expected stable size, got %d then %d", first, second)
	}
	if first != Document(s, nil) {
		t.Errorf("expected cached size to equal direct estimate")
	}
	if c.Len() != 1 {
		t.Errorf("expected one cache entry, got %d", c.Len())
	}
}

func TestCache_KeyedByItemCounts(t *testing.T) {
	item := mustSchema(t, "tags_item", scalarField(t, "value", schema.String))
	tags, err := schema.NewArrayField("tags", true, item)
	if err != nil {
		t.Fatalf("NewArrayField: %v", err)
	}
	s := mustSchema(t, "Product", tags)

	c := NewCache()
	one := c.Document(s, map[string]int64{"tags": 1})
	five := c.Document(s, map[string]int64{"tags": 5})

	if one == five {
		t.Error("expected different sizes for different item counts")
	}
	if c.Len() != 2 {
		t.Errorf("expected two cache entries, got %d", c.Len())
	}

	// Same counts in a fresh map hit the same entry.
	if got := c.Document(s, map[string]int64{"tags": 5}); got != five {
		t.Errorf("expected cache hit to return %d, got %d", five, got)
	}
	if c.Len() != 2 {
		t.Errorf("expected still two cache entries, got %d", c.Len())
	}
}
