package catalog

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/shardcost/internal/domain"
)

const testCatalog = `
statistics:
  num_products: 1000
  num_brands: 50

collections:
  - name: Product
    document_count: 1000
    sharding_keys:
      IDP: 1000
      brand: 50
    schema:
      - name: IDP
        kind: integer
      - name: name
        kind: string
      - name: brand
        kind: string
      - name: description
        kind: longstring
        required: false

  - name: Warehouse
    document_count: 10
    schema:
      - name: IDW
        kind: integer
      - name: address
        kind: object
        fields:
          - name: city
            kind: string
`

func parseTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestParse(t *testing.T) {
	c := parseTestCatalog(t)

	if c.CollectionCount() != 2 {
		t.Fatalf("expected 2 collections, got %d", c.CollectionCount())
	}

	entry, err := c.Collection("Product")
	if err != nil {
		t.Fatalf("Collection(Product): %v", err)
	}
	if entry.Base.DocumentCount() != 1000 {
		t.Errorf("expected 1000 documents, got %d", entry.Base.DocumentCount())
	}
	if entry.Base.Sharded() {
		t.Error("expected base collection unsharded")
	}
	if !entry.Base.Schema().Has("description") {
		t.Error("expected description field in schema")
	}
	f, _ := entry.Base.Schema().Field("description")
	if f.Required() {
		t.Error("expected description optional")
	}

	warehouse, err := c.Collection("Warehouse")
	if err != nil {
		t.Fatalf("Collection(Warehouse): %v", err)
	}
	addr, ok := warehouse.Base.Schema().Field("address")
	if !ok || addr.Nested() == nil || !addr.Nested().Has("city") {
		t.Error("expected nested address object with city")
	}
}

func TestParse_Statistics(t *testing.T) {
	c := parseTestCatalog(t)

	n, err := c.Statistic("num_brands")
	if err != nil {
		t.Fatalf("Statistic: %v", err)
	}
	if n != 50 {
		t.Errorf("expected 50, got %d", n)
	}

	_, err = c.Statistic("num_clients")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntry_Sharded(t *testing.T) {
	c := parseTestCatalog(t)
	entry, err := c.Collection("Product")
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}

	col, err := entry.Sharded("brand")
	if err != nil {
		t.Fatalf("Sharded: %v", err)
	}
	if col.ShardingKey() != "brand" || col.DistinctShardValues() != 50 {
		t.Errorf("expected brand/50, got %s/%d", col.ShardingKey(), col.DistinctShardValues())
	}

	_, err = entry.Sharded("name")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-candidate key, got %v", err)
	}
}

func TestCollection_Unknown(t *testing.T) {
	c := parseTestCatalog(t)
	_, err := c.Collection("Client")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCollections_SortedByName(t *testing.T) {
	entries := parseTestCatalog(t).Collections()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Base.Name() != "Product" || entries[1].Base.Name() != "Warehouse" {
		t.Errorf("expected [Product Warehouse], got [%s %s]", entries[0].Base.Name(), entries[1].Base.Name())
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"empty", "collections: []"},
		{"bad kind", `
collections:
  - name: Product
    document_count: 10
    schema:
      - name: IDP
        kind: float
`},
		{"candidate key outside schema", `
collections:
  - name: Product
    document_count: 10
    sharding_keys:
      IDW: 5
    schema:
      - name: IDP
        kind: integer
`},
		{"candidate cardinality above count", `
collections:
  - name: Product
    document_count: 10
    sharding_keys:
      IDP: 20
    schema:
      - name: IDP
        kind: integer
`},
		{"duplicate collection", `
collections:
  - name: Product
    document_count: 10
    schema:
      - name: IDP
        kind: integer
  - name: Product
    document_count: 10
    schema:
      - name: IDP
        kind: integer
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
