package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/domain/schema"
)

type catalogYAML struct {
	Statistics  map[string]int64 `yaml:"statistics"`
	Collections []collectionYAML `yaml:"collections"`
}

type collectionYAML struct {
	Name            string           `yaml:"name"`
	DocumentCount   int64            `yaml:"document_count"`
	ShardingKeys    map[string]int64 `yaml:"sharding_keys"`
	ArrayItemCounts map[string]int64 `yaml:"array_item_counts"`
	Schema          []fieldYAML      `yaml:"schema"`
}

type fieldYAML struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	// Required defaults to true when omitted.
	Required *bool       `yaml:"required"`
	Fields   []fieldYAML `yaml:"fields"`
	Items    []fieldYAML `yaml:"items"`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var raw catalogYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(raw.Collections) == 0 {
		return nil, fmt.Errorf("catalog declares no collections: %w", domain.ErrInvalidSchema)
	}

	entries := make([]Entry, 0, len(raw.Collections))
	for _, rc := range raw.Collections {
		entry, err := buildEntry(rc)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", rc.Name, err)
		}
		entries = append(entries, entry)
	}
	return New(entries, raw.Statistics)
}

func buildEntry(rc collectionYAML) (Entry, error) {
	sch, err := buildSchema(rc.Name, rc.Schema)
	if err != nil {
		return Entry{}, err
	}

	base, err := collection.New(rc.Name, sch, rc.DocumentCount)
	if err != nil {
		return Entry{}, err
	}

	// Validate candidate keys eagerly so a broken catalog fails at load, not
	// mid-comparison.
	for key, distinct := range rc.ShardingKeys {
		if _, err := base.Resharded(key, distinct); err != nil {
			return Entry{}, fmt.Errorf("candidate sharding key %q: %w", key, err)
		}
	}

	return Entry{
		Base:            base,
		CandidateKeys:   rc.ShardingKeys,
		ArrayItemCounts: rc.ArrayItemCounts,
	}, nil
}

func buildSchema(name string, fields []fieldYAML) (*schema.Schema, error) {
	built := make([]schema.Field, 0, len(fields))
	for _, rf := range fields {
		f, err := buildField(rf)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
		}
		built = append(built, f)
	}
	return schema.New(name, built)
}

func buildField(rf fieldYAML) (schema.Field, error) {
	required := true
	if rf.Required != nil {
		required = *rf.Required
	}
	kind := schema.Kind(rf.Kind)

	switch kind {
	case schema.Object:
		nested, err := buildSchema(rf.Name, rf.Fields)
		if err != nil {
			return schema.Field{}, err
		}
		return schema.NewObjectField(rf.Name, required, nested)
	case schema.Array:
		items, err := buildSchema(rf.Name+"_item", rf.Items)
		if err != nil {
			return schema.Field{}, err
		}
		return schema.NewArrayField(rf.Name, required, items)
	default:
		return schema.NewField(rf.Name, kind, required)
	}
}
