// Package schema holds the document schema value objects the size estimator
// and the operators work on. Schemas are immutable once constructed and own
// their fields: restricting a schema copies, it never aliases.
package schema

import "fmt"

// Kind is the value kind of a schema field.
type Kind string

// Field kind constants.
const (
	Integer    Kind = "integer"
	Number     Kind = "number"
	String     Kind = "string"
	Date       Kind = "date"
	LongString Kind = "longstring"
	Object     Kind = "object"
	Array      Kind = "array"
)

// IsValid checks if the kind is supported.
func (k Kind) IsValid() bool {
	switch k {
	case Integer, Number, String, Date, LongString, Object, Array:
		return true
	}
	return false
}

// Field is an immutable value object describing one document field.
// Object fields carry a nested schema, array fields an item schema.
type Field struct {
	name     string
	kind     Kind
	required bool
	nested   *Schema
	items    *Schema
}

// NewField validates and creates a scalar Field (integer, number, string,
// date or longstring).
func NewField(name string, kind Kind, required bool) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if !kind.IsValid() {
		return Field{}, fmt.Errorf("invalid field kind %q for %q", kind, name)
	}
	if kind == Object {
		return Field{}, fmt.Errorf("object field %q requires a nested schema, use NewObjectField", name)
	}
	if kind == Array {
		return Field{}, fmt.Errorf("array field %q requires an item schema, use NewArrayField", name)
	}
	return Field{name: name, kind: kind, required: required}, nil
}

// NewObjectField creates a Field holding a nested document.
func NewObjectField(name string, required bool, nested *Schema) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if nested == nil {
		return Field{}, fmt.Errorf("object field %q requires a nested schema", name)
	}
	return Field{name: name, kind: Object, required: required, nested: nested}, nil
}

// NewArrayField creates a Field holding an array of documents.
func NewArrayField(name string, required bool, items *Schema) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if items == nil {
		return Field{}, fmt.Errorf("array field %q requires an item schema", name)
	}
	return Field{name: name, kind: Array, required: required, items: items}, nil
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Kind returns the field kind.
func (f Field) Kind() Kind { return f.kind }

// Required reports whether the field is mandatory in a document.
func (f Field) Required() bool { return f.required }

// Nested returns the nested schema of an object field, nil otherwise.
func (f Field) Nested() *Schema { return f.nested }

// Items returns the item schema of an array field, nil otherwise.
func (f Field) Items() *Schema { return f.items }

// Schema is an ordered set of uniquely named fields. Order is preserved for
// stable output but carries no meaning.
type Schema struct {
	name   string
	fields []Field
	byName map[string]int
}

// New validates and creates a Schema. Field names must be unique.
func New(name string, fields []Field) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is required")
	}
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := byName[f.name]; dup {
			return nil, fmt.Errorf("duplicate field name %q in schema %q", f.name, name)
		}
		byName[f.name] = i
	}
	return &Schema{name: name, fields: append([]Field(nil), fields...), byName: byName}, nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the fields in declaration order. The returned slice is a
// copy.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Has reports whether a field with the given name exists.
func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Restrict returns a new schema containing only the named fields, in the
// order given, dropping duplicates. Every name must exist in the schema.
func (s *Schema) Restrict(names []string) (*Schema, error) {
	fields := make([]Field, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		f, ok := s.Field(name)
		if !ok {
			return nil, fmt.Errorf("field %q not in schema %q", name, s.name)
		}
		seen[name] = true
		fields = append(fields, f)
	}
	return New(s.name+"_projection", fields)
}
