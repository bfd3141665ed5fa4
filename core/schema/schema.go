// Package schema describes document types for the persistence layer: an
// ordered mapping of field paths to definitions, a mirrored path tree for
// nested bookkeeping, and a registry of lifecycle hooks that collection
// operations run against. A Schema is a mutable handle owned by the caller;
// it is expected to be fully configured during a single-threaded setup phase
// before any concurrent document operations begin.
package schema

import (
	"fmt"
	"strings"
)

// FieldType represents the basic field types supported by the schema system.
type FieldType string

const (
	FieldTypeString  FieldType = "string"  // Text data
	FieldTypeNumber  FieldType = "number"  // Numeric data
	FieldTypeInteger FieldType = "integer" // Whole numbers
	FieldTypeBoolean FieldType = "boolean" // True/false values
)

// Document is a single record keyed by field path.
type Document map[string]any

// FieldOptions holds the behavioral flags of a field.
type FieldOptions struct {
	// CaseInsensitive requests a case-normalized shadow for this field.
	// It is read by the shadow installer, not by the schema itself.
	CaseInsensitive bool `json:"caseInsensitive,omitempty"`
	// Lowercase folds string values to lower case when a document is written.
	Lowercase bool `json:"lowercase,omitempty"`
	// Select controls whether the field appears in default query projections.
	// Nil means included.
	Select *bool `json:"select,omitempty"`
}

// Selected reports whether the field is part of the default projection.
func (o FieldOptions) Selected() bool {
	return o.Select == nil || *o.Select
}

// FieldDefinition describes one field of a schema.
type FieldDefinition struct {
	// Path is the field's own identity within the schema. It is maintained
	// by Schema.AddField and always matches the key the definition is
	// registered under.
	Path        string       `json:"path"`
	Type        FieldType    `json:"type"`
	Required    *bool        `json:"required,omitempty"`
	Unique      *bool        `json:"unique,omitempty"`
	Default     any          `json:"default,omitempty"`
	Description *string      `json:"description,omitempty"`
	Options     FieldOptions `json:"options,omitempty"`
}

// Clone returns a deep copy of the definition. Pointer-valued fields are
// duplicated so that patching the copy never mutates the original.
func (f *FieldDefinition) Clone() *FieldDefinition {
	if f == nil {
		return nil
	}
	clone := *f
	if f.Required != nil {
		v := *f.Required
		clone.Required = &v
	}
	if f.Unique != nil {
		v := *f.Unique
		clone.Unique = &v
	}
	if f.Description != nil {
		v := *f.Description
		clone.Description = &v
	}
	if f.Options.Select != nil {
		v := *f.Options.Select
		clone.Options.Select = &v
	}
	return &clone
}

// Schema is a mutable description of a document type.
type Schema struct {
	Name    string
	Version string

	paths  []string
	fields map[string]*FieldDefinition
	tree   map[string]any
	hooks  map[HookEvent][]any
}

// New creates an empty schema with the given name and version.
func New(name string, version string) *Schema {
	return &Schema{
		Name:    name,
		Version: version,
		fields:  make(map[string]*FieldDefinition),
		tree:    make(map[string]any),
		hooks:   make(map[HookEvent][]any),
	}
}

// AddField registers a field definition under the given path. The
// definition's Path identity is overwritten with the registered name, and
// the path tree is mirrored. Registering a path twice is an error.
func (s *Schema) AddField(name string, def *FieldDefinition) error {
	if name == "" {
		return fmt.Errorf("schema %q: field name cannot be empty", s.Name)
	}
	if def == nil {
		return fmt.Errorf("schema %q: definition for field %q cannot be nil", s.Name, name)
	}
	if _, exists := s.fields[name]; exists {
		return fmt.Errorf("schema %q: field %q is already defined", s.Name, name)
	}

	def.Path = name
	s.fields[name] = def
	s.paths = append(s.paths, name)
	s.mirror(name, def)
	return nil
}

// mirror inserts the definition into the path tree, nesting on "." segments.
func (s *Schema) mirror(name string, def *FieldDefinition) {
	segments := strings.Split(name, ".")
	node := s.tree
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = def
}

// Path returns the definition registered under the given name, or nil.
func (s *Schema) Path(name string) *FieldDefinition {
	return s.fields[name]
}

// HasPath reports whether a field is registered under the given name.
func (s *Schema) HasPath(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Paths returns the registered field names in insertion order. The returned
// slice is a snapshot; mutating the schema during iteration is safe.
func (s *Schema) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Tree returns the mirrored path tree. Interior nodes are map[string]any
// keyed by path segment; leaves are *FieldDefinition. The returned map is
// the live tree, not a copy.
func (s *Schema) Tree() map[string]any {
	return s.tree
}
