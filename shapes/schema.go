// Package shapes models the shape schema that describes graph entities:
// which relations an entity carries, their cardinalities, and whether each
// relation ends in a literal value or references another shape.
//
// The schema is produced offline by the class-definition compiler and loaded
// once at startup. It is immutable after load and safe for unsynchronized
// concurrent reads.
package shapes

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tucfis/shexpose/errors"
)

// Unbounded marks a max cardinality with no upper limit (multi-valued).
const Unbounded = -1

// Cardinality is an upper or lower bound on the number of values a relation
// may carry. In schema files "unbounded" (or "*") denotes no upper limit.
type Cardinality int

// UnmarshalYAML accepts either an integer or the literal "unbounded" / "*".
func (c *Cardinality) UnmarshalYAML(node *yaml.Node) error {
	var asInt int
	if err := node.Decode(&asInt); err == nil {
		*c = Cardinality(asInt)
		return nil
	}
	var asString string
	if err := node.Decode(&asString); err != nil {
		return errors.Wrap(err, "invalid cardinality")
	}
	switch asString {
	case "unbounded", "*":
		*c = Unbounded
	default:
		return errors.Newf("invalid cardinality %q", asString)
	}
	return nil
}

// PropertyConstraint declares one relation of a shape. Exactly one of
// Datatype (literal leaf), Node (reference to another shape), or NodeKind
// "IRI" (URI-valued leaf) is set.
type PropertyConstraint struct {
	Path     string      `yaml:"path"`
	MinCount Cardinality `yaml:"minCount"`
	MaxCount Cardinality `yaml:"maxCount"`
	Datatype string      `yaml:"datatype,omitempty"`
	Node     string      `yaml:"node,omitempty"`
	NodeKind string      `yaml:"nodeKind,omitempty"`
}

// IsReference reports whether this constraint points at another shape.
func (pc *PropertyConstraint) IsReference() bool {
	return pc.Node != ""
}

// Multivalued reports whether this constraint allows more than one value.
func (pc *PropertyConstraint) Multivalued() bool {
	return pc.MaxCount == Unbounded || pc.MaxCount > 1
}

// Shape is one named shape declaration: an ordered list of property
// constraints.
type Shape struct {
	Name        string               `yaml:"-"`
	TargetClass string               `yaml:"targetClass,omitempty"`
	Properties  []PropertyConstraint `yaml:"properties"`
}

// Constraint returns the constraint for a relation IRI, or nil if the shape
// does not declare it.
func (s *Shape) Constraint(relation string) *PropertyConstraint {
	for i := range s.Properties {
		if s.Properties[i].Path == relation {
			return &s.Properties[i]
		}
	}
	return nil
}

// Schema is the full set of named shape declarations. Immutable after load.
type Schema struct {
	shapes map[string]*Shape
}

// NewSchema builds a schema from individual shapes. Used by tests and by
// callers that assemble shapes programmatically.
func NewSchema(shapes ...*Shape) *Schema {
	m := make(map[string]*Shape, len(shapes))
	for _, sh := range shapes {
		m[sh.Name] = sh
	}
	return &Schema{shapes: m}
}

// Shape returns the named shape, or nil if not declared.
func (s *Schema) Shape(name string) *Shape {
	return s.shapes[name]
}

// ShapeCount returns the number of declared shapes.
func (s *Schema) ShapeCount() int {
	return len(s.shapes)
}

type schemaFile struct {
	Shapes map[string]*Shape `yaml:"shapes"`
}

// Load reads a shape schema file produced by the offline compiler.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema file %s", path)
	}
	return Parse(data)
}

// Parse decodes a shape schema from YAML bytes. Datatype abbreviations
// (xsd:, rdf:) are expanded to absolute IRIs.
func Parse(data []byte) (*Schema, error) {
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse schema")
	}
	if len(file.Shapes) == 0 {
		return nil, errors.New("schema declares no shapes")
	}
	schema := &Schema{shapes: make(map[string]*Shape, len(file.Shapes))}
	for name, sh := range file.Shapes {
		sh.Name = name
		for i := range sh.Properties {
			pc := &sh.Properties[i]
			if pc.Path == "" {
				return nil, errors.Newf("shape %s: property %d has no path", name, i)
			}
			pc.Datatype = ExpandDatatype(pc.Datatype)
			if pc.Datatype != "" && pc.Node != "" {
				return nil, errors.Newf("shape %s: relation %s declares both datatype and node", name, pc.Path)
			}
		}
		schema.shapes[name] = sh
	}
	// References must resolve within the schema
	for name, sh := range schema.shapes {
		for i := range sh.Properties {
			pc := &sh.Properties[i]
			if pc.Node != "" && schema.shapes[pc.Node] == nil {
				return nil, errors.Newf("shape %s: relation %s references undeclared shape %s", name, pc.Path, pc.Node)
			}
		}
	}
	return schema, nil
}
