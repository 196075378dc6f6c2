// Package entity holds the per-entity configuration: which shape roots an
// entity, its class URI, the namespace for minted subjects, and the
// declared attributes exposed over HTTP. Loaded once at startup and shared
// read-only across requests.
package entity

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tucfis/shexpose/errors"
)

// Attribute is one declared attribute of an entity: a public name and the
// relation path it resolves through, with an optional fragment-map alias.
type Attribute struct {
	Name  string   `yaml:"name"`
	Path  []string `yaml:"path"`
	Alias string   `yaml:"alias,omitempty"`
}

// Entity describes one exposed resource type.
type Entity struct {
	Name          string      `yaml:"-"`
	TypeURI       string      `yaml:"type"`
	RootShape     string      `yaml:"rootShape"`
	BaseNamespace string      `yaml:"baseNamespace"`
	Attributes    []Attribute `yaml:"attributes"`
}

// Attribute returns the declared attribute with the given public name, or
// nil when undeclared.
func (e *Entity) Attribute(name string) *Attribute {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			return &e.Attributes[i]
		}
	}
	return nil
}

// Registry is the set of configured entities.
type Registry struct {
	entities map[string]*Entity
}

// NewRegistry builds a registry from entities. Used by tests.
func NewRegistry(entities ...*Entity) *Registry {
	m := make(map[string]*Entity, len(entities))
	for _, e := range entities {
		m[e.Name] = e
	}
	return &Registry{entities: m}
}

type registryFile struct {
	Entities map[string]*Entity `yaml:"entities"`
}

// LoadRegistry reads the entity configuration file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read entity config %s", path)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse entity config %s", path)
	}
	if len(file.Entities) == 0 {
		return nil, errors.Newf("entity config %s declares no entities", path)
	}
	for name, e := range file.Entities {
		e.Name = name
		if e.RootShape == "" {
			return nil, errors.Newf("entity %s: rootShape is required", name)
		}
		if e.BaseNamespace == "" {
			return nil, errors.Newf("entity %s: baseNamespace is required", name)
		}
		if len(e.Attributes) == 0 {
			return nil, errors.Newf("entity %s declares no attributes", name)
		}
		seen := make(map[string]bool, len(e.Attributes))
		for _, attr := range e.Attributes {
			if attr.Name == "" || len(attr.Path) == 0 {
				return nil, errors.Newf("entity %s: every attribute needs a name and a non-empty path", name)
			}
			if seen[attr.Name] {
				return nil, errors.Newf("entity %s: duplicate attribute %s", name, attr.Name)
			}
			seen[attr.Name] = true
		}
	}
	return &Registry{entities: file.Entities}, nil
}

// Entity returns the configuration for an entity name, or nil.
func (r *Registry) Entity(name string) *Entity {
	return r.entities[name]
}

// Names returns the configured entity names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
