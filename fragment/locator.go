// Package fragment handles schema fragments: locating which fragment
// declares a given attribute path, loading the precompiled
// graph-construction query for each fragment, and merging independently
// fetched fragment serializations into one coherent body.
package fragment

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tucfis/shexpose/errors"
)

// PathKey joins absolute relation identifiers into the lookup key used by
// the offline-built path map.
func PathKey(relations []string) string {
	return strings.Join(relations, "|")
}

// Locator resolves (entity, attribute path) to the fragment identifier
// that declares the path. The map is built offline by the schema compiler;
// a declared attribute without an entry is a configuration error, caught
// at startup rather than per request.
type Locator struct {
	entries map[string]map[string]string
}

// NewLocator builds a locator from an entity → (alias or path key →
// fragment id) map.
func NewLocator(entries map[string]map[string]string) *Locator {
	return &Locator{entries: entries}
}

type locatorFile struct {
	Entities map[string]map[string]string `yaml:"entities"`
}

// LoadLocator reads the offline-built path→fragment map.
func LoadLocator(path string) (*Locator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read fragment map %s", path)
	}
	var file locatorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse fragment map %s", path)
	}
	if len(file.Entities) == 0 {
		return nil, errors.Newf("fragment map %s declares no entities", path)
	}
	return NewLocator(file.Entities), nil
}

// Resolve returns the fragment id declaring the given path for the entity.
// When the path was configured with a custom alias the map is keyed by that
// alias, otherwise by the pipe-joined relation identifiers. Returns "" if
// the path is undeclared.
func (l *Locator) Resolve(entityName, alias string, relations []string) string {
	paths := l.entries[entityName]
	if paths == nil {
		return ""
	}
	if alias != "" {
		if id, ok := paths[alias]; ok {
			return id
		}
	}
	return paths[PathKey(relations)]
}

// FragmentIDs returns the distinct fragment ids declared for an entity, in
// stable (sorted) order. Used to fetch the union of fragments for
// whole-resource operations.
func (l *Locator) FragmentIDs(entityName string) []string {
	paths := l.entries[entityName]
	if len(paths) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(paths))
	var ids []string
	for _, id := range paths {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
