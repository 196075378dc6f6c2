package fragment

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tucfis/shexpose/errors"
)

// subjectPlaceholder is replaced with the angle-bracketed subject URI when
// a fragment query is rendered. The offline compiler emits it into every
// fragment query template.
const subjectPlaceholder = "$subject"

// Registry holds the precompiled graph-construction query templates, one
// per fragment id. Loaded once at startup; read-only afterwards.
type Registry struct {
	templates map[string]string
}

// NewRegistry builds a registry from fragment id → query template. Used by
// tests.
func NewRegistry(templates map[string]string) *Registry {
	return &Registry{templates: templates}
}

// LoadRegistry reads every *.rq file in dir; the fragment id is the file
// name without extension.
func LoadRegistry(dir string) (*Registry, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.rq"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan fragment directory %s", dir)
	}
	if len(matches) == 0 {
		return nil, errors.Newf("no fragment queries found in %s", dir)
	}
	templates := make(map[string]string, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read fragment query %s", path)
		}
		id := strings.TrimSuffix(filepath.Base(path), ".rq")
		templates[id] = string(data)
	}
	return &Registry{templates: templates}, nil
}

// Has reports whether a fragment id is registered.
func (r *Registry) Has(fragmentID string) bool {
	_, ok := r.templates[fragmentID]
	return ok
}

// Count returns the number of registered fragment queries.
func (r *Registry) Count() int {
	return len(r.templates)
}

// Render produces the executable query for one fragment and subject.
func (r *Registry) Render(fragmentID, subjectURI string) (string, error) {
	template, ok := r.templates[fragmentID]
	if !ok {
		return "", errors.Newf("fragment query %q not registered", fragmentID)
	}
	if !strings.Contains(template, subjectPlaceholder) {
		return "", errors.Newf("fragment query %q has no %s placeholder", fragmentID, subjectPlaceholder)
	}
	return strings.ReplaceAll(template, subjectPlaceholder, "<"+subjectURI+">"), nil
}
