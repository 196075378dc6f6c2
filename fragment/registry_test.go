package fragment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "person-core.rq"),
		[]byte("CONSTRUCT { $subject ?p ?o } WHERE { $subject ?p ?o }"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "person-affiliation.rq"),
		[]byte("CONSTRUCT { $subject ?p ?o . ?o ?q ?r } WHERE { $subject ?p ?o . ?o ?q ?r }"), 0o644))

	reg, err := LoadRegistry(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Count())
	assert.True(t, reg.Has("person-core"))
	assert.False(t, reg.Has("missing"))
}

func TestLoadRegistryEmptyDir(t *testing.T) {
	_, err := LoadRegistry(t.TempDir())
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	reg := NewRegistry(map[string]string{
		"person-core": "CONSTRUCT { $subject ?p ?o } WHERE { $subject ?p ?o }",
	})

	query, err := reg.Render("person-core", "http://example.org/person/1")
	require.NoError(t, err)
	assert.Equal(t,
		"CONSTRUCT { <http://example.org/person/1> ?p ?o } WHERE { <http://example.org/person/1> ?p ?o }",
		query)
}

func TestRenderUnknownFragment(t *testing.T) {
	reg := NewRegistry(map[string]string{})
	_, err := reg.Render("nope", "http://example.org/1")
	require.Error(t, err)
}

func TestRenderMissingPlaceholder(t *testing.T) {
	reg := NewRegistry(map[string]string{
		"broken": "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }",
	})
	_, err := reg.Render("broken", "http://example.org/1")
	require.Error(t, err)
}
