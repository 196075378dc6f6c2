package fragment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocator() *Locator {
	return NewLocator(map[string]map[string]string{
		"person": {
			"http://xmlns.com/foaf/0.1/name": "person-core",
			"http://example.org/affiliation|http://xmlns.com/foaf/0.1/name": "person-affiliation",
			"orcid": "person-identifiers",
		},
		"event": {
			"http://purl.org/dc/terms/title": "event-core",
		},
	})
}

func TestResolveByPathKey(t *testing.T) {
	l := testLocator()

	id := l.Resolve("person", "", []string{"http://xmlns.com/foaf/0.1/name"})
	assert.Equal(t, "person-core", id)

	id = l.Resolve("person", "", []string{
		"http://example.org/affiliation",
		"http://xmlns.com/foaf/0.1/name",
	})
	assert.Equal(t, "person-affiliation", id)
}

func TestResolveByAlias(t *testing.T) {
	l := testLocator()
	assert.Equal(t, "person-identifiers", l.Resolve("person", "orcid", nil))
}

func TestResolveUndeclared(t *testing.T) {
	l := testLocator()
	assert.Equal(t, "", l.Resolve("person", "", []string{"http://example.org/unknown"}))
	assert.Equal(t, "", l.Resolve("unknown-entity", "", []string{"http://xmlns.com/foaf/0.1/name"}))
}

func TestFragmentIDs(t *testing.T) {
	l := testLocator()
	assert.Equal(t, []string{"person-affiliation", "person-core", "person-identifiers"},
		l.FragmentIDs("person"))
	assert.Nil(t, l.FragmentIDs("unknown-entity"))
}

func TestPathKey(t *testing.T) {
	assert.Equal(t, "a|b", PathKey([]string{"a", "b"}))
	assert.Equal(t, "a", PathKey([]string{"a"}))
}

func TestLoadLocator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fragments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
entities:
  person:
    http://xmlns.com/foaf/0.1/name: person-core
`), 0o644))

	l, err := LoadLocator(path)
	require.NoError(t, err)
	assert.Equal(t, "person-core", l.Resolve("person", "", []string{"http://xmlns.com/foaf/0.1/name"}))
}

func TestLoadLocatorEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fragments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`entities: {}`), 0o644))

	_, err := LoadLocator(path)
	require.Error(t, err)
}
