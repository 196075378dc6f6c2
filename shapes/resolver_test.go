package shapes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeInfoForPathLiteralLeaf(t *testing.T) {
	schema := testSchema(t)

	info := schema.TypeInfoForPath("PersonShape", []string{"http://xmlns.com/foaf/0.1/name"})
	require.NotNil(t, info)
	assert.Equal(t, XSDString, info.Datatype)
	assert.False(t, info.Multivalued())
	assert.True(t, info.LanguageEligible())
}

func TestTypeInfoForPathThroughReference(t *testing.T) {
	schema := testSchema(t)

	// Same trailing relation (foaf:name) at a different depth resolves
	// independently through the affiliation reference.
	info := schema.TypeInfoForPath("PersonShape", []string{
		"http://example.org/affiliation",
		"http://xmlns.com/foaf/0.1/name",
	})
	require.NotNil(t, info)
	assert.Equal(t, XSDString, info.Datatype)
}

func TestTypeInfoForPathURILeaf(t *testing.T) {
	schema := testSchema(t)

	info := schema.TypeInfoForPath("PersonShape", []string{"http://xmlns.com/foaf/0.1/homepage"})
	require.NotNil(t, info)
	assert.True(t, info.IsURI)
	assert.False(t, info.LanguageEligible())
}

func TestTypeInfoForPathUnresolvable(t *testing.T) {
	schema := testSchema(t)

	tests := []struct {
		name string
		root string
		path []string
	}{
		{"empty path", "PersonShape", nil},
		{"unknown root", "NoSuchShape", []string{"http://xmlns.com/foaf/0.1/name"}},
		{"undeclared relation", "PersonShape", []string{"http://example.org/nope"}},
		{"literal mid-path", "PersonShape", []string{
			"http://xmlns.com/foaf/0.1/name",
			"http://example.org/city",
		}},
		{"reference as leaf", "PersonShape", []string{"http://example.org/affiliation"}},
		{"undeclared beyond reference", "PersonShape", []string{
			"http://example.org/affiliation",
			"http://example.org/nope",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, schema.TypeInfoForPath(tt.root, tt.path))
		})
	}
}

func TestCompilePath(t *testing.T) {
	schema := testSchema(t)

	compiled := schema.CompilePath("PersonShape", []string{
		"http://example.org/affiliation",
		"http://xmlns.com/foaf/0.1/name",
	})
	require.NotNil(t, compiled)
	require.Len(t, compiled.Steps, 2)

	assert.True(t, compiled.Steps[0].IsReference)
	assert.True(t, compiled.Steps[0].Multivalued())
	assert.Equal(t, "OrganisationShape", compiled.Steps[0].TargetShape)

	leaf := compiled.Leaf()
	assert.False(t, leaf.IsReference)
	assert.Equal(t, XSDString, leaf.Datatype)
	assert.False(t, leaf.Multivalued())

	assert.Equal(t, []string{
		"http://example.org/affiliation",
		"http://xmlns.com/foaf/0.1/name",
	}, compiled.Relations())
}

func TestCompilePathUndeclared(t *testing.T) {
	schema := testSchema(t)
	assert.Nil(t, schema.CompilePath("PersonShape", []string{"http://example.org/nope"}))
	assert.Nil(t, schema.CompilePath("PersonShape", nil))
}
