package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucfis/shexpose/shapes"
	"github.com/tucfis/shexpose/sparql"
)

func TestRemoveValuesIsNoOpOnAbsentData(t *testing.T) {
	schema := accessorSchema(t)
	p := New(subjectURI, baseNS)

	// Missing leaf, missing intermediate: neither raises nor records changes
	p.RemoveValues(compile(t, schema, relName), "")
	p.RemoveValues(compile(t, schema, relAffiliation, relName), "de")

	assert.False(t, p.HasChanges())
}

func TestRemoveSingleLanguageBucket(t *testing.T) {
	schema := accessorSchema(t)
	keywordPath := compile(t, schema, relKeyword)

	p := FromTriples(subjectURI, baseNS, []sparql.Triple{
		{Subject: subjectURI, Predicate: relKeyword, Object: sparql.Literal("semantik", "", "de")},
		{Subject: subjectURI, Predicate: relKeyword, Object: sparql.Literal("semantics", "", "en")},
	})

	p.RemoveValues(keywordPath, "de")

	// The de bucket is gone, the en bucket intact
	got := p.GetValue(keywordPath, "de")
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, []any{"semantics"}, got.Value)

	deletes, _ := p.Changes()
	require.Len(t, deletes, 1)
	assert.Equal(t, `<http://example.org/person/1> <http://example.org/keyword> "semantik"@de .`, deletes[0].String())
}

func TestRemoveWithoutLanguageClearsAllBuckets(t *testing.T) {
	schema := accessorSchema(t)
	keywordPath := compile(t, schema, relKeyword)

	p := FromTriples(subjectURI, baseNS, []sparql.Triple{
		{Subject: subjectURI, Predicate: relKeyword, Object: sparql.Literal("semantik", "", "de")},
		{Subject: subjectURI, Predicate: relKeyword, Object: sparql.Literal("semantics", "", "en")},
		{Subject: subjectURI, Predicate: relKeyword, Object: sparql.Literal("plain", "", "")},
	})

	p.RemoveValues(keywordPath, "")

	assert.True(t, p.GetValue(keywordPath, "").Absent())

	// Every existing value of the relation lands in the delete block
	deletes, _ := p.Changes()
	assert.Len(t, deletes, 3)
}

func TestRemoveFansOutOverNodeList(t *testing.T) {
	schema := accessorSchema(t)
	orgNamePath := compile(t, schema, relAffiliation, relName)

	p := FromTriples(subjectURI, baseNS, []sparql.Triple{
		{Subject: subjectURI, Predicate: relAffiliation, Object: sparql.IRI("http://example.org/org/1")},
		{Subject: subjectURI, Predicate: relAffiliation, Object: sparql.IRI("http://example.org/org/2")},
		{Subject: "http://example.org/org/1", Predicate: relName, Object: sparql.Literal("Org Eins", "", "de")},
		{Subject: "http://example.org/org/2", Predicate: relName, Object: sparql.Literal("Org Zwei", "", "de")},
	})

	p.RemoveValues(orgNamePath, "")

	assert.True(t, p.GetValue(orgNamePath, "").Absent())
	deletes, _ := p.Changes()
	assert.Len(t, deletes, 2)
}

func TestRemoveBucketThroughMultiValuedIntermediate(t *testing.T) {
	// One consistent rule: a language-scoped removal clears exactly that
	// bucket on every fanned-out leaf
	schema := accessorSchema(t)
	orgNamePath := compile(t, schema, relAffiliation, relName)

	p := FromTriples(subjectURI, baseNS, []sparql.Triple{
		{Subject: subjectURI, Predicate: relAffiliation, Object: sparql.IRI("http://example.org/org/1")},
		{Subject: subjectURI, Predicate: relAffiliation, Object: sparql.IRI("http://example.org/org/2")},
		{Subject: "http://example.org/org/1", Predicate: relName, Object: sparql.Literal("Org Eins", "", "de")},
		{Subject: "http://example.org/org/1", Predicate: relName, Object: sparql.Literal("Org One", "", "en")},
		{Subject: "http://example.org/org/2", Predicate: relName, Object: sparql.Literal("Org Zwei", "", "de")},
	})

	p.RemoveValues(orgNamePath, "de")

	got := p.GetValue(orgNamePath, "")
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, []any{"Org One"}, got.Value)
}

func TestRemoveLeavesSiblingsUntouched(t *testing.T) {
	// Guarantee: no mutation outside the subtree reachable from the path
	schema := accessorSchema(t)
	namePath := compile(t, schema, relName)
	orgNamePath := compile(t, schema, relAffiliation, relName)

	p := FromTriples(subjectURI, baseNS, []sparql.Triple{
		{Subject: subjectURI, Predicate: relName, Object: sparql.Literal("Anna", "", "de")},
		{Subject: subjectURI, Predicate: relAffiliation, Object: sparql.IRI("http://example.org/org/1")},
		{Subject: "http://example.org/org/1", Predicate: relName, Object: sparql.Literal("TU Chemnitz", "", "de")},
	})

	p.RemoveValues(namePath, "")

	assert.True(t, p.GetValue(namePath, "").Absent())
	assert.Equal(t, []any{"TU Chemnitz"}, p.GetValue(orgNamePath, "de").Value)
}

func TestTypeStamping(t *testing.T) {
	p := New(subjectURI, baseNS)
	p.StampRootType("http://xmlns.com/foaf/0.1/Person")
	// Idempotent
	p.StampRootType("http://xmlns.com/foaf/0.1/Person")

	_, inserts := p.Changes()
	require.Len(t, inserts, 1)
	assert.Equal(t,
		`<http://example.org/person/1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://xmlns.com/foaf/0.1/Person> .`,
		inserts[0].String())
}

func TestClearTypes(t *testing.T) {
	p := FromTriples(subjectURI, baseNS, []sparql.Triple{
		{Subject: subjectURI, Predicate: shapes.RDFType, Object: sparql.IRI("http://xmlns.com/foaf/0.1/Person")},
		{Subject: subjectURI, Predicate: relAffiliation, Object: sparql.IRI("http://example.org/org/1")},
		{Subject: "http://example.org/org/1", Predicate: shapes.RDFType, Object: sparql.IRI("http://xmlns.com/foaf/0.1/Organization")},
	})

	p.ClearIntermediateTypes()
	deletes, _ := p.Changes()
	require.Len(t, deletes, 1)
	assert.Contains(t, deletes[0].String(), "Organization")

	p.ClearTypes()
	deletes, _ = p.Changes()
	assert.Len(t, deletes, 2)
}

func TestMintSubjectURI(t *testing.T) {
	uri := MintSubjectURI("http://example.org", "person")
	assert.Contains(t, uri, "http://example.org/person/")
	assert.NotEqual(t, uri, MintSubjectURI("http://example.org", "person"))
}
