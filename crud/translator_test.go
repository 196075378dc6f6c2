package crud

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucfis/shexpose/entity"
	"github.com/tucfis/shexpose/errors"
	"github.com/tucfis/shexpose/fragment"
	"github.com/tucfis/shexpose/shapes"
)

const crudSchemaYAML = `
shapes:
  PersonShape:
    targetClass: http://xmlns.com/foaf/0.1/Person
    properties:
      - path: http://xmlns.com/foaf/0.1/name
        maxCount: 1
        datatype: xsd:string
      - path: http://example.org/keyword
        maxCount: unbounded
        datatype: xsd:string
      - path: http://example.org/age
        maxCount: 1
        datatype: xsd:integer
      - path: http://example.org/affiliation
        maxCount: unbounded
        node: OrganisationShape
  OrganisationShape:
    targetClass: http://xmlns.com/foaf/0.1/Organization
    properties:
      - path: http://xmlns.com/foaf/0.1/name
        maxCount: 1
        datatype: xsd:string
`

const (
	subjectAlice = "http://data.example.org/person/alice"

	coreBody = `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix ex: <http://example.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<http://data.example.org/person/alice> rdf:type foaf:Person ;
    foaf:name "Alice"@en, "Alina"@de ;
    ex:keyword "graphs" ;
    ex:age 30 .
`

	affiliationBody = `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix ex: <http://example.org/> .

<http://data.example.org/person/alice> ex:affiliation <http://data.example.org/org/acme> .
<http://data.example.org/org/acme> foaf:name "ACME" .
`

	nameOnlyBody = `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<http://data.example.org/person/alice> rdf:type foaf:Person ;
    foaf:name "Alice"@en .
`

	emptyBody = `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
`
)

// fakeStore serves canned fragment bodies keyed by a tag embedded in the
// query template and records every update it receives.
type fakeStore struct {
	bodies       map[string]string
	updates      []string
	constructErr error
	updateErr    error
}

func (f *fakeStore) Construct(_ context.Context, query string) (string, error) {
	if f.constructErr != nil {
		return "", f.constructErr
	}
	for tag, body := range f.bodies {
		if strings.Contains(query, tag) {
			return body, nil
		}
	}
	return emptyBody, nil
}

func (f *fakeStore) Update(_ context.Context, body string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, body)
	return nil
}

func personEntity() *entity.Entity {
	return &entity.Entity{
		Name:          "person",
		TypeURI:       "http://xmlns.com/foaf/0.1/Person",
		RootShape:     "PersonShape",
		BaseNamespace: "http://data.example.org",
		Attributes: []entity.Attribute{
			{Name: "name", Path: []string{"http://xmlns.com/foaf/0.1/name"}},
			{Name: "keywords", Path: []string{"http://example.org/keyword"}},
			{Name: "age", Path: []string{"http://example.org/age"}},
			{Name: "employerName", Path: []string{"http://example.org/affiliation", "http://xmlns.com/foaf/0.1/name"}, Alias: "employer"},
		},
	}
}

func testLocator() *fragment.Locator {
	return fragment.NewLocator(map[string]map[string]string{
		"person": {
			fragment.PathKey([]string{"http://xmlns.com/foaf/0.1/name"}): "person_core",
			fragment.PathKey([]string{"http://example.org/keyword"}):     "person_core",
			fragment.PathKey([]string{"http://example.org/age"}):         "person_core",
			"employer": "person_affiliation",
		},
	})
}

func testQueries() *fragment.Registry {
	return fragment.NewRegistry(map[string]string{
		"person_core":        "# person_core\nCONSTRUCT { $subject ?p ?o } WHERE { $subject ?p ?o }",
		"person_affiliation": "# person_affiliation\nCONSTRUCT { $subject ?p ?o } WHERE { $subject ?p ?o }",
	})
}

func testTranslator(t *testing.T, store Store) *Translator {
	t.Helper()
	schema, err := shapes.Parse([]byte(crudSchemaYAML))
	require.NoError(t, err)

	tr, err := NewTranslator(schema, testLocator(), testQueries(), entity.NewRegistry(personEntity()), store, nil)
	require.NoError(t, err)
	return tr
}

func populatedStore() *fakeStore {
	return &fakeStore{bodies: map[string]string{
		"person_core":        coreBody,
		"person_affiliation": affiliationBody,
	}}
}

func TestNewTranslatorRejectsUnmappedAttribute(t *testing.T) {
	schema, err := shapes.Parse([]byte(crudSchemaYAML))
	require.NoError(t, err)

	ent := personEntity()
	ent.Attributes = append(ent.Attributes, entity.Attribute{
		Name: "unmapped",
		Path: []string{"http://example.org/keyword"},
	})
	locator := fragment.NewLocator(map[string]map[string]string{"person": {
		fragment.PathKey([]string{"http://xmlns.com/foaf/0.1/name"}): "person_core",
		fragment.PathKey([]string{"http://example.org/age"}):         "person_core",
		"employer": "person_affiliation",
	}})

	_, err = NewTranslator(schema, locator, testQueries(), entity.NewRegistry(ent), &fakeStore{}, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "person", cfgErr.Entity)
	assert.Contains(t, cfgErr.Reason, "no fragment mapping")
}

func TestNewTranslatorRejectsUndeclaredPath(t *testing.T) {
	schema, err := shapes.Parse([]byte(crudSchemaYAML))
	require.NoError(t, err)

	ent := personEntity()
	ent.Attributes[0].Path = []string{"http://example.org/doesNotExist"}

	_, err = NewTranslator(schema, testLocator(), testQueries(), entity.NewRegistry(ent), &fakeStore{}, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "name", cfgErr.Attribute)
}

func TestNewTranslatorRejectsMissingQueryTemplate(t *testing.T) {
	schema, err := shapes.Parse([]byte(crudSchemaYAML))
	require.NoError(t, err)

	queries := fragment.NewRegistry(map[string]string{
		"person_core": "# person_core\nCONSTRUCT { $subject ?p ?o } WHERE { $subject ?p ?o }",
	})

	_, err = NewTranslator(schema, testLocator(), queries, entity.NewRegistry(personEntity()), &fakeStore{}, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "person_affiliation")
}

func TestNewTranslatorRejectsStrayFragmentEntry(t *testing.T) {
	schema, err := shapes.Parse([]byte(crudSchemaYAML))
	require.NoError(t, err)

	// a map entry no attribute resolves through still joins the union
	// fetch, so its template must exist too
	locator := fragment.NewLocator(map[string]map[string]string{"person": {
		fragment.PathKey([]string{"http://xmlns.com/foaf/0.1/name"}): "person_core",
		fragment.PathKey([]string{"http://example.org/keyword"}):     "person_core",
		fragment.PathKey([]string{"http://example.org/age"}):         "person_core",
		"employer": "person_affiliation",
		fragment.PathKey([]string{"http://example.org/retired"}): "person_history",
	}})

	_, err = NewTranslator(schema, locator, testQueries(), entity.NewRegistry(personEntity()), &fakeStore{}, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "person", cfgErr.Entity)
	assert.Contains(t, cfgErr.Reason, "person_history")
}

func TestReadAttribute(t *testing.T) {
	tr := testTranslator(t, populatedStore())

	v, err := tr.ReadAttribute(context.Background(), "person", subjectAlice, "name", "en")
	require.NoError(t, err)
	assert.Equal(t, "Alice", v.Value)
	assert.Equal(t, "en", v.Language)

	// unknown preferred language falls back in fixed order
	v, err = tr.ReadAttribute(context.Background(), "person", subjectAlice, "name", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Alina", v.Value)
	assert.Equal(t, "de", v.Language)
}

func TestReadAttributeNotFound(t *testing.T) {
	tr := testTranslator(t, &fakeStore{})

	_, err := tr.ReadAttribute(context.Background(), "person", subjectAlice, "name", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadAttributeUnknownNames(t *testing.T) {
	tr := testTranslator(t, populatedStore())

	_, err := tr.ReadAttribute(context.Background(), "animal", subjectAlice, "name", "")
	assert.ErrorIs(t, err, ErrUnknownEntity)

	_, err = tr.ReadAttribute(context.Background(), "person", subjectAlice, "shoeSize", "")
	assert.ErrorIs(t, err, ErrUnknownAttribute)
}

func TestReadResource(t *testing.T) {
	tr := testTranslator(t, populatedStore())

	res, err := tr.ReadResource(context.Background(), "person", subjectAlice, "en")
	require.NoError(t, err)
	assert.Equal(t, subjectAlice, res.URI)

	assert.Equal(t, "Alice", res.Attributes["name"].Value)
	assert.Equal(t, int64(30), res.Attributes["age"].Value)
	assert.Equal(t, []any{"graphs"}, res.Attributes["keywords"].Value)
	// nested attribute flattens across the reference step
	assert.Equal(t, []any{"ACME"}, res.Attributes["employerName"].Value)
}

func TestReadResourceListsAbsentAttributes(t *testing.T) {
	tr := testTranslator(t, &fakeStore{bodies: map[string]string{
		"person_core": nameOnlyBody,
	}})

	res, err := tr.ReadResource(context.Background(), "person", subjectAlice, "en")
	require.NoError(t, err)

	// every declared attribute appears, the empty ones with a null value
	for _, name := range []string{"name", "keywords", "age", "employerName"} {
		require.Contains(t, res.Attributes, name)
	}
	assert.Equal(t, "Alice", res.Attributes["name"].Value)
	assert.Nil(t, res.Attributes["age"].Value)
	assert.Nil(t, res.Attributes["employerName"].Value)
}

func TestResourceMarshalsFlat(t *testing.T) {
	tr := testTranslator(t, &fakeStore{bodies: map[string]string{
		"person_core": nameOnlyBody,
	}})

	res, err := tr.ReadResource(context.Background(), "person", subjectAlice, "en")
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, subjectAlice, doc["uri"])

	name, ok := doc["name"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", name["value"])

	age, ok := doc["age"].(map[string]any)
	require.True(t, ok)
	value, present := age["value"]
	require.True(t, present)
	assert.Nil(t, value)
}

func TestCreate(t *testing.T) {
	store := &fakeStore{}
	tr := testTranslator(t, store)

	subject, err := tr.Create(context.Background(), "person", map[string]FieldPayload{
		"name": {Value: "Bob", Language: "en"},
		"age":  {Value: float64(41)},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(subject, "http://data.example.org/person/"))

	require.Len(t, store.updates, 1)
	update := store.updates[0]
	assert.True(t, strings.HasPrefix(update, "INSERT DATA"))
	assert.NotContains(t, update, "DELETE DATA")
	assert.Contains(t, update, "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://xmlns.com/foaf/0.1/Person>")
	assert.Contains(t, update, `"Bob"@en`)
	assert.Contains(t, update, `"41"^^<http://www.w3.org/2001/XMLSchema#integer>`)
}

func TestCreateInvalidPayload(t *testing.T) {
	store := &fakeStore{}
	tr := testTranslator(t, store)

	_, err := tr.Create(context.Background(), "person", map[string]FieldPayload{
		"age": {Value: "not a number"},
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Empty(t, store.updates)
}

func TestReplaceAttribute(t *testing.T) {
	store := populatedStore()
	tr := testTranslator(t, store)

	err := tr.ReplaceAttribute(context.Background(), "person", subjectAlice, "age", FieldPayload{Value: float64(31)})
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	update := store.updates[0]
	assert.Contains(t, update, "DELETE DATA")
	assert.Contains(t, update, "INSERT DATA")
	assert.Contains(t, update, `"30"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	assert.Contains(t, update, `"31"^^<http://www.w3.org/2001/XMLSchema#integer>`)
}

func TestReplaceAttributeLanguageScoped(t *testing.T) {
	store := populatedStore()
	tr := testTranslator(t, store)

	err := tr.ReplaceAttribute(context.Background(), "person", subjectAlice, "name", FieldPayload{Value: "Adele", Language: "de"})
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	update := store.updates[0]
	assert.Contains(t, update, `"Alina"@de`)
	assert.Contains(t, update, `"Adele"@de`)
	// the English bucket stays untouched
	assert.NotContains(t, update, `"Alice"`)
}

func TestAddToAttribute(t *testing.T) {
	store := populatedStore()
	tr := testTranslator(t, store)

	err := tr.AddToAttribute(context.Background(), "person", subjectAlice, "keywords", FieldPayload{Value: "sparql"})
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	update := store.updates[0]
	assert.True(t, strings.HasPrefix(update, "INSERT DATA"))
	assert.NotContains(t, update, "DELETE DATA")
	assert.Contains(t, update, `"sparql"`)
}

func TestAddToAttributeNotFound(t *testing.T) {
	tr := testTranslator(t, &fakeStore{})

	err := tr.AddToAttribute(context.Background(), "person", subjectAlice, "keywords", FieldPayload{Value: "sparql"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceResource(t *testing.T) {
	store := populatedStore()
	tr := testTranslator(t, store)

	err := tr.ReplaceResource(context.Background(), "person", subjectAlice, map[string]FieldPayload{
		"name": {Value: "Alice Smith", Language: "en"},
	})
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	update := store.updates[0]
	// every previously fetched statement is deleted, the org graph included
	assert.Contains(t, update, `"Alina"@de`)
	assert.Contains(t, update, `"graphs"`)
	assert.Contains(t, update, `"30"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	assert.Contains(t, update, "<http://data.example.org/org/acme>")
	assert.Contains(t, update, `"ACME"`)
	assert.Contains(t, update, `"Alice Smith"@en`)

	// the root class survives a full replace
	deleteClause := update[:strings.Index(update, "INSERT DATA")]
	assert.NotContains(t, deleteClause, "<http://xmlns.com/foaf/0.1/Person>")
}

func TestDeleteAttribute(t *testing.T) {
	store := populatedStore()
	tr := testTranslator(t, store)

	err := tr.DeleteAttribute(context.Background(), "person", subjectAlice, "age", "")
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	update := store.updates[0]
	assert.True(t, strings.HasPrefix(update, "DELETE DATA"))
	assert.NotContains(t, update, "INSERT DATA")
	assert.Contains(t, update, `"30"^^<http://www.w3.org/2001/XMLSchema#integer>`)
}

func TestDeleteAttributeAbsentIsNoop(t *testing.T) {
	store := &fakeStore{bodies: map[string]string{
		"person_core": `@prefix foaf: <http://xmlns.com/foaf/0.1/> .

<http://data.example.org/person/alice> foaf:name "Alice"@en .
`,
	}}
	tr := testTranslator(t, store)

	err := tr.DeleteAttribute(context.Background(), "person", subjectAlice, "age", "")
	require.NoError(t, err)
	assert.Empty(t, store.updates, "no update committed for an absent attribute")
}

func TestDeleteResource(t *testing.T) {
	store := populatedStore()
	tr := testTranslator(t, store)

	err := tr.DeleteResource(context.Background(), "person", subjectAlice)
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	update := store.updates[0]
	assert.True(t, strings.HasPrefix(update, "DELETE DATA"))
	assert.NotContains(t, update, "INSERT DATA")
	assert.Contains(t, update, "<http://xmlns.com/foaf/0.1/Person>")
	assert.Contains(t, update, `"ACME"`)
}

func TestDeleteResourceNotFound(t *testing.T) {
	tr := testTranslator(t, &fakeStore{})

	err := tr.DeleteResource(context.Background(), "person", subjectAlice)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("store unreachable")
	tr := testTranslator(t, &fakeStore{constructErr: storeErr})

	_, err := tr.ReadAttribute(context.Background(), "person", subjectAlice, "name", "")
	assert.ErrorIs(t, err, storeErr)
}

func TestCreateMintsDistinctSubjects(t *testing.T) {
	store := &fakeStore{}
	tr := testTranslator(t, store)

	first, err := tr.Create(context.Background(), "person", map[string]FieldPayload{"name": {Value: "A"}})
	require.NoError(t, err)
	second, err := tr.Create(context.Background(), "person", map[string]FieldPayload{"name": {Value: "B"}})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "http://data.example.org/person/"))
}
