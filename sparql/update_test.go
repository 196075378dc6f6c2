package sparql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateBuilderInsertOnly(t *testing.T) {
	b := NewUpdateBuilder()
	b.Insert(Triple{
		Subject:   "http://example.org/s",
		Predicate: "http://example.org/p",
		Object:    Literal("1", "http://www.w3.org/2001/XMLSchema#integer", ""),
	})

	body := b.Build()
	assert.Contains(t, body, "INSERT DATA {")
	assert.Contains(t, body, `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	assert.NotContains(t, body, "DELETE DATA")
}

func TestUpdateBuilderDeleteOnly(t *testing.T) {
	b := NewUpdateBuilder()
	b.Delete(Triple{
		Subject:   "http://example.org/s",
		Predicate: "http://example.org/p",
		Object:    Literal("old", "", "en"),
	})

	body := b.Build()
	assert.Contains(t, body, "DELETE DATA {")
	assert.Contains(t, body, `"old"@en`)
	assert.NotContains(t, body, "INSERT DATA")
}

func TestUpdateBuilderCombined(t *testing.T) {
	b := NewUpdateBuilder()
	b.Delete(Triple{Subject: "http://example.org/s", Predicate: "http://example.org/p", Object: Literal("old", "", "")})
	b.Insert(Triple{Subject: "http://example.org/s", Predicate: "http://example.org/p", Object: Literal("new", "", "")})

	body := b.Build()
	// Delete block precedes insert block, separated by ";"
	assert.True(t, strings.HasPrefix(body, "DELETE DATA {"))
	assert.Contains(t, body, "};\nINSERT DATA {")
	assert.Equal(t, 1, b.DeleteCount())
	assert.Equal(t, 1, b.InsertCount())
}

func TestUpdateBuilderEmpty(t *testing.T) {
	b := NewUpdateBuilder()
	assert.True(t, b.Empty())
	assert.Equal(t, "", b.Build())
}
