package fragment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergerDeduplicatesPrefixes(t *testing.T) {
	m := NewMerger()
	m.Add("@prefix foaf: <http://xmlns.com/foaf/0.1/> .\n\n<http://example.org/1> foaf:name \"Anna\" .\n")
	m.Add("@prefix foaf: <http://xmlns.com/foaf/0.1/> .\n@prefix dc: <http://purl.org/dc/terms/> .\n\n<http://example.org/1> dc:title \"Dr.\" .\n")

	merged := m.Merged()
	assert.Equal(t, 1, strings.Count(merged, "@prefix foaf:"))
	assert.Equal(t, 1, strings.Count(merged, "@prefix dc:"))
	assert.Contains(t, merged, `foaf:name "Anna"`)
	assert.Contains(t, merged, `dc:title "Dr."`)
	assert.False(t, m.IsEmpty())
}

func TestMergerFirstPrefixWins(t *testing.T) {
	m := NewMerger()
	m.Add("@prefix ex: <http://example.org/> .\n\n<http://example.org/1> ex:p \"v\" .\n")
	m.Add("@prefix ex: <http://other.org/> .\n\n<http://example.org/1> ex:q \"w\" .\n")

	merged := m.Merged()
	assert.Contains(t, merged, "<http://example.org/>")
	assert.NotContains(t, merged, "<http://other.org/>")
}

func TestMergerEmpty(t *testing.T) {
	m := NewMerger()
	assert.True(t, m.IsEmpty())

	// Prefix-only fragments contribute no statements
	m.Add("@prefix foaf: <http://xmlns.com/foaf/0.1/> .\n\n")
	assert.True(t, m.IsEmpty())

	m.Add("@prefix foaf: <http://xmlns.com/foaf/0.1/> .\n\n<http://example.org/1> foaf:name \"Anna\" .\n")
	assert.False(t, m.IsEmpty())
}

func TestMergerKeepsDuplicateStatements(t *testing.T) {
	// Body statements concatenate without deduplication
	stmt := "<http://example.org/1> <http://example.org/p> \"v\" ."
	m := NewMerger()
	m.Add("\n\n" + stmt + "\n")
	m.Add("\n\n" + stmt + "\n")

	assert.Equal(t, 2, strings.Count(m.Merged(), stmt))
}

func TestMergerNoBlankLine(t *testing.T) {
	// Some stores omit the blank line; prefix lines are still recognized
	m := NewMerger()
	m.Add("@prefix ex: <http://example.org/> .\n<http://example.org/1> ex:p \"v\" .\n")

	assert.False(t, m.IsEmpty())
	merged := m.Merged()
	assert.Contains(t, merged, "@prefix ex:")
	assert.Contains(t, merged, `ex:p "v"`)
}
