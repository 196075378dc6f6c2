// Package sparql talks to the external query/update endpoint: it decodes
// the text serialization returned by graph-construction queries, serializes
// ground statements for combined delete/insert updates, and carries the
// HTTP round trips including authentication.
package sparql

import "strings"

// TermKind distinguishes IRI terms from literals.
type TermKind int

const (
	TermIRI TermKind = iota
	TermLiteral
)

// Term is one RDF term: an IRI or a literal with optional datatype or
// language tag. Language tags are canonicalized to lower case.
type Term struct {
	Kind     TermKind
	Value    string // IRI, or the literal's lexical form
	Datatype string // literal datatype IRI, empty for plain/tagged strings
	Lang     string // language tag, lower case, empty when untagged
}

// IRI builds an IRI term.
func IRI(iri string) Term {
	return Term{Kind: TermIRI, Value: iri}
}

// Literal builds a literal term. A non-empty lang wins over datatype.
func Literal(lexical, datatype, lang string) Term {
	if lang != "" {
		return Term{Kind: TermLiteral, Value: lexical, Lang: strings.ToLower(lang)}
	}
	return Term{Kind: TermLiteral, Value: lexical, Datatype: datatype}
}

// IsIRI reports whether the term is an IRI.
func (t Term) IsIRI() bool {
	return t.Kind == TermIRI
}

const xsdString = "http://www.w3.org/2001/XMLSchema#string"

// String serializes the term in ground-statement form: <iri> for IRIs,
// "value"@lang for language-tagged strings, "value"^^<datatype> for typed
// literals, and a bare quoted string otherwise. xsd:string is the implicit
// default and is emitted without a datatype suffix.
func (t Term) String() string {
	if t.Kind == TermIRI {
		return "<" + t.Value + ">"
	}
	quoted := `"` + escapeLiteral(t.Value) + `"`
	switch {
	case t.Lang != "":
		return quoted + "@" + t.Lang
	case t.Datatype != "" && t.Datatype != xsdString:
		return quoted + "^^<" + t.Datatype + ">"
	default:
		return quoted
	}
}

// Triple is one ground statement: fully-qualified subject and predicate
// IRIs with an IRI or literal object.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// String serializes the triple as a ground statement.
func (t Triple) String() string {
	return "<" + t.Subject + "> <" + t.Predicate + "> " + t.Object.String() + " ."
}

func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescapeLiteral(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		switch r {
		case 'n':
			b.WriteRune('\n')
		case 'r':
			b.WriteRune('\r')
		case 't':
			b.WriteRune('\t')
		default:
			b.WriteRune(r)
		}
		escaped = false
	}
	return b.String()
}
