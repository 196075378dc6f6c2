package sparql

import (
	"strings"
	"unicode"

	"github.com/tucfis/shexpose/errors"
)

// Decode parses the text serialization returned by a graph-construction
// query: namespace-prefix declarations, a blank line, then statements. The
// statement grammar covers what stores emit for constructed triples —
// absolute IRIs, prefixed names, the "a" keyword, literals with language
// tags or datatypes, predicate lists (";") and object lists (",").
func Decode(text string) ([]Triple, error) {
	d := &decoder{input: text, prefixes: map[string]string{}}
	return d.run()
}

type decoder struct {
	input    string
	pos      int
	prefixes map[string]string
}

func (d *decoder) run() ([]Triple, error) {
	var triples []Triple
	var subject, predicate string
	haveSubject, havePredicate := false, false

	for {
		d.skipSpace()
		if d.pos >= len(d.input) {
			break
		}

		// Prefix directives may appear anywhere before statements
		if d.directive() {
			continue
		}

		switch d.input[d.pos] {
		case '.':
			d.pos++
			haveSubject, havePredicate = false, false
			continue
		case ';':
			d.pos++
			havePredicate = false
			continue
		case ',':
			d.pos++
			continue
		}

		term, err := d.term()
		if err != nil {
			return nil, err
		}

		switch {
		case !haveSubject:
			if !term.IsIRI() {
				return nil, errors.Newf("literal in subject position at offset %d", d.pos)
			}
			subject = term.Value
			haveSubject = true
		case !havePredicate:
			if !term.IsIRI() {
				return nil, errors.Newf("literal in predicate position at offset %d", d.pos)
			}
			predicate = term.Value
			havePredicate = true
		default:
			triples = append(triples, Triple{Subject: subject, Predicate: predicate, Object: term})
		}
	}

	if havePredicate {
		return nil, errors.New("unterminated statement")
	}
	return triples, nil
}

func (d *decoder) skipSpace() {
	for d.pos < len(d.input) {
		c := d.input[d.pos]
		if c == '#' {
			for d.pos < len(d.input) && d.input[d.pos] != '\n' {
				d.pos++
			}
			continue
		}
		if !unicode.IsSpace(rune(c)) {
			return
		}
		d.pos++
	}
}

// directive consumes an @prefix / PREFIX declaration if one starts here.
// First declaration of a prefix wins; later redeclarations are ignored so
// merged fragments with duplicate headers decode cleanly.
func (d *decoder) directive() bool {
	rest := d.input[d.pos:]
	var matched string
	switch {
	case strings.HasPrefix(rest, "@prefix"):
		matched = "@prefix"
	case strings.HasPrefix(rest, "PREFIX"), strings.HasPrefix(rest, "prefix"):
		matched = rest[:6]
	default:
		return false
	}
	d.pos += len(matched)
	d.skipSpace()

	colon := strings.IndexByte(d.input[d.pos:], ':')
	if colon < 0 {
		return false
	}
	name := strings.TrimSpace(d.input[d.pos : d.pos+colon])
	d.pos += colon + 1
	d.skipSpace()

	if d.pos >= len(d.input) || d.input[d.pos] != '<' {
		return false
	}
	end := strings.IndexByte(d.input[d.pos:], '>')
	if end < 0 {
		return false
	}
	iri := d.input[d.pos+1 : d.pos+end]
	d.pos += end + 1

	if _, exists := d.prefixes[name]; !exists {
		d.prefixes[name] = iri
	}

	// @prefix form carries a trailing dot
	d.skipSpace()
	if matched == "@prefix" && d.pos < len(d.input) && d.input[d.pos] == '.' {
		d.pos++
	}
	return true
}

func (d *decoder) term() (Term, error) {
	c := d.input[d.pos]
	switch {
	case c == '<':
		end := strings.IndexByte(d.input[d.pos:], '>')
		if end < 0 {
			return Term{}, errors.Newf("unterminated IRI at offset %d", d.pos)
		}
		iri := d.input[d.pos+1 : d.pos+end]
		d.pos += end + 1
		return IRI(iri), nil

	case c == '"':
		return d.literal()

	case c == 'a' && d.delimitedAt(d.pos+1):
		d.pos++
		return IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"), nil

	case strings.HasPrefix(d.input[d.pos:], "_:"):
		// Blank node label; kept opaque so profile building can still link it
		end := d.scanToken(d.pos)
		label := d.input[d.pos:end]
		d.pos = end
		return IRI(label), nil

	case c == '+' || c == '-' || c >= '0' && c <= '9':
		return d.numericShorthand()

	case strings.HasPrefix(d.input[d.pos:], "true") && d.delimitedAt(d.pos+4):
		d.pos += 4
		return Literal("true", "http://www.w3.org/2001/XMLSchema#boolean", ""), nil

	case strings.HasPrefix(d.input[d.pos:], "false") && d.delimitedAt(d.pos+5):
		d.pos += 5
		return Literal("false", "http://www.w3.org/2001/XMLSchema#boolean", ""), nil

	default:
		return d.prefixedName()
	}
}

func (d *decoder) literal() (Term, error) {
	end := d.pos + 1
	for end < len(d.input) {
		if d.input[end] == '\\' {
			end += 2
			continue
		}
		if d.input[end] == '"' {
			break
		}
		end++
	}
	if end >= len(d.input) {
		return Term{}, errors.Newf("unterminated literal at offset %d", d.pos)
	}
	lexical := unescapeLiteral(d.input[d.pos+1 : end])
	d.pos = end + 1

	if strings.HasPrefix(d.input[d.pos:], "@") {
		tagEnd := d.scanToken(d.pos + 1)
		lang := d.input[d.pos+1 : tagEnd]
		d.pos = tagEnd
		return Literal(lexical, "", lang), nil
	}
	if strings.HasPrefix(d.input[d.pos:], "^^") {
		d.pos += 2
		dt, err := d.term()
		if err != nil {
			return Term{}, err
		}
		if !dt.IsIRI() {
			return Term{}, errors.New("datatype must be an IRI")
		}
		return Literal(lexical, dt.Value, ""), nil
	}
	return Literal(lexical, "", ""), nil
}

func (d *decoder) numericShorthand() (Term, error) {
	end := d.scanToken(d.pos)
	lexical := d.input[d.pos:end]
	d.pos = end
	datatype := "http://www.w3.org/2001/XMLSchema#integer"
	if strings.ContainsAny(lexical, ".eE") {
		datatype = "http://www.w3.org/2001/XMLSchema#decimal"
	}
	return Literal(lexical, datatype, ""), nil
}

func (d *decoder) prefixedName() (Term, error) {
	end := d.scanToken(d.pos)
	name := d.input[d.pos:end]
	prefix, local, found := strings.Cut(name, ":")
	if !found {
		return Term{}, errors.Newf("unexpected token %q at offset %d", name, d.pos)
	}
	base, ok := d.prefixes[prefix]
	if !ok {
		return Term{}, errors.Newf("undeclared prefix %q", prefix)
	}
	d.pos = end
	return IRI(base + local), nil
}

// scanToken advances to the next delimiter (whitespace or punctuation).
func (d *decoder) scanToken(from int) int {
	end := from
	for end < len(d.input) && !d.delimiterByte(d.input[end]) {
		end++
	}
	return end
}

func (d *decoder) delimiterByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ';', ',', '<', '"':
		return true
	}
	return false
}

// delimitedAt reports whether position i ends a token ("a", "true", ...).
func (d *decoder) delimitedAt(i int) bool {
	return i >= len(d.input) || unicode.IsSpace(rune(d.input[i])) || d.input[i] == '<'
}
