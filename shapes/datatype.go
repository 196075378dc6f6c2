package shapes

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tucfis/shexpose/errors"
)

// Well-known datatype IRIs.
const (
	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
	XSDBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDInt      = "http://www.w3.org/2001/XMLSchema#int"
	XSDLong     = "http://www.w3.org/2001/XMLSchema#long"
	XSDDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDFloat    = "http://www.w3.org/2001/XMLSchema#float"
	XSDDouble   = "http://www.w3.org/2001/XMLSchema#double"
	XSDDate     = "http://www.w3.org/2001/XMLSchema#date"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDGYear    = "http://www.w3.org/2001/XMLSchema#gYear"
	XSDAnyURI   = "http://www.w3.org/2001/XMLSchema#anyURI"

	RDFLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
	RDFType       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

var datatypePrefixes = map[string]string{
	"xsd": "http://www.w3.org/2001/XMLSchema#",
	"rdf": "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
}

// ExpandDatatype resolves prefixed datatype notation (xsd:string) to an
// absolute IRI. Absolute IRIs and empty strings pass through unchanged.
func ExpandDatatype(datatype string) string {
	prefix, local, found := strings.Cut(datatype, ":")
	if !found {
		return datatype
	}
	if base, ok := datatypePrefixes[prefix]; ok {
		return base + local
	}
	return datatype
}

// IsLanguageEligible reports whether values of this datatype may carry a
// language tag. Only string-like datatypes qualify; numeric, temporal,
// boolean, and URI leaves never do.
func IsLanguageEligible(datatype string) bool {
	switch datatype {
	case XSDString, RDFLangString, "":
		return true
	}
	return false
}

// ValidateLexical checks that a lexical form is valid for the given
// datatype. Unknown datatypes are accepted untouched — the store is the
// final arbiter for exotic types.
func ValidateLexical(datatype, lexical string) error {
	switch datatype {
	case XSDBoolean:
		if lexical != "true" && lexical != "false" {
			return errors.Newf("invalid boolean %q", lexical)
		}
	case XSDInteger, XSDLong:
		if _, err := strconv.ParseInt(lexical, 10, 64); err != nil {
			return errors.Newf("invalid integer %q", lexical)
		}
	case XSDInt:
		if _, err := strconv.ParseInt(lexical, 10, 32); err != nil {
			return errors.Newf("value %q out of xsd:int range", lexical)
		}
	case XSDDecimal, XSDFloat, XSDDouble:
		f, err := strconv.ParseFloat(lexical, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.Newf("invalid decimal %q", lexical)
		}
	case XSDDate:
		if _, err := time.Parse("2006-01-02", lexical); err != nil {
			return errors.Newf("invalid date %q, want YYYY-MM-DD", lexical)
		}
	case XSDDateTime:
		if _, err := time.Parse(time.RFC3339, lexical); err != nil {
			if _, err := time.Parse("2006-01-02T15:04:05", lexical); err != nil {
				return errors.Newf("invalid dateTime %q, want ISO-8601", lexical)
			}
		}
	case XSDGYear:
		if _, err := strconv.Atoi(lexical); err != nil || len(lexical) < 4 {
			return errors.Newf("invalid gYear %q", lexical)
		}
	case XSDAnyURI:
		if _, err := url.Parse(lexical); err != nil {
			return errors.Newf("invalid URI %q", lexical)
		}
	}
	return nil
}

// Lexical converts a decoded JSON value into its lexical form for the given
// datatype, validating as it goes. JSON numbers arrive as float64; integral
// datatypes render them without a fraction.
func Lexical(datatype string, value any) (string, error) {
	var lexical string
	switch v := value.(type) {
	case string:
		lexical = v
	case bool:
		lexical = strconv.FormatBool(v)
	case float64:
		switch datatype {
		case XSDInteger, XSDInt, XSDLong, XSDGYear:
			if v != math.Trunc(v) {
				return "", errors.Newf("expected integer, got %v", v)
			}
			lexical = strconv.FormatInt(int64(v), 10)
		default:
			lexical = strconv.FormatFloat(v, 'f', -1, 64)
		}
	case int:
		lexical = strconv.Itoa(v)
	case int64:
		lexical = strconv.FormatInt(v, 10)
	case nil:
		return "", errors.New("null is not a valid literal value")
	default:
		return "", errors.Newf("unsupported literal value type %T", value)
	}
	if err := ValidateLexical(datatype, lexical); err != nil {
		return "", err
	}
	return lexical, nil
}
