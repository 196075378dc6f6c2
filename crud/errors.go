package crud

import (
	"fmt"

	"github.com/tucfis/shexpose/errors"
)

// Sentinel errors for the operation pipeline. The HTTP layer maps these
// with errors.Is; everything else is an internal error and surfaces as an
// opaque 500.
var (
	// ErrNotFound: the fetched fragment was empty for the target subject
	ErrNotFound = errors.New("resource not found")

	// ErrUnknownEntity: the request names an entity that is not configured
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownAttribute: the request names an attribute the entity does
	// not declare
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrInvalidPayload: the payload value is not valid for the declared
	// datatype or cardinality
	ErrInvalidPayload = errors.New("invalid payload")
)

// ConfigurationError marks a broken deployment: a declared attribute with
// no fragment mapping or no resolvable type. It is raised at startup, never
// per request.
type ConfigurationError struct {
	Entity    string
	Attribute string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if e.Attribute == "" {
		return fmt.Sprintf("configuration error for %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("configuration error for %s.%s: %s", e.Entity, e.Attribute, e.Reason)
}
