package crud

import (
	"context"
	"encoding/json"

	"github.com/tucfis/shexpose/profile"
)

// Resource is the serialized form of a whole entity: its subject URI and
// every declared attribute, present or not. It marshals flat, the subject
// under "uri" and each attribute as a top-level key, which is the shape
// clients index into directly.
type Resource struct {
	URI        string
	Attributes map[string]profile.Value
}

func (r *Resource) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Attributes)+1)
	for name, v := range r.Attributes {
		doc[name] = v
	}
	doc["uri"] = r.URI
	return json.Marshal(doc)
}

// ReadAttribute fetches the fragment covering one attribute and returns the
// negotiated value. ErrNotFound when the fragment is empty.
func (t *Translator) ReadAttribute(ctx context.Context, entityName, subjectURI, attributeName, preferredLanguage string) (profile.Value, error) {
	plan, err := t.plan(entityName)
	if err != nil {
		return profile.Value{}, err
	}
	ap, err := t.attributePlan(plan, attributeName)
	if err != nil {
		return profile.Value{}, err
	}

	p, err := t.fetch(ctx, plan, subjectURI, []string{ap.fragmentID})
	if err != nil {
		return profile.Value{}, err
	}

	return p.GetValue(ap.path, preferredLanguage), nil
}

// ReadResource fetches the union of all fragments for the entity and
// serializes every declared attribute. Attributes without data serialize
// as a null value rather than being dropped, so the representation always
// lists the full declared surface.
func (t *Translator) ReadResource(ctx context.Context, entityName, subjectURI, preferredLanguage string) (*Resource, error) {
	plan, err := t.plan(entityName)
	if err != nil {
		return nil, err
	}

	p, err := t.fetch(ctx, plan, subjectURI, plan.fragmentIDs)
	if err != nil {
		return nil, err
	}

	res := &Resource{
		URI:        subjectURI,
		Attributes: make(map[string]profile.Value),
	}
	for name, ap := range plan.attributes {
		v := p.GetValue(ap.path, preferredLanguage)
		if v.Absent() {
			v = profile.Value{}
		}
		res.Attributes[name] = v
	}
	return res, nil
}
