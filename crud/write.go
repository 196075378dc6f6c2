package crud

import (
	"context"
	"sort"

	"github.com/tucfis/shexpose/errors"
	"github.com/tucfis/shexpose/profile"
)

// FieldPayload is the request body shape for a single attribute: a value
// (scalar or array) with an optional language tag.
type FieldPayload struct {
	Value    any    `json:"value"`
	Language string `json:"language,omitempty"`
}

// Create mints a subject URI, stamps the entity's class, applies every
// payload field, and commits an insert-only update. Returns the minted URI.
func (t *Translator) Create(ctx context.Context, entityName string, fields map[string]FieldPayload) (string, error) {
	plan, err := t.plan(entityName)
	if err != nil {
		return "", err
	}

	subjectURI := profile.MintSubjectURI(plan.entity.BaseNamespace, entityName)
	p := profile.New(subjectURI, plan.entity.BaseNamespace)
	p.SetNestedTypes(plan.nestedTypes)
	p.StampRootType(plan.entity.TypeURI)

	if err := t.applyFields(plan, p, fields); err != nil {
		return "", err
	}

	if err := t.commit(ctx, p); err != nil {
		return "", err
	}
	t.log.Infow("created resource", "entity", entityName, "subject", subjectURI)
	return subjectURI, nil
}

// ReplaceAttribute clears the attribute and writes the payload in its
// place. A payload with a language tag replaces only that language bucket;
// an untagged payload replaces the attribute entirely.
func (t *Translator) ReplaceAttribute(ctx context.Context, entityName, subjectURI, attributeName string, payload FieldPayload) error {
	plan, err := t.plan(entityName)
	if err != nil {
		return err
	}
	ap, err := t.attributePlan(plan, attributeName)
	if err != nil {
		return err
	}

	p, err := t.fetch(ctx, plan, subjectURI, []string{ap.fragmentID})
	if err != nil {
		return err
	}

	p.RemoveValues(ap.path, payload.Language)
	if err := p.SetValue(ap.path, payload.Value, payload.Language); err != nil {
		return errors.Wrapf(ErrInvalidPayload, "%s.%s: %s", entityName, attributeName, err)
	}
	return t.commit(ctx, p)
}

// AddToAttribute appends the payload to the attribute. On a single-valued
// attribute this degrades to a replace, since only one value can hold.
func (t *Translator) AddToAttribute(ctx context.Context, entityName, subjectURI, attributeName string, payload FieldPayload) error {
	plan, err := t.plan(entityName)
	if err != nil {
		return err
	}
	ap, err := t.attributePlan(plan, attributeName)
	if err != nil {
		return err
	}

	p, err := t.fetch(ctx, plan, subjectURI, []string{ap.fragmentID})
	if err != nil {
		return err
	}

	if err := p.SetValue(ap.path, payload.Value, payload.Language); err != nil {
		return errors.Wrapf(ErrInvalidPayload, "%s.%s: %s", entityName, attributeName, err)
	}
	return t.commit(ctx, p)
}

// ReplaceResource clears every declared attribute and rebuilds the resource
// from the payload. Attributes absent from the payload end up empty; the
// root class stays stamped.
func (t *Translator) ReplaceResource(ctx context.Context, entityName, subjectURI string, fields map[string]FieldPayload) error {
	plan, err := t.plan(entityName)
	if err != nil {
		return err
	}

	p, err := t.fetch(ctx, plan, subjectURI, plan.fragmentIDs)
	if err != nil {
		return err
	}

	p.RemoveAll()
	p.ClearIntermediateTypes()
	p.StampRootType(plan.entity.TypeURI)

	if err := t.applyFields(plan, p, fields); err != nil {
		return err
	}
	return t.commit(ctx, p)
}

// applyFields writes payload fields in sorted attribute order so that the
// generated update is deterministic.
func (t *Translator) applyFields(plan *entityPlan, p *profile.Profile, fields map[string]FieldPayload) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ap, err := t.attributePlan(plan, name)
		if err != nil {
			return err
		}
		payload := fields[name]
		if err := p.SetValue(ap.path, payload.Value, payload.Language); err != nil {
			return errors.Wrapf(ErrInvalidPayload, "%s.%s: %s", plan.entity.Name, name, err)
		}
	}
	return nil
}
