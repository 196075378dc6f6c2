package crud

import "context"

// DeleteAttribute removes the attribute's values. An optional language tag
// narrows the removal to that language bucket. Removing an attribute that
// has no values is a no-op, not an error.
func (t *Translator) DeleteAttribute(ctx context.Context, entityName, subjectURI, attributeName, language string) error {
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

	p.RemoveValues(ap.path, language)
	return t.commit(ctx, p)
}

// DeleteResource removes every statement the entity's fragments cover,
// type stamps included.
func (t *Translator) DeleteResource(ctx context.Context, entityName, subjectURI string) error {
	plan, err := t.plan(entityName)
	if err != nil {
		return err
	}

	p, err := t.fetch(ctx, plan, subjectURI, plan.fragmentIDs)
	if err != nil {
		return err
	}

	p.RemoveAll()
	p.ClearTypes()
	return t.commit(ctx, p)
}
