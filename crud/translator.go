package crud

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tucfis/shexpose/entity"
	"github.com/tucfis/shexpose/errors"
	"github.com/tucfis/shexpose/fragment"
	"github.com/tucfis/shexpose/logger"
	"github.com/tucfis/shexpose/metric"
	"github.com/tucfis/shexpose/profile"
	"github.com/tucfis/shexpose/shapes"
	"github.com/tucfis/shexpose/sparql"
)

// Store is the triple store surface the translator needs. *sparql.Client
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	Construct(ctx context.Context, query string) (string, error)
	Update(ctx context.Context, body string) error
}

// attributePlan is the startup-resolved view of one declared attribute:
// its compiled path and the fragment that covers it.
type attributePlan struct {
	attr       *entity.Attribute
	path       *shapes.CompiledPath
	fragmentID string
}

// entityPlan holds everything resolved for one entity at startup.
type entityPlan struct {
	entity      *entity.Entity
	attributes  map[string]*attributePlan
	fragmentIDs []string          // distinct, sorted; union fetch order
	nestedTypes map[string]string // shape name -> class URI for minted nodes
}

// Translator turns CRUD requests against configured entities into SPARQL
// reads and ground-triple updates. All configuration is resolved and
// validated in NewTranslator; the per-request paths never consult raw
// config again.
type Translator struct {
	schema   *shapes.Schema
	queries  *fragment.Registry
	store    Store
	plans    map[string]*entityPlan
	log      *zap.SugaredLogger
	observer *metric.Metrics
}

// NewTranslator resolves every declared attribute against the schema and
// the fragment map. Any attribute without a resolvable type or a covering
// fragment is a *ConfigurationError; the caller is expected to refuse to
// start.
func NewTranslator(schema *shapes.Schema, locator *fragment.Locator, queries *fragment.Registry, entities *entity.Registry, store Store, observer *metric.Metrics) (*Translator, error) {
	t := &Translator{
		schema:   schema,
		queries:  queries,
		store:    store,
		plans:    make(map[string]*entityPlan),
		log:      logger.Named("crud"),
		observer: observer,
	}

	for _, name := range entities.Names() {
		ent := entities.Entity(name)
		plan := &entityPlan{
			entity:      ent,
			attributes:  make(map[string]*attributePlan),
			nestedTypes: make(map[string]string),
		}

		for i := range ent.Attributes {
			attr := &ent.Attributes[i]

			compiled := schema.CompilePath(ent.RootShape, attr.Path)
			if compiled == nil {
				return nil, &ConfigurationError{Entity: name, Attribute: attr.Name, Reason: "path does not resolve against shape " + ent.RootShape}
			}

			fragmentID := locator.Resolve(name, attr.Alias, attr.Path)
			if fragmentID == "" {
				return nil, &ConfigurationError{Entity: name, Attribute: attr.Name, Reason: "no fragment mapping"}
			}
			if !queries.Has(fragmentID) {
				return nil, &ConfigurationError{Entity: name, Attribute: attr.Name, Reason: "fragment query " + fragmentID + " not loaded"}
			}

			for _, step := range compiled.Steps {
				if step.IsReference && step.TargetShape != "" {
					if shape := schema.Shape(step.TargetShape); shape != nil && shape.TargetClass != "" {
						plan.nestedTypes[step.TargetShape] = shape.TargetClass
					}
				}
			}

			plan.attributes[attr.Name] = &attributePlan{
				attr:       attr,
				path:       compiled,
				fragmentID: fragmentID,
			}
		}

		// the union fetch touches every fragment the map declares, not
		// just the attribute-resolved ones, so each id needs a template
		plan.fragmentIDs = locator.FragmentIDs(name)
		for _, id := range plan.fragmentIDs {
			if !queries.Has(id) {
				return nil, &ConfigurationError{Entity: name, Reason: "fragment query " + id + " not loaded"}
			}
		}
		t.plans[name] = plan
	}

	return t, nil
}

// Entities returns the configured entity names, sorted.
func (t *Translator) Entities() []string {
	names := make([]string, 0, len(t.plans))
	for name := range t.plans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubjectURI resolves a path id into a full subject URI. Full URIs pass
// through; bare ids are joined under the entity's base namespace, matching
// the form Create mints.
func (t *Translator) SubjectURI(entityName, id string) (string, error) {
	plan, err := t.plan(entityName)
	if err != nil {
		return "", err
	}
	if strings.Contains(id, "://") {
		return id, nil
	}
	base := plan.entity.BaseNamespace
	if base != "" && !strings.HasSuffix(base, "/") && !strings.HasSuffix(base, "#") {
		base += "/"
	}
	return base + entityName + "/" + id, nil
}

func (t *Translator) plan(entityName string) (*entityPlan, error) {
	plan, ok := t.plans[entityName]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEntity, "%s", entityName)
	}
	return plan, nil
}

func (t *Translator) attributePlan(plan *entityPlan, attributeName string) (*attributePlan, error) {
	ap, ok := plan.attributes[attributeName]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAttribute, "%s.%s", plan.entity.Name, attributeName)
	}
	return ap, nil
}

// fetch runs one CONSTRUCT round trip per fragment, merges the results and
// decodes them into a profile. An entirely empty merge means the subject
// does not exist and yields ErrNotFound.
func (t *Translator) fetch(ctx context.Context, plan *entityPlan, subjectURI string, fragmentIDs []string) (*profile.Profile, error) {
	merger := fragment.NewMerger()
	for _, id := range fragmentIDs {
		query, err := t.queries.Render(id, subjectURI)
		if err != nil {
			return nil, err
		}
		body, err := t.store.Construct(ctx, query)
		if err != nil {
			return nil, err
		}
		t.observer.StoreRead()
		merger.Add(body)
	}

	if merger.IsEmpty() {
		return nil, errors.Wrapf(ErrNotFound, "%s %s", plan.entity.Name, subjectURI)
	}

	triples, err := sparql.Decode(merger.Merged())
	if err != nil {
		return nil, errors.Wrapf(err, "decoding merged fragments for %s", subjectURI)
	}

	p := profile.FromTriples(subjectURI, plan.entity.BaseNamespace, triples)
	p.SetNestedTypes(plan.nestedTypes)
	return p, nil
}

// commit serializes the profile's recorded changes into a single combined
// update and sends it in one round trip. A profile with no changes commits
// nothing.
func (t *Translator) commit(ctx context.Context, p *profile.Profile) error {
	deletes, inserts := p.Changes()
	builder := sparql.NewUpdateBuilder()
	builder.Delete(deletes...)
	builder.Insert(inserts...)
	if builder.Empty() {
		return nil
	}
	if err := t.store.Update(ctx, builder.Build()); err != nil {
		return err
	}
	t.observer.StoreWrite(builder.DeleteCount(), builder.InsertCount())
	return nil
}
