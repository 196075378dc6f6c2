package profile

import (
	"strconv"
	"strings"

	"github.com/tucfis/shexpose/errors"
	"github.com/tucfis/shexpose/shapes"
	"github.com/tucfis/shexpose/sparql"
)

// Value is the result of one attribute read. Value is nil when the path or
// its data is absent; Language is set only for language-eligible results.
// Multi-valued results carry Value as an ordered []any.
type Value struct {
	Language string `json:"language,omitempty"`
	Value    any    `json:"value"`
}

// Absent reports whether the read found no data.
func (v Value) Absent() bool {
	return v.Value == nil
}

// GetValue resolves a compiled attribute path against the profile. Fan-out
// over multi-reference intermediates recurses per element and flattens,
// discarding absent entries. The moment any intermediate relation is
// missing the result is absent, not an error.
func (p *Profile) GetValue(path *shapes.CompiledPath, preferredLanguage string) Value {
	current := p.walk(path)
	if len(current) == 0 {
		return Value{}
	}

	leafStep := path.Leaf()
	selectedLang := ""
	var collected []any

	for _, id := range current {
		prop := p.nodes[id].props[leafStep.Relation]
		if prop == nil {
			continue
		}
		// URI-valued leaves surface the referenced node URIs
		if len(prop.refs) > 0 {
			for _, ref := range prop.refs {
				collected = append(collected, p.nodes[ref].uri)
			}
			continue
		}
		if prop.leaf == nil {
			continue
		}
		bucket, values := selectBucket(prop.leaf, preferredLanguage)
		if bucket == "" {
			continue
		}
		if selectedLang == "" {
			selectedLang = bucket
		}
		for _, v := range values {
			collected = append(collected, jsonValue(v))
		}
	}

	if len(collected) == 0 {
		return Value{}
	}

	language := ""
	if !leafStep.IsURI && shapes.IsLanguageEligible(leafStep.Datatype) &&
		selectedLang != "" && selectedLang != NoLanguage {
		language = selectedLang
	}

	if multivaluedPath(path) || len(collected) > 1 {
		return Value{Language: language, Value: collected}
	}
	return Value{Language: language, Value: collected[0]}
}

// multivaluedPath reports whether the path can yield more than one value:
// a multi-valued leaf, or any fan-out over a multi-valued intermediate.
func multivaluedPath(path *shapes.CompiledPath) bool {
	for i := range path.Steps {
		if path.Steps[i].Multivalued() {
			return true
		}
	}
	return false
}

// selectBucket negotiates the language bucket: the preferred bucket when
// present and non-empty, else the first present bucket in the static
// fallback order, else none.
func selectBucket(l *leaf, preferredLanguage string) (string, []literalValue) {
	if preferredLanguage != "" {
		key := bucketKey(preferredLanguage)
		if values := l.buckets[key]; len(values) > 0 {
			return key, values
		}
	}
	for _, key := range FallbackLanguages {
		if values := l.buckets[key]; len(values) > 0 {
			return key, values
		}
	}
	return "", nil
}

// SetValue writes values at the path, creating missing intermediate nodes
// on the way. With a language on a multi-valued leaf, values are added to
// that bucket without touching other buckets; with a language on a
// single-valued leaf only the first element is stored (declared
// cardinality wins, extras are dropped silently). Without a language the
// language-less slot is overwritten outright.
func (p *Profile) SetValue(path *shapes.CompiledPath, value any, language string) error {
	values := normalizeValues(value)
	if len(values) == 0 {
		return nil
	}

	leafStep := path.Leaf()
	if language != "" && (leafStep.IsURI || !shapes.IsLanguageEligible(leafStep.Datatype)) {
		return errors.Newf("language tag not permitted for datatype %s", leafStep.Datatype)
	}

	current := []NodeID{p.root}
	for i := range path.Steps[:len(path.Steps)-1] {
		step := &path.Steps[i]
		var next []NodeID
		for _, id := range current {
			n := p.nodes[id]
			prop := n.props[step.Relation]
			if prop != nil && len(prop.refs) > 0 {
				next = append(next, prop.refs...)
				continue
			}
			childID := p.createChild(id, step)
			next = append(next, childID)
		}
		current = next
	}

	for _, id := range current {
		if err := p.setLeaf(id, leafStep, values, language); err != nil {
			return err
		}
	}
	return nil
}

// createChild mints an intermediate node under parent for a reference
// step, recording the linking triple and any configured type stamp.
func (p *Profile) createChild(parent NodeID, step *shapes.Step) NodeID {
	n := p.nodes[parent]
	prop := n.props[step.Relation]
	if prop == nil {
		prop = &property{}
		n.props[step.Relation] = prop
	}
	childID := p.mintNode()
	prop.refs = append(prop.refs, childID)
	p.inserts = append(p.inserts, sparql.Triple{
		Subject:   n.uri,
		Predicate: step.Relation,
		Object:    sparql.IRI(p.nodes[childID].uri),
	})
	if step.TargetShape != "" {
		if classURI := p.nestedTypes[step.TargetShape]; classURI != "" {
			p.stampType(childID, classURI)
		}
	}
	return childID
}

func (p *Profile) setLeaf(id NodeID, step *shapes.Step, values []any, language string) error {
	n := p.nodes[id]
	prop := n.props[step.Relation]
	if prop == nil {
		prop = &property{}
		n.props[step.Relation] = prop
	}

	if step.IsURI {
		return p.setURILeaf(n, prop, step, values)
	}

	if prop.leaf == nil {
		prop.leaf = newLeaf()
	}

	if language != "" {
		bucket := bucketKey(language)
		if step.Multivalued() {
			// Additive: never replaces entries in this or other buckets
			for _, v := range values {
				lexical, err := shapes.Lexical(step.Datatype, v)
				if err != nil {
					return errors.Wrapf(err, "invalid value for %s", step.Relation)
				}
				if leafContains(prop.leaf.buckets[bucket], lexical) {
					continue
				}
				prop.leaf.buckets[bucket] = append(prop.leaf.buckets[bucket], literalValue{lexical: lexical})
				p.inserts = append(p.inserts, sparql.Triple{
					Subject:   n.uri,
					Predicate: step.Relation,
					Object:    sparql.Literal(lexical, "", bucket),
				})
			}
			return nil
		}
		// Single-valued: the declared cardinality wins — only the first
		// element is stored, extras are dropped
		lexical, err := shapes.Lexical(step.Datatype, values[0])
		if err != nil {
			return errors.Wrapf(err, "invalid value for %s", step.Relation)
		}
		p.replaceBucket(n, step.Relation, prop.leaf, bucket, []literalValue{{lexical: lexical}})
		return nil
	}

	// No language: the language-less slot is overwritten outright
	keep := values
	if !step.Multivalued() {
		keep = values[:1]
	}
	replacement := make([]literalValue, 0, len(keep))
	for _, v := range keep {
		lexical, err := shapes.Lexical(step.Datatype, v)
		if err != nil {
			return errors.Wrapf(err, "invalid value for %s", step.Relation)
		}
		replacement = append(replacement, literalValue{lexical: lexical, datatype: step.Datatype})
	}
	p.replaceBucket(n, step.Relation, prop.leaf, NoLanguage, replacement)
	return nil
}

// replaceBucket swaps one bucket's contents, recording removals for the
// previous values and insertions for the new ones.
func (p *Profile) replaceBucket(n *node, relation string, l *leaf, bucket string, replacement []literalValue) {
	lang := bucket
	if bucket == NoLanguage {
		lang = ""
	}
	for _, old := range l.buckets[bucket] {
		p.deletes = append(p.deletes, sparql.Triple{
			Subject:   n.uri,
			Predicate: relation,
			Object:    sparql.Literal(old.lexical, old.datatype, lang),
		})
	}
	l.buckets[bucket] = replacement
	for _, v := range replacement {
		p.inserts = append(p.inserts, sparql.Triple{
			Subject:   n.uri,
			Predicate: relation,
			Object:    sparql.Literal(v.lexical, v.datatype, lang),
		})
	}
}

func (p *Profile) setURILeaf(n *node, prop *property, step *shapes.Step, values []any) error {
	keep := values
	if !step.Multivalued() {
		keep = values[:1]
	}
	// Overwrite: drop existing references, then link the new URIs
	for _, ref := range prop.refs {
		p.deletes = append(p.deletes, sparql.Triple{
			Subject:   n.uri,
			Predicate: step.Relation,
			Object:    sparql.IRI(p.nodes[ref].uri),
		})
	}
	prop.refs = nil
	for _, v := range keep {
		uri, ok := v.(string)
		if !ok {
			return errors.Newf("URI-valued relation %s expects string values, got %T", step.Relation, v)
		}
		childID := NodeID(len(p.nodes))
		p.nodes = append(p.nodes, &node{uri: uri, props: make(map[string]*property)})
		prop.refs = append(prop.refs, childID)
		p.inserts = append(p.inserts, sparql.Triple{
			Subject:   n.uri,
			Predicate: step.Relation,
			Object:    sparql.IRI(uri),
		})
	}
	return nil
}

// RemoveValues tears values down. With a language it deletes exactly that
// bucket on every fanned-out leaf, leaving other buckets intact; without
// one it clears the leaf entirely. Missing path segments or leaves are a
// no-op — removal never raises on absent data.
func (p *Profile) RemoveValues(path *shapes.CompiledPath, language string) {
	current := p.walk(path)
	if len(current) == 0 {
		return
	}
	leafStep := path.Leaf()
	for _, id := range current {
		p.removeLeaf(id, leafStep, language)
	}
}

func (p *Profile) removeLeaf(id NodeID, step *shapes.Step, language string) {
	n := p.nodes[id]
	prop := n.props[step.Relation]
	if prop == nil {
		return
	}

	if len(prop.refs) > 0 {
		// URI-valued leaf: buckets don't apply, only a full clear removes
		if language != "" {
			return
		}
		for _, ref := range prop.refs {
			p.deletes = append(p.deletes, sparql.Triple{
				Subject:   n.uri,
				Predicate: step.Relation,
				Object:    sparql.IRI(p.nodes[ref].uri),
			})
		}
		prop.refs = nil
	}

	if prop.leaf == nil {
		return
	}

	if language != "" {
		bucket := bucketKey(language)
		p.deleteBucket(n, step.Relation, prop.leaf, bucket)
		return
	}
	for bucket := range prop.leaf.buckets {
		p.deleteBucket(n, step.Relation, prop.leaf, bucket)
	}
}

func (p *Profile) deleteBucket(n *node, relation string, l *leaf, bucket string) {
	lang := bucket
	if bucket == NoLanguage {
		lang = ""
	}
	for _, v := range l.buckets[bucket] {
		p.deletes = append(p.deletes, sparql.Triple{
			Subject:   n.uri,
			Predicate: relation,
			Object:    sparql.Literal(v.lexical, v.datatype, lang),
		})
	}
	delete(l.buckets, bucket)
}

// walk resolves the intermediate steps of a path without creating
// anything, fanning out over multi-reference nodes. An empty result means
// some intermediate relation is missing.
func (p *Profile) walk(path *shapes.CompiledPath) []NodeID {
	current := []NodeID{p.root}
	for i := range path.Steps[:len(path.Steps)-1] {
		step := &path.Steps[i]
		var next []NodeID
		for _, id := range current {
			if prop := p.nodes[id].props[step.Relation]; prop != nil {
				next = append(next, prop.refs...)
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

func leafContains(values []literalValue, lexical string) bool {
	for _, v := range values {
		if v.lexical == lexical {
			return true
		}
	}
	return false
}

func normalizeValues(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{value}
	}
}

// jsonValue converts a stored literal into its natural JSON type.
func jsonValue(v literalValue) any {
	switch v.datatype {
	case shapes.XSDInteger, shapes.XSDInt, shapes.XSDLong:
		if n, err := strconv.ParseInt(v.lexical, 10, 64); err == nil {
			return n
		}
	case shapes.XSDDecimal, shapes.XSDFloat, shapes.XSDDouble:
		if f, err := strconv.ParseFloat(v.lexical, 64); err == nil {
			return f
		}
	case shapes.XSDBoolean:
		if b, err := strconv.ParseBool(strings.ToLower(v.lexical)); err == nil {
			return b
		}
	}
	return v.lexical
}
