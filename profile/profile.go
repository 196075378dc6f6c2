// Package profile implements the in-memory resource profile: a
// subject-rooted tree built from a fetched graph fragment, and the
// get/set/remove engine that interprets compiled attribute paths against
// it. Every mutation is confined to the profile and recorded as ground
// triple additions/removals until the caller commits the diff; nothing is
// written to the store from here.
package profile

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tucfis/shexpose/shapes"
	"github.com/tucfis/shexpose/sparql"
)

// NoLanguage is the bucket key for values without a language tag.
const NoLanguage = "@none"

// FallbackLanguages is the static language negotiation order, tried
// whenever the preferred language bucket is absent or empty.
var FallbackLanguages = []string{NoLanguage, "de", "de-de", "en", "en-us"}

// NodeID is a synthetic arena key. Shared paths reference the same id
// rather than duplicating structure.
type NodeID int

const noNode NodeID = -1

// literalValue is one stored literal.
type literalValue struct {
	lexical  string
	datatype string
}

// leaf holds the per-language value buckets of a literal-bearing property.
type leaf struct {
	buckets map[string][]literalValue
}

func newLeaf() *leaf {
	return &leaf{buckets: make(map[string][]literalValue)}
}

// property is one relation slot of a node: reference children or a literal
// leaf, never both under a well-formed schema.
type property struct {
	refs []NodeID
	leaf *leaf
}

// node is one resource in the profile tree.
type node struct {
	uri   string
	types []string // rdf:type stamps
	props map[string]*property
}

// Profile is the per-request in-memory resource profile. It is created for
// one top-level subject, mutated, committed once, and discarded; it is
// never shared across requests.
type Profile struct {
	nodes []*node
	root  NodeID
	base  string // namespace for minted intermediate-node URIs

	// nestedTypes maps shape names to the class URI stamped onto
	// intermediate nodes created for that shape. Configured per entity.
	nestedTypes map[string]string

	deletes []sparql.Triple
	inserts []sparql.Triple
}

// New builds an empty profile rooted at subjectURI. Used by create
// operations before any data exists.
func New(subjectURI, baseNamespace string) *Profile {
	p := &Profile{base: baseNamespace, root: 0}
	p.nodes = []*node{{uri: subjectURI, props: make(map[string]*property)}}
	return p
}

// FromTriples builds a profile for subjectURI from decoded fragment
// statements. IRIs in object position become reference children; literals
// land in language buckets ("@none" for untagged values).
func FromTriples(subjectURI, baseNamespace string, triples []sparql.Triple) *Profile {
	p := New(subjectURI, baseNamespace)
	index := map[string]NodeID{subjectURI: p.root}

	nodeFor := func(uri string) NodeID {
		if id, ok := index[uri]; ok {
			return id
		}
		id := NodeID(len(p.nodes))
		p.nodes = append(p.nodes, &node{uri: uri, props: make(map[string]*property)})
		index[uri] = id
		return id
	}

	for _, t := range triples {
		subjectID := nodeFor(t.Subject)
		subject := p.nodes[subjectID]

		if t.Predicate == shapes.RDFType && t.Object.IsIRI() {
			subject.types = append(subject.types, t.Object.Value)
			continue
		}

		prop := subject.props[t.Predicate]
		if prop == nil {
			prop = &property{}
			subject.props[t.Predicate] = prop
		}

		if t.Object.IsIRI() {
			childID := nodeFor(t.Object.Value)
			if !containsID(prop.refs, childID) {
				prop.refs = append(prop.refs, childID)
			}
			continue
		}

		if prop.leaf == nil {
			prop.leaf = newLeaf()
		}
		bucket := bucketKey(t.Object.Lang)
		prop.leaf.buckets[bucket] = append(prop.leaf.buckets[bucket], literalValue{
			lexical:  t.Object.Value,
			datatype: t.Object.Datatype,
		})
	}
	return p
}

// SetNestedTypes configures the class URIs stamped onto intermediate nodes
// created along paths into the named shapes.
func (p *Profile) SetNestedTypes(byShape map[string]string) {
	p.nestedTypes = byShape
}

// SubjectURI returns the root subject.
func (p *Profile) SubjectURI() string {
	return p.nodes[p.root].uri
}

// Changes returns the accumulated ground-statement diff: removals first,
// additions second. The caller serializes these into the single combined
// update of the operation.
func (p *Profile) Changes() (deletes, inserts []sparql.Triple) {
	return p.deletes, p.inserts
}

// HasChanges reports whether any mutation was recorded.
func (p *Profile) HasChanges() bool {
	return len(p.deletes) > 0 || len(p.inserts) > 0
}

// StampRootType records the resource's declared class on the root node.
// No-op if the root already carries the class.
func (p *Profile) StampRootType(classURI string) {
	p.stampType(p.root, classURI)
}

// ClearTypes removes every rdf:type stamp in the profile, the root's
// included. Used by whole-resource delete and by full replace before
// re-stamping.
func (p *Profile) ClearTypes() {
	for id := range p.nodes {
		p.clearTypes(NodeID(id))
	}
}

// ClearIntermediateTypes removes rdf:type stamps from every node except
// the root. Used by full replace, which keeps the root's class.
func (p *Profile) ClearIntermediateTypes() {
	for id := range p.nodes {
		if NodeID(id) != p.root {
			p.clearTypes(NodeID(id))
		}
	}
}

// RemoveAll records deletion of every property statement in the profile:
// reference links and all literal buckets, on the root and every reached
// node. Type stamps are untouched; full replace clears intermediate types
// separately and whole-resource delete follows with ClearTypes.
func (p *Profile) RemoveAll() {
	for _, n := range p.nodes {
		for relation, prop := range n.props {
			for _, childID := range prop.refs {
				p.deletes = append(p.deletes, sparql.Triple{
					Subject:   n.uri,
					Predicate: relation,
					Object:    sparql.IRI(p.nodes[childID].uri),
				})
			}
			if prop.leaf != nil {
				for bucket, values := range prop.leaf.buckets {
					lang := bucket
					if lang == NoLanguage {
						lang = ""
					}
					for _, v := range values {
						p.deletes = append(p.deletes, sparql.Triple{
							Subject:   n.uri,
							Predicate: relation,
							Object:    sparql.Literal(v.lexical, v.datatype, lang),
						})
					}
				}
			}
		}
		n.props = make(map[string]*property)
	}
}

func (p *Profile) stampType(id NodeID, classURI string) {
	n := p.nodes[id]
	for _, existing := range n.types {
		if existing == classURI {
			return
		}
	}
	n.types = append(n.types, classURI)
	p.inserts = append(p.inserts, sparql.Triple{
		Subject:   n.uri,
		Predicate: shapes.RDFType,
		Object:    sparql.IRI(classURI),
	})
}

func (p *Profile) clearTypes(id NodeID) {
	n := p.nodes[id]
	for _, classURI := range n.types {
		p.deletes = append(p.deletes, sparql.Triple{
			Subject:   n.uri,
			Predicate: shapes.RDFType,
			Object:    sparql.IRI(classURI),
		})
	}
	n.types = nil
}

// mintNode allocates a fresh node with a generated, stable, non-blank URI.
// The update wire format forbids unscoped blank nodes in ground deletion
// statements, so intermediate nodes always get real URIs.
func (p *Profile) mintNode() NodeID {
	base := p.base
	if base != "" && !strings.HasSuffix(base, "/") && !strings.HasSuffix(base, "#") {
		base += "/"
	}
	id := NodeID(len(p.nodes))
	p.nodes = append(p.nodes, &node{
		uri:   base + "node/" + uuid.NewString(),
		props: make(map[string]*property),
	})
	return id
}

// MintSubjectURI allocates a fresh top-level subject URI under the base
// namespace. Used by create operations.
func MintSubjectURI(baseNamespace, entityName string) string {
	base := baseNamespace
	if base != "" && !strings.HasSuffix(base, "/") && !strings.HasSuffix(base, "#") {
		base += "/"
	}
	return base + entityName + "/" + uuid.NewString()
}

func bucketKey(lang string) string {
	if lang == "" {
		return NoLanguage
	}
	return strings.ToLower(lang)
}

func containsID(ids []NodeID, id NodeID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
