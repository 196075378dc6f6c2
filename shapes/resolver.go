package shapes

// Path type resolution: walking a shape schema along an attribute path to
// determine the terminal datatype, cardinality, and reference-vs-literal
// classification of each step.

// TypeInfo describes the leaf of a resolved attribute path.
type TypeInfo struct {
	// Datatype is the literal datatype IRI; empty for URI-valued leaves.
	Datatype string
	// MinCount and MaxCount carry the leaf constraint's cardinality.
	// MaxCount == Unbounded means multi-valued.
	MinCount int
	MaxCount int
	// IsURI marks a URI-valued leaf (nodeKind IRI without a nested shape).
	IsURI bool
}

// Multivalued reports whether the leaf allows more than one value.
func (ti *TypeInfo) Multivalued() bool {
	return ti.MaxCount == Unbounded || ti.MaxCount > 1
}

// LanguageEligible reports whether values at this leaf may carry language
// tags.
func (ti *TypeInfo) LanguageEligible() bool {
	return !ti.IsURI && IsLanguageEligible(ti.Datatype)
}

// TypeInfoForPath resolves an attribute path against a root shape. Every
// relation except the last must be a reference constraint; the last must be
// a literal or URI-valued leaf. Returns nil if any step is unresolvable —
// callers treat nil as "path not declared" and reject at the API boundary.
func (s *Schema) TypeInfoForPath(rootShape string, path []string) *TypeInfo {
	if len(path) == 0 {
		return nil
	}
	shape := s.shapes[rootShape]
	if shape == nil {
		return nil
	}
	for _, relation := range path[:len(path)-1] {
		pc := shape.Constraint(relation)
		if pc == nil || !pc.IsReference() {
			return nil
		}
		shape = s.shapes[pc.Node]
		if shape == nil {
			return nil
		}
	}
	leaf := shape.Constraint(path[len(path)-1])
	if leaf == nil || leaf.IsReference() {
		return nil
	}
	return &TypeInfo{
		Datatype: leaf.Datatype,
		MinCount: int(leaf.MinCount),
		MaxCount: int(leaf.MaxCount),
		IsURI:    leaf.Datatype == "" && leaf.NodeKind == "IRI" || leaf.Datatype == XSDAnyURI,
	}
}

// Step is one compiled segment of an attribute path. Paths are compiled
// once at schema load; requests interpret the compiled form instead of
// re-walking the schema.
type Step struct {
	Relation    string
	MinCount    int
	MaxCount    int
	IsReference bool
	// TargetShape names the referenced shape; set only on reference steps.
	TargetShape string
	// Datatype of the leaf literal; set only on the final step.
	Datatype string
	// IsURI marks a URI-valued final step.
	IsURI bool
}

// Multivalued reports whether this step allows more than one value.
func (st *Step) Multivalued() bool {
	return st.MaxCount == Unbounded || st.MaxCount > 1
}

// CompiledPath is an attribute path resolved against the schema into a
// fixed list of steps.
type CompiledPath struct {
	Root  string
	Steps []Step
}

// Leaf returns the final step.
func (p *CompiledPath) Leaf() *Step {
	return &p.Steps[len(p.Steps)-1]
}

// Relations returns the ordered relation IRIs of the path.
func (p *CompiledPath) Relations() []string {
	relations := make([]string, len(p.Steps))
	for i := range p.Steps {
		relations[i] = p.Steps[i].Relation
	}
	return relations
}

// CompilePath resolves an attribute path into steps. Returns nil when the
// path is not declared by the schema, mirroring TypeInfoForPath.
func (s *Schema) CompilePath(rootShape string, path []string) *CompiledPath {
	if len(path) == 0 {
		return nil
	}
	shape := s.shapes[rootShape]
	if shape == nil {
		return nil
	}
	steps := make([]Step, 0, len(path))
	for _, relation := range path[:len(path)-1] {
		pc := shape.Constraint(relation)
		if pc == nil || !pc.IsReference() {
			return nil
		}
		steps = append(steps, Step{
			Relation:    relation,
			MinCount:    int(pc.MinCount),
			MaxCount:    int(pc.MaxCount),
			IsReference: true,
			TargetShape: pc.Node,
		})
		shape = s.shapes[pc.Node]
		if shape == nil {
			return nil
		}
	}
	info := s.TypeInfoForPath(rootShape, path)
	if info == nil {
		return nil
	}
	steps = append(steps, Step{
		Relation: path[len(path)-1],
		MinCount: info.MinCount,
		MaxCount: info.MaxCount,
		Datatype: info.Datatype,
		IsURI:    info.IsURI,
	})
	return &CompiledPath{Root: rootShape, Steps: steps}
}
