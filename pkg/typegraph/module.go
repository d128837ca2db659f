package typegraph

// Namespace is one level of a module's declaration tree. Types and child
// namespaces keep their declaration order; the scanner's traversal order over
// this tree is an external contract (generated artifacts must be
// reproducible), so providers must populate it deterministically.
type Namespace struct {
	Name       string
	Types      []*TypeNode
	Namespaces []*Namespace
}

// Module is one assembly/compilation unit in the graph.
type Module struct {
	Name       string
	Root       *Namespace
	References []*Module
}

// Graph is the immutable universe a query evaluates against. It is built once
// by a provider (YAML fixtures, Go source adapter, or hand-constructed in
// tests) and never mutated by the engine.
type Graph struct {
	// Modules lists every module in the graph, order-stable.
	Modules []*Module

	// Declaring is the module the query itself is declared in; it anchors
	// default module selection and visibility checks.
	Declaring *Module

	// Visible overrides the visibility check from the query's declaration
	// point. Nil falls back to accessibility: public always, internal only
	// within the declaring module.
	Visible func(t *TypeNode) bool
}

// VisibleFrom reports whether t can be referenced from the query's
// declaration point.
func (g *Graph) VisibleFrom(t *TypeNode) bool {
	if g.Visible != nil {
		return g.Visible(t)
	}
	switch t.Access {
	case Public:
		return true
	case Internal:
		owner := g.OwnerOf(t)
		return owner != nil && owner == g.Declaring
	default:
		return false
	}
}

// OwnerOf returns the module declaring t's definition, or nil if t is not
// declared in this graph (e.g. a synthesized instantiation node).
func (g *Graph) OwnerOf(t *TypeNode) *Module {
	for _, m := range g.Modules {
		if m.declares(t) {
			return m
		}
	}
	return nil
}

func (m *Module) declares(t *TypeNode) bool {
	found := false
	walkNamespace(m.Root, func(decl *TypeNode) {
		if decl.SameDefinition(t) {
			found = true
		}
	})
	return found
}

// Closure returns the declaring module plus its reachable reference closure,
// in deterministic breadth-first declaration order.
func (g *Graph) Closure() []*Module {
	if g.Declaring == nil {
		return nil
	}
	seen := map[*Module]bool{g.Declaring: true}
	out := []*Module{g.Declaring}
	for i := 0; i < len(out); i++ {
		for _, ref := range out[i].References {
			if !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
		}
	}
	return out
}

// Lookup finds a declared type by qualified name anywhere in the graph.
func (g *Graph) Lookup(name string) (*TypeNode, bool) {
	for _, m := range g.Modules {
		var found *TypeNode
		walkNamespace(m.Root, func(t *TypeNode) {
			if found == nil && t.Name == name {
				found = t
			}
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

func walkNamespace(ns *Namespace, fn func(*TypeNode)) {
	if ns == nil {
		return
	}
	for _, t := range ns.Types {
		walkType(t, fn)
	}
	for _, child := range ns.Namespaces {
		walkNamespace(child, fn)
	}
}

func walkType(t *TypeNode, fn func(*TypeNode)) {
	fn(t)
	for _, nested := range t.Nested {
		walkType(nested, fn)
	}
}
