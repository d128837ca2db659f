// Package scan selects the modules a query covers and enumerates their type
// declarations in a stable, reproducible order.
package scan

import (
	"github.com/funvibe/typescan/internal/pattern"
	"github.com/funvibe/typescan/pkg/typegraph"
)

// SelectModules resolves the query's module-selection rule. Precedence,
// first match wins:
//
//  1. a marker type names its owning module only;
//  2. a module-name pattern selects every module of the declaring module's
//     reference closure (the declaring module included) whose name matches;
//  3. otherwise the declaring module alone.
//
// Specifying both a marker type and a pattern is legal; the pattern is then
// ignored.
func SelectModules(g *typegraph.Graph, marker *typegraph.TypeNode, namePattern *pattern.Matcher) []*typegraph.Module {
	if marker != nil {
		if owner := g.OwnerOf(marker); owner != nil {
			return []*typegraph.Module{owner}
		}
		// An unresolvable marker type selects nothing: silent exclusion.
		return nil
	}
	if namePattern != nil {
		var out []*typegraph.Module
		for _, m := range g.Closure() {
			if namePattern.Match(m.Name) {
				out = append(out, m)
			}
		}
		return out
	}
	if g.Declaring == nil {
		return nil
	}
	return []*typegraph.Module{g.Declaring}
}

// Types yields every type declared in m, depth-first over the namespace tree
// in declaration order, nested types immediately after their owner. This
// ordering is an external contract: downstream generators rely on identical
// inputs producing identical sequences.
func Types(m *typegraph.Module) []*typegraph.TypeNode {
	var out []*typegraph.TypeNode
	var walkType func(t *typegraph.TypeNode)
	walkType = func(t *typegraph.TypeNode) {
		out = append(out, t)
		for _, nested := range t.Nested {
			walkType(nested)
		}
	}
	var walkNS func(ns *typegraph.Namespace)
	walkNS = func(ns *typegraph.Namespace) {
		if ns == nil {
			return
		}
		for _, t := range ns.Types {
			walkType(t)
		}
		for _, child := range ns.Namespaces {
			walkNS(child)
		}
	}
	walkNS(m.Root)
	return out
}
