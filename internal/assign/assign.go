// Package assign decides assignability between a candidate type and a query
// target, producing the Generalizations that justify it.
//
// Open and closed targets are deliberately distinct cases: "assignable to
// IHandler<>" accepts any instantiation and must surface every one the
// candidate carries, while "assignable to IHandler<string>" accepts exactly
// that instantiation. Returning all interface witnesses (not just the first)
// is what lets a type implementing the same generic interface several times
// feed the solver once per implementation.
package assign

import (
	"github.com/funvibe/typescan/pkg/typegraph"
)

// Resolve returns the Generalizations under which candidate is assignable to
// target. An empty result means not assignable. The order of witnesses
// follows the candidate's declared interface order and is stable.
func Resolve(candidate, target *typegraph.TypeNode) []typegraph.Generalization {
	if candidate == nil || target == nil {
		return nil
	}

	// Identity admits any target kind and short-circuits everything else.
	if candidate.Equal(target) {
		return []typegraph.Generalization{{Candidate: candidate, Target: candidate}}
	}

	if target.IsOpen() {
		if target.Kind == typegraph.KindInterface {
			return openInterfaceWitnesses(candidate, target)
		}
		return openBaseWitness(candidate, target)
	}
	return closedWitness(candidate, target)
}

// openInterfaceWitnesses collects every distinct closed instantiation of the
// target definition in the candidate's flattened interface set. Duplicate
// instantiations reachable via different inheritance paths (diamonds) are
// deduplicated by structural equality.
func openInterfaceWitnesses(candidate, target *typegraph.TypeNode) []typegraph.Generalization {
	var out []typegraph.Generalization
	add := func(closed *typegraph.TypeNode) {
		for _, g := range out {
			if g.Target.Equal(closed) {
				return
			}
		}
		out = append(out, typegraph.Generalization{Candidate: candidate, Target: closed})
	}
	if candidate.Kind == typegraph.KindInterface && candidate.SameDefinition(target) {
		add(candidate)
	}
	for _, iface := range candidate.Interfaces {
		if iface.SameDefinition(target) {
			add(iface)
		}
	}
	return out
}

// openBaseWitness walks the base chain, candidate included, and returns the
// first ancestor built from the target definition.
func openBaseWitness(candidate, target *typegraph.TypeNode) []typegraph.Generalization {
	for t := candidate; t != nil; t = t.Base {
		if t.SameDefinition(target) {
			return []typegraph.Generalization{{Candidate: candidate, Target: t}}
		}
	}
	return nil
}

// closedWitness handles concrete (or non-generic) targets: exact structural
// membership in the interface set, or an exact ancestor on the base chain.
func closedWitness(candidate, target *typegraph.TypeNode) []typegraph.Generalization {
	if target.Kind == typegraph.KindInterface {
		for _, iface := range candidate.Interfaces {
			if iface.Equal(target) {
				return []typegraph.Generalization{{Candidate: candidate, Target: target}}
			}
		}
		return nil
	}
	for t := candidate.Base; t != nil; t = t.Base {
		if t.Equal(target) {
			return []typegraph.Generalization{{Candidate: candidate, Target: t}}
		}
	}
	return nil
}
