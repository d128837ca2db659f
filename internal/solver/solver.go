// Package solver validates a candidate type against a handler's generic
// parameter set and, when the constraints hold, produces the full Binding.
//
// Only the first parameter is seeded from the candidate; every other
// parameter must be derivable by satisfying constraints against the
// candidate's Generalizations. Mutually-recursive constraints (X: ISmth<Y>,
// Y: ISmth<X>) terminate through a per-solve visited set: a parameter that is
// already in progress is treated as satisfied rather than re-validated.
package solver

import (
	"github.com/funvibe/typescan/internal/assign"
	"github.com/funvibe/typescan/pkg/typegraph"
)

// Solve attempts to bind params for candidate. seed, when non-nil, is the
// Generalization the engine is currently expanding: constraints over the same
// definition align against it alone, which is what makes one candidate with N
// interface witnesses yield N independent Bindings instead of one merged
// result. Returns (nil, false) when the constraint system is unsatisfiable or
// leaves any parameter unbound.
func Solve(candidate *typegraph.TypeNode, params []*typegraph.GenericParameter, seed *typegraph.Generalization) (*typegraph.Binding, bool) {
	if len(params) == 0 {
		return typegraph.NewBinding(), true
	}
	s := &state{
		binding: typegraph.NewBinding(),
		visited: make(map[*typegraph.GenericParameter]bool),
		seed:    seed,
	}
	if !s.satisfies(candidate, params[0]) {
		return nil, false
	}
	// No independent enumeration: a parameter the constraints never reached
	// has no derivable binding, so the candidate is rejected.
	for _, p := range params {
		if _, ok := s.binding.Lookup(p); !ok {
			return nil, false
		}
	}
	return s.binding, true
}

// state is scoped to one top-level Solve call and never shared across
// candidates.
type state struct {
	binding *typegraph.Binding
	visited map[*typegraph.GenericParameter]bool
	seed    *typegraph.Generalization
}

func (s *state) satisfies(t *typegraph.TypeNode, p *typegraph.GenericParameter) bool {
	if s.visited[p] {
		return true
	}
	s.visited[p] = true
	s.binding.Bind(p, t)

	if p.Class && t.Kind == typegraph.KindValue {
		return false
	}
	if p.Struct && t.Kind != typegraph.KindValue {
		return false
	}
	if p.Unmanaged && (t.Kind != typegraph.KindValue || !t.Unmanaged) {
		return false
	}
	if p.New && !t.HasDefaultConstructor() {
		return false
	}

	for _, c := range p.Constraints {
		if !c.HasParams() {
			// Plain bound: assignability alone decides, witnesses are
			// irrelevant here.
			if len(assign.Resolve(t, c)) == 0 {
				return false
			}
			continue
		}
		if !s.satisfiesRecursive(t, c) {
			return false
		}
	}
	return true
}

// satisfiesRecursive handles a constraint whose arguments embed other
// generic parameters. t's Generalizations against the constraint's open
// definition are tried in order; the first full positional alignment wins.
func (s *state) satisfiesRecursive(t *typegraph.TypeNode, c *typegraph.TypeNode) bool {
	def := c.Definition()
	var gens []typegraph.Generalization
	if s.seed != nil && s.seed.Candidate.Equal(t) && s.seed.Target.SameDefinition(def) {
		gens = []typegraph.Generalization{*s.seed}
	} else {
		gens = assign.Resolve(t, def)
	}

	for _, gen := range gens {
		if len(gen.Target.Args) != len(c.Args) {
			continue
		}
		if s.tryAlign(c, gen) {
			return true
		}
	}
	return false
}

// tryAlign matches c's argument list against the witness's closed arguments
// position by position. Failed attempts must leave no trace, so the trial
// runs on cloned state and commits only on success.
func (s *state) tryAlign(c *typegraph.TypeNode, gen typegraph.Generalization) bool {
	savedBinding, savedVisited := s.binding, s.visited
	s.binding = s.binding.Clone()
	s.visited = cloneVisited(s.visited)

	ok := true
	for i, arg := range c.Args {
		closed := gen.Target.Args[i]
		if arg.Param != nil {
			if !s.satisfies(closed, arg.Param) {
				ok = false
				break
			}
			continue
		}
		if !arg.Equal(closed) {
			ok = false
			break
		}
	}
	if !ok {
		s.binding, s.visited = savedBinding, savedVisited
	}
	return ok
}

func cloneVisited(m map[*typegraph.GenericParameter]bool) map[*typegraph.GenericParameter]bool {
	c := make(map[*typegraph.GenericParameter]bool, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
