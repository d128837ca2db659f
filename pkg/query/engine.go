package query

import (
	"strings"

	"go.uber.org/zap"

	"github.com/funvibe/typescan/internal/assign"
	"github.com/funvibe/typescan/internal/pattern"
	"github.com/funvibe/typescan/internal/scan"
	"github.com/funvibe/typescan/internal/solver"
	"github.com/funvibe/typescan/pkg/typegraph"
)

// Option configures an evaluation.
type Option func(*Iterator)

// WithLogger wires a zap logger that traces filter decisions at debug level.
// The engine itself stays side-effect-free on its inputs; tracing is the only
// observable effect and is off by default.
func WithLogger(log *zap.Logger) Option {
	return func(it *Iterator) {
		if log != nil {
			it.log = log
		}
	}
}

// Evaluate runs q against g and returns a lazy, finite, forward-only
// iterator over the matches. The sequence is deterministic for identical
// inputs: scanner traversal order first, then Generalization order within a
// candidate. Concurrent Evaluate calls on the same graph are safe; all
// evaluation state is call-scoped.
func Evaluate(q *Query, g *typegraph.Graph, opts ...Option) *Iterator {
	it := &Iterator{q: q, g: g, log: zap.NewNop()}
	for _, opt := range opts {
		opt(it)
	}

	include, err := pattern.Compile(q.IncludeNames)
	if err != nil {
		// A malformed pattern excludes everything rather than failing.
		it.log.Debug("include pattern rejected, query matches nothing", zap.Error(err))
		it.done = true
		return it
	}
	exclude, err := pattern.Compile(q.ExcludeNames)
	if err != nil {
		it.log.Debug("exclude pattern rejected, query matches nothing", zap.Error(err))
		it.done = true
		return it
	}
	modulePattern, err := pattern.Compile(q.ModulePattern)
	if err != nil {
		it.log.Debug("module pattern rejected, query matches nothing", zap.Error(err))
		it.done = true
		return it
	}
	it.include = include
	it.exclude = exclude
	it.modules = scan.SelectModules(g, q.FromModuleOf, modulePattern)
	return it
}

// Iterator produces matches one at a time. It is single-pass and not
// restartable; dropping it early costs nothing, no resources are held.
type Iterator struct {
	q   *Query
	g   *typegraph.Graph
	log *zap.Logger

	include *pattern.Matcher
	exclude *pattern.Matcher

	modules []*typegraph.Module
	mi      int
	types   []*typegraph.TypeNode
	ti      int

	pending []Match
	done    bool
}

// Next returns the next match in the stream, or ok=false once exhausted.
func (it *Iterator) Next() (Match, bool) {
	for {
		if len(it.pending) > 0 {
			m := it.pending[0]
			it.pending = it.pending[1:]
			return m, true
		}
		if it.done {
			return Match{}, false
		}
		candidate := it.nextCandidate()
		if candidate == nil {
			it.done = true
			continue
		}
		it.pending = it.evaluate(candidate)
	}
}

// All drains the iterator into a slice.
func (it *Iterator) All() []Match {
	var out []Match
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		out = append(out, m)
	}
	return out
}

func (it *Iterator) nextCandidate() *typegraph.TypeNode {
	for {
		if it.ti < len(it.types) {
			t := it.types[it.ti]
			it.ti++
			return t
		}
		if it.mi >= len(it.modules) {
			return nil
		}
		it.types = scan.Types(it.modules[it.mi])
		it.ti = 0
		it.mi++
	}
}

// evaluate runs one candidate through the filter chain in its fixed order and
// returns the records it contributes: one per successful Binding, or a single
// unbound record when the query has no handler signature.
func (it *Iterator) evaluate(t *typegraph.TypeNode) []Match {
	q := it.q

	// 1. Structural eligibility.
	if t.Kind != typegraph.KindClass {
		return it.reject(t, "not class-kind")
	}
	if t.Abstract {
		return it.reject(t, "abstract")
	}
	if t.Name == "" || strings.Contains(t.Name, "<") {
		return it.reject(t, "unspeakable name")
	}
	if t.Static && !q.StaticHandler {
		return it.reject(t, "static")
	}

	// 2. Open generics cannot be passed as a fixed type argument.
	if t.IsOpen() && len(q.Handler) > 0 {
		return it.reject(t, "open generic candidate")
	}

	// 3–4. Marker tags.
	if q.RequireMarker != nil && !t.HasMarker(q.RequireMarker) {
		return it.reject(t, "required marker absent")
	}
	if q.ExcludeMarker != nil && t.HasMarker(q.ExcludeMarker) {
		return it.reject(t, "excluded marker present")
	}

	// 5–6. Name patterns.
	if !it.include.Match(t.Name) {
		return it.reject(t, "include pattern")
	}
	if it.exclude != nil && it.exclude.Match(t.Name) {
		return it.reject(t, "exclude pattern")
	}

	// 7. Exclude-assignable-to.
	if q.ExcludeAssignableTo != nil && len(assign.Resolve(t, q.ExcludeAssignableTo)) > 0 {
		return it.reject(t, "exclude-assignable-to")
	}

	// 8. Assignable-to, capturing witnesses for the solver.
	var gens []typegraph.Generalization
	if q.AssignableTo != nil {
		gens = assign.Resolve(t, q.AssignableTo)
		if len(gens) == 0 {
			return it.reject(t, "not assignable to target")
		}
	}

	// 9. Constraint solving, once per witness.
	matches := it.bind(t, gens)
	if matches == nil {
		return it.reject(t, "constraints unsatisfiable")
	}

	// 10. Accessibility from the query's declaration point.
	if !it.g.VisibleFrom(t) {
		return it.reject(t, "not visible")
	}
	return matches
}

// bind produces the match records for an accepted candidate, or nil when a
// handler signature is present and no witness yields a Binding.
func (it *Iterator) bind(t *typegraph.TypeNode, gens []typegraph.Generalization) []Match {
	if len(it.q.Handler) == 0 {
		m := Match{Type: t}
		if len(gens) > 0 {
			m.Generalization = &gens[0]
		}
		return []Match{m}
	}
	var out []Match
	if len(gens) == 0 {
		// No assignable-to target: a single unconstrained solve.
		if b, ok := solver.Solve(t, it.q.Handler, nil); ok {
			out = append(out, Match{Type: t, Binding: b})
		}
	}
	for i := range gens {
		gen := gens[i]
		if b, ok := solver.Solve(t, it.q.Handler, &gen); ok {
			out = append(out, Match{Type: t, Binding: b, Generalization: &gen})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (it *Iterator) reject(t *typegraph.TypeNode, reason string) []Match {
	it.log.Debug("candidate rejected",
		zap.String("type", t.String()),
		zap.String("filter", reason))
	return nil
}
