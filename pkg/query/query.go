// Package query is the engine's public surface: a declarative Query value
// and Evaluate, which runs it against an immutable type graph and produces a
// lazy, deterministic stream of matches.
package query

import (
	"github.com/funvibe/typescan/pkg/typegraph"
)

// Query is an immutable filter specification. Construction and validation
// belong to the front end (YAML loader, host tool); malformed values are a
// precondition violation, not something Evaluate diagnoses.
type Query struct {
	// FromModuleOf selects the module owning this marker type. Takes
	// precedence over ModulePattern.
	FromModuleOf *typegraph.TypeNode

	// ModulePattern selects modules from the declaring module's reference
	// closure by wildcard name pattern. Ignored when FromModuleOf is set.
	ModulePattern string

	// AssignableTo accepts only candidates assignable to this target, which
	// may be an open generic definition.
	AssignableTo *typegraph.TypeNode

	// ExcludeAssignableTo rejects candidates assignable to this target.
	ExcludeAssignableTo *typegraph.TypeNode

	// RequireMarker / ExcludeMarker filter on declared marker tags.
	RequireMarker *typegraph.TypeNode
	ExcludeMarker *typegraph.TypeNode

	// IncludeNames / ExcludeNames are wildcard patterns over fully-qualified
	// type names.
	IncludeNames string
	ExcludeNames string

	// Handler is the generic parameter list of the handler signature driving
	// constraint solving. Empty means no constraint solving: accepted
	// candidates are emitted with a nil Binding.
	Handler []*typegraph.GenericParameter

	// StaticHandler marks the handler as a type-level static method form,
	// which admits static candidate types.
	StaticHandler bool
}

// Match is one accepted (candidate, binding) record. Binding is nil when the
// query has no handler signature; Generalization is nil when it has no
// assignable-to target.
type Match struct {
	Type           *typegraph.TypeNode
	Binding        *typegraph.Binding
	Generalization *typegraph.Generalization
}
