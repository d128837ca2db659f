// Package typegraph defines the immutable type-declaration universe that
// queries run against: type nodes, their inheritance and interface edges,
// generic parameters, and the witness values (Generalization, Binding)
// produced while matching.
//
// Identity is structural throughout: two nodes are the same type iff their
// qualified names and ordered argument lists are equal. Pointer identity is
// never significant, because a graph may expose the same generic definition
// instantiated differently along different edges.
package typegraph

import (
	"fmt"
	"strings"
)

// Kind classifies a type declaration.
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// Accessibility of a declaration, from most to least visible.
type Accessibility int

const (
	Public Accessibility = iota
	Internal
	Private
)

func (a Accessibility) String() string {
	switch a {
	case Public:
		return "public"
	case Internal:
		return "internal"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// Constructor describes one declared constructor of a type.
type Constructor struct {
	Access Accessibility
	Params int
	Static bool
}

// TypeNode is a single declaration in the type graph.
//
// A generic definition has Arity > 0 and nil Args (the open form). An
// instantiation carries the same Name and Arity with a concrete Args list of
// that length. Interfaces holds the full, already-flattened interface set,
// inherited edges included; Base is the direct base-type edge.
type TypeNode struct {
	Name   string // fully qualified
	Kind   Kind
	Access Accessibility

	Abstract bool
	Static   bool
	Sealed   bool

	Arity int
	Args  []*TypeNode

	// Param is set when this node stands for a handler generic parameter
	// inside a constraint reference rather than a real declaration.
	Param *GenericParameter

	Base         *TypeNode
	Interfaces   []*TypeNode
	Markers      []*TypeNode
	Constructors []Constructor
	Nested       []*TypeNode

	// Unmanaged marks value kinds that satisfy the unmanaged constraint.
	Unmanaged bool
}

// GenericParameter is one parameter of a handler signature.
type GenericParameter struct {
	Ordinal int
	Name    string

	Class     bool // reference-type constraint
	Struct    bool // value-type constraint
	Unmanaged bool
	New       bool // public parameterless constructor

	// Constraints lists bound-type requirements in declaration order. A
	// constraint node's Args may embed other GenericParameters (as Param
	// nodes), which is what makes mutual constraints expressible.
	Constraints []*TypeNode
}

// ParamNode wraps a generic parameter so it can appear as a type argument
// inside a constraint reference.
func ParamNode(p *GenericParameter) *TypeNode {
	return &TypeNode{Name: p.Name, Param: p}
}

// IsOpen reports whether t is an open generic definition.
func (t *TypeNode) IsOpen() bool {
	return t.Arity > 0 && len(t.Args) == 0
}

// Equal reports structural equality: same qualified name and pairwise-equal
// argument lists. Parameter placeholders compare by the parameter they stand
// for.
func (t *TypeNode) Equal(o *TypeNode) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Param != nil || o.Param != nil {
		return t.Param == o.Param
	}
	if t.Name != o.Name || t.Arity != o.Arity || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// SameDefinition reports whether t and o are forms of the same generic
// definition, ignoring arguments.
func (t *TypeNode) SameDefinition(o *TypeNode) bool {
	if t == nil || o == nil {
		return false
	}
	return t.Name == o.Name && t.Arity == o.Arity
}

// Definition returns the open form of t. Non-generic nodes are their own
// definition.
func (t *TypeNode) Definition() *TypeNode {
	if t.Arity == 0 || len(t.Args) == 0 {
		return t
	}
	def := *t
	def.Args = nil
	return &def
}

// HasParams reports whether the node or any of its arguments is a generic
// parameter placeholder.
func (t *TypeNode) HasParams() bool {
	if t == nil {
		return false
	}
	if t.Param != nil {
		return true
	}
	for _, a := range t.Args {
		if a.HasParams() {
			return true
		}
	}
	return false
}

// HasDefaultConstructor reports whether t declares a public, non-static,
// zero-parameter constructor. Providers are expected to materialize
// compiler-generated default constructors explicitly.
func (t *TypeNode) HasDefaultConstructor() bool {
	for _, c := range t.Constructors {
		if c.Access == Public && !c.Static && c.Params == 0 {
			return true
		}
	}
	return false
}

// HasMarker reports whether marker (compared by definition, so an open marker
// reference matches any instantiation) appears in t's marker set.
func (t *TypeNode) HasMarker(marker *TypeNode) bool {
	for _, m := range t.Markers {
		if m.Equal(marker) || m.SameDefinition(marker) {
			return true
		}
	}
	return false
}

func (t *TypeNode) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Param != nil {
		return t.Name
	}
	if len(t.Args) > 0 {
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", t.Name, strings.Join(args, ", "))
	}
	if t.Arity > 0 {
		return t.Name + "<" + strings.Repeat(",", t.Arity-1) + ">"
	}
	return t.Name
}

// Generalization is a witness that a candidate satisfies a queried target:
// Target is the closed instantiation found in the candidate's ancestry.
type Generalization struct {
	Candidate *TypeNode
	Target    *TypeNode
}

func (g Generalization) String() string {
	return fmt.Sprintf("%s as %s", g.Candidate, g.Target)
}
