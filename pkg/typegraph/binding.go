package typegraph

import (
	"fmt"
	"sort"
	"strings"
)

// Binding is an ordered assignment from a handler's generic parameters to
// concrete type nodes. A Binding is only produced by the solver once every
// constraint holds under simultaneous substitution.
type Binding struct {
	params []*GenericParameter
	types  []*TypeNode
}

// NewBinding returns an empty binding.
func NewBinding() *Binding {
	return &Binding{}
}

// Bind records p := t. Rebinding an already-bound parameter is a programming
// error in the solver; the first assignment wins.
func (b *Binding) Bind(p *GenericParameter, t *TypeNode) {
	if _, ok := b.Lookup(p); ok {
		return
	}
	b.params = append(b.params, p)
	b.types = append(b.types, t)
}

// Lookup returns the type bound to p, if any.
func (b *Binding) Lookup(p *GenericParameter) (*TypeNode, bool) {
	for i, q := range b.params {
		if q == p {
			return b.types[i], true
		}
	}
	return nil, false
}

func (b *Binding) Len() int { return len(b.params) }

// Clone returns an independent copy. The solver clones before each trial
// alignment so a failed Generalization leaves no partial assignments behind.
func (b *Binding) Clone() *Binding {
	c := &Binding{
		params: make([]*GenericParameter, len(b.params)),
		types:  make([]*TypeNode, len(b.types)),
	}
	copy(c.params, b.params)
	copy(c.types, b.types)
	return c
}

// Types returns the bound types ordered by parameter ordinal.
func (b *Binding) Types() []*TypeNode {
	idx := make([]int, len(b.params))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return b.params[idx[i]].Ordinal < b.params[idx[j]].Ordinal
	})
	out := make([]*TypeNode, len(idx))
	for i, j := range idx {
		out[i] = b.types[j]
	}
	return out
}

func (b *Binding) String() string {
	idx := make([]int, len(b.params))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return b.params[idx[i]].Ordinal < b.params[idx[j]].Ordinal
	})
	parts := make([]string, len(idx))
	for i, j := range idx {
		parts[i] = fmt.Sprintf("%s=%s", b.params[j].Name, b.types[j])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
