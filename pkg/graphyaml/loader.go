// Package graphyaml loads type graphs and queries from a declarative YAML
// document. It is a front end in the engine's sense: it materializes the
// immutable Graph and a validated Query before evaluation, and construction
// errors surface here, never inside the matching algorithm.
//
// A type's `implements` list must give the full flattened interface set, the
// way a compiler front end would expose it; the loader additionally folds the
// base chain's interfaces into each type. Class-kind types with no
// `constructors` key receive an implicit public parameterless constructor.
package graphyaml

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/typescan/pkg/query"
	"github.com/funvibe/typescan/pkg/typegraph"
)

// File is one loaded document: a graph, and optionally the query declared
// alongside it.
type File struct {
	Graph *typegraph.Graph
	Query *query.Query
}

type fileSpec struct {
	Graph graphSpec  `yaml:"graph"`
	Query *querySpec `yaml:"query"`
}

type graphSpec struct {
	Declaring string       `yaml:"declaring"`
	Modules   []moduleSpec `yaml:"modules"`
}

type moduleSpec struct {
	Name       string          `yaml:"name"`
	References []string        `yaml:"references"`
	Namespaces []namespaceSpec `yaml:"namespaces"`
	Types      []typeSpec      `yaml:"types"`
}

type namespaceSpec struct {
	Name       string          `yaml:"name"`
	Types      []typeSpec      `yaml:"types"`
	Namespaces []namespaceSpec `yaml:"namespaces"`
}

type typeSpec struct {
	Name         string      `yaml:"name"`
	Kind         string      `yaml:"kind"`
	Access       string      `yaml:"access"`
	Abstract     bool        `yaml:"abstract"`
	Static       bool        `yaml:"static"`
	Sealed       bool        `yaml:"sealed"`
	Arity        int         `yaml:"arity"`
	Unmanaged    bool        `yaml:"unmanaged"`
	Base         string      `yaml:"base"`
	Implements   []string    `yaml:"implements"`
	Markers      []string    `yaml:"markers"`
	Constructors *[]ctorSpec `yaml:"constructors"`
	Types        []typeSpec  `yaml:"types"`
}

type ctorSpec struct {
	Access string `yaml:"access"`
	Params int    `yaml:"params"`
	Static bool   `yaml:"static"`
}

type querySpec struct {
	FromModuleOf        string      `yaml:"fromModuleOf"`
	Modules             string      `yaml:"modules"`
	AssignableTo        string      `yaml:"assignableTo"`
	ExcludeAssignableTo string      `yaml:"excludeAssignableTo"`
	RequireMarker       string      `yaml:"requireMarker"`
	ExcludeMarker       string      `yaml:"excludeMarker"`
	IncludeNames        string      `yaml:"includeNames"`
	ExcludeNames        string      `yaml:"excludeNames"`
	Static              bool        `yaml:"static"`
	Handler             []paramSpec `yaml:"handler"`
}

type paramSpec struct {
	Name        string   `yaml:"name"`
	Class       bool     `yaml:"class"`
	Struct      bool     `yaml:"struct"`
	Unmanaged   bool     `yaml:"unmanaged"`
	New         bool     `yaml:"new"`
	Constraints []string `yaml:"constraints"`
}

// Load reads one YAML document from r.
func Load(r io.Reader) (*File, error) {
	var spec fileSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("graphyaml: decode: %w", err)
	}
	b := newBuilder()
	g, err := b.buildGraph(&spec.Graph)
	if err != nil {
		return nil, err
	}
	f := &File{Graph: g}
	if spec.Query != nil {
		q, err := b.buildQuery(spec.Query)
		if err != nil {
			return nil, err
		}
		f.Query = q
	}
	return f, nil
}

// LoadFile reads one YAML document from path.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graphyaml: %w", err)
	}
	defer f.Close()
	return Load(f)
}

type builder struct {
	defs map[string]*typegraph.TypeNode
}

func newBuilder() *builder {
	b := &builder{defs: make(map[string]*typegraph.TypeNode)}
	for name, t := range builtins() {
		b.defs[name] = t
	}
	return b
}

// builtins seeds the well-known system types fixtures lean on.
func builtins() map[string]*typegraph.TypeNode {
	m := make(map[string]*typegraph.TypeNode)
	for _, name := range []string{"object", "string"} {
		m[name] = &typegraph.TypeNode{Name: name, Kind: typegraph.KindClass}
	}
	for _, name := range []string{"bool", "byte", "char", "short", "int", "long", "float", "double"} {
		m[name] = &typegraph.TypeNode{Name: name, Kind: typegraph.KindValue, Unmanaged: true}
	}
	m["decimal"] = &typegraph.TypeNode{Name: "decimal", Kind: typegraph.KindValue, Unmanaged: true}
	return m
}

func (b *builder) buildGraph(spec *graphSpec) (*typegraph.Graph, error) {
	if len(spec.Modules) == 0 {
		return nil, fmt.Errorf("graphyaml: graph has no modules")
	}

	// Pass 1: declare every type so references can resolve in any order.
	type declared struct {
		spec *typeSpec
		node *typegraph.TypeNode
	}
	var decls []declared
	var declare func(ts *typeSpec) (*typegraph.TypeNode, error)
	declare = func(ts *typeSpec) (*typegraph.TypeNode, error) {
		if ts.Name == "" {
			return nil, fmt.Errorf("graphyaml: type with empty name")
		}
		if _, dup := b.defs[ts.Name]; dup {
			return nil, fmt.Errorf("graphyaml: duplicate type %q", ts.Name)
		}
		kind, err := parseKind(ts.Kind)
		if err != nil {
			return nil, fmt.Errorf("graphyaml: type %q: %w", ts.Name, err)
		}
		access, err := parseAccess(ts.Access)
		if err != nil {
			return nil, fmt.Errorf("graphyaml: type %q: %w", ts.Name, err)
		}
		node := &typegraph.TypeNode{
			Name:      ts.Name,
			Kind:      kind,
			Access:    access,
			Abstract:  ts.Abstract,
			Static:    ts.Static,
			Sealed:    ts.Sealed,
			Arity:     ts.Arity,
			Unmanaged: ts.Unmanaged,
		}
		if ts.Constructors != nil {
			for _, cs := range *ts.Constructors {
				ctorAccess, err := parseAccess(cs.Access)
				if err != nil {
					return nil, fmt.Errorf("graphyaml: type %q constructor: %w", ts.Name, err)
				}
				node.Constructors = append(node.Constructors, typegraph.Constructor{
					Access: ctorAccess,
					Params: cs.Params,
					Static: cs.Static,
				})
			}
		} else if kind == typegraph.KindClass && !ts.Static && !ts.Abstract {
			node.Constructors = []typegraph.Constructor{{Access: typegraph.Public, Params: 0}}
		}
		b.defs[ts.Name] = node
		decls = append(decls, declared{spec: ts, node: node})
		for _, nested := range ts.Types {
			nestedSpec := nested
			child, err := declare(&nestedSpec)
			if err != nil {
				return nil, err
			}
			node.Nested = append(node.Nested, child)
		}
		return node, nil
	}

	modules := make(map[string]*typegraph.Module, len(spec.Modules))
	var order []*typegraph.Module
	var buildNS func(ns *namespaceSpec) (*typegraph.Namespace, error)
	buildNS = func(ns *namespaceSpec) (*typegraph.Namespace, error) {
		out := &typegraph.Namespace{Name: ns.Name}
		for i := range ns.Types {
			node, err := declare(&ns.Types[i])
			if err != nil {
				return nil, err
			}
			out.Types = append(out.Types, node)
		}
		for i := range ns.Namespaces {
			child, err := buildNS(&ns.Namespaces[i])
			if err != nil {
				return nil, err
			}
			out.Namespaces = append(out.Namespaces, child)
		}
		return out, nil
	}
	for i := range spec.Modules {
		ms := &spec.Modules[i]
		if ms.Name == "" {
			return nil, fmt.Errorf("graphyaml: module with empty name")
		}
		if _, dup := modules[ms.Name]; dup {
			return nil, fmt.Errorf("graphyaml: duplicate module %q", ms.Name)
		}
		root := &typegraph.Namespace{}
		for j := range ms.Types {
			node, err := declare(&ms.Types[j])
			if err != nil {
				return nil, err
			}
			root.Types = append(root.Types, node)
		}
		for j := range ms.Namespaces {
			child, err := buildNS(&ms.Namespaces[j])
			if err != nil {
				return nil, err
			}
			root.Namespaces = append(root.Namespaces, child)
		}
		m := &typegraph.Module{Name: ms.Name, Root: root}
		modules[ms.Name] = m
		order = append(order, m)
	}

	// Pass 2: resolve references.
	for i := range spec.Modules {
		ms := &spec.Modules[i]
		for _, ref := range ms.References {
			target, ok := modules[ref]
			if !ok {
				return nil, fmt.Errorf("graphyaml: module %q references unknown module %q", ms.Name, ref)
			}
			modules[ms.Name].References = append(modules[ms.Name].References, target)
		}
	}
	for _, d := range decls {
		if d.spec.Base != "" {
			base, err := b.resolveRef(d.spec.Base, nil)
			if err != nil {
				return nil, fmt.Errorf("graphyaml: type %q base: %w", d.node.Name, err)
			}
			d.node.Base = base
		}
		for _, ref := range d.spec.Implements {
			iface, err := b.resolveRef(ref, nil)
			if err != nil {
				return nil, fmt.Errorf("graphyaml: type %q implements: %w", d.node.Name, err)
			}
			d.node.Interfaces = append(d.node.Interfaces, iface)
		}
		for _, ref := range d.spec.Markers {
			marker, err := b.resolveRef(ref, nil)
			if err != nil {
				return nil, fmt.Errorf("graphyaml: type %q markers: %w", d.node.Name, err)
			}
			d.node.Markers = append(d.node.Markers, marker)
		}
	}

	// Fold base-chain interfaces into each type's flattened set.
	for _, d := range decls {
		for base := d.node.Base; base != nil; base = base.Base {
			for _, iface := range base.Interfaces {
				d.node.Interfaces = appendUniqueIface(d.node.Interfaces, iface)
			}
		}
	}

	g := &typegraph.Graph{Modules: order}
	declaring := spec.Declaring
	if declaring == "" {
		g.Declaring = order[0]
	} else {
		m, ok := modules[declaring]
		if !ok {
			return nil, fmt.Errorf("graphyaml: declaring module %q not found", declaring)
		}
		g.Declaring = m
	}
	return g, nil
}

// parseKind maps the YAML kind value; an omitted kind means class.
func parseKind(s string) (typegraph.Kind, error) {
	switch s {
	case "", "class":
		return typegraph.KindClass, nil
	case "interface":
		return typegraph.KindInterface, nil
	case "value":
		return typegraph.KindValue, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}

// parseAccess maps the YAML access value; an omitted access means public.
func parseAccess(s string) (typegraph.Accessibility, error) {
	switch s {
	case "", "public":
		return typegraph.Public, nil
	case "internal":
		return typegraph.Internal, nil
	case "private":
		return typegraph.Private, nil
	default:
		return 0, fmt.Errorf("unknown access %q", s)
	}
}

func appendUniqueIface(set []*typegraph.TypeNode, iface *typegraph.TypeNode) []*typegraph.TypeNode {
	for _, have := range set {
		if have.Equal(iface) {
			return set
		}
	}
	return append(set, iface)
}

func (b *builder) buildQuery(spec *querySpec) (*query.Query, error) {
	q := &query.Query{
		ModulePattern: spec.Modules,
		IncludeNames:  spec.IncludeNames,
		ExcludeNames:  spec.ExcludeNames,
		StaticHandler: spec.Static,
	}
	var err error
	if spec.FromModuleOf != "" {
		if q.FromModuleOf, err = b.resolveRef(spec.FromModuleOf, nil); err != nil {
			return nil, fmt.Errorf("graphyaml: query fromModuleOf: %w", err)
		}
	}
	if spec.AssignableTo != "" {
		if q.AssignableTo, err = b.resolveRef(spec.AssignableTo, nil); err != nil {
			return nil, fmt.Errorf("graphyaml: query assignableTo: %w", err)
		}
	}
	if spec.ExcludeAssignableTo != "" {
		if q.ExcludeAssignableTo, err = b.resolveRef(spec.ExcludeAssignableTo, nil); err != nil {
			return nil, fmt.Errorf("graphyaml: query excludeAssignableTo: %w", err)
		}
	}
	if spec.RequireMarker != "" {
		if q.RequireMarker, err = b.resolveRef(spec.RequireMarker, nil); err != nil {
			return nil, fmt.Errorf("graphyaml: query requireMarker: %w", err)
		}
	}
	if spec.ExcludeMarker != "" {
		if q.ExcludeMarker, err = b.resolveRef(spec.ExcludeMarker, nil); err != nil {
			return nil, fmt.Errorf("graphyaml: query excludeMarker: %w", err)
		}
	}

	if len(spec.Handler) > 0 {
		scope := make(map[string]*typegraph.GenericParameter, len(spec.Handler))
		for i, ps := range spec.Handler {
			if ps.Name == "" {
				return nil, fmt.Errorf("graphyaml: handler parameter %d has no name", i)
			}
			if _, dup := scope[ps.Name]; dup {
				return nil, fmt.Errorf("graphyaml: duplicate handler parameter %q", ps.Name)
			}
			p := &typegraph.GenericParameter{
				Ordinal:   i,
				Name:      ps.Name,
				Class:     ps.Class,
				Struct:    ps.Struct,
				Unmanaged: ps.Unmanaged,
				New:       ps.New,
			}
			scope[ps.Name] = p
			q.Handler = append(q.Handler, p)
		}
		for i, ps := range spec.Handler {
			for _, ref := range ps.Constraints {
				c, err := b.resolveRef(ref, scope)
				if err != nil {
					return nil, fmt.Errorf("graphyaml: handler parameter %q constraint: %w", ps.Name, err)
				}
				q.Handler[i].Constraints = append(q.Handler[i].Constraints, c)
			}
		}
	}
	return q, nil
}
