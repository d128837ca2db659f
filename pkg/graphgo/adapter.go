// Package graphgo materializes a type graph from live Go packages. It is an
// adapter in front of the engine: the symbol space of a loaded package set is
// translated once into an immutable typegraph.Graph, and the engine never
// touches the go/types API.
//
// The mapping is best-effort and documented here rather than configurable:
// struct types become class-kind nodes, interfaces interface-kind, and
// everything else value-kind. The first embedded struct field becomes the
// base-type edge. Interface edges are materialized for non-generic interfaces
// via method-set satisfaction; generic interfaces stay open definitions only.
// A constructor convention applies: a package-level `NewFoo()` with no
// parameters counts as Foo's public parameterless constructor. Marker tags
// come from `//typescan:markers A,B` doc-comment directives.
package graphgo

import (
	"fmt"
	"go/ast"
	"go/types"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/funvibe/typescan/pkg/typegraph"
)

const markerDirective = "//typescan:markers "

// Loader builds graphs from Go source.
type Loader struct {
	// Dir is the working directory for package resolution.
	Dir string
	// Log traces adapter progress at debug level. Nil disables tracing.
	Log *zap.Logger
}

// Load resolves the given package patterns and builds a graph. The first
// loaded package becomes the declaring module.
func (l *Loader) Load(patterns ...string) (*typegraph.Graph, error) {
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	cfg := &packages.Config{
		Dir: l.Dir,
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax |
			packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("graphgo: load: %w", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("graphgo: packages contain errors")
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("graphgo: no packages matched %v", patterns)
	}

	b := &graphBuilder{
		nodes:   make(map[*types.TypeName]*typegraph.TypeNode),
		markers: make(map[string]*typegraph.TypeNode),
	}
	b.collect(pkgs)
	g := b.build(pkgs)

	log.Debug("type graph materialized",
		zap.Int("packages", len(pkgs)),
		zap.Int("types", len(b.order)),
		zap.Duration("elapsed", time.Since(start)))
	return g, nil
}

type graphBuilder struct {
	nodes   map[*types.TypeName]*typegraph.TypeNode
	order   []*types.TypeName
	ifaces  []*types.TypeName
	markers map[string]*typegraph.TypeNode
}

// collect declares a node for every named type in the loaded packages.
// Scope names are already sorted, so declaration order is deterministic for
// identical inputs.
func (b *graphBuilder) collect(pkgs []*packages.Package) {
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || tn.IsAlias() {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok {
				continue
			}
			b.declare(pkg, tn, named)
		}
	}
}

func (b *graphBuilder) declare(pkg *packages.Package, tn *types.TypeName, named *types.Named) {
	node := &typegraph.TypeNode{
		Name:   pkg.PkgPath + "." + tn.Name(),
		Kind:   kindOf(named),
		Access: accessOf(tn),
		Arity:  named.TypeParams().Len(),
	}
	if node.Kind == typegraph.KindValue {
		node.Unmanaged = isUnmanaged(named.Underlying())
	}
	if node.Kind == typegraph.KindInterface {
		b.ifaces = append(b.ifaces, tn)
	}
	b.nodes[tn] = node
	b.order = append(b.order, tn)
}

// build wires edges, conventions, and directives, then assembles modules.
func (b *graphBuilder) build(pkgs []*packages.Package) *typegraph.Graph {
	for _, tn := range b.order {
		node := b.nodes[tn]
		named := tn.Type().(*types.Named)
		if st, ok := named.Underlying().(*types.Struct); ok {
			node.Base = b.embeddedBase(st)
		}
		if node.Kind != typegraph.KindInterface && named.TypeParams().Len() == 0 {
			node.Interfaces = b.satisfiedInterfaces(named)
		}
	}

	modules := make(map[string]*typegraph.Module, len(pkgs))
	var order []*typegraph.Module
	for _, pkg := range pkgs {
		ns := &typegraph.Namespace{Name: pkg.PkgPath}
		for _, tn := range b.order {
			if tn.Pkg() == pkg.Types {
				ns.Types = append(ns.Types, b.nodes[tn])
			}
		}
		m := &typegraph.Module{Name: pkg.PkgPath, Root: ns}
		modules[pkg.PkgPath] = m
		order = append(order, m)
		b.applyConventions(pkg)
	}
	for _, pkg := range pkgs {
		var refs []string
		for path := range pkg.Imports {
			if _, loaded := modules[path]; loaded && path != pkg.PkgPath {
				refs = append(refs, path)
			}
		}
		sort.Strings(refs)
		for _, path := range refs {
			modules[pkg.PkgPath].References = append(modules[pkg.PkgPath].References, modules[path])
		}
	}
	return &typegraph.Graph{Modules: order, Declaring: order[0]}
}

// embeddedBase returns the node for the first embedded struct field.
func (b *graphBuilder) embeddedBase(st *types.Struct) *typegraph.TypeNode {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		named, ok := f.Type().(*types.Named)
		if !ok {
			continue
		}
		if _, isStruct := named.Underlying().(*types.Struct); !isStruct {
			continue
		}
		if node, ok := b.nodes[named.Obj()]; ok {
			return node
		}
	}
	return nil
}

// satisfiedInterfaces checks t's method set (value and pointer receiver)
// against every collected non-generic interface.
func (b *graphBuilder) satisfiedInterfaces(t *types.Named) []*typegraph.TypeNode {
	var out []*typegraph.TypeNode
	for _, itn := range b.ifaces {
		inamed := itn.Type().(*types.Named)
		if inamed.TypeParams().Len() > 0 {
			continue
		}
		iface, ok := inamed.Underlying().(*types.Interface)
		if !ok || iface.Empty() {
			continue
		}
		if types.Implements(t, iface) || types.Implements(types.NewPointer(t), iface) {
			out = append(out, b.nodes[itn])
		}
	}
	return out
}

// applyConventions walks the package syntax for marker directives and
// constructor functions.
func (b *graphBuilder) applyConventions(pkg *packages.Package) {
	byName := make(map[string]*typegraph.TypeNode)
	for _, tn := range b.order {
		if tn.Pkg() == pkg.Types {
			byName[tn.Name()] = b.nodes[tn]
		}
	}
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				b.applyMarkers(d, byName)
			case *ast.FuncDecl:
				b.applyConstructor(d, byName)
			}
		}
	}
}

func (b *graphBuilder) applyMarkers(d *ast.GenDecl, byName map[string]*typegraph.TypeNode) {
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		node, ok := byName[ts.Name.Name]
		if !ok {
			continue
		}
		doc := ts.Doc
		if doc == nil {
			doc = d.Doc
		}
		if doc == nil {
			continue
		}
		for _, c := range doc.List {
			if !strings.HasPrefix(c.Text, markerDirective) {
				continue
			}
			for _, name := range strings.Split(strings.TrimPrefix(c.Text, markerDirective), ",") {
				name = strings.TrimSpace(name)
				if name != "" {
					node.Markers = append(node.Markers, b.markerNode(name, byName))
				}
			}
		}
	}
}

// markerNode resolves a directive name to a declared type when one exists,
// otherwise synthesizes a shared marker node for the raw name.
func (b *graphBuilder) markerNode(name string, byName map[string]*typegraph.TypeNode) *typegraph.TypeNode {
	if node, ok := byName[name]; ok {
		return node
	}
	if node, ok := b.markers[name]; ok {
		return node
	}
	node := &typegraph.TypeNode{Name: name, Kind: typegraph.KindClass}
	b.markers[name] = node
	return node
}

// applyConstructor records the NewFoo() convention.
func (b *graphBuilder) applyConstructor(d *ast.FuncDecl, byName map[string]*typegraph.TypeNode) {
	if d.Recv != nil || !strings.HasPrefix(d.Name.Name, "New") {
		return
	}
	node, ok := byName[strings.TrimPrefix(d.Name.Name, "New")]
	if !ok {
		return
	}
	params := 0
	if d.Type.Params != nil {
		for _, field := range d.Type.Params.List {
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			params += n
		}
	}
	access := typegraph.Internal
	if d.Name.IsExported() {
		access = typegraph.Public
	}
	node.Constructors = append(node.Constructors, typegraph.Constructor{Access: access, Params: params})
}

func kindOf(named *types.Named) typegraph.Kind {
	switch named.Underlying().(type) {
	case *types.Interface:
		return typegraph.KindInterface
	case *types.Struct:
		return typegraph.KindClass
	default:
		return typegraph.KindValue
	}
}

func accessOf(tn *types.TypeName) typegraph.Accessibility {
	if tn.Exported() {
		return typegraph.Public
	}
	return typegraph.Internal
}

// isUnmanaged reports whether the underlying type is free of pointers,
// which is the closest Go analogue of the unmanaged constraint.
func isUnmanaged(t types.Type) bool {
	switch u := t.(type) {
	case *types.Basic:
		return u.Info()&types.IsString == 0 && u.Kind() != types.UnsafePointer
	case *types.Array:
		return isUnmanaged(u.Elem().Underlying())
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if !isUnmanaged(u.Field(i).Type().Underlying()) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
