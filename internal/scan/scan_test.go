package scan

import (
	"testing"

	"github.com/funvibe/typescan/internal/pattern"
	"github.com/funvibe/typescan/pkg/typegraph"
)

func class(name string) *typegraph.TypeNode {
	return &typegraph.TypeNode{Name: name, Kind: typegraph.KindClass}
}

func module(name string, types ...*typegraph.TypeNode) *typegraph.Module {
	return &typegraph.Module{Name: name, Root: &typegraph.Namespace{Types: types}}
}

func testGraph() (*typegraph.Graph, *typegraph.TypeNode) {
	marker := class("Lib.Marker")
	lib := module("Lib.Core", marker)
	ext := module("Lib.Extensions", class("Lib.Extensions.Widget"))
	app := module("App", class("App.Root"))
	app.References = []*typegraph.Module{lib, ext}
	g := &typegraph.Graph{Modules: []*typegraph.Module{app, lib, ext}, Declaring: app}
	return g, marker
}

func moduleNames(ms []*typegraph.Module) []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	return names
}

func TestSelectDefaultSelf(t *testing.T) {
	g, _ := testGraph()
	got := SelectModules(g, nil, nil)
	if len(got) != 1 || got[0] != g.Declaring {
		t.Errorf("default selection = %v, want declaring module only", moduleNames(got))
	}
}

func TestSelectByMarkerType(t *testing.T) {
	g, marker := testGraph()
	got := SelectModules(g, marker, nil)
	if len(got) != 1 || got[0].Name != "Lib.Core" {
		t.Errorf("marker selection = %v, want [Lib.Core]", moduleNames(got))
	}
}

func TestSelectByPattern(t *testing.T) {
	g, _ := testGraph()
	m, err := pattern.Compile("Lib.*")
	if err != nil {
		t.Fatal(err)
	}
	got := SelectModules(g, nil, m)
	want := []string{"Lib.Core", "Lib.Extensions"}
	names := moduleNames(got)
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("pattern selection = %v, want %v", names, want)
	}
}

func TestPatternIncludesDeclaring(t *testing.T) {
	g, _ := testGraph()
	m, err := pattern.Compile("App")
	if err != nil {
		t.Fatal(err)
	}
	got := SelectModules(g, nil, m)
	if len(got) != 1 || got[0] != g.Declaring {
		t.Errorf("pattern should cover the declaring module itself, got %v", moduleNames(got))
	}
}

func TestMarkerWinsOverPattern(t *testing.T) {
	g, marker := testGraph()
	m, err := pattern.Compile("*")
	if err != nil {
		t.Fatal(err)
	}
	got := SelectModules(g, marker, m)
	if len(got) != 1 || got[0].Name != "Lib.Core" {
		t.Errorf("marker must take precedence over pattern, got %v", moduleNames(got))
	}
}

func TestUnresolvableMarkerSelectsNothing(t *testing.T) {
	g, _ := testGraph()
	if got := SelectModules(g, class("Nowhere.Marker"), nil); len(got) != 0 {
		t.Errorf("unresolvable marker should select nothing, got %v", moduleNames(got))
	}
}

func TestTypesDepthFirstDeclarationOrder(t *testing.T) {
	inner := class("App.Outer.Inner")
	outer := class("App.Outer")
	outer.Nested = []*typegraph.TypeNode{inner}
	late := class("App.Late")
	child := &typegraph.Namespace{
		Name:  "App.Sub",
		Types: []*typegraph.TypeNode{class("App.Sub.First"), class("App.Sub.Second")},
	}
	m := &typegraph.Module{
		Name: "App",
		Root: &typegraph.Namespace{
			Types:      []*typegraph.TypeNode{outer, late},
			Namespaces: []*typegraph.Namespace{child},
		},
	}

	want := []string{"App.Outer", "App.Outer.Inner", "App.Late", "App.Sub.First", "App.Sub.Second"}
	got := Types(m)
	if len(got) != len(want) {
		t.Fatalf("Types yielded %d declarations, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Name != w {
			t.Errorf("Types()[%d] = %s, want %s", i, got[i].Name, w)
		}
	}
}
