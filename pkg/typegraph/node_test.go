package typegraph

import "testing"

func closed(name string, args ...*TypeNode) *TypeNode {
	return &TypeNode{Name: name, Kind: KindInterface, Arity: len(args), Args: args}
}

func TestStructuralEquality(t *testing.T) {
	str := &TypeNode{Name: "string", Kind: KindClass}
	strAgain := &TypeNode{Name: "string", Kind: KindClass}

	tests := []struct {
		name string
		a, b *TypeNode
		want bool
	}{
		{"same name", str, strAgain, true},
		{"different name", str, &TypeNode{Name: "object"}, false},
		{"same instantiation distinct pointers", closed("IHandler", str), closed("IHandler", strAgain), true},
		{"different args", closed("IHandler", str), closed("IHandler", &TypeNode{Name: "object"}), false},
		{"open vs closed", &TypeNode{Name: "IHandler", Arity: 1}, closed("IHandler", str), false},
		{"nested args", closed("IOuter", closed("IInner", str)), closed("IOuter", closed("IInner", strAgain)), true},
		{"nil vs value", nil, str, false},
		{"nil vs nil", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParamPlaceholderEquality(t *testing.T) {
	p := &GenericParameter{Name: "T"}
	q := &GenericParameter{Name: "T"}
	if !ParamNode(p).Equal(ParamNode(p)) {
		t.Errorf("placeholders for the same parameter must be equal")
	}
	if ParamNode(p).Equal(ParamNode(q)) {
		t.Errorf("placeholders for distinct parameters must differ even with equal names")
	}
}

func TestSameDefinitionAndDefinition(t *testing.T) {
	str := &TypeNode{Name: "string", Kind: KindClass}
	inst := closed("IHandler", str)
	open := &TypeNode{Name: "IHandler", Kind: KindInterface, Arity: 1}

	if !inst.SameDefinition(open) {
		t.Errorf("instantiation and open form share a definition")
	}
	if inst.SameDefinition(&TypeNode{Name: "IHandler", Arity: 2}) {
		t.Errorf("arity is part of the definition")
	}
	def := inst.Definition()
	if !def.IsOpen() || def.Name != "IHandler" || def.Arity != 1 {
		t.Errorf("Definition() = %s, want open IHandler<>", def)
	}
	if !open.IsOpen() || inst.IsOpen() {
		t.Errorf("IsOpen misclassifies open/closed forms")
	}
}

func TestHasParams(t *testing.T) {
	p := &GenericParameter{Name: "T"}
	str := &TypeNode{Name: "string"}
	if closed("IHandler", str).HasParams() {
		t.Errorf("concrete reference has no parameters")
	}
	if !closed("IHandler", ParamNode(p)).HasParams() {
		t.Errorf("direct parameter argument not detected")
	}
	if !closed("IOuter", closed("IInner", ParamNode(p))).HasParams() {
		t.Errorf("nested parameter argument not detected")
	}
}

func TestString(t *testing.T) {
	str := &TypeNode{Name: "string"}
	tests := []struct {
		node *TypeNode
		want string
	}{
		{str, "string"},
		{closed("IHandler", str), "IHandler<string>"},
		{&TypeNode{Name: "IHandler", Arity: 1}, "IHandler<>"},
		{&TypeNode{Name: "IBoth", Arity: 2}, "IBoth<,>"},
		{closed("IOuter", closed("IInner", str)), "IOuter<IInner<string>>"},
	}
	for _, tt := range tests {
		if got := tt.node.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBindingOrderAndClone(t *testing.T) {
	a := &GenericParameter{Ordinal: 0, Name: "A"}
	b := &GenericParameter{Ordinal: 1, Name: "B"}
	x := &TypeNode{Name: "X"}
	y := &TypeNode{Name: "Y"}

	bind := NewBinding()
	bind.Bind(b, y) // out of ordinal order on purpose
	bind.Bind(a, x)

	types := bind.Types()
	if len(types) != 2 || types[0] != x || types[1] != y {
		t.Errorf("Types() not ordered by ordinal: %v", types)
	}
	if got := bind.String(); got != "{A=X, B=Y}" {
		t.Errorf("String() = %q", got)
	}

	clone := bind.Clone()
	clone.Bind(&GenericParameter{Ordinal: 2, Name: "C"}, x)
	if bind.Len() != 2 || clone.Len() != 3 {
		t.Errorf("Clone is not independent: %d/%d", bind.Len(), clone.Len())
	}

	// First assignment wins.
	bind.Bind(a, y)
	if got, _ := bind.Lookup(a); got != x {
		t.Errorf("rebinding must not overwrite: got %v", got)
	}
}

func TestGraphClosureAndOwner(t *testing.T) {
	widget := &TypeNode{Name: "Lib.Widget", Kind: KindClass}
	lib := &Module{Name: "Lib", Root: &Namespace{Types: []*TypeNode{widget}}}
	shared := &Module{Name: "Shared", Root: &Namespace{}}
	lib.References = []*Module{shared}
	app := &Module{Name: "App", Root: &Namespace{}}
	app.References = []*Module{lib, shared} // diamond

	g := &Graph{Modules: []*Module{app, lib, shared}, Declaring: app}

	closure := g.Closure()
	if len(closure) != 3 || closure[0] != app || closure[1] != lib || closure[2] != shared {
		t.Errorf("closure order = %v", closure)
	}
	if g.OwnerOf(widget) != lib {
		t.Errorf("OwnerOf(Lib.Widget) != Lib")
	}
	if g.OwnerOf(&TypeNode{Name: "Nope"}) != nil {
		t.Errorf("unknown type should have no owner")
	}

	got, ok := g.Lookup("Lib.Widget")
	if !ok || got != widget {
		t.Errorf("Lookup failed")
	}
}
