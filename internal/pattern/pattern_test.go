package pattern

import "testing"

func TestCompileEmpty(t *testing.T) {
	m, err := Compile("")
	if err != nil {
		t.Fatalf("Compile(\"\") error: %v", err)
	}
	if m != nil {
		t.Fatalf("Compile(\"\") = %v, want nil matcher", m)
	}
	// Nil matcher means no filter.
	if !m.Match("Anything.At.All") {
		t.Errorf("nil matcher should match everything")
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{"literal exact", "App.Handlers.OrderHandler", "App.Handlers.OrderHandler", true},
		{"literal mismatch", "App.Handlers.OrderHandler", "App.Handlers.UserHandler", false},
		{"anchored start", "Handlers.OrderHandler", "App.Handlers.OrderHandler", false},
		{"anchored end", "App.Handlers", "App.Handlers.OrderHandler", false},
		{"star suffix", "App.Handlers.*", "App.Handlers.OrderHandler", true},
		{"star prefix", "*Handler", "App.Handlers.OrderHandler", true},
		{"star middle", "App.*.OrderHandler", "App.Handlers.OrderHandler", true},
		{"star alone", "*", "anything", true},
		{"multi star", "App.*Order*", "App.Handlers.OrderHandler", true},
		{"alternation first", "App.*, Lib.*", "App.Handlers.OrderHandler", true},
		{"alternation second", "App.*, Lib.*", "Lib.Core.Widget", true},
		{"alternation none", "App.*, Lib.*", "Other.Thing", false},
		{"dot is literal", "App.X", "AppQX", false},
		{"plus is literal", "A+B", "A+B", true},
		{"paren is literal", "Gen(1)", "Gen(1)", true},
		{"case sensitive", "app.*", "App.Handlers.OrderHandler", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.pattern)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.pattern, err)
			}
			if got := m.Match(tt.input); got != tt.want {
				t.Errorf("Compile(%q).Match(%q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
			}
		})
	}
}
