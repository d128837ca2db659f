package graphyaml

import (
	"fmt"
	"strings"

	"github.com/funvibe/typescan/pkg/typegraph"
)

// resolveRef parses a type reference like `App.IHandler<string>` and resolves
// it against the declared types. `Name<>` (or a bare generic name) denotes
// the open definition. Inside handler constraints, scope maps parameter names
// to their GenericParameters; a reference matching a parameter name resolves
// to its placeholder node.
func (b *builder) resolveRef(ref string, scope map[string]*typegraph.GenericParameter) (*typegraph.TypeNode, error) {
	name, args, err := splitRef(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	if scope != nil && len(args) == 0 {
		if p, ok := scope[name]; ok {
			return typegraph.ParamNode(p), nil
		}
	}
	def, ok := b.defs[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	if len(args) == 0 {
		return def, nil
	}
	if len(args) != def.Arity {
		return nil, fmt.Errorf("type %q takes %d arguments, got %d", name, def.Arity, len(args))
	}
	resolved := make([]*typegraph.TypeNode, len(args))
	for i, a := range args {
		if resolved[i], err = b.resolveRef(a, scope); err != nil {
			return nil, err
		}
	}
	inst := *def
	inst.Args = resolved
	return &inst, nil
}

// splitRef splits `Name<...>` into the name and its top-level argument
// strings. `Name` and `Name<>` both yield no arguments.
func splitRef(ref string) (string, []string, error) {
	open := strings.IndexByte(ref, '<')
	if open < 0 {
		if ref == "" {
			return "", nil, fmt.Errorf("empty type reference")
		}
		return ref, nil, nil
	}
	if !strings.HasSuffix(ref, ">") {
		return "", nil, fmt.Errorf("malformed type reference %q", ref)
	}
	name := strings.TrimSpace(ref[:open])
	if name == "" {
		return "", nil, fmt.Errorf("malformed type reference %q", ref)
	}
	inner := ref[open+1 : len(ref)-1]
	if strings.TrimSpace(inner) == "" {
		return name, nil, nil
	}

	var args []string
	depth, start := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return "", nil, fmt.Errorf("malformed type reference %q", ref)
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, fmt.Errorf("unbalanced angle brackets in %q", ref)
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	for _, a := range args {
		if a == "" {
			return "", nil, fmt.Errorf("empty type argument in %q", ref)
		}
	}
	return name, args, nil
}
