package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/typescan/internal/config"
	"github.com/funvibe/typescan/internal/sink"
	"github.com/funvibe/typescan/pkg/graphgo"
	"github.com/funvibe/typescan/pkg/graphyaml"
	"github.com/funvibe/typescan/pkg/query"
	"github.com/funvibe/typescan/pkg/typegraph"
)

var (
	graphPath  string
	goPatterns []string
	outPath    string

	flagAssignableTo        string
	flagExcludeAssignableTo string
	flagRequireMarker       string
	flagExcludeMarker       string
	flagIncludeNames        string
	flagExcludeNames        string
	flagModules             string
	flagFromModuleOf        string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Evaluate a query against a type graph",
	Long: `Evaluates a query and prints one line per match.

The graph comes from a YAML document (--graph) or from Go packages
(--go). A YAML document may declare the query inline under a top-level
"query:" key; flags override individual parts of it. Flag type references
are plain qualified names; generic instantiations belong in the YAML
query block.

Examples:
  typescan query --graph typegraph.yaml
  typescan query --graph app.yaml --include-names '*Handler'
  typescan query --go ./... --assignable-to sample.Greeter --out matches.db`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&graphPath, "graph", "g", config.DefaultGraphFile, "type graph YAML document")
	queryCmd.Flags().StringSliceVar(&goPatterns, "go", nil, "build the graph from Go package patterns instead of YAML")
	queryCmd.Flags().StringVarP(&outPath, "out", "o", "", "write matches to a SQLite database instead of stdout")

	queryCmd.Flags().StringVar(&flagAssignableTo, "assignable-to", "", "accept only types assignable to this type")
	queryCmd.Flags().StringVar(&flagExcludeAssignableTo, "exclude-assignable-to", "", "reject types assignable to this type")
	queryCmd.Flags().StringVar(&flagRequireMarker, "require-marker", "", "require this marker tag")
	queryCmd.Flags().StringVar(&flagExcludeMarker, "exclude-marker", "", "reject types carrying this marker tag")
	queryCmd.Flags().StringVar(&flagIncludeNames, "include-names", "", "wildcard pattern type names must match")
	queryCmd.Flags().StringVar(&flagExcludeNames, "exclude-names", "", "wildcard pattern that rejects matching type names")
	queryCmd.Flags().StringVar(&flagModules, "modules", "", "wildcard pattern selecting modules from the reference closure")
	queryCmd.Flags().StringVar(&flagFromModuleOf, "from-module-of", "", "select only the module declaring this type")
}

func runQuery(cmd *cobra.Command, args []string) error {
	g, q, err := loadGraph()
	if err != nil {
		return err
	}
	if q == nil {
		q = &query.Query{}
	}
	if err := applyOverrides(q, g); err != nil {
		return err
	}

	it := query.Evaluate(q, g, query.WithLogger(logger))
	if outPath != "" {
		return writeSink(it)
	}
	return printMatches(it)
}

func loadGraph() (*typegraph.Graph, *query.Query, error) {
	if len(goPatterns) > 0 {
		l := &graphgo.Loader{Log: logger}
		g, err := l.Load(goPatterns...)
		if err != nil {
			return nil, nil, err
		}
		return g, nil, nil
	}
	f, err := graphyaml.LoadFile(graphPath)
	if err != nil {
		return nil, nil, err
	}
	return f.Graph, f.Query, nil
}

// applyOverrides folds flag values into the query. Flag type references are
// resolved by qualified name against the loaded graph; a trailing "<>"
// (open-definition shorthand) is accepted and ignored.
func applyOverrides(q *query.Query, g *typegraph.Graph) error {
	lookup := func(ref string) (*typegraph.TypeNode, error) {
		name := strings.TrimSuffix(strings.TrimSpace(ref), "<>")
		t, ok := g.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", name)
		}
		return t, nil
	}

	var err error
	if flagAssignableTo != "" {
		if q.AssignableTo, err = lookup(flagAssignableTo); err != nil {
			return err
		}
	}
	if flagExcludeAssignableTo != "" {
		if q.ExcludeAssignableTo, err = lookup(flagExcludeAssignableTo); err != nil {
			return err
		}
	}
	if flagRequireMarker != "" {
		if q.RequireMarker, err = lookup(flagRequireMarker); err != nil {
			return err
		}
	}
	if flagExcludeMarker != "" {
		if q.ExcludeMarker, err = lookup(flagExcludeMarker); err != nil {
			return err
		}
	}
	if flagFromModuleOf != "" {
		if q.FromModuleOf, err = lookup(flagFromModuleOf); err != nil {
			return err
		}
	}
	if flagIncludeNames != "" {
		q.IncludeNames = flagIncludeNames
	}
	if flagExcludeNames != "" {
		q.ExcludeNames = flagExcludeNames
	}
	if flagModules != "" {
		q.ModulePattern = flagModules
	}
	return nil
}

func writeSink(it *query.Iterator) error {
	store, err := sink.Open(outPath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.WriteAll(it)
	if err != nil {
		return err
	}
	logger.Info("matches written",
		zap.String("run", store.RunID()),
		zap.String("db", outPath),
		zap.Int("count", n))
	fmt.Printf("%d match(es) written to %s (run %s)\n", n, outPath, store.RunID())
	return nil
}

func printMatches(it *query.Iterator) error {
	color := isatty.IsTerminal(os.Stdout.Fd())
	n := 0
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		line := m.Type.Name
		if color {
			line = "\x1b[32m" + line + "\x1b[0m"
		}
		if m.Binding != nil {
			line += "  " + m.Binding.String()
		} else if m.Generalization != nil {
			line += "  as " + m.Generalization.Target.String()
		}
		fmt.Println(line)
		n++
	}
	fmt.Printf("%d match(es)\n", n)
	return nil
}
