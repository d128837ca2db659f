package sink

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typescan/pkg/query"
	"github.com/funvibe/typescan/pkg/typegraph"
)

func fixtureGraph() *typegraph.Graph {
	str := &typegraph.TypeNode{Name: "string", Kind: typegraph.KindClass}
	handler := &typegraph.TypeNode{Name: "App.Handler", Kind: typegraph.KindClass}
	handler.Interfaces = []*typegraph.TypeNode{{
		Name: "App.IHandler", Kind: typegraph.KindInterface,
		Arity: 1, Args: []*typegraph.TypeNode{str},
	}}
	m := &typegraph.Module{Name: "App", Root: &typegraph.Namespace{Types: []*typegraph.TypeNode{handler}}}
	return &typegraph.Graph{Modules: []*typegraph.Module{m}, Declaring: m}
}

func TestWriteAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	g := fixtureGraph()
	q := &query.Query{AssignableTo: &typegraph.TypeNode{Name: "App.IHandler", Kind: typegraph.KindInterface, Arity: 1}}
	n, err := store.WriteAll(query.Evaluate(q, g))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotEmpty(t, store.RunID())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var typeName, gen string
	row := db.QueryRow("SELECT type_name, generalization FROM matches WHERE run_id = ? AND ordinal = 0", store.RunID())
	require.NoError(t, row.Scan(&typeName, &gen))
	assert.Equal(t, "App.Handler", typeName)
	assert.Equal(t, "App.IHandler<string>", gen)
}

func TestWriteAllEmptyStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	q := &query.Query{IncludeNames: "No.Such.*"}
	n, err := store.WriteAll(query.Evaluate(q, fixtureGraph()))
	require.NoError(t, err)
	assert.Zero(t, n)
}
