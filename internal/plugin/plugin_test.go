package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/types"
)

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`
values:
  - name: toolchainVersion
    type: string
  - name: verbose
    type: bool
`))
	require.NoError(t, err)
	require.Len(t, m.Values, 2)
	assert.Equal(t, "toolchainVersion", m.Values[0].Name)
	assert.Equal(t, "string", m.Values[0].Type)
	assert.Equal(t, "verbose", m.Values[1].Name)
	assert.Equal(t, "bool", m.Values[1].Type)
}

func TestSeedUsesHostSuppliedValue(t *testing.T) {
	tctx := types.NewContext()
	scope := ast.NewScope(nil)
	manifest := &Manifest{Values: []ValueSpec{{Name: "toolchainVersion", Type: "string"}}}

	seeded, err := Seed(scope, manifest, map[string]dag.Value{
		"toolchainVersion": &dag.Primitive{Value: "17.0"},
	}, tctx)
	require.NoError(t, err)

	v, ok := scope.LocalLookup("toolchainVersion")
	require.True(t, ok)
	assert.Same(t, tctx.String(), v.EffectiveType)

	val, ok := seeded[v]
	require.True(t, ok)
	assert.Equal(t, "17.0", val.(*dag.Primitive).Value)
}

func TestSeedFallsBackToZeroValue(t *testing.T) {
	tctx := types.NewContext()
	scope := ast.NewScope(nil)
	manifest := &Manifest{Values: []ValueSpec{{Name: "count", Type: "int"}}}

	seeded, err := Seed(scope, manifest, nil, tctx)
	require.NoError(t, err)

	v, _ := scope.LocalLookup("count")
	assert.Equal(t, int64(0), seeded[v].(*dag.Primitive).Value)
}

func TestSeedRejectsUnknownType(t *testing.T) {
	tctx := types.NewContext()
	scope := ast.NewScope(nil)
	manifest := &Manifest{Values: []ValueSpec{{Name: "x", Type: "not-a-type"}}}

	_, err := Seed(scope, manifest, nil, tctx)
	assert.Error(t, err)
}

func TestSeedRejectsDuplicateName(t *testing.T) {
	tctx := types.NewContext()
	scope := ast.NewScope(nil)
	manifest := &Manifest{Values: []ValueSpec{
		{Name: "x", Type: "int"},
		{Name: "x", Type: "string"},
	}}

	_, err := Seed(scope, manifest, nil, tctx)
	assert.Error(t, err)
}
