package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/diagnostics"
	"github.com/fabriquer/fabrique/internal/types"
)

func writeFile(t *testing.T, root, rel, contents string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func newTestLoader(t *testing.T, root string) (*Loader, *diagnostics.Reporter) {
	t.Helper()
	reporter := diagnostics.NewReporter()
	tctx := types.NewContext()
	resolver := NewResolver(root, root)
	return NewLoader(resolver, tctx, reporter), reporter
}

func TestFindModuleSearchesCurrentSubdirFirst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib/util.fab", "x = 1;")
	writeFile(t, root, "util.fab", "x = 2;")

	r := NewResolver(root, root)
	path, err := r.findModule("lib", "util")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "lib", "util.fab"), path)
}

func TestFindModuleSearchesUpwardUnderSrcroot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "shared.fab", "x = 1;")

	r := NewResolver(root, root)
	path, err := r.findModule("deep/nested", "shared")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "shared.fab"), path)
}

func TestFindModuleMissReturnsError(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(root, root)
	_, err := r.findModule("", "nope")
	assert.Error(t, err)
}

func TestLoaderResolveReturnsRecordOfTopLevelValues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.fab", `
		greeting = 'hi';
		count = 3;
	`)
	loader, reporter := newTestLoader(t, root)

	rec, err := loader.Resolve("lib", nil, filepath.Join(root, "main.fab"))
	require.NoError(t, err)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())

	assert.Equal(t, []string{"greeting", "count"}, rec.FieldOrder)
	assert.Equal(t, "hi", rec.Fields["greeting"].(*dag.Primitive).Value)
	assert.Equal(t, int64(3), rec.Fields["count"].(*dag.Primitive).Value)
}

func TestLoaderResolveExposesArgsToImportedModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.fab", `
		name = args.who;
	`)
	loader, reporter := newTestLoader(t, root)

	who := &dag.Primitive{Value: "fabrique"}
	rec, err := loader.Resolve("lib", map[string]dag.Value{"who": who}, filepath.Join(root, "main.fab"))
	require.NoError(t, err)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	assert.Equal(t, "fabrique", rec.Fields["name"].(*dag.Primitive).Value)
}

func TestLoaderResolveCaches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.fab", `x = 1;`)
	loader, _ := newTestLoader(t, root)

	from := filepath.Join(root, "main.fab")
	rec1, err := loader.Resolve("lib", nil, from)
	require.NoError(t, err)
	rec2, err := loader.Resolve("lib", nil, from)
	require.NoError(t, err)
	assert.Same(t, rec1, rec2)
}

func TestLoaderResolveRejectsCyclicImport(t *testing.T) {
	root := t.TempDir()
	aPath := writeFile(t, root, "a.fab", `x = import('b');`)
	writeFile(t, root, "b.fab", `y = import('a');`)

	loader, _ := newTestLoader(t, root)
	_, err := loader.Resolve("a", nil, aPath)
	require.Error(t, err)
}

func TestLoadEntryEvaluatesTopLevelFile(t *testing.T) {
	root := t.TempDir()
	main := writeFile(t, root, "main.fab", `x = file('main.c');`)

	loader, reporter := newTestLoader(t, root)
	_, _, d, err := loader.LoadEntry(main, nil)
	require.NoError(t, err)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	require.Len(t, d.Targets, 1)
	assert.Equal(t, "x", d.Targets[0].Name)
}

func TestLoadEntryExposesSrcrootAndBuildroot(t *testing.T) {
	root := t.TempDir()
	main := writeFile(t, root, "main.fab", `
		a = srcroot;
		b = buildroot;
	`)

	loader, reporter := newTestLoader(t, root)
	c, scope, _, err := loader.LoadEntry(main, nil)
	require.NoError(t, err)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())

	for _, v := range scope.Values {
		p, ok := c.Value(v).(*dag.Primitive)
		require.True(t, ok)
		assert.Equal(t, root, p.Value)
	}
}
