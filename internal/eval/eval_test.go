package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/diagnostics"
	"github.com/fabriquer/fabrique/internal/parser"
	"github.com/fabriquer/fabrique/internal/types"
)

// evalSrc parses and evaluates src in one shot, failing the test on any
// parse-time diagnostic, and returns the populated Context, the parsed
// top-level Scope (so tests can look up a Value by name) and the frozen
// Dag.
func evalSrc(t *testing.T, src string) (*Context, *ast.Scope, *dag.Dag) {
	t.Helper()
	tctx := types.NewContext()
	reporter := diagnostics.NewReporter()
	p := parser.New("test.fab", []byte(src), tctx, reporter, nil)
	f := p.ParseFile()
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())

	builder := dag.NewBuilder()
	c := NewContext(builder, reporter, tctx, nil, "test.fab")
	c.EvalFile(f.Scope)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	return c, f.Scope, builder.Freeze()
}

func findValue(scope *ast.Scope, name string) *ast.Value {
	for _, v := range scope.Values {
		if v.Name == name {
			return v
		}
	}
	return nil
}

func TestEvalFileRegistersTarget(t *testing.T) {
	_, _, d := evalSrc(t, `x = file('main.c');`)
	require.Len(t, d.Targets, 1)
	assert.Equal(t, "x", d.Targets[0].Name)
	require.Len(t, d.Targets[0].Files, 1)
	assert.Equal(t, "main.c", d.Targets[0].Files[0].Path)
}

func TestEvalSubdirJoinsFilePath(t *testing.T) {
	_, _, d := evalSrc(t, `subdir = file('src'); x = file('main.c');`)
	require.Len(t, d.Files, 2)
	var mainPath string
	for _, f := range d.Files {
		if f.Path != "src" {
			mainPath = f.Path
		}
	}
	assert.Equal(t, "src/main.c", mainPath)
}

func TestEvalSubdirScopedToCompoundBlock(t *testing.T) {
	_, _, d := evalSrc(t, `
		x = { subdir = file('inner'); file('a.c') };
		y = file('b.c');
	`)
	paths := map[string]bool{}
	for _, f := range d.Files {
		paths[f.Path] = true
	}
	assert.True(t, paths["inner/a.c"])
	assert.True(t, paths["b.c"])
}

func TestEvalConditional(t *testing.T) {
	c, scope, _ := evalSrc(t, `x = if true 1 else 2;`)
	v := c.values[findValue(scope, "x")]
	p, ok := v.(*dag.Primitive)
	require.True(t, ok)
	assert.Equal(t, int64(1), p.Value)
}

func TestEvalForeachMapsOverList(t *testing.T) {
	c, scope, _ := evalSrc(t, `xs = foreach n <- [1 2 3] n + 1;`)
	v := c.values[findValue(scope, "xs")]
	list, ok := v.(*dag.List)
	require.True(t, ok)
	require.Len(t, list.Elements, 3)
	assert.Equal(t, int64(2), list.Elements[0].(*dag.Primitive).Value)
	assert.Equal(t, int64(4), list.Elements[2].(*dag.Primitive).Value)
}

func TestEvalRecursiveFunction(t *testing.T) {
	c, scope, _ := evalSrc(t, `
		fact = function(n: int): int { if n == 0 1 else n * fact(n - 1) };
		result = fact(5);
	`)
	v := c.values[findValue(scope, "result")]
	p, ok := v.(*dag.Primitive)
	require.True(t, ok)
	assert.Equal(t, int64(120), p.Value)
}

func TestEvalRecordFieldAccess(t *testing.T) {
	c, scope, _ := evalSrc(t, `
		r = record { a = 1; b = 2; };
		x = r.a;
	`)
	v := c.values[findValue(scope, "x")]
	p, ok := v.(*dag.Primitive)
	require.True(t, ok)
	assert.Equal(t, int64(1), p.Value)
}

func TestEvalFieldQueryFallsBackToDefault(t *testing.T) {
	c, scope, _ := evalSrc(t, `
		r = record { a = 1; };
		x = r.missing ? 9;
	`)
	v := c.values[findValue(scope, "x")]
	p, ok := v.(*dag.Primitive)
	require.True(t, ok)
	assert.Equal(t, int64(9), p.Value)
}

func TestEvalActionCallSynthesizesBuild(t *testing.T) {
	_, _, d := evalSrc(t, `
		compile = action('cc -c ${in} -o ${out}' <- src: file[in], obj: file[out]);
		result = compile(src = file('main.c'), obj = file('main.o'));
	`)
	require.Len(t, d.Rules, 1)
	assert.Equal(t, "compile", d.Rules[0].RuleName)
	require.Len(t, d.Builds, 1)
	build := d.Builds[0]
	assert.Equal(t, "main.c", build.Inputs["src"].Path)
	assert.Equal(t, "main.o", build.Outputs["obj"].Path)
	assert.Same(t, build, build.Outputs["obj"].GeneratedBy)
	assert.Equal(t, "cc -c main.c -o main.o", build.Command())
}

func TestEvalActionCallSplitsExtraDepsAndOutputs(t *testing.T) {
	_, _, d := evalSrc(t, `
		compile = action('cc -c ${in} -o ${out}' <- in: file[in], out: file[out], hdr: file[in], dep: file[out]);
		result = compile(in = file('main.c'), out = file('main.o'), hdr = file('main.h'), dep = file('main.d'));
	`)
	require.Len(t, d.Builds, 1)
	build := d.Builds[0]

	assert.Equal(t, "main.c", build.Inputs["in"].Path)
	assert.Equal(t, "main.o", build.Outputs["out"].Path)
	require.Len(t, build.ExtraDeps, 1)
	assert.Equal(t, "main.h", build.ExtraDeps[0].Path)
	require.Len(t, build.ExtraOutputs, 1)
	assert.Equal(t, "main.d", build.ExtraOutputs[0].Path)
	assert.Same(t, build, build.ExtraOutputs[0].GeneratedBy)
	assert.Equal(t, "cc -c main.c -o main.o", build.Command())
}

func TestEvalActionReusesRuleAcrossCalls(t *testing.T) {
	_, _, d := evalSrc(t, `
		compile = action('cc -c ${in} -o ${out}' <- src: file[in], obj: file[out]);
		a = compile(src = file('a.c'), obj = file('a.o'));
		b = compile(src = file('b.c'), obj = file('b.o'));
	`)
	require.Len(t, d.Rules, 1)
	require.Len(t, d.Builds, 2)
	assert.Equal(t, "compile", d.Builds[0].BuildName)
	assert.Equal(t, "compile_1", d.Builds[1].BuildName)
}
