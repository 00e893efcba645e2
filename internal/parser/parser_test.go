package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriquer/fabrique/internal/diagnostics"
	"github.com/fabriquer/fabrique/internal/types"
)

func parse(t *testing.T, src string) (*File, *diagnostics.Reporter) {
	t.Helper()
	tctx := types.NewContext()
	reporter := diagnostics.NewReporter()
	p := New("test.fab", []byte(src), tctx, reporter, nil)
	f := p.ParseFile()
	return f, reporter
}

func TestParseSimpleValueDecl(t *testing.T) {
	f, reporter := parse(t, `x = 42;`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	require.Len(t, f.Scope.Values, 1)
	v := f.Scope.Values[0]
	assert.Equal(t, "x", v.Name)
	assert.Equal(t, "42", v.Init.String())
}

func TestParseDeclaredTypeMismatchReportsError(t *testing.T) {
	_, reporter := parse(t, `x : string = 42;`)
	assert.True(t, reporter.HasErrors())
}

func TestParseBinaryArithmetic(t *testing.T) {
	f, reporter := parse(t, `x = 1 + 2 * 3;`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	assert.Equal(t, "1 + 2 * 3", f.Scope.Values[0].Init.String())
}

func TestParseConditional(t *testing.T) {
	f, reporter := parse(t, `x = if true 1 else 2;`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	assert.Equal(t, "if true 1 else 2", f.Scope.Values[0].Init.String())
}

func TestParseListLiteral(t *testing.T) {
	f, reporter := parse(t, `x = [1 2 3];`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	assert.Equal(t, "[1 2 3]", f.Scope.Values[0].Init.String())
}

func TestParseFunctionRecursion(t *testing.T) {
	f, reporter := parse(t, `f = function(n:int):int if n == 0 0 else f(n - 1);`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	v := f.Scope.Values[0]
	assert.Equal(t, types.KindFunction, v.EffectiveType.Kind())
}

func TestParseRecordLiteralAndFieldAccess(t *testing.T) {
	f, reporter := parse(t, `r = record { a = 1; b = 2; }; y = r.a;`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	y := f.Scope.Values[1]
	assert.Equal(t, types.KindInt, y.EffectiveType.Kind())
}

func TestParseFieldQueryDefault(t *testing.T) {
	f, reporter := parse(t, `r = record { a = 1; }; y = r.missing ? 7;`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	y := f.Scope.Values[1]
	assert.Equal(t, types.KindInt, y.EffectiveType.Kind())
}

func TestParseTypeAliasDeclaration(t *testing.T) {
	_, reporter := parse(t, `Point = record[x:int, y:int];`)
	assert.False(t, reporter.HasErrors(), "%v", reporter.Reports())
}

func TestParseActionWithFileParams(t *testing.T) {
	src := `build_obj = action('cc -c ${in} -o ${out}' <- in: file[in], out: file[out]);`
	f, reporter := parse(t, src)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	v := f.Scope.Values[0]
	require.Equal(t, types.KindFunction, v.EffectiveType.Kind())
	assert.Equal(t, "file[out]", v.EffectiveType.Result().String())
}

func TestParseActionCollapsesParamsToTwo(t *testing.T) {
	src := `compile = action('cc -c ${in} -o ${out}' <- in: file[in], out: file[out], hdr: file[in], dep: file[out]);`
	f, reporter := parse(t, src)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	v := f.Scope.Values[0]
	require.Equal(t, types.KindFunction, v.EffectiveType.Kind())
	require.Len(t, v.EffectiveType.Params(), 2)
	assert.Equal(t, types.KindList, v.EffectiveType.Params()[0].Kind())
	assert.Equal(t, types.KindList, v.EffectiveType.Params()[1].Kind())
	assert.Equal(t, types.KindList, v.EffectiveType.Result().Kind())
}

func TestParseActionRejectsUntaggedFileParam(t *testing.T) {
	src := `bad = action('cmd' <- in: file);`
	_, reporter := parse(t, src)
	assert.True(t, reporter.HasErrors())
}

func TestParseFilesExpression(t *testing.T) {
	f, reporter := parse(t, `srcs = files(a.c b.c c.c);`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	v := f.Scope.Values[0]
	assert.Equal(t, types.KindList, v.EffectiveType.Kind())
	assert.Equal(t, "a.c b.c c.c", v.Init.String()[len("files("):len(v.Init.String())-1])
}

func TestParseForeach(t *testing.T) {
	f, reporter := parse(t, `srcs = files(a.c b.c); objs = foreach s <- srcs s;`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	v := f.Scope.Values[1]
	assert.Equal(t, types.KindList, v.EffectiveType.Kind())
}

func TestParseForeachOverMaybe(t *testing.T) {
	f, reporter := parse(t, `m = some(1); r = foreach x <- m x;`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	v := f.Scope.Values[1]
	require.Equal(t, types.KindList, v.EffectiveType.Kind())
	assert.Equal(t, types.KindInt, v.EffectiveType.Elem().Kind())
}

func TestParseRedefinitionReportsError(t *testing.T) {
	_, reporter := parse(t, `x = 1; x = 2;`)
	assert.True(t, reporter.HasErrors())
}

func TestParseReservedNameRejected(t *testing.T) {
	_, reporter := parse(t, `subdir = 'x';`)
	assert.True(t, reporter.HasErrors())
}

func TestParseUndefinedNameReportsError(t *testing.T) {
	_, reporter := parse(t, `x = y;`)
	assert.True(t, reporter.HasErrors())
}

func TestParseSomeExpression(t *testing.T) {
	f, reporter := parse(t, `x = some(1);`)
	require.False(t, reporter.HasErrors(), "%v", reporter.Reports())
	v := f.Scope.Values[0]
	assert.Equal(t, types.KindMaybe, v.EffectiveType.Kind())
}

// Round-trip: pretty-printing a parsed declaration and re-parsing the
// result produces a structurally identical rendering (spec.md §8,
// "Round-trip / idempotence").
func TestRoundTripPrintReparse(t *testing.T) {
	src := `x = if (1 + 2) == 3 [1 2] else [4 5];`
	f1, reporter1 := parse(t, src)
	require.False(t, reporter1.HasErrors(), "%v", reporter1.Reports())
	printed := f1.Scope.Values[0].String()

	f2, reporter2 := parse(t, printed)
	require.False(t, reporter2.HasErrors(), "%v", reporter2.Reports())
	reprinted := f2.Scope.Values[0].String()

	assert.Equal(t, printed, reprinted)
}
