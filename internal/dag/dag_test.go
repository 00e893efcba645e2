package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriquer/fabrique/internal/types"
)

func TestBuilderFileDedupByPath(t *testing.T) {
	b := NewBuilder()
	tctx := types.NewContext()

	f1 := b.File("src/main.c", tctx.File(), map[string]Value{"lang": &Primitive{base: base{Typ: tctx.String()}, Value: "c"}})
	f2 := b.File("src/main.c", tctx.File(), nil)

	assert.Same(t, f1, f2)
	assert.Equal(t, "c", f2.Attrs["lang"].(*Primitive).Value)
}

func TestBuilderRuleIdentitySharedAcrossCalls(t *testing.T) {
	b := NewBuilder()
	tctx := types.NewContext()
	fnType := tctx.FunctionType(nil, tctx.OutputFile())

	r1 := b.Rule("compile", fnType, "cc -c ${in} -o ${out}", nil, nil)
	r2 := b.Rule("compile", fnType, "cc -c ${in} -o ${out}", nil, nil)

	assert.Same(t, r1, r2)
}

func TestNextBuildNameSynthesizesSuffixes(t *testing.T) {
	b := NewBuilder()
	assert.Equal(t, "compile", b.NextBuildName("compile"))
	assert.Equal(t, "compile_1", b.NextBuildName("compile"))
	assert.Equal(t, "compile_2", b.NextBuildName("compile"))
}

func TestFreezeSortsFilesDeterministically(t *testing.T) {
	b := NewBuilder()
	tctx := types.NewContext()
	b.File("z.c", tctx.File(), nil)
	b.File("a.c", tctx.File(), nil)
	b.File("m.c", tctx.File(), nil)

	d := b.Freeze()
	require.Len(t, d.Files, 3)
	assert.Equal(t, []string{"a.c", "m.c", "z.c"}, []string{d.Files[0].Path, d.Files[1].Path, d.Files[2].Path})
}

func TestInputOutputPathsFollowParamOrder(t *testing.T) {
	rule := &Rule{
		RuleName: "compile",
		Command:  "cc -c ${in} -o ${out}",
		Params: []Param{
			{Name: "src", Tag: types.In},
			{Name: "hdr", Tag: types.In},
			{Name: "obj", Tag: types.Out},
		},
	}
	build := &Build{
		Rule: rule,
		Inputs: map[string]*File{
			"hdr": {Path: "main.h"},
			"src": {Path: "main.c"},
		},
		Outputs: map[string]*File{"obj": {Path: "main.o"}},
	}

	assert.Equal(t, []string{"main.c", "main.h"}, build.InputPaths())
	assert.Equal(t, []string{"main.o"}, build.OutputPaths())
}

func TestAddTargetAndFreeze(t *testing.T) {
	b := NewBuilder()
	tctx := types.NewContext()
	f := b.File("out.bin", tctx.File(), nil)
	b.AddTarget("all", []*File{f})

	d := b.Freeze()
	require.Len(t, d.Targets, 1)
	assert.Equal(t, "all", d.Targets[0].Name)
}
