package backend

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/types"
)

func exampleDag() *dag.Dag {
	rule := &dag.Rule{
		RuleName: "compile",
		Command:  "cc -c ${in} -o ${out}",
		Params: []dag.Param{
			{Name: "src", Tag: types.In},
			{Name: "obj", Tag: types.Out},
		},
	}
	src := &dag.File{Path: "main.c"}
	obj := &dag.File{Path: "main.o"}
	build := &dag.Build{
		BuildName: "compile",
		Rule:      rule,
		Inputs:    map[string]*dag.File{"src": src},
		Outputs:   map[string]*dag.File{"obj": obj},
		Vars:      map[string]dag.Value{},
	}
	obj.GeneratedBy = build

	return &dag.Dag{
		Files:     []*dag.File{src, obj},
		Rules:     []*dag.Rule{rule},
		Builds:    []*dag.Build{build},
		Variables: map[string]dag.Value{"cc": &dag.Primitive{Value: "cc"}},
		Targets:   []*dag.Target{{Name: "all", Files: []*dag.File{obj}}},
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "true", FormatValue(&dag.Primitive{Value: true}))
	assert.Equal(t, "false", FormatValue(&dag.Primitive{Value: false}))
	assert.Equal(t, "3", FormatValue(&dag.Primitive{Value: int64(3)}))
	assert.Equal(t, "hi", FormatValue(&dag.Primitive{Value: "hi"}))
	assert.Equal(t, "a b", FormatValue(&dag.List{Elements: []dag.Value{
		&dag.Primitive{Value: "a"}, &dag.Primitive{Value: "b"},
	}}))
	assert.Equal(t, "", FormatValue(&dag.Record{}))
	assert.Equal(t, "", FormatValue(&dag.Function{}))
}

func TestBuildCommandSubstitution(t *testing.T) {
	d := exampleDag()
	cmd := d.Builds[0].Command()
	assert.Equal(t, "cc -c main.c -o main.o", cmd)
}

func TestNinjaGenerate(t *testing.T) {
	d := exampleDag()
	n := &Ninja{}
	w := NewWriter()
	require.NoError(t, n.Generate(d, w))
	out := w.String()

	assert.Equal(t, "build.ninja", n.DefaultFilename())
	assert.Contains(t, out, "rule compile")
	assert.Contains(t, out, "command = cc -c ${in} -o ${out}")
	assert.Contains(t, out, "build main.o: compile main.c")
	assert.Contains(t, out, "build all : phony main.o")
}

// TestNinjaGenerateGolden checks the whole file byte-for-byte, the way
// the teacher's internal/parser/testutil.go compares a full parse dump
// with cmp.Diff rather than scattered Contains checks.
func TestNinjaGenerateGolden(t *testing.T) {
	d := exampleDag()
	n := &Ninja{}
	w := NewWriter()
	require.NoError(t, n.Generate(d, w))

	want := "#\n" +
		"# Ninja file generated by Fabrique\n" +
		"#\n" +
		"\n" +
		"#\n" +
		"# Variables:\n" +
		"#\n" +
		"cc = cc\n" +
		"\n" +
		"#\n" +
		"# Rules:\n" +
		"#\n" +
		"rule compile\n" +
		"  command = cc -c ${in} -o ${out}\n" +
		"  description = compile\n" +
		"\n" +
		"#\n" +
		"# Build steps:\n" +
		"#\n" +
		"build all : phony main.o\n" +
		"\n" +
		"build main.o: compile main.c\n" +
		"\n"

	if diff := cmp.Diff(want, w.String()); diff != "" {
		t.Errorf("generated ninja file mismatch (-want +got):\n%s", diff)
	}
}

func TestNinjaWarnsOnReservedRuleParam(t *testing.T) {
	d := exampleDag()
	d.Rules[0].Params = append(d.Rules[0].Params, dag.Param{Name: "command"})

	var warnings []string
	n := &Ninja{Warn: func(msg string) { warnings = append(warnings, msg) }}
	require.NoError(t, n.Generate(d, NewWriter()))

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "reserved meaning")
}

func TestNinjaMarksRegenerationRuleAsGenerator(t *testing.T) {
	d := exampleDag()
	d.Rules[0].RuleName = dag.RegenerationRuleName
	d.Builds[0].Rule.RuleName = dag.RegenerationRuleName

	n := &Ninja{}
	w := NewWriter()
	require.NoError(t, n.Generate(d, w))
	assert.Contains(t, w.String(), "generator = true")
}

func TestMakeDefaultFilenames(t *testing.T) {
	assert.Equal(t, "Makefile", (&Make{Flavour: POSIX}).DefaultFilename())
	assert.Equal(t, "BSDMakefile", (&Make{Flavour: BSD}).DefaultFilename())
	assert.Equal(t, "GNUMakefile", (&Make{Flavour: GNU}).DefaultFilename())
}

func TestMakeGenerate(t *testing.T) {
	d := exampleDag()
	m := &Make{Flavour: POSIX}
	w := NewWriter()
	require.NoError(t, m.Generate(d, w))
	out := w.String()

	assert.Contains(t, out, ".POSIX:")
	assert.Contains(t, out, "clean :")
	assert.Contains(t, out, "rm -rf main.o")
	assert.Contains(t, out, "main.o : main.c")
	assert.Contains(t, out, "echo \"")
	assert.Contains(t, out, "cc -c main.c -o main.o")
	assert.Contains(t, out, "all : main.o")
}

func TestMakeEmitsPseudoTargetForMultiOutputBuild(t *testing.T) {
	d := exampleDag()
	extra := &dag.File{Path: "main.d"}
	d.Builds[0].Outputs["dep"] = extra
	d.Builds[0].Rule.Params = append(d.Builds[0].Rule.Params, dag.Param{Name: "dep", Tag: types.Out})

	m := &Make{}
	w := NewWriter()
	require.NoError(t, m.Generate(d, w))
	out := w.String()
	assert.True(t, strings.Contains(out, "compile_1 : "))
}

func TestNinjaEmitsExtraDepsAndOutputs(t *testing.T) {
	d := exampleDag()
	hdr := &dag.File{Path: "main.h"}
	dep := &dag.File{Path: "main.d"}
	d.Builds[0].ExtraDeps = []*dag.File{hdr}
	d.Builds[0].ExtraOutputs = []*dag.File{dep}

	n := &Ninja{}
	w := NewWriter()
	require.NoError(t, n.Generate(d, w))
	out := w.String()
	assert.Contains(t, out, "build main.o | main.d: compile main.c | main.h")
}

func TestMakeEmitsExtraDepsClause(t *testing.T) {
	d := exampleDag()
	d.Builds[0].ExtraDeps = []*dag.File{{Path: "main.h"}}

	m := &Make{}
	w := NewWriter()
	require.NoError(t, m.Generate(d, w))
	out := w.String()
	assert.Contains(t, out, "main.o : main.c | main.h")
}

func TestMakeEmitsMkdirForOutputDirectory(t *testing.T) {
	d := exampleDag()
	d.Files[1].Path = "obj/main.o"
	d.Builds[0].Outputs["obj"].Path = "obj/main.o"

	m := &Make{}
	w := NewWriter()
	require.NoError(t, m.Generate(d, w))
	out := w.String()
	assert.Contains(t, out, "mkdir -p obj")
	assert.Contains(t, out, "obj/main.o : | obj")
}
