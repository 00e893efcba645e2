package inspect

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

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
	build := &dag.Build{BuildName: "compile", Rule: rule,
		Inputs: map[string]*dag.File{"src": src}, Outputs: map[string]*dag.File{"obj": obj}}
	obj.GeneratedBy = build

	return &dag.Dag{
		Files:     []*dag.File{src, obj},
		Rules:     []*dag.Rule{rule},
		Builds:    []*dag.Build{build},
		Variables: map[string]dag.Value{"cc": &dag.Primitive{Value: "cc"}},
		Targets:   []*dag.Target{{Name: "all", Files: []*dag.File{obj}}},
	}
}

func TestDispatchTargets(t *testing.T) {
	s := New(exampleDag())
	var buf bytes.Buffer
	quit := s.dispatch(":targets", &buf)
	assert.False(t, quit)
	assert.Contains(t, buf.String(), "all -> main.o")
}

func TestDispatchShowFile(t *testing.T) {
	s := New(exampleDag())
	var buf bytes.Buffer
	s.dispatch(":show main.o", &buf)
	out := buf.String()
	assert.Contains(t, out, "generated by: compile")
	assert.Contains(t, out, "inputs: main.c")
}

func TestDispatchShowUnknown(t *testing.T) {
	s := New(exampleDag())
	var buf bytes.Buffer
	s.dispatch(":show nope", &buf)
	assert.Contains(t, buf.String(), "no target, file, rule or variable")
}

func TestDispatchQuit(t *testing.T) {
	s := New(exampleDag())
	var buf bytes.Buffer
	assert.True(t, s.dispatch(":quit", &buf))
}
