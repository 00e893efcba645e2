package eval

import (
	"fmt"

	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/types"
)

// evalAction builds (or returns the already-built) Rule for one action()
// literal. An action bound directly to a top-level/let Value takes that
// Value's name (e.g. `compile = action(...)` names the Rule "compile");
// any other occurrence gets a synthesized name, matching spec.md §5's
// "Rules are deduplicated by name" identity.
func (c *Context) evalAction(act *ast.Action, name string) dag.Value {
	if existing, ok := c.ruleNames[act]; ok {
		name = existing
	} else {
		if name == "" {
			c.ruleSeq++
			name = fmt.Sprintf("rule_%d", c.ruleSeq)
		}
		c.ruleNames[act] = name
	}

	commandVal := c.evalExpr(act.Command)
	command := stringOf(commandVal)

	params := make([]dag.Param, len(act.Params))
	for i, prm := range act.Params {
		tag := types.Untagged
		if prm.Type != nil && prm.Type.Kind() == types.KindFile {
			tag = prm.Type.FileTag()
		}
		params[i] = dag.Param{Name: prm.Name, Tag: tag, Type: prm.Type}
	}

	vars := make(map[string]dag.Value, len(act.NamedArgs))
	for _, a := range act.NamedArgs {
		vars[a.Name] = c.evalExpr(a.Value)
	}

	return c.Builder.Rule(name, act.Type(), command, params, vars)
}

// primaryParam picks the one param of tag among rule's params that binds
// the call's primary in/out slot (spec.md §5's "first two unnamed or
// in/out-named arguments"): the param literally named in/out if one was
// declared with this tag, else the first param of this tag in
// declaration order. Any other same-tagged param is an extra dependency
// or extra output instead of the primary one.
func primaryParam(params []dag.Param, tag types.FileTag) string {
	reserved := "in"
	if tag == types.Out {
		reserved = "out"
	}
	first := ""
	for _, p := range params {
		if p.Tag != tag {
			continue
		}
		if p.Name == reserved {
			return reserved
		}
		if first == "" {
			first = p.Name
		}
	}
	return first
}

// evalRuleCall applies a Rule to a call's arguments, synthesizing a
// Build: the primary file[in]/file[out]-tagged params (spec.md §5)
// become Inputs/Outputs, any other file[in]/file[out]-tagged params
// become ExtraDeps/ExtraOutputs, and any remaining params become
// per-invocation Vars substituted into the command template
// (dag.Build.Command). Grounded on
// `original_source/DAG/DAG.cc`'s in/out/dependencies/extraOutputs split.
func (c *Context) evalRuleCall(rule *dag.Rule, call *ast.Call) dag.Value {
	bound := make(map[string]dag.Value, len(rule.Params))
	for i, a := range call.Args {
		if a.Name == "" {
			if i >= len(rule.Params) {
				continue
			}
			bound[rule.Params[i].Name] = c.evalExpr(a.Value)
			continue
		}
		bound[a.Name] = c.evalExpr(a.Value)
	}

	primaryIn := primaryParam(rule.Params, types.In)
	primaryOut := primaryParam(rule.Params, types.Out)

	build := &dag.Build{
		Rule:    rule,
		Inputs:  make(map[string]*dag.File),
		Outputs: make(map[string]*dag.File),
		Vars:    make(map[string]dag.Value),
	}
	build.BuildName = c.Builder.NextBuildName(rule.RuleName)

	var outFiles []*dag.File
	for _, p := range rule.Params {
		v, ok := bound[p.Name]
		if !ok {
			continue
		}
		switch p.Tag {
		case types.In:
			f, ok := v.(*dag.File)
			if !ok {
				continue
			}
			if p.Name == primaryIn {
				build.Inputs[p.Name] = f
			} else {
				build.ExtraDeps = append(build.ExtraDeps, f)
			}
		case types.Out:
			f, ok := v.(*dag.File)
			if !ok {
				continue
			}
			f.GeneratedBy = build
			if p.Name == primaryOut {
				build.Outputs[p.Name] = f
			} else {
				build.ExtraOutputs = append(build.ExtraOutputs, f)
			}
			outFiles = append(outFiles, f)
		default:
			build.Vars[p.Name] = v
		}
	}

	c.Builder.AddBuild(build)

	switch len(outFiles) {
	case 0:
		return nil
	case 1:
		return outFiles[0]
	default:
		elems := make([]dag.Value, len(outFiles))
		for i, f := range outFiles {
			elems[i] = f
		}
		return &dag.List{Elements: elems}
	}
}

func stringOf(v dag.Value) string {
	p, ok := v.(*dag.Primitive)
	if !ok {
		return ""
	}
	s, _ := p.Value.(string)
	return s
}
