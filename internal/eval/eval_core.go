// Package eval tree-walks a parsed Fabrique AST into dag.Values,
// populating a dag.Builder as it goes (spec.md §4.6, "Evaluation
// rules"). Type checking already happened during parsing; eval's job
// is purely to produce values and build-graph entities, never to
// re-validate types.
package eval

import (
	"fmt"

	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/diagnostics"
	"github.com/fabriquer/fabrique/internal/types"
)

// ImportResolver evaluates an imported module and returns the record of
// its top-level (non-reserved) values. internal/module implements this
// against the filesystem; tests can supply a fake.
type ImportResolver interface {
	Resolve(path string, args map[string]dag.Value, from string) (*dag.Record, error)
}

// Context is the mutable state threaded through one evaluation: the DAG
// under construction, the diagnostics sink, the type context types were
// interned into, and the current subdirectory a File expression should
// join against (DESIGN.md Open Question 3 -- "latest" scoping: this is
// whatever subdir is visible in the *evaluation* scope, not the lexical
// declaration scope).
type Context struct {
	Builder  *dag.Builder
	Reporter *diagnostics.Reporter
	Types    *types.Context
	Resolver ImportResolver
	Filename string

	values env
	subdir string

	ruleNames map[*ast.Action]string
	ruleSeq   int
}

// NewContext returns a Context ready to evaluate one file.
func NewContext(builder *dag.Builder, reporter *diagnostics.Reporter, tctx *types.Context, resolver ImportResolver, filename string) *Context {
	return &Context{
		Builder:   builder,
		Reporter:  reporter,
		Types:     tctx,
		Resolver:  resolver,
		Filename:  filename,
		values:    make(env),
		ruleNames: make(map[*ast.Action]string),
	}
}

// EvalFile evaluates every top-level declaration in scope, in order,
// skipping type declarations, and hands each result to registerTarget,
// which registers a Target only for file-shaped values.
func (c *Context) EvalFile(scope *ast.Scope) {
	for _, v := range scope.Values {
		if _, isType := v.Init.(*ast.TypeDeclaration); isType {
			continue
		}
		val := c.evalValue(v)
		c.registerTarget(v.Name, val)
	}
}

// registerTarget turns a top-level value into a named Target: a single
// File becomes a one-element alias, a List of Files becomes a
// multi-element one, anything else is simply skipped (spec.md §4.6 only
// promises target registration for file-shaped values).
func (c *Context) registerTarget(name string, v dag.Value) {
	switch val := v.(type) {
	case *dag.File:
		c.Builder.AddTarget(name, []*dag.File{val})
	case *dag.List:
		var files []*dag.File
		for _, e := range val.Elements {
			if f, ok := e.(*dag.File); ok {
				files = append(files, f)
			}
		}
		if len(files) > 0 {
			c.Builder.AddTarget(name, files)
		}
	}
}

// evalValue returns the cached dag.Value for v, evaluating its
// initializer the first time (memoized exactly once per Value, matching
// the "a Value's initializer is evaluated the first time it's needed"
// rule a recursive function relies on).
func (c *Context) evalValue(v *ast.Value) dag.Value {
	if cached, ok := c.values[v]; ok {
		return cached
	}
	result := c.evalNamed(v.Init, v.Name)
	c.values[v] = result
	// Setting subdir changes which subdirectory later File/FileList
	// expressions in the same (or a nested) scope join against (DESIGN.md
	// Open Question 3); the scopes that can shadow it save/restore
	// c.subdir alongside c.values (evalCompound, evalForeach).
	if v.Name == "subdir" {
		if p, ok := result.(*dag.Primitive); ok {
			if s, ok := p.Value.(string); ok {
				c.subdir = s
			}
		} else if f, ok := result.(*dag.File); ok {
			c.subdir = f.Path
		}
	}
	return result
}

// evalNamed evaluates e, passing name through to the Action case so a
// rule takes the name of the Value it's bound to (e.g. `compile =
// action(...)` names the Rule "compile") rather than an anonymous
// synthesized one.
func (c *Context) evalNamed(e ast.Expr, name string) dag.Value {
	if act, ok := e.(*ast.Action); ok {
		return c.evalAction(act, name)
	}
	return c.evalExpr(e)
}

// Value returns v's evaluated dag.Value, evaluating it first if nothing
// has forced it yet. internal/module uses this after EvalFile to read
// out the values an imported module's Record exposes.
func (c *Context) Value(v *ast.Value) dag.Value {
	return c.evalValue(v)
}

// DefineBuiltin seeds v's slot directly with val, bypassing the normal
// evaluate-the-initializer path. internal/module uses this to inject
// srcroot/buildroot/subdir/args into a module's Context before running
// EvalFile, matching the reserved builtins' "always available, never
// user-initialized" nature (spec.md §6).
func (c *Context) DefineBuiltin(v *ast.Value, val dag.Value) {
	c.values[v] = val
	if v.Name == "subdir" {
		if f, ok := val.(*dag.File); ok {
			c.subdir = f.Path
		} else if p, ok := val.(*dag.Primitive); ok {
			if s, ok := p.Value.(string); ok {
				c.subdir = s
			}
		}
	}
}

func (c *Context) errAt(n ast.Node, format string, args ...any) {
	c.Reporter.Err(n.Range(), format, args...)
}

// joinSubdir prefixes path with the currently-visible subdirectory, the
// way every File/FileList expression picks up `subdir` (DESIGN.md Open
// Question 3).
func (c *Context) joinSubdir(path string) string {
	if c.subdir == "" {
		return path
	}
	return fmt.Sprintf("%s/%s", c.subdir, path)
}
