package eval

import (
	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/types"
)

// evalFile evaluates `file(nameExpr, namedArgs...)`: the name joins the
// currently-visible subdirectory (DESIGN.md Open Question 3) and becomes
// the resulting File's path identity; named arguments become attrs.
func (c *Context) evalFile(n *ast.File) dag.Value {
	nameVal := c.evalExpr(n.Name)
	p, ok := nameVal.(*dag.Primitive)
	if !ok {
		c.errAt(n, "internal error: file name did not evaluate to a string")
		return nil
	}
	name, _ := p.Value.(string)
	path := c.joinSubdir(name)

	attrs := c.evalNamedArgs(n.NamedArgs)
	return c.Builder.File(path, n.Type(), attrs)
}

// evalFileList evaluates `files(filename*, namedArgs...)`: every bare
// filename joins the same subdirectory and shares the same attrs.
func (c *Context) evalFileList(n *ast.FileList) dag.Value {
	attrs := c.evalNamedArgs(n.NamedArgs)

	var elemType *types.Type
	if n.Type() != nil {
		elemType = n.Type().Elem()
	}

	elems := make([]dag.Value, len(n.Filenames))
	for i, fl := range n.Filenames {
		path := c.joinSubdir(fl.Value)
		// Each File gets its own attrs map so later per-file mutation
		// (e.g. a build's GeneratedBy) never leaks across filenames that
		// happened to share one files(...) call.
		fileAttrs := make(map[string]dag.Value, len(attrs))
		for k, v := range attrs {
			fileAttrs[k] = v
		}
		elems[i] = c.Builder.File(path, elemType, fileAttrs)
	}
	return &dag.List{Elements: elems}
}

// evalNamedArgs evaluates a named-argument list into an attrs map, as
// used by both file(...) and files(...).
func (c *Context) evalNamedArgs(args []*ast.Argument) map[string]dag.Value {
	if len(args) == 0 {
		return nil
	}
	attrs := make(map[string]dag.Value, len(args))
	for _, a := range args {
		attrs[a.Name] = c.evalExpr(a.Value)
	}
	return attrs
}
