package eval

import (
	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
)

// evalExpr evaluates e in c's current environment, dispatching by
// concrete AST node kind (spec.md §4.6). It never re-checks types --
// the parser already did that -- so a malformed node here is a
// programmer error, not a user one.
func (c *Context) evalExpr(e ast.Expr) dag.Value {
	switch n := e.(type) {
	case *ast.BoolLiteral:
		return &dag.Primitive{Value: n.Value}
	case *ast.IntLiteral:
		return &dag.Primitive{Value: n.Value}
	case *ast.StringLiteral:
		return &dag.Primitive{Value: n.Value}
	case *ast.NameReference:
		return c.evalName(n)
	case *ast.List:
		return c.evalList(n)
	case *ast.Record:
		return c.evalRecord(n)
	case *ast.Conditional:
		return c.evalConditional(n)
	case *ast.CompoundExpression:
		return c.evalCompound(n)
	case *ast.Foreach:
		return c.evalForeach(n)
	case *ast.Function:
		return c.evalFunction(n)
	case *ast.Call:
		return c.evalCall(n)
	case *ast.Action:
		return c.evalAction(n, "")
	case *ast.File:
		return c.evalFile(n)
	case *ast.FileList:
		return c.evalFileList(n)
	case *ast.FieldAccess:
		return c.evalFieldAccess(n)
	case *ast.FieldQuery:
		return c.evalFieldQuery(n)
	case *ast.UnaryOp:
		return c.evalUnaryOp(n)
	case *ast.BinaryOp:
		return c.evalBinaryOp(n)
	case *ast.Some:
		return c.evalSome(n)
	case *ast.Import:
		return c.evalImport(n)
	case *ast.DebugTracePoint:
		return c.evalExpr(n.Inner)
	default:
		c.errAt(e, "internal error: no evaluation rule for %T", e)
		return nil
	}
}

func (c *Context) evalName(n *ast.NameReference) dag.Value {
	if n.Resolved == nil {
		return nil // already reported as undefined during parsing
	}
	if v, ok := c.values[n.Resolved]; ok {
		return v
	}
	return c.evalValue(n.Resolved)
}

func (c *Context) evalList(n *ast.List) dag.Value {
	elems := make([]dag.Value, len(n.Elements))
	for i, el := range n.Elements {
		elems[i] = c.evalExpr(el)
	}
	return &dag.List{Elements: elems}
}

// evalRecord evaluates a `record { valueDecl* }` literal's field scope in
// a fresh nested environment, collecting each field's value in
// declaration order.
func (c *Context) evalRecord(n *ast.Record) dag.Value {
	savedValues, savedSubdir := c.values, c.subdir
	c.values = c.values.child()
	defer func() { c.values, c.subdir = savedValues, savedSubdir }()

	order := make([]string, len(n.Fields.Values))
	fields := make(map[string]dag.Value, len(n.Fields.Values))
	for i, v := range n.Fields.Values {
		order[i] = v.Name
		fields[v.Name] = c.evalValue(v)
	}
	return &dag.Record{FieldOrder: order, Fields: fields}
}

func (c *Context) evalConditional(n *ast.Conditional) dag.Value {
	cond := c.evalExpr(n.Condition)
	b, _ := cond.(*dag.Primitive)
	if b == nil {
		c.errAt(n, "internal error: conditional guard did not evaluate to a bool")
		return nil
	}
	if truth, ok := b.Value.(bool); ok && truth {
		return c.evalExpr(n.Then)
	}
	return c.evalExpr(n.Else)
}

// evalCompound evaluates a `{ decl* result }` block in a fresh, nested
// set of bindings layered over the enclosing environment, discarding
// them once Result is computed (the bindings are not visible outside
// the block).
func (c *Context) evalCompound(n *ast.CompoundExpression) dag.Value {
	savedValues, savedSubdir := c.values, c.subdir
	c.values = c.values.child()
	defer func() { c.values, c.subdir = savedValues, savedSubdir }()

	for _, v := range n.Scope.Values {
		c.evalValue(v)
	}
	return c.evalExpr(n.Result)
}

func (c *Context) evalForeach(n *ast.Foreach) dag.Value {
	var elements []dag.Value
	switch in := c.evalExpr(n.Input).(type) {
	case *dag.List:
		elements = in.Elements
	case *dag.Maybe:
		if in.Present {
			elements = []dag.Value{in.Inner}
		}
	default:
		c.errAt(n, "internal error: foreach input did not evaluate to a list or maybe")
		return nil
	}

	savedValues, savedSubdir := c.values, c.subdir
	results := make([]dag.Value, len(elements))
	for i, elemVal := range elements {
		c.values = savedValues.child()
		c.subdir = savedSubdir
		c.values[n.LoopValue] = elemVal
		results[i] = c.evalExpr(n.Body)
	}
	c.values, c.subdir = savedValues, savedSubdir
	return &dag.List{Elements: results}
}

// closure is a Function value: the AST literal plus the environment it
// closed over at the point it was created.
type closure struct {
	fn  *ast.Function
	env env
}

func (c *Context) evalFunction(n *ast.Function) dag.Value {
	cl := &closure{fn: n, env: c.values.child()}
	return &dag.Function{Impl: cl}
}

// evalCall dispatches a call expression: applying a Function closure
// runs its body in a fresh scope with arguments bound to parameters;
// applying an action Rule synthesizes a Build (see action.go).
func (c *Context) evalCall(n *ast.Call) dag.Value {
	callee := c.evalExpr(n.Callee)
	switch fnVal := callee.(type) {
	case *dag.Function:
		cl, ok := fnVal.Impl.(*closure)
		if !ok {
			c.errAt(n, "internal error: function value has no closure")
			return nil
		}
		return c.applyClosure(cl, n.Args)
	case *dag.Rule:
		return c.evalRuleCall(fnVal, n)
	default:
		c.errAt(n, "internal error: call target is not callable")
		return nil
	}
}

func (c *Context) applyClosure(cl *closure, args []*ast.Argument) dag.Value {
	saved := c.values
	c.values = cl.env.child()
	defer func() { c.values = saved }()

	bound := make(map[string]bool, len(cl.fn.Params))
	for i, a := range args {
		if a.Name == "" {
			if i >= len(cl.fn.Params) {
				continue
			}
			prm := cl.fn.Params[i]
			c.bindParam(prm, c.evalExpr(a.Value))
			bound[prm.Name] = true
			continue
		}
		for _, prm := range cl.fn.Params {
			if prm.Name == a.Name {
				c.bindParam(prm, c.evalExpr(a.Value))
				bound[prm.Name] = true
				break
			}
		}
	}
	for _, prm := range cl.fn.Params {
		if !bound[prm.Name] && prm.Default != nil {
			c.bindParam(prm, c.evalExpr(prm.Default))
		}
	}
	return c.evalExpr(cl.fn.Body)
}

// bindParam binds an argument to the Value parseParamsIntoScope defined
// for this parameter (internal/parser/parser_primary.go), so
// NameReferences inside the body resolve to the same slot.
func (c *Context) bindParam(prm *ast.Parameter, v dag.Value) {
	if prm.BoundValue == nil {
		return
	}
	c.values[prm.BoundValue] = v
}
