package eval

import (
	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
)

func (c *Context) evalUnaryOp(n *ast.UnaryOp) dag.Value {
	v := c.evalExpr(n.Operand)
	p, ok := v.(*dag.Primitive)
	if !ok {
		c.errAt(n, "internal error: unary operand did not evaluate to a primitive")
		return nil
	}
	switch n.Op {
	case ast.Not:
		b, _ := p.Value.(bool)
		return &dag.Primitive{Value: !b}
	case ast.Negate:
		i, _ := p.Value.(int64)
		return &dag.Primitive{Value: -i}
	default:
		c.errAt(n, "internal error: unknown unary operator")
		return nil
	}
}

func (c *Context) evalBinaryOp(n *ast.BinaryOp) dag.Value {
	left := c.evalExpr(n.Left)
	right := c.evalExpr(n.Right)

	switch n.Op {
	case ast.And:
		return &dag.Primitive{Value: asBool(left) && asBool(right)}
	case ast.Or:
		return &dag.Primitive{Value: asBool(left) || asBool(right)}
	case ast.Xor:
		return &dag.Primitive{Value: asBool(left) != asBool(right)}
	case ast.Equal:
		return &dag.Primitive{Value: valuesEqual(left, right)}
	case ast.NotEqual:
		return &dag.Primitive{Value: !valuesEqual(left, right)}
	case ast.LessThan:
		return &dag.Primitive{Value: asInt(left) < asInt(right)}
	case ast.GreaterThan:
		return &dag.Primitive{Value: asInt(left) > asInt(right)}
	case ast.Add:
		return c.evalAdd(n, left, right)
	case ast.Subtract:
		return &dag.Primitive{Value: asInt(left) - asInt(right)}
	case ast.Multiply:
		return &dag.Primitive{Value: asInt(left) * asInt(right)}
	case ast.Divide:
		return &dag.Primitive{Value: asInt(left) / asInt(right)}
	case ast.Prefix:
		return c.evalPrefix(left, right)
	case ast.ScalarAdd:
		return c.evalScalarAdd(left, right)
	default:
		c.errAt(n, "internal error: unknown binary operator")
		return nil
	}
}

// evalAdd implements both int+int and list+list concatenation, mirroring
// checkBinaryOp's Add rule (internal/parser/parser_expr.go).
func (c *Context) evalAdd(n *ast.BinaryOp, left, right dag.Value) dag.Value {
	if ll, ok := left.(*dag.List); ok {
		rl, _ := right.(*dag.List)
		elems := make([]dag.Value, 0, len(ll.Elements)+len(rl.Elements))
		elems = append(elems, ll.Elements...)
		elems = append(elems, rl.Elements...)
		return &dag.List{Elements: elems}
	}
	return &dag.Primitive{Value: asInt(left) + asInt(right)}
}

// evalPrefix implements `scalar :: list`, returning a new list whose
// first element is scalar, followed by the right-hand list's elements
// (spec.md §4.5).
func (c *Context) evalPrefix(left, right dag.Value) dag.Value {
	rl, ok := right.(*dag.List)
	if !ok {
		return right
	}
	elems := make([]dag.Value, len(rl.Elements))
	copy(elems, rl.Elements)
	return &dag.List{Elements: append([]dag.Value{left}, elems...)}
}

// evalScalarAdd implements `list .+ scalar`, applying scalar uniformly
// to every element (e.g. appending a shared suffix).
func (c *Context) evalScalarAdd(left, right dag.Value) dag.Value {
	ll, ok := left.(*dag.List)
	if !ok {
		return left
	}
	elems := make([]dag.Value, len(ll.Elements))
	copy(elems, ll.Elements)
	elems = append(elems, right)
	return &dag.List{Elements: elems}
}

func asBool(v dag.Value) bool {
	p, _ := v.(*dag.Primitive)
	if p == nil {
		return false
	}
	b, _ := p.Value.(bool)
	return b
}

func asInt(v dag.Value) int64 {
	p, _ := v.(*dag.Primitive)
	if p == nil {
		return 0
	}
	i, _ := p.Value.(int64)
	return i
}

// valuesEqual is a structural equality check over dag.Values, used by
// the == and != operators.
func valuesEqual(a, b dag.Value) bool {
	switch av := a.(type) {
	case *dag.Primitive:
		bv, ok := b.(*dag.Primitive)
		return ok && av.Value == bv.Value
	case *dag.File:
		bv, ok := b.(*dag.File)
		return ok && av.Path == bv.Path
	case *dag.List:
		bv, ok := b.(*dag.List)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !valuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *dag.Maybe:
		bv, ok := b.(*dag.Maybe)
		if !ok || av.Present != bv.Present {
			return false
		}
		if !av.Present {
			return true
		}
		return valuesEqual(av.Inner, bv.Inner)
	default:
		return a == b
	}
}

func (c *Context) evalFieldAccess(n *ast.FieldAccess) dag.Value {
	rv := c.evalExpr(n.Receiver)
	rec, ok := rv.(*dag.Record)
	if !ok {
		if f, ok := rv.(*dag.File); ok {
			if v, ok := f.Attrs[n.Field]; ok {
				return v
			}
		}
		c.errAt(n, "internal error: field access on non-record value")
		return nil
	}
	v, ok := rec.Field(n.Field)
	if !ok {
		c.errAt(n, "internal error: record has no field %q", n.Field)
		return nil
	}
	return v
}

func (c *Context) evalFieldQuery(n *ast.FieldQuery) dag.Value {
	rv := c.evalExpr(n.Receiver)
	if rec, ok := rv.(*dag.Record); ok {
		if v, ok := rec.Field(n.Field); ok {
			return v
		}
	}
	if f, ok := rv.(*dag.File); ok {
		if v, ok := f.Attrs[n.Field]; ok {
			return v
		}
	}
	return c.evalExpr(n.Default)
}

func (c *Context) evalSome(n *ast.Some) dag.Value {
	return &dag.Maybe{Present: true, Inner: c.evalExpr(n.Inner)}
}
