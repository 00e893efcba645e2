package parser

import (
	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/lexer"
	"github.com/fabriquer/fabrique/internal/source"
	"github.com/fabriquer/fabrique/internal/types"
)

// precedence levels, loosest to tightest (spec.md §4.3, operator table):
// xor < or < and < equality < relational < additive < multiplicative.
const (
	precLowest = iota
	precXor
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
)

func precedenceOf(k lexer.Kind) int {
	switch k {
	case lexer.XOR:
		return precXor
	case lexer.OR:
		return precOr
	case lexer.AND:
		return precAnd
	case lexer.EQ, lexer.NEQ:
		return precEquality
	case lexer.LT, lexer.GT:
		return precRelational
	case lexer.PLUS, lexer.MINUS, lexer.PREFIX, lexer.SCALARADD:
		return precAdditive
	case lexer.STAR, lexer.SLASH:
		return precMultiplicative
	default:
		return precLowest
	}
}

var binOpFor = map[lexer.Kind]ast.BinaryOperator{
	lexer.XOR:       ast.Xor,
	lexer.OR:        ast.Or,
	lexer.AND:       ast.And,
	lexer.EQ:        ast.Equal,
	lexer.NEQ:       ast.NotEqual,
	lexer.LT:        ast.LessThan,
	lexer.GT:        ast.GreaterThan,
	lexer.PLUS:      ast.Add,
	lexer.MINUS:     ast.Subtract,
	lexer.PREFIX:    ast.Prefix,
	lexer.SCALARADD: ast.ScalarAdd,
	lexer.STAR:      ast.Multiply,
	lexer.SLASH:     ast.Divide,
}

// parseExpr parses one expression via precedence climbing over the
// binary operator table, bottoming out at parseUnary.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(precLowest)
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	begin := p.loc()
	left := p.parseUnary()
	for {
		prec := precedenceOf(p.tok.Kind)
		if prec == precLowest || prec <= minPrec {
			return left
		}
		opTok := p.tok
		p.advance()
		right := p.parseBinary(prec)

		op := binOpFor[opTok.Kind]
		n := &ast.BinaryOp{Op: op, Left: left, Right: right}
		n.SetType(p.checkBinaryOp(opTok, op, left, right))
		n.SetRange(p.rangeFrom(begin))
		left = n
	}
}

// checkBinaryOp applies the per-operator typing rules (spec.md §4.5) and
// reports a mismatch without aborting the parse.
func (p *Parser) checkBinaryOp(opTok lexer.Token, op ast.BinaryOperator, left, right ast.Expr) *types.Type {
	lt, rt := left.Type(), right.Type()
	if lt == nil || rt == nil {
		return nil
	}
	rng := tokRange(opTok)
	switch op {
	case ast.And, ast.Or, ast.Xor:
		if lt != p.types.Bool() || rt != p.types.Bool() {
			p.reporter.Err(rng, "operator %s requires bool operands, found %s and %s", op, lt, rt)
			return nil
		}
		return p.types.Bool()
	case ast.Equal, ast.NotEqual:
		if !types.IsSubtype(lt, rt) && !types.IsSubtype(rt, lt) {
			p.reporter.Err(rng, "cannot compare %s with %s", lt, rt)
			return nil
		}
		return p.types.Bool()
	case ast.LessThan, ast.GreaterThan:
		if lt != p.types.Int() || rt != p.types.Int() {
			p.reporter.Err(rng, "operator %s requires int operands, found %s and %s", op, lt, rt)
			return nil
		}
		return p.types.Bool()
	case ast.Add:
		if lt == p.types.Int() && rt == p.types.Int() {
			return p.types.Int()
		}
		if lt.Kind() == types.KindList && rt.Kind() == types.KindList {
			if sup := types.Supertype(lt.Elem(), rt.Elem()); sup != nil {
				return p.types.ListOf(sup)
			}
			p.reporter.Err(rng, "cannot concatenate %s and %s: incompatible element types", lt, rt)
			return nil
		}
		p.reporter.Err(rng, "operator + requires two ints or two lists, found %s and %s", lt, rt)
		return nil
	case ast.Subtract, ast.Multiply, ast.Divide:
		if lt != p.types.Int() || rt != p.types.Int() {
			p.reporter.Err(rng, "operator %s requires int operands, found %s and %s", op, lt, rt)
			return nil
		}
		return p.types.Int()
	case ast.Prefix:
		if lt != p.types.String() && lt.Kind() != types.KindFile {
			p.reporter.Err(rng, "operator :: requires a string or file prefix, found %s", lt)
		}
		if rt.Kind() != types.KindList {
			p.reporter.Err(rng, "operator :: requires a list on the right, found %s", rt)
			return nil
		}
		return rt
	case ast.ScalarAdd:
		if rt.Kind() != types.KindList {
			p.reporter.Err(rng, "operator .+ requires a list on the right, found %s", rt)
			return nil
		}
		if sup := types.Supertype(lt, rt.Elem()); sup != nil {
			return p.types.ListOf(sup)
		}
		p.reporter.Err(rng, "cannot add %s to list[%s]", lt, rt.Elem())
		return nil
	default:
		return nil
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.tok.Kind {
	case lexer.NOT:
		begin := p.loc()
		p.advance()
		operand := p.parseUnary()
		rng := p.rangeFrom(begin)
		n := &ast.UnaryOp{Op: ast.Not, Operand: operand}
		n.SetType(p.checkUnary(ast.Not, operand, rng))
		n.SetRange(rng)
		return n
	case lexer.MINUS:
		begin := p.loc()
		p.advance()
		operand := p.parseUnary()
		rng := p.rangeFrom(begin)
		n := &ast.UnaryOp{Op: ast.Negate, Operand: operand}
		n.SetType(p.checkUnary(ast.Negate, operand, rng))
		n.SetRange(rng)
		return n
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) checkUnary(op ast.UnaryOperator, operand ast.Expr, rng source.Range) *types.Type {
	t := operand.Type()
	if t == nil {
		return nil
	}
	if op == ast.Not {
		if t != p.types.Bool() {
			p.reporter.Err(rng, "operator not requires a bool operand, found %s", t)
			return nil
		}
		return p.types.Bool()
	}
	if t != p.types.Int() {
		p.reporter.Err(rng, "unary - requires an int operand, found %s", t)
		return nil
	}
	return p.types.Int()
}

func (p *Parser) parsePostfix() ast.Expr {
	begin := p.loc()
	n := p.parsePrimary()
	for {
		switch p.tok.Kind {
		case lexer.LPAREN:
			p.advance()
			args := p.parseArguments(lexer.RPAREN)
			p.expect(lexer.RPAREN)
			rng := p.rangeFrom(begin)
			call := &ast.Call{Callee: n, Args: args}
			call.SetType(p.checkCall(n, args, rng))
			call.SetRange(rng)
			n = call
		case lexer.DOT:
			p.advance()
			fieldTok := p.expect(lexer.IDENT)
			if p.at(lexer.QUESTION) {
				p.advance()
				def := p.parseUnary()
				rng := p.rangeFrom(begin)
				fq := &ast.FieldQuery{Receiver: n, Field: fieldTok.Literal, Default: def}
				fq.SetType(p.checkFieldQuery(n, fieldTok.Literal, def, rng))
				fq.SetRange(rng)
				n = fq
			} else {
				rng := p.rangeFrom(begin)
				fa := &ast.FieldAccess{Receiver: n, Field: fieldTok.Literal}
				fa.SetType(p.checkFieldAccess(n, fieldTok.Literal, rng))
				fa.SetRange(rng)
				n = fa
			}
		default:
			return n
		}
	}
}

func (p *Parser) checkFieldAccess(recv ast.Expr, field string, rng source.Range) *types.Type {
	rt := recv.Type()
	if rt == nil {
		return nil
	}
	ft, ok := types.FieldType(rt, field)
	if !ok {
		p.reporter.Err(rng, "%s has no field %q", rt, field)
		return nil
	}
	return ft
}

func (p *Parser) checkFieldQuery(recv ast.Expr, field string, def ast.Expr, rng source.Range) *types.Type {
	rt := recv.Type()
	if rt == nil || def.Type() == nil {
		return nil
	}
	if ft, ok := types.FieldType(rt, field); ok {
		if sup := types.Supertype(ft, def.Type()); sup != nil {
			return sup
		}
		p.reporter.Err(rng, "field %q has type %s incompatible with default type %s", field, ft, def.Type())
		return nil
	}
	return def.Type()
}

func (p *Parser) checkCall(callee ast.Expr, args []*ast.Argument, rng source.Range) *types.Type {
	ct := callee.Type()
	if ct == nil {
		return nil
	}
	if ct.Kind() != types.KindFunction {
		p.reporter.Err(rng, "%s is not callable", ct)
		return nil
	}
	params := ct.Params()
	positional := 0
	for _, a := range args {
		if a.Name == "" {
			positional++
		}
	}
	if positional > len(params) {
		p.reporter.Err(rng, "too many arguments: expected %d, found %d", len(params), positional)
		return ct.Result()
	}
	for i, a := range args {
		if a.Name != "" || i >= len(params) {
			continue // keyword argument binding is resolved at the call site by the evaluator
		}
		if a.Value.Type() != nil && params[i] != nil && !types.IsSubtype(a.Value.Type(), params[i]) {
			p.reporter.Err(a.Rng, "argument %d: cannot pass %s where %s is expected", i+1, a.Value.Type(), params[i])
		}
	}
	return ct.Result()
}
