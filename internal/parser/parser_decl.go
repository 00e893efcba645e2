package parser

import (
	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/lexer"
	"github.com/fabriquer/fabrique/internal/types"
)

// parseTopLevelDecl parses one `valueDecl` into the parser's current
// (top-level) scope.
func (p *Parser) parseTopLevelDecl() {
	p.parseValueDeclInto(p.scope)
}

// isTypeAliasStart reports whether the upcoming tokens spell a type-alias
// RHS (`record [ ... ]`) rather than an expression. `record { ... }` is the
// record *value* literal and is handled by the ordinary expression parser.
func (p *Parser) isTypeAliasStart() bool {
	return p.at(lexer.RECORD) && p.peek().Kind == lexer.LBRACKET
}

// parseValueDeclInto parses `ident (':' type)? '=' expr ';'` and defines
// the resulting Value in scope. The name is registered *before* its
// initializer is parsed, matching the evaluator's "push a scope marker
// evaluating name" sequencing (spec.md §4.6) -- this is what lets a
// function value refer to itself for recursion; a plain value that
// refers to itself is still rejected, just at evaluation time rather
// than parse time (spec.md §7, error-as-value).
func (p *Parser) parseValueDeclInto(scope *ast.Scope) *ast.Value {
	begin := p.loc()
	nameTok := p.expect(lexer.IDENT)
	name := nameTok.Literal

	var declaredType *types.Type
	if p.at(lexer.COLON) {
		p.advance()
		declaredType = p.parseType()
	}
	p.expect(lexer.ASSIGN)

	declRange := p.rangeFrom(begin)

	if p.isTypeAliasStart() {
		wrapped := p.parseType()
		p.expect(lexer.SEMICOLON)
		p.types.UserType(name, wrapped)
		decl := &ast.TypeDeclaration{Name: name, Wrapped: wrapped}
		v := &ast.Value{Name: name, Init: decl, Rng: p.rangeFrom(begin)}
		p.defineChecked(scope, v)
		return v
	}

	v := &ast.Value{Name: name, DeclaredType: declaredType, Rng: declRange}
	p.defineChecked(scope, v)

	init := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	v.Init = init
	v.Rng = p.rangeFrom(begin)

	effective := init.Type()
	if declaredType != nil {
		if effective != nil && !types.IsSubtype(effective, declaredType) {
			p.reporter.Err(v.Rng, "cannot assign %s to %s of declared type %s", effective, name, declaredType)
		}
		effective = declaredType
	}
	v.EffectiveType = effective

	// subdir is the one reserved name users are meant to set (DESIGN.md
	// Open Question 3): doing so changes which subdirectory a later
	// File/FileList expression joins against, so it must type-check as
	// file like any other path-bearing value.
	if name == "subdir" && effective != nil && effective.Kind() != types.KindFile {
		p.reporter.Err(v.Rng, "subdir must be of type file, found %s", effective)
	}

	return v
}

func (p *Parser) defineChecked(scope *ast.Scope, v *ast.Value) {
	// subdir is the one reserved name users are meant to set (DESIGN.md
	// Open Question 3): doing so changes which subdirectory a later
	// File/FileList expression joins against; its type is checked once
	// its initializer has been parsed (see parseValueDeclInto). Every
	// other reserved name is builtin-injected only.
	if v.Name != "subdir" && p.reserved[v.Name] {
		p.reporter.Err(v.Rng, "%q is a reserved name and may not be redefined", v.Name)
	}
	if prev, redefined := scope.Define(v); redefined {
		p.reporter.Err(v.Rng, "%q is already defined in this scope (previous declaration at %s)", v.Name, prev.Rng)
	}
}

// parseBlockScope parses `valueDecl* expr`, the body shared by compound
// expressions (`{ ... }`) and function/action/foreach bodies that open a
// fresh nested scope.
func (p *Parser) parseBlockScope() (*ast.Scope, ast.Expr) {
	saved := p.scope
	p.scope = ast.NewScope(saved)
	defer func() { p.scope = saved }()

	for p.declStartsHere() {
		p.parseValueDeclInto(p.scope)
	}
	result := p.parseExpr()
	return p.scope, result
}

// declStartsHere looks ahead to tell a value declaration (`ident : ... =`
// or `ident =`) apart from an expression that merely starts with an
// identifier (`ident` used as a NameReference, `ident(...)` as a call).
func (p *Parser) declStartsHere() bool {
	if !p.at(lexer.IDENT) {
		return false
	}
	switch p.peek().Kind {
	case lexer.COLON, lexer.ASSIGN:
		return true
	default:
		return false
	}
}

// parseRecordScope parses `record { valueDecl* }`: a Scope with no
// trailing result expression.
func (p *Parser) parseRecordScope() *ast.Scope {
	saved := p.scope
	p.scope = ast.NewScope(saved)
	defer func() { p.scope = saved }()

	p.expect(lexer.LBRACE)
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		p.parseValueDeclInto(p.scope)
	}
	p.expect(lexer.RBRACE)
	return p.scope
}

// parseParams parses a comma-separated parameter list: `name:type (=
// default)?`, used by function/action declarations.
func (p *Parser) parseParams() []*ast.Parameter {
	var params []*ast.Parameter
	if p.at(lexer.RPAREN) {
		return params
	}
	for {
		begin := p.loc()
		nameTok := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		ty := p.parseType()
		var def ast.Expr
		if p.at(lexer.ASSIGN) {
			p.advance()
			def = p.parseExpr()
		}
		params = append(params, &ast.Parameter{
			Name: nameTok.Literal, Type: ty, Default: def, Rng: p.rangeFrom(begin),
		})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return params
}

// parseArguments parses a comma-separated argument list at a call site:
// positional arguments must precede keyword arguments (spec.md §4.3).
func (p *Parser) parseArguments(stopAt lexer.Kind) []*ast.Argument {
	var args []*ast.Argument
	seenNamed := false
	for !p.at(stopAt) && !p.at(lexer.EOF) {
		begin := p.loc()
		var name string
		if p.at(lexer.IDENT) && p.peek().Kind == lexer.ASSIGN {
			name = p.tok.Literal
			p.advance()
			p.advance() // '='
			seenNamed = true
		} else if seenNamed {
			p.reporter.Err(p.here(), "positional argument may not follow a keyword argument")
		}
		val := p.parseExpr()
		args = append(args, &ast.Argument{Name: name, Value: val, Rng: p.rangeFrom(begin)})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return args
}
