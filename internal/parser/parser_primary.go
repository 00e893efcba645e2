package parser

import (
	"strconv"

	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/lexer"
	"github.com/fabriquer/fabrique/internal/source"
	"github.com/fabriquer/fabrique/internal/types"
)

// parsePrimary dispatches on the current token to one of the primary
// expression forms (spec.md §4.3 grammar): literals, names, and every
// keyword-led expression (if/foreach/function/action/file/files/import/
// some/record) plus `{ ... }` compounds, `[ ... ]` lists and `( ... )`
// grouping.
func (p *Parser) parsePrimary() ast.Expr {
	switch p.tok.Kind {
	case lexer.INT:
		return p.parseIntLiteral()
	case lexer.STRING:
		return p.parseStringLiteral()
	case lexer.TRUE, lexer.FALSE:
		return p.parseBoolLiteral()
	case lexer.IDENT:
		return p.parseNameReference()
	case lexer.LPAREN:
		p.advance()
		inner := p.parseExpr()
		p.expect(lexer.RPAREN)
		return inner
	case lexer.LBRACKET:
		return p.parseListLiteral()
	case lexer.LBRACE:
		return p.parseCompoundExpression()
	case lexer.RECORD:
		return p.parseRecordLiteral()
	case lexer.IF:
		return p.parseConditional()
	case lexer.FOREACH:
		return p.parseForeach()
	case lexer.FUNCTION:
		return p.parseFunctionLiteral()
	case lexer.ACTION:
		return p.parseActionLiteral()
	case lexer.FILE:
		return p.parseFileExpr()
	case lexer.FILES:
		return p.parseFileListExpr()
	case lexer.IMPORT:
		return p.parseImportExpr()
	case lexer.SOME:
		return p.parseSomeExpr()
	default:
		return p.parseErrorExpr()
	}
}

func (p *Parser) parseErrorExpr() ast.Expr {
	tok := p.tok
	p.reporter.Err(tokRange(tok), "unexpected %s; expected an expression", describeTok(tok))
	if !p.at(lexer.EOF) {
		p.advance()
	}
	n := &ast.NameReference{Name: ""}
	n.SetRange(tokRange(tok))
	return n
}

func (p *Parser) parseIntLiteral() ast.Expr {
	tok := p.tok
	p.advance()
	val, _ := strconv.ParseInt(tok.Literal, 10, 64)
	n := &ast.IntLiteral{Value: val}
	n.SetType(p.types.Int())
	n.SetRange(tokRange(tok))
	return n
}

func (p *Parser) parseStringLiteral() ast.Expr {
	tok := p.tok
	p.advance()
	n := &ast.StringLiteral{Value: tok.Literal, Quote: tok.Quote}
	n.SetType(p.types.String())
	n.SetRange(tokRange(tok))
	return n
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	tok := p.tok
	p.advance()
	n := &ast.BoolLiteral{Value: tok.Kind == lexer.TRUE}
	n.SetType(p.types.Bool())
	n.SetRange(tokRange(tok))
	return n
}

func (p *Parser) parseNameReference() ast.Expr {
	tok := p.tok
	p.advance()
	n := &ast.NameReference{Name: tok.Literal}
	if v, ok := p.scope.Lookup(tok.Literal); ok {
		n.Resolved = v
		n.SetType(v.EffectiveType)
	} else {
		p.reporter.Err(tokRange(tok), "undefined name %q", tok.Literal)
	}
	n.SetRange(tokRange(tok))
	return n
}

func (p *Parser) parseListLiteral() ast.Expr {
	begin := p.loc()
	p.advance()
	var elems []ast.Expr
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		elems = append(elems, p.parseExpr())
	}
	p.expect(lexer.RBRACKET)
	rng := p.rangeFrom(begin)
	n := &ast.List{Elements: elems}
	n.SetType(p.checkList(elems, rng))
	n.SetRange(rng)
	return n
}

func (p *Parser) checkList(elems []ast.Expr, rng source.Range) *types.Type {
	if len(elems) == 0 {
		return nil
	}
	result := elems[0].Type()
	for _, e := range elems[1:] {
		if result == nil || e.Type() == nil {
			return nil
		}
		sup := types.Supertype(result, e.Type())
		if sup == nil {
			p.reporter.Err(rng, "list elements have incompatible types: %s vs %s", result, e.Type())
			return nil
		}
		result = sup
	}
	if result == nil {
		return nil
	}
	return p.types.ListOf(result)
}

func (p *Parser) parseCompoundExpression() ast.Expr {
	begin := p.loc()
	p.expect(lexer.LBRACE)
	scope, result := p.parseBlockScope()
	p.expect(lexer.RBRACE)
	rng := p.rangeFrom(begin)
	n := &ast.CompoundExpression{Scope: scope, Result: result}
	n.SetType(result.Type())
	n.SetRange(rng)
	return n
}

func (p *Parser) parseRecordLiteral() ast.Expr {
	begin := p.loc()
	p.expect(lexer.RECORD)
	scope := p.parseRecordScope()
	rng := p.rangeFrom(begin)
	n := &ast.Record{Fields: scope}
	n.SetType(p.recordScopeType(scope))
	n.SetRange(rng)
	return n
}

func (p *Parser) recordScopeType(scope *ast.Scope) *types.Type {
	var fields []types.Field
	for _, v := range scope.Values {
		if v.EffectiveType == nil {
			return nil
		}
		fields = append(fields, types.Field{Name: v.Name, Type: v.EffectiveType})
	}
	return p.types.RecordType(fields)
}

func (p *Parser) parseConditional() ast.Expr {
	begin := p.loc()
	p.expect(lexer.IF)
	cond := p.parseExpr()
	thenE := p.parseExpr()
	p.expect(lexer.ELSE)
	elseE := p.parseExpr()
	rng := p.rangeFrom(begin)
	n := &ast.Conditional{Condition: cond, Then: thenE, Else: elseE}
	n.SetType(p.checkConditional(cond, thenE, elseE, rng))
	n.SetRange(rng)
	return n
}

func (p *Parser) checkConditional(cond, thenE, elseE ast.Expr, rng source.Range) *types.Type {
	if cond.Type() != nil && cond.Type() != p.types.Bool() {
		p.reporter.Err(cond.Range(), "condition must be bool, found %s", cond.Type())
	}
	if thenE.Type() == nil || elseE.Type() == nil {
		return nil
	}
	sup := types.Supertype(thenE.Type(), elseE.Type())
	if sup == nil {
		p.reporter.Err(rng, "incompatible types for conditional clauses: %s vs %s", thenE.Type(), elseE.Type())
		return nil
	}
	return sup
}

func (p *Parser) parseForeach() ast.Expr {
	begin := p.loc()
	p.expect(lexer.FOREACH)
	nameTok := p.expect(lexer.IDENT)
	var explicitType *types.Type
	if p.at(lexer.COLON) {
		p.advance()
		explicitType = p.parseType()
	}
	p.expect(lexer.ARROW)
	input := p.parseExpr()

	saved := p.scope
	p.scope = ast.NewScope(saved)
	loopType := explicitType
	if loopType == nil && input.Type() != nil && hasOneTypeParam(input.Type()) {
		loopType = input.Type().Elem()
	}
	loopValue := &ast.Value{Name: nameTok.Literal, DeclaredType: loopType, EffectiveType: loopType, Rng: tokRange(nameTok)}
	p.scope.Define(loopValue)
	body := p.parseExpr()
	p.scope = saved

	rng := p.rangeFrom(begin)
	n := &ast.Foreach{LoopVar: nameTok.Literal, ExplicitType: explicitType, Input: input, Body: body, LoopValue: loopValue}
	n.SetType(p.checkForeach(input, body, rng))
	n.SetRange(rng)
	return n
}

func (p *Parser) checkForeach(input, body ast.Expr, rng source.Range) *types.Type {
	if input.Type() != nil && !hasOneTypeParam(input.Type()) {
		p.reporter.Err(input.Range(), "foreach requires a list, a maybe, or another one-parameter type, found %s", input.Type())
		return nil
	}
	if body.Type() == nil {
		return nil
	}
	return p.types.ListOf(body.Type())
}

// hasOneTypeParam reports whether t is a list, a maybe, or any other
// type with exactly one type parameter (spec.md §4.4, foreach's input
// requirement) -- Elem() is valid for exactly this set of kinds.
func hasOneTypeParam(t *types.Type) bool {
	switch t.Kind() {
	case types.KindList, types.KindMaybe:
		return true
	default:
		return false
	}
}

// parseParamsIntoScope parses a parameter list the same way parseParams
// does, but also defines each parameter as a lookup-only Value (no
// initializer) in scope, so references to it inside a function body
// resolve like any other name.
func (p *Parser) parseParamsIntoScope(scope *ast.Scope) []*ast.Parameter {
	params := p.parseParams()
	for _, prm := range params {
		v := &ast.Value{Name: prm.Name, DeclaredType: prm.Type, EffectiveType: prm.Type, Rng: prm.Rng}
		scope.Define(v)
		prm.BoundValue = v
	}
	return params
}

func (p *Parser) parseFunctionLiteral() ast.Expr {
	begin := p.loc()
	p.expect(lexer.FUNCTION)
	p.expect(lexer.LPAREN)

	saved := p.scope
	p.scope = ast.NewScope(saved)
	params := p.parseParamsIntoScope(p.scope)
	p.expect(lexer.RPAREN)

	var resultType *types.Type
	if p.at(lexer.COLON) {
		p.advance()
		resultType = p.parseType()
	}
	body := p.parseExpr()
	p.scope = saved

	rng := p.rangeFrom(begin)
	n := &ast.Function{Params: params, Body: body, ResultType: resultType, CapturedRng: rng}
	n.SetType(p.checkFunction(params, body, resultType, rng))
	n.SetRange(rng)
	return n
}

func (p *Parser) checkFunction(params []*ast.Parameter, body ast.Expr, resultType *types.Type, rng source.Range) *types.Type {
	paramTypes := make([]*types.Type, len(params))
	for i, prm := range params {
		paramTypes[i] = prm.Type
	}
	result := resultType
	if result == nil {
		result = body.Type()
	} else if body.Type() != nil && !types.IsSubtype(body.Type(), result) {
		p.reporter.Err(body.Range(), "wrong return type (%s is not a subtype of %s)", body.Type(), result)
	}
	if result == nil {
		return nil
	}
	return p.types.FunctionType(paramTypes, result)
}

func (p *Parser) parseNamedArgsAfterComma() []*ast.Argument {
	var args []*ast.Argument
	for p.at(lexer.COMMA) {
		p.advance()
		begin := p.loc()
		nameTok := p.expect(lexer.IDENT)
		p.expect(lexer.ASSIGN)
		val := p.parseExpr()
		args = append(args, &ast.Argument{Name: nameTok.Literal, Value: val, Rng: p.rangeFrom(begin)})
	}
	return args
}

func (p *Parser) attrsFrom(args []*ast.Argument) []types.Field {
	var attrs []types.Field
	for _, a := range args {
		if a.Value.Type() == nil {
			continue
		}
		attrs = append(attrs, types.Field{Name: a.Name, Type: a.Value.Type()})
	}
	return attrs
}

func (p *Parser) parseActionLiteral() ast.Expr {
	begin := p.loc()
	p.expect(lexer.ACTION)
	p.expect(lexer.LPAREN)
	command := p.parseExpr()
	namedArgs := p.parseNamedArgsAfterComma()

	var params []*ast.Parameter
	if p.at(lexer.ARROW) {
		p.advance()
		params = p.parseParams()
	}
	p.expect(lexer.RPAREN)

	rng := p.rangeFrom(begin)
	n := &ast.Action{Command: command, NamedArgs: namedArgs, Params: params}
	n.SetType(p.checkAction(params, rng))
	n.SetRange(rng)
	return n
}

// checkAction derives an action's function type from its declared
// parameters (spec.md §4.5): every file parameter must be tagged
// file[in] or file[out]; the action type is
// `function(in_type, out_type) => result` where in_type is `file` if
// exactly one in-parameter exists else `list[file]`, analogously for
// out_type. result is the out-parameter's own declared type when there
// is exactly one, `list[file[out]]` when there are several, and `nil`
// when there are none.
func (p *Parser) checkAction(params []*ast.Parameter, rng source.Range) *types.Type {
	var inCount, outCount int
	var outTypes []*types.Type
	for _, prm := range params {
		if prm.Type == nil || prm.Type.Kind() != types.KindFile {
			continue
		}
		if !types.RequireFileParam(prm.Type) {
			p.reporter.Err(prm.Rng, "action parameter %q must be file[in] or file[out], not untagged file", prm.Name)
			continue
		}
		if prm.Type.FileTag() == types.Out {
			outCount++
			outTypes = append(outTypes, prm.Type)
		} else {
			inCount++
		}
	}

	var inType *types.Type
	switch inCount {
	case 1:
		inType = p.types.File()
	default:
		inType = p.types.ListOf(p.types.File())
	}

	var outType *types.Type
	switch outCount {
	case 1:
		outType = p.types.File()
	default:
		outType = p.types.ListOf(p.types.File())
	}

	var result *types.Type
	switch len(outTypes) {
	case 0:
		result = p.types.Nil()
	case 1:
		result = outTypes[0]
	default:
		result = p.types.ListOf(p.types.OutputFile())
	}
	return p.types.FunctionType([]*types.Type{inType, outType}, result)
}

func (p *Parser) parseFileExpr() ast.Expr {
	begin := p.loc()
	p.expect(lexer.FILE)
	p.expect(lexer.LPAREN)
	name := p.parseExpr()
	namedArgs := p.parseNamedArgsAfterComma()
	p.expect(lexer.RPAREN)

	if name.Type() != nil && name.Type() != p.types.String() {
		p.reporter.Err(name.Range(), "filename should be of type string, not %s", name.Type())
	}

	rng := p.rangeFrom(begin)
	n := &ast.File{Name: name, NamedArgs: namedArgs}
	n.SetType(p.types.FileWithAttrs(types.Untagged, p.attrsFrom(namedArgs)))
	n.SetRange(rng)
	return n
}

func (p *Parser) parseFileListExpr() ast.Expr {
	begin := p.loc()
	p.expect(lexer.FILES)
	// '(' is the current token and the lexer already stands on the first
	// filename, so it is checked here rather than consumed: advancing
	// would lex that filename as an ordinary token.
	if !p.at(lexer.LPAREN) {
		p.reporter.Err(p.here(), "expected %s, found %s", lexer.LPAREN, describeTok(p.tok))
	}
	names := p.parseFilenameList()
	namedArgs := p.parseNamedArgsAfterComma()
	p.expect(lexer.RPAREN)

	rng := p.rangeFrom(begin)
	n := &ast.FileList{Filenames: names, NamedArgs: namedArgs}
	n.SetType(p.types.ListOf(p.types.FileWithAttrs(types.Untagged, p.attrsFrom(namedArgs))))
	n.SetRange(rng)
	return n
}

// parseFilenameList scans bare, unquoted path tokens the way files(...)
// accepts them, switching the lexer into its special filename-scanning
// mode (spec.md §4.3) until it hits ',', ')' or EOF.
func (p *Parser) parseFilenameList() []*ast.FilenameLiteral {
	var names []*ast.FilenameLiteral
	for {
		tok := p.lex.NextFilename()
		if tok.Kind != lexer.IDENT {
			break
		}
		fl := &ast.FilenameLiteral{Value: tok.Literal}
		fl.SetRange(tokRange(tok))
		names = append(names, fl)
	}
	// Resynchronize ordinary tokenization at the character NextFilename
	// stopped on (',', ')' or EOF), discarding the stale peek buffer.
	p.havePeek = false
	p.tok = p.lex.Next()
	return names
}

func (p *Parser) parseImportExpr() ast.Expr {
	begin := p.loc()
	p.expect(lexer.IMPORT)
	p.expect(lexer.LPAREN)
	pathTok := p.expect(lexer.STRING)
	namedArgs := p.parseNamedArgsAfterComma()
	p.expect(lexer.RPAREN)

	rng := p.rangeFrom(begin)
	n := &ast.Import{Path: pathTok.Literal, NamedArgs: namedArgs}
	// Type is resolved once the module loader evaluates the imported
	// file and knows the resulting record's shape (spec.md §4.5).
	n.SetRange(rng)
	return n
}

func (p *Parser) parseSomeExpr() ast.Expr {
	begin := p.loc()
	p.expect(lexer.SOME)
	p.expect(lexer.LPAREN)
	inner := p.parseExpr()
	p.expect(lexer.RPAREN)

	rng := p.rangeFrom(begin)
	n := &ast.Some{Inner: inner}
	if inner.Type() != nil {
		n.SetType(p.types.MaybeOf(inner.Type()))
	}
	n.SetRange(rng)
	return n
}
