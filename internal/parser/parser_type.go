package parser

import (
	"github.com/fabriquer/fabrique/internal/lexer"
	"github.com/fabriquer/fabrique/internal/types"
)

// parseType parses one type expression (spec.md §3, "Type grammar"):
//
//	type := 'nil' | 'bool' | 'int' | 'string'
//	      | 'file' ('[' ('in'|'out') ']')?
//	      | 'list' '[' type ']'
//	      | 'maybe' '[' type ']'
//	      | 'record' '[' (IDENT ':' type (',' IDENT ':' type)*)? ']'
//	      | '(' (type (',' type)*)? ')' '=>' type
//	      | IDENT
//
// Unrecognized spellings are reported and resolved to nil so the caller
// can keep parsing (fail-slow, spec.md §7).
func (p *Parser) parseType() *types.Type {
	switch p.tok.Kind {
	case lexer.LPAREN:
		return p.parseFunctionType()
	case lexer.RECORD:
		p.advance()
		return p.parseRecordType()
	case lexer.FILE:
		p.advance()
		return p.parseFileType()
	case lexer.IDENT:
		return p.parseNamedOrBuiltinType()
	default:
		p.reporter.Err(p.here(), "expected a type, found %s", describeTok(p.tok))
		p.advance()
		return nil
	}
}

func (p *Parser) parseFileType() *types.Type {
	if !p.at(lexer.LBRACKET) {
		return p.types.File()
	}
	p.advance()
	tagTok := p.expect(lexer.IDENT)
	var tag types.FileTag
	switch tagTok.Literal {
	case "in":
		tag = types.In
	case "out":
		tag = types.Out
	default:
		p.reporter.Err(tokRange(tagTok), "file tag must be 'in' or 'out', found %q", tagTok.Literal)
	}
	p.expect(lexer.RBRACKET)
	return p.types.FileTagged(tag)
}

func (p *Parser) parseRecordType() *types.Type {
	p.expect(lexer.LBRACKET)
	var fields []types.Field
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		nameTok := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		fieldType := p.parseType()
		fields = append(fields, types.Field{Name: nameTok.Literal, Type: fieldType})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RBRACKET)
	return p.types.RecordType(fields)
}

func (p *Parser) parseFunctionType() *types.Type {
	p.expect(lexer.LPAREN)
	var params []*types.Type
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		params = append(params, p.parseType())
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.FARROW)
	result := p.parseType()
	return p.types.FunctionType(params, result)
}

// parseNamedOrBuiltinType handles the IDENT-led spellings: the
// parametric builtins `list[T]`/`maybe[T]` (not keywords, since they
// accept type arguments like ordinary generics), a bare primitive name
// (`nil`/`bool`/`int`/`string`), or a previously declared user type.
func (p *Parser) parseNamedOrBuiltinType() *types.Type {
	nameTok := p.tok
	p.advance()

	switch nameTok.Literal {
	case "list", "maybe":
		p.expect(lexer.LBRACKET)
		elem := p.parseType()
		p.expect(lexer.RBRACKET)
		if nameTok.Literal == "list" {
			return p.types.ListOf(elem)
		}
		return p.types.MaybeOf(elem)
	case "nil", "bool", "int", "string":
		t, _ := p.types.Find(nameTok.Literal, nil)
		return t
	default:
		if t, ok := p.types.LookupNamed(nameTok.Literal); ok {
			return t
		}
		p.reporter.Err(tokRange(nameTok), "undeclared type %q", nameTok.Literal)
		return nil
	}
}
