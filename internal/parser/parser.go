// Package parser turns a Fabrique token stream into a typed AST, resolving
// scope and checking types as it goes (spec.md §4.3-§4.5): "every
// identifier resolves to a declaration, every expression has a type by
// the time evaluation starts." Errors are reported and recovery
// continues; the parser never panics on a user mistake.
package parser

import (
	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/diagnostics"
	"github.com/fabriquer/fabrique/internal/lexer"
	"github.com/fabriquer/fabrique/internal/source"
	"github.com/fabriquer/fabrique/internal/types"
)

// Parser holds the mutable state of one parse: the lexer, a one-token
// lookahead buffer, the reporter every stage appends to, the type
// context types are interned into, and the scope currently open on the
// parse stack.
type Parser struct {
	lex      *lexer.Lexer
	tok      lexer.Token
	peekTok  lexer.Token
	havePeek bool

	reporter *diagnostics.Reporter
	types    *types.Context
	filename string

	scope    *ast.Scope
	reserved map[string]bool
}

// defaultReserved is the set of builtin names user code may not redefine
// (spec.md §4.3 and §6): the subdirectory variable, the args record, and
// srcroot/buildroot.
var defaultReserved = map[string]bool{
	"subdir":   true,
	"args":     true,
	"srcroot":  true,
	"buildroot": true,
}

// New returns a Parser positioned at src's first token. parentScope is the
// enclosing scope a nested parse (e.g. an imported module's args) should
// see; pass nil for a fresh top-level file.
func New(filename string, src []byte, tctx *types.Context, reporter *diagnostics.Reporter, parentScope *ast.Scope) *Parser {
	p := &Parser{
		lex:      lexer.New(filename, lexer.Normalize(src), reporter),
		reporter: reporter,
		types:    tctx,
		filename: filename,
		scope:    ast.NewScope(parentScope),
		reserved: defaultReserved,
	}
	p.advance()
	return p
}

// Scope returns the top-level scope the parse populated.
func (p *Parser) Scope() *ast.Scope { return p.scope }

func (p *Parser) advance() {
	if p.havePeek {
		p.tok = p.peekTok
		p.havePeek = false
		return
	}
	p.tok = p.lex.Next()
}

func (p *Parser) peek() lexer.Token {
	if !p.havePeek {
		p.peekTok = p.lex.Next()
		p.havePeek = true
	}
	return p.peekTok
}

func (p *Parser) at(k lexer.Kind) bool { return p.tok.Kind == k }

func (p *Parser) loc() source.Location {
	return source.Location{Filename: p.tok.File, Line: p.tok.Line, Column: p.tok.Column}
}

func (p *Parser) rangeFrom(begin source.Location) source.Range {
	return source.Span(begin, p.loc())
}

// expect consumes a token of kind k, reporting an Error and not advancing
// when the current token doesn't match (so a caller's best-effort
// recovery can still make progress).
func (p *Parser) expect(k lexer.Kind) lexer.Token {
	if p.tok.Kind != k {
		p.reporter.Err(p.here(), "expected %s, found %s", k, describeTok(p.tok))
		return p.tok
	}
	tok := p.tok
	p.advance()
	return tok
}

func describeTok(t lexer.Token) string {
	if t.Kind == lexer.IDENT || t.Kind == lexer.STRING || t.Kind == lexer.INT {
		return t.Kind.String() + " " + t.Literal
	}
	return t.Kind.String()
}

func (p *Parser) here() source.Range {
	loc := p.loc()
	return source.Span(loc, loc)
}

// tokRange returns the single-point range of an already-consumed token
// (used when a diagnostic must point at a token other than the current
// one, e.g. a malformed lookahead token).
func tokRange(t lexer.Token) source.Range {
	loc := source.Location{Filename: t.File, Line: t.Line, Column: t.Column}
	return source.Span(loc, loc)
}

// ParseFile parses a complete top-level file: a sequence of value
// declarations (spec.md §4.3 grammar, `file := valueDecl*`).
func (p *Parser) ParseFile() *File {
	begin := p.loc()
	for !p.at(lexer.EOF) {
		p.parseTopLevelDecl()
	}
	return &File{Path: p.filename, Scope: p.scope, Range: p.rangeFrom(begin)}
}

// File is the parsed result of one Fabrique source file.
type File struct {
	Path  string
	Scope *ast.Scope
	Range source.Range
}
