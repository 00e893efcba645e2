// Package ast defines Fabrique's typed abstract syntax tree. Per
// spec.md §9 ("AST polymorphism"), this is a tagged sum rather than a
// class hierarchy: one Go struct per node kind, each carrying a common
// source range and (once checked) a type. Traversal is a type switch
// (see Visitor in visitor.go); formatting is a free function (print.go).
package ast

import (
	"github.com/fabriquer/fabrique/internal/source"
	"github.com/fabriquer/fabrique/internal/types"
)

// Node is implemented by every AST node, expression or otherwise.
type Node interface {
	Range() source.Range
	String() string
}

// Expr is a typed expression node. Before type checking, Type() may be
// nil; every expression has a concrete type by the time evaluation
// starts (spec.md §4.5).
type Expr interface {
	Node
	Type() *types.Type
	SetType(*types.Type)
	SetRange(source.Range)
	exprNode()
}

// base carries the fields every expression node has: its source range and
// its (eventually inferred or declared) type.
type base struct {
	Rng source.Range
	Typ *types.Type
}

func (b *base) Range() source.Range      { return b.Rng }
func (b *base) Type() *types.Type        { return b.Typ }
func (b *base) SetType(t *types.Type)    { b.Typ = t }
func (b *base) SetRange(r source.Range)  { b.Rng = r }
func (b *base) exprNode()                {}

// ---- Literals ----

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	base
	Value bool
}

// IntLiteral is a decimal integer literal.
type IntLiteral struct {
	base
	Value int64
}

// StringLiteral is a quoted string; Quote preserves '\'' or '"' so that
// pretty-printing round-trips the original spelling (spec.md §4.3).
type StringLiteral struct {
	base
	Value string
	Quote byte
}

// FilenameLiteral is a bare, unquoted path as accepted inside files(...).
type FilenameLiteral struct {
	base
	Value string
}

func (n *BoolLiteral) String() string      { return printBoolLiteral(n) }
func (n *IntLiteral) String() string       { return printIntLiteral(n) }
func (n *StringLiteral) String() string    { return printStringLiteral(n) }
func (n *FilenameLiteral) String() string  { return n.Value }

// ---- Names ----

// NameReference is an identifier used as a value. Resolved points at the
// Value it was bound by once scope resolution succeeds; it stays nil (and
// a diagnostic has been reported) when the name is undefined.
type NameReference struct {
	base
	Name     string
	Resolved *Value
}

func (n *NameReference) String() string { return n.Name }
