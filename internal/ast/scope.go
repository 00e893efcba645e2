package ast

import (
	"github.com/fabriquer/fabrique/internal/source"
	"github.com/fabriquer/fabrique/internal/types"
)

// Value is a named binding in a Scope: a name, an optional explicit type,
// and the expression that initializes it (spec.md §3, "AST node
// variants"). EffectiveType is set once type checking has resolved it
// (the explicit type if given, else the initializer's type).
type Value struct {
	Name          string
	DeclaredType  *types.Type // nil if no explicit annotation
	Init          Expr
	EffectiveType *types.Type
	Rng           source.Range
}

func (v *Value) Range() source.Range { return v.Rng }
func (v *Value) String() string {
	if v.Init == nil {
		// A parameter bound only for name resolution, not a real
		// declaration: printed as its name(:type), never as a statement.
		if v.DeclaredType != nil {
			return v.Name + ":" + v.DeclaredType.String()
		}
		return v.Name
	}
	if v.DeclaredType != nil {
		return v.Name + ":" + v.DeclaredType.String() + " = " + v.Init.String() + ";"
	}
	return v.Name + " = " + v.Init.String() + ";"
}

// Parameter is a function or action parameter: a name, a type, and an
// optional default expression.
type Parameter struct {
	Name    string
	Type    *types.Type
	Default Expr // nil if required
	Rng     source.Range
	// BoundValue is the lookup-only Value parseParamsIntoScope defines
	// for this parameter, so NameReferences in the body resolve to the
	// same identity the evaluator binds an argument to.
	BoundValue *Value
}

func (p *Parameter) Range() source.Range { return p.Rng }

// Argument is one actual argument at a call site. Name is empty for a
// positional argument.
type Argument struct {
	Name  string
	Value Expr
	Rng   source.Range
}

func (a *Argument) Range() source.Range { return a.Rng }

// Scope is an ordered, parent-linked sequence of Values (spec.md §3). A
// Value may only reference Values that were defined earlier in the same
// Scope, or in an enclosing one (spec.md §5, "Ordering guarantees").
type Scope struct {
	Parent *Scope
	Values []*Value

	// byName supports O(1) redefinition checks and name resolution
	// within this scope; Values remains the ordered source of truth.
	byName map[string]*Value
}

// NewScope returns an empty Scope nested under parent (nil for the
// top-level/file scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, byName: make(map[string]*Value)}
}

// Define registers v in the scope. It returns the previously-defined
// Value of the same name, if any, so the caller can report a
// redefinition diagnostic (spec.md §8, "Redefinition in the same scope
// reports Error at the second declaration").
func (s *Scope) Define(v *Value) (previous *Value, redefined bool) {
	if prev, ok := s.byName[v.Name]; ok {
		return prev, true
	}
	s.byName[v.Name] = v
	s.Values = append(s.Values, v)
	return nil, false
}

// Lookup walks the scope chain from innermost outward and returns the
// first Value bound to name, matching spec.md §4.6's NameReference rule.
func (s *Scope) Lookup(name string) (*Value, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if v, ok := sc.byName[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LocalLookup checks only this scope, not its ancestors, which is what
// redefinition and reserved-name checks need.
func (s *Scope) LocalLookup(name string) (*Value, bool) {
	v, ok := s.byName[name]
	return v, ok
}

// Record is a `record { valueDecl* }` literal: field values computed by
// a nested Scope, with no trailing result expression (unlike
// CompoundExpression). Its type is a record type derived from each
// Value's effective type, in declaration order.
type Record struct {
	base
	Fields *Scope
}

func (n *Record) String() string { return printRecord(n) }
