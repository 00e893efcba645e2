package ast

import (
	"github.com/fabriquer/fabrique/internal/source"
	"github.com/fabriquer/fabrique/internal/types"
)

// List is `[ expr* ]`, a space-separated list literal.
type List struct {
	base
	Elements []Expr
}

func (n *List) String() string { return printList(n) }

// Conditional is `if cond then else`. Both arms are mandatory; their
// common supertype (spec.md §4.5) becomes the conditional's type.
type Conditional struct {
	base
	Condition Expr
	Then      Expr
	Else      Expr
}

func (n *Conditional) String() string { return printConditional(n) }

// CompoundExpression is `{ valueDecl* expr }`: a scope of bindings
// evaluated for effect, followed by a mandatory result expression whose
// type and value the block adopts.
type CompoundExpression struct {
	base
	Scope  *Scope
	Result Expr
}

func (n *CompoundExpression) String() string { return printCompoundExpression(n) }

// Foreach is a list comprehension: `foreach v (: T)? <- input body`.
type Foreach struct {
	base
	LoopVar      string
	ExplicitType *types.Type // nil if the loop variable's type is inferred from Input
	Input        Expr
	Body         Expr
	// LoopValue is the synthetic Value the loop variable resolves to
	// inside Body's scope, so NameReferences within Body can point at it
	// the same way any other reference does.
	LoopValue *Value
}

func (n *Foreach) String() string { return printForeach(n) }

// Function is a first-class function literal: parameters, a body, and an
// optional explicit result type.
type Function struct {
	base
	Params       []*Parameter
	Body         Expr
	ResultType   *types.Type // explicit annotation, nil if inferred from Body
	CapturedRng  source.Range
}

func (n *Function) String() string { return printFunction(n) }

// Call applies a callee (a function, action, or rule-producing value) to
// a list of positional-then-named arguments.
type Call struct {
	base
	Callee Expr
	Args   []*Argument
}

func (n *Call) String() string { return printCall(n) }

// Action builds a Rule: a command expression (always the first argument,
// written without a name; a `command = ...` keyword form is not
// accepted), any other named arguments (rule constants), and an optional
// parameter vector declared after `<-`.
type Action struct {
	base
	Command    Expr
	NamedArgs  []*Argument
	Params     []*Parameter
}

func (n *Action) String() string { return printAction(n) }

// File is `file(nameExpr, namedArgs...)`. NamedArgs beyond the filename
// become the resulting DAG File's attribute map.
type File struct {
	base
	Name      Expr
	NamedArgs []*Argument
}

func (n *File) String() string { return printFile(n) }

// FileList is `files(filename* , namedArgs...)`, sugar for a list of File
// expressions sharing the same named arguments, which become each File's
// attributes. A named argument (including one called subdir) does not
// change the files' paths; they join only the subdir visible where the
// expression is evaluated.
type FileList struct {
	base
	Filenames []*FilenameLiteral
	NamedArgs []*Argument
}

func (n *FileList) String() string { return printFileList(n) }

// FieldAccess is `receiver.field`.
type FieldAccess struct {
	base
	Receiver Expr
	Field    string
}

func (n *FieldAccess) String() string { return printFieldAccess(n) }

// FieldQuery is `receiver.field ? default`, substituting Default when
// Field is absent from Receiver.
type FieldQuery struct {
	base
	Receiver Expr
	Field    string
	Default  Expr
}

func (n *FieldQuery) String() string { return printFieldQuery(n) }

// UnaryOperator discriminates UnaryOp variants.
type UnaryOperator int

const (
	Not UnaryOperator = iota
	Negate
)

func (op UnaryOperator) String() string {
	if op == Not {
		return "not "
	}
	return "-"
}

// UnaryOp is a prefix operator applied to one operand.
type UnaryOp struct {
	base
	Op      UnaryOperator
	Operand Expr
}

func (n *UnaryOp) String() string { return printUnaryOp(n) }

// BinaryOperator discriminates BinaryOp variants (spec.md §3).
type BinaryOperator int

const (
	Add BinaryOperator = iota
	Prefix
	ScalarAdd
	And
	Or
	Xor
	Equal
	NotEqual
	LessThan
	GreaterThan
	Divide
	Multiply
	Subtract
)

var binOpSymbols = map[BinaryOperator]string{
	Add: "+", Prefix: "::", ScalarAdd: ".+", And: "and", Or: "or", Xor: "xor",
	Equal: "==", NotEqual: "!=", LessThan: "<", GreaterThan: ">",
	Divide: "/", Multiply: "*", Subtract: "-",
}

func (op BinaryOperator) String() string { return binOpSymbols[op] }

// BinaryOp is an infix operator applied to two operands.
type BinaryOp struct {
	base
	Op          BinaryOperator
	Left, Right Expr
}

func (n *BinaryOp) String() string { return printBinaryOp(n) }

// Some wraps a value as `maybe[T]`'s present case.
type Some struct {
	base
	Inner Expr
}

func (n *Some) String() string { return printSome(n) }

// Import is `import(path, namedArgs...)`. NamedArgs become the `args`
// record injected into the imported module's top-level scope.
type Import struct {
	base
	Path      string
	NamedArgs []*Argument
}

func (n *Import) String() string { return printImport(n) }

// TypeDeclaration is the initializer of a `Name = record[...];` alias
// declaration; it prints as the wrapped record type alone.
type TypeDeclaration struct {
	base
	Name    string
	Wrapped *types.Type // always a record type
}

func (n *TypeDeclaration) String() string { return printTypeDeclaration(n) }

// DebugTracePoint is a no-op marker expression inserted by tooling to
// carry a source position through evaluation without affecting value or
// type; it evaluates to its Inner expression's value unchanged.
type DebugTracePoint struct {
	base
	Inner Expr
	Label string
}

func (n *DebugTracePoint) String() string { return n.Inner.String() }
