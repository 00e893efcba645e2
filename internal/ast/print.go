package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a deterministic, re-parseable rendering of n to w. Two
// pretty-printed renderings of structurally equal ASTs are byte-identical
// (spec.md §8, "Round-trip / idempotence").
func Fprint(w io.Writer, n Node) {
	if n == nil {
		return
	}
	io.WriteString(w, n.String())
}

func printBoolLiteral(n *BoolLiteral) string {
	if n.Value {
		return "true"
	}
	return "false"
}

func printIntLiteral(n *IntLiteral) string {
	return fmt.Sprintf("%d", n.Value)
}

func printStringLiteral(n *StringLiteral) string {
	q := n.Quote
	if q == 0 {
		q = '\''
	}
	escaped := strings.ReplaceAll(n.Value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, string(q), "\\"+string(q))
	return string(q) + escaped + string(q)
}

func printList(n *List) string {
	parts := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func printRecord(n *Record) string {
	var b strings.Builder
	b.WriteString("record {")
	for _, v := range n.Fields.Values {
		b.WriteString(" ")
		b.WriteString(v.String())
	}
	b.WriteString(" }")
	return b.String()
}

func printConditional(n *Conditional) string {
	return fmt.Sprintf("if %s %s else %s", n.Condition, n.Then, n.Else)
}

func printCompoundExpression(n *CompoundExpression) string {
	var b strings.Builder
	b.WriteString("{")
	for _, v := range n.Scope.Values {
		b.WriteString(" ")
		b.WriteString(v.String())
	}
	b.WriteString(" ")
	b.WriteString(n.Result.String())
	b.WriteString(" }")
	return b.String()
}

func printForeach(n *Foreach) string {
	if n.ExplicitType != nil {
		return fmt.Sprintf("foreach %s:%s <- %s %s", n.LoopVar, n.ExplicitType, n.Input, n.Body)
	}
	return fmt.Sprintf("foreach %s <- %s %s", n.LoopVar, n.Input, n.Body)
}

func printParam(p *Parameter) string {
	s := p.Name + ":" + p.Type.String()
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}

func printParams(ps []*Parameter) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = printParam(p)
	}
	return strings.Join(parts, ", ")
}

func printFunction(n *Function) string {
	s := "function(" + printParams(n.Params) + ")"
	if n.ResultType != nil {
		s += ":" + n.ResultType.String()
	}
	return s + " " + n.Body.String()
}

func printArgument(a *Argument) string {
	if a.Name == "" {
		return a.Value.String()
	}
	return a.Name + " = " + a.Value.String()
}

func printArguments(args []*Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = printArgument(a)
	}
	return strings.Join(parts, ", ")
}

func printCall(n *Call) string {
	return fmt.Sprintf("%s(%s)", n.Callee, printArguments(n.Args))
}

func printAction(n *Action) string {
	var b strings.Builder
	b.WriteString("action(")
	b.WriteString(n.Command.String())
	for _, a := range n.NamedArgs {
		b.WriteString(", ")
		b.WriteString(printArgument(a))
	}
	if len(n.Params) > 0 {
		b.WriteString(" <- ")
		b.WriteString(printParams(n.Params))
	}
	b.WriteString(")")
	return b.String()
}

func printFile(n *File) string {
	var b strings.Builder
	b.WriteString("file(")
	b.WriteString(n.Name.String())
	for _, a := range n.NamedArgs {
		b.WriteString(", ")
		b.WriteString(printArgument(a))
	}
	b.WriteString(")")
	return b.String()
}

func printFileList(n *FileList) string {
	var b strings.Builder
	b.WriteString("files(")
	names := make([]string, len(n.Filenames))
	for i, f := range n.Filenames {
		names[i] = f.Value
	}
	b.WriteString(strings.Join(names, " "))
	for _, a := range n.NamedArgs {
		b.WriteString(", ")
		b.WriteString(printArgument(a))
	}
	b.WriteString(")")
	return b.String()
}

func printFieldAccess(n *FieldAccess) string {
	return fmt.Sprintf("%s.%s", n.Receiver, n.Field)
}

func printFieldQuery(n *FieldQuery) string {
	return fmt.Sprintf("%s.%s ? %s", n.Receiver, n.Field, n.Default)
}

func printUnaryOp(n *UnaryOp) string {
	if n.Op == Not {
		return "not " + n.Operand.String()
	}
	return "-" + n.Operand.String()
}

func printBinaryOp(n *BinaryOp) string {
	return fmt.Sprintf("%s %s %s", n.Left, n.Op, n.Right)
}

func printSome(n *Some) string {
	return "some(" + n.Inner.String() + ")"
}

func printImport(n *Import) string {
	var b strings.Builder
	fmt.Fprintf(&b, "import('%s'", n.Path)
	for _, a := range n.NamedArgs {
		b.WriteString(", ")
		b.WriteString(printArgument(a))
	}
	b.WriteString(")")
	return b.String()
}

func printTypeDeclaration(n *TypeDeclaration) string {
	return fmt.Sprintf("%s", n.Wrapped)
}
