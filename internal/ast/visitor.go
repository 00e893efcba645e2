package ast

// Visitor receives Enter before and Leave after a node's children are
// walked. Either may be nil. Walk does not recurse into a subtree when
// Enter returns false.
type Visitor struct {
	Enter func(Node) bool
	Leave func(Node)
}

// Walk traverses n and its children in source order, calling v.Enter and
// v.Leave around each node (spec.md §4.4, "accept(Visitor)").
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if v.Enter != nil && !v.Enter(n) {
		return
	}
	switch e := n.(type) {
	case *List:
		for _, el := range e.Elements {
			Walk(v, el)
		}
	case *Record:
		walkScope(v, e.Fields)
	case *Conditional:
		Walk(v, e.Condition)
		Walk(v, e.Then)
		Walk(v, e.Else)
	case *CompoundExpression:
		walkScope(v, e.Scope)
		Walk(v, e.Result)
	case *Foreach:
		Walk(v, e.Input)
		Walk(v, e.Body)
	case *Function:
		for _, p := range e.Params {
			if p.Default != nil {
				Walk(v, p.Default)
			}
		}
		Walk(v, e.Body)
	case *Call:
		Walk(v, e.Callee)
		for _, a := range e.Args {
			Walk(v, a.Value)
		}
	case *Action:
		Walk(v, e.Command)
		for _, a := range e.NamedArgs {
			Walk(v, a.Value)
		}
		for _, p := range e.Params {
			if p.Default != nil {
				Walk(v, p.Default)
			}
		}
	case *File:
		Walk(v, e.Name)
		for _, a := range e.NamedArgs {
			Walk(v, a.Value)
		}
	case *FileList:
		for _, a := range e.NamedArgs {
			Walk(v, a.Value)
		}
	case *FieldAccess:
		Walk(v, e.Receiver)
	case *FieldQuery:
		Walk(v, e.Receiver)
		Walk(v, e.Default)
	case *UnaryOp:
		Walk(v, e.Operand)
	case *BinaryOp:
		Walk(v, e.Left)
		Walk(v, e.Right)
	case *Some:
		Walk(v, e.Inner)
	case *DebugTracePoint:
		Walk(v, e.Inner)
	}
	if v.Leave != nil {
		v.Leave(n)
	}
}

func walkScope(v Visitor, s *Scope) {
	if s == nil {
		return
	}
	for _, val := range s.Values {
		Walk(v, val.Init)
	}
}
