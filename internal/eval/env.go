package eval

import (
	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
)

// env binds each resolved declaration to the dag.Value it evaluated to.
// Scope resolution already ran during parsing (every NameReference
// carries a *ast.Value pointer in Resolved), so the evaluator's
// environment is keyed by that pointer rather than by name: no chain
// walk, no shadowing ambiguity, just a map lookup (spec.md §4.6).
type env map[*ast.Value]dag.Value

// child returns a new env holding a copy of e's current bindings (used
// for function-call scopes and foreach iterations, which must see their
// closure's bindings). Bindings added to e afterwards are not visible in
// the copy, and bindings added to the copy do not reach e.
func (e env) child() env {
	c := make(env, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}
