package eval

import (
	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
)

// evalImport resolves `import(path, namedArgs...)` via the Context's
// ImportResolver (internal/module in production, a fake in tests),
// passing along the evaluated named arguments as the imported module's
// `args` record (spec.md §4.5).
func (c *Context) evalImport(n *ast.Import) dag.Value {
	if c.Resolver == nil {
		c.errAt(n, "internal error: no import resolver configured")
		return nil
	}
	args := c.evalNamedArgs(n.NamedArgs)
	rec, err := c.Resolver.Resolve(n.Path, args, c.Filename)
	if err != nil {
		c.errAt(n, "failed to import %q: %v", n.Path, err)
		return nil
	}
	return rec
}
