package module

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/diagnostics"
	"github.com/fabriquer/fabrique/internal/eval"
	"github.com/fabriquer/fabrique/internal/parser"
	"github.com/fabriquer/fabrique/internal/plugin"
	"github.com/fabriquer/fabrique/internal/types"
)

// Loader parses and evaluates .fab files on demand, implementing
// eval.ImportResolver against the host filesystem. Grounded on the
// teacher's internal/module/loader.go: a cache keyed by resolved path, a
// loadStack for cycle detection, push/pop around each load. Fabrique has
// no separate module-identity/export-validation pass (spec.md §4.7 says
// an import's Record is simply every non-reserved top-level name), so
// this is considerably smaller than the teacher's Module/validateModule
// machinery.
type Loader struct {
	resolver *Resolver
	tctx     *types.Context
	reporter *diagnostics.Reporter

	mu      sync.Mutex
	cache   map[string]*dag.Record
	loading map[string]bool

	// stack is the current-subdirectory stack spec.md §4.7 calls for:
	// the containing directory of each module currently being parsed,
	// relative to srcroot, innermost last. Used as findModule's starting
	// point when an import names no importing file, as the subdir builtin's
	// value, and in the text of a cycle error; cycles themselves are
	// detected through loading.
	stack []string

	// pluginManifest and pluginValues implement SPEC_FULL.md §2 item 9's
	// "module/plugin registry seeds the top-level scope with
	// externally-registered plugin values" -- set via WithPlugins,
	// folded into every module's builtin scope alongside
	// srcroot/buildroot/subdir/args.
	pluginManifest *plugin.Manifest
	pluginValues   map[string]dag.Value
}

// NewLoader returns a Loader that resolves imports under resolver,
// interning types into tctx and reporting diagnostics to reporter. The
// same tctx and reporter must be the ones the top-level compilation uses,
// so every module's types and errors share one table and one sink
// (spec.md §5, "Shared resources").
func NewLoader(resolver *Resolver, tctx *types.Context, reporter *diagnostics.Reporter) *Loader {
	return &Loader{
		resolver: resolver,
		tctx:     tctx,
		reporter: reporter,
		cache:    make(map[string]*dag.Record),
		loading:  make(map[string]bool),
	}
}

// WithPlugins attaches a plugin manifest and the host-supplied values for
// it; every module this Loader subsequently parses (imported or the
// top-level entry) gets the manifest's names declared as builtins.
func (l *Loader) WithPlugins(manifest *plugin.Manifest, values map[string]dag.Value) *Loader {
	l.pluginManifest = manifest
	l.pluginValues = values
	return l
}

// Resolve implements eval.ImportResolver: it locates name relative to
// the importing file's subdirectory, parses and evaluates it with args
// injected as its `args` builtin, and returns its exported Record.
func (l *Loader) Resolve(name string, args map[string]dag.Value, from string) (*dag.Record, error) {
	subdir := l.subdirOf(from)

	path, err := l.resolver.findModule(subdir, name)
	if err != nil {
		return nil, err
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if rec, ok := l.cache[path]; ok {
		l.mu.Unlock()
		return rec, nil
	}
	l.mu.Unlock()

	if err := l.checkCycle(path); err != nil {
		return nil, err
	}

	childSubdir, err := filepath.Rel(l.resolver.srcroot, filepath.Dir(path))
	if err != nil {
		childSubdir = filepath.Dir(path)
	}
	l.pushStack(childSubdir)
	l.mu.Lock()
	l.loading[path] = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.loading, path)
		l.mu.Unlock()
		l.popStack()
	}()

	rec, err := l.load(path, args)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[path] = rec
	l.mu.Unlock()
	return rec, nil
}

// LoadEntry parses and evaluates the top-level compilation unit at path
// (cmd/fabrique's entry point, not reached through an import), returning
// its Context, Scope and frozen Dag so the caller can run a backend.
func (l *Loader) LoadEntry(path string, cliArgs map[string]dag.Value) (*eval.Context, *ast.Scope, *dag.Dag, error) {
	subdir, err := filepath.Rel(l.resolver.srcroot, filepath.Dir(path))
	if err != nil {
		subdir = ""
	}
	if subdir == "." {
		subdir = ""
	}
	l.pushStack(subdir)
	defer l.popStack()

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	builtinScope, builtins, err := l.newBuiltinScope(cliArgs)
	if err != nil {
		return nil, nil, nil, err
	}
	p := parser.New(path, src, l.tctx, l.reporter, builtinScope)
	f := p.ParseFile()
	if l.reporter.HasErrors() {
		return nil, f.Scope, nil, fmt.Errorf("parse errors in %s", path)
	}

	builder := dag.NewBuilder()
	c := eval.NewContext(builder, l.reporter, l.tctx, l, path)
	seedBuiltins(c, builtins)
	c.EvalFile(f.Scope)
	if l.reporter.HasErrors() {
		return c, f.Scope, nil, fmt.Errorf("evaluation errors in %s", path)
	}
	return c, f.Scope, builder.Freeze(), nil
}

// load parses and evaluates one imported module, returning the Record
// of its non-reserved top-level values (spec.md §4.7).
func (l *Loader) load(path string, args map[string]dag.Value) (*dag.Record, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	builtinScope, builtins, err := l.newBuiltinScope(args)
	if err != nil {
		return nil, err
	}
	p := parser.New(path, src, l.tctx, l.reporter, builtinScope)
	f := p.ParseFile()
	if l.reporter.HasErrors() {
		return nil, fmt.Errorf("parse errors in %s", path)
	}

	builder := dag.NewBuilder()
	c := eval.NewContext(builder, l.reporter, l.tctx, l, path)
	seedBuiltins(c, builtins)
	c.EvalFile(f.Scope)
	if l.reporter.HasErrors() {
		return nil, fmt.Errorf("evaluation errors in %s", path)
	}

	order := make([]string, 0, len(f.Scope.Values))
	fields := make(map[string]dag.Value, len(f.Scope.Values))
	for _, v := range f.Scope.Values {
		if _, isType := v.Init.(*ast.TypeDeclaration); isType {
			continue
		}
		if isReservedName(v.Name) {
			continue
		}
		order = append(order, v.Name)
		fields[v.Name] = c.Value(v)
	}
	return &dag.Record{FieldOrder: order, Fields: fields}, nil
}

func isReservedName(name string) bool {
	switch name {
	case "subdir", "args", "srcroot", "buildroot":
		return true
	default:
		return false
	}
}

// builtinSeed pairs a builtin's ast.Value placeholder with the dag.Value
// it should evaluate to, so seedBuiltins can inject it into a fresh
// Context before EvalFile runs.
type builtinSeed struct {
	decl *ast.Value
	val  dag.Value
}

// newBuiltinScope builds the parent scope a module's parse sees
// (srcroot/buildroot/subdir/args pre-declared so NameReferences resolve)
// and the parallel list of dag.Values to seed into the evaluator
// (spec.md §4.7, "bundled as a Record of type args and injected as a
// builtin").
func (l *Loader) newBuiltinScope(args map[string]dag.Value) (*ast.Scope, []builtinSeed, error) {
	scope := ast.NewScope(nil)

	order := make([]string, 0, len(args))
	for name := range args {
		order = append(order, name)
	}
	sort.Strings(order)
	argsRecord := &dag.Record{FieldOrder: order, Fields: args}
	argFields := make([]types.Field, len(order))
	for i, name := range order {
		var ty *types.Type
		if v := args[name]; v != nil {
			ty = v.Type()
			if p, ok := v.(*dag.Primitive); ok && ty == nil {
				switch p.Value.(type) {
				case string:
					ty = l.tctx.String()
				case int64:
					ty = l.tctx.Int()
				case bool:
					ty = l.tctx.Bool()
				}
			}
		}
		argFields[i] = types.Field{Name: name, Type: ty}
	}

	currentSubdir := ""
	if len(l.stack) > 0 {
		currentSubdir = l.stack[len(l.stack)-1]
	}

	seeds := []builtinSeed{
		{decl: &ast.Value{Name: "srcroot", EffectiveType: l.tctx.String()}, val: &dag.Primitive{Value: l.resolver.srcroot}},
		{decl: &ast.Value{Name: "buildroot", EffectiveType: l.tctx.String()}, val: &dag.Primitive{Value: l.resolver.buildroot}},
		{decl: &ast.Value{Name: "subdir", EffectiveType: l.tctx.String()}, val: &dag.Primitive{Value: currentSubdir}},
		{decl: &ast.Value{Name: "args", EffectiveType: l.tctx.RecordType(argFields)}, val: argsRecord},
	}
	for _, s := range seeds {
		scope.Define(s.decl)
	}

	if l.pluginManifest != nil {
		pluginSeeds, err := plugin.Seed(scope, l.pluginManifest, l.pluginValues, l.tctx)
		if err != nil {
			return nil, nil, fmt.Errorf("seeding plugin values: %w", err)
		}
		for decl, val := range pluginSeeds {
			seeds = append(seeds, builtinSeed{decl: decl, val: val})
		}
	}

	return scope, seeds, nil
}

func seedBuiltins(c *eval.Context, seeds []builtinSeed) {
	for _, s := range seeds {
		c.DefineBuiltin(s.decl, s.val)
	}
}

// subdirOf returns from's containing directory expressed relative to
// srcroot, the form findModule and the subdirectory stack both use.
func (l *Loader) subdirOf(from string) string {
	if from == "" {
		if len(l.stack) > 0 {
			return l.stack[len(l.stack)-1]
		}
		return ""
	}
	rel, err := filepath.Rel(l.resolver.srcroot, filepath.Dir(from))
	if err != nil {
		return ""
	}
	if rel == "." {
		return ""
	}
	return rel
}

// checkCycle rejects a re-entrant import of a file still being loaded
// higher up the current-subdirectory stack (spec.md §4.7, "cyclic
// imports are rejected (detected by the current-subdirectory stack)").
func (l *Loader) checkCycle(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loading[path] {
		return fmt.Errorf("cyclic import: %s imports itself (via %s)", path, strings.Join(l.stack, " -> "))
	}
	return nil
}

func (l *Loader) pushStack(subdir string) {
	l.stack = append(l.stack, subdir)
}

func (l *Loader) popStack() {
	if len(l.stack) > 0 {
		l.stack = l.stack[:len(l.stack)-1]
	}
}
