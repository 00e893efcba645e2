// Package dag holds the compiled, immutable build graph a Fabrique
// evaluation produces: deduplicated Files, Rules, Builds and named
// Targets, ready for a backend to emit. Tagged-sum entities mirror
// internal/ast's design (spec.md §9): one struct per DagValue variant,
// a common embedded identity, traversal by type switch.
package dag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fabriquer/fabrique/internal/types"
)

// Value is any entity that can flow through the build graph: a
// primitive, a File, a List, a Record, or a Rule/Build/Target.
type Value interface {
	Type() *types.Type
	String() string
	dagValue()
}

type base struct {
	Typ *types.Type
}

func (b base) Type() *types.Type { return b.Typ }
func (b base) dagValue()         {}

// Primitive wraps a bool, int or string value (spec.md §5, "DAG entity
// kinds").
type Primitive struct {
	base
	Value interface{}
}

func (p *Primitive) String() string { return fmt.Sprintf("%v", p.Value) }

// File is a single file in the build graph, identified by its
// fully-qualified path (subdirectory already joined in, per DESIGN.md
// Open Question 3). Two File values with the same Path are the same
// entity -- see Builder.File for the dedup contract.
type File struct {
	base
	Path  string
	Attrs map[string]Value
	// GeneratedBy is the Build that produces this file as an output, nil
	// for a source file supplied by the user.
	GeneratedBy *Build
}

func (f *File) String() string { return f.Path }

// List is an ordered, homogeneous sequence of Values.
type List struct {
	base
	Elements []Value
}

func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Record is a Fabrique record value: an ordered field-name -> Value map.
type Record struct {
	base
	FieldOrder []string
	Fields     map[string]Value
}

func (r *Record) String() string {
	parts := make([]string, len(r.FieldOrder))
	for i, name := range r.FieldOrder {
		parts[i] = fmt.Sprintf("%s = %s", name, r.Fields[name])
	}
	return "record { " + strings.Join(parts, "; ") + " }"
}

func (r *Record) Field(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Maybe holds an optional Value: Present distinguishes `some(x)` from
// the absent case, mirroring types.KindMaybe.
type Maybe struct {
	base
	Present bool
	Inner   Value
}

func (m *Maybe) String() string {
	if !m.Present {
		return "none"
	}
	return "some(" + m.Inner.String() + ")"
}

// Function is a closure: captured environment plus the AST to apply it
// to at call time. The evaluator (internal/eval) owns the concrete
// Body/Env types; dag only needs identity and a type for Function
// values that flow through records and lists.
type Function struct {
	base
	Name string // empty for an anonymous literal
	Impl interface{}
}

func (f *Function) String() string {
	if f.Name != "" {
		return f.Name
	}
	return "function"
}

// RegenerationRuleName is the reserved Rule name a Ninja-style backend
// marks `generator = true` (spec.md §4.8, "the regeneration rule (if
// present) is marked as a generator"): a build description that wants
// its build file regenerated whenever the source changes names its
// self-regenerating action this.
const RegenerationRuleName = "regenerate"

// Rule is a reusable command template (spec.md §5): one action's
// command plus the constant (non-file) named arguments it closed over.
// Distinct calls to the same action() value share a Rule, identified by
// RuleName.
type Rule struct {
	base
	RuleName string
	Command  string          // with ${name}/${in}/${out} placeholders, unsubstituted
	Params   []Param
	Vars     map[string]Value // constant named arguments (spec.md §4.5, action NamedArgs)
}

// Param is one declared parameter of a Rule: its name and whether it is
// an input file, an output file, or neither (a plain value substituted
// into the command).
type Param struct {
	Name string
	Tag  types.FileTag
	Type *types.Type
}

func (r *Rule) String() string { return r.RuleName }

// Build is one concrete invocation of a Rule: the actual input and
// output Files bound to the Rule's parameters.
type Build struct {
	base
	BuildName string // synthesized <rule>_<counter>, shown by String and inspect; Make names its multi-output pseudo-targets from its own counter
	Rule      *Rule
	Inputs    map[string]*File
	Outputs   map[string]*File
	// ExtraDeps lists additional file[in] arguments beyond the primary
	// input: they must exist before Build runs but do not appear in the
	// substituted command line (spec.md §5, "extra dependencies").
	ExtraDeps []*File
	// ExtraOutputs lists additional file[out] arguments beyond the
	// primary output -- files Build also produces but that ${out}
	// doesn't name (spec.md §5, "extra outputs").
	ExtraOutputs []*File
	// Vars holds this invocation's values for the Rule's untagged
	// (non-file) parameters, substituted into Rule.Command alongside
	// ${in}/${out} (spec.md §5).
	Vars map[string]Value
}

func (b *Build) String() string { return b.BuildName }

// InputPaths returns this Build's input file paths in the Rule's
// declared parameter order, falling back to sorted-by-name order for
// any input not named by a parameter. Backends use this (rather than
// ranging over the Inputs map directly) to get deterministic output.
func (b *Build) InputPaths() []string {
	return orderedFilePaths(b.Rule.Params, types.In, b.Inputs)
}

// OutputPaths is InputPaths' counterpart for output files.
func (b *Build) OutputPaths() []string {
	return orderedFilePaths(b.Rule.Params, types.Out, b.Outputs)
}

func orderedFilePaths(params []Param, tag types.FileTag, files map[string]*File) []string {
	seen := make(map[string]bool, len(files))
	paths := make([]string, 0, len(files))
	for _, p := range params {
		if p.Tag != tag {
			continue
		}
		if f, ok := files[p.Name]; ok {
			paths = append(paths, f.Path)
			seen[p.Name] = true
		}
	}
	var rest []string
	for name := range files {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		paths = append(paths, files[name].Path)
	}
	return paths
}

// Target is a named, user-facing alias for one or more Files (spec.md
// §4.6, "Target registration"). The evaluator registers one for each
// top-level value that is a File or a List containing Files.
type Target struct {
	Name  string
	Files []*File
}

// Dag is the complete, frozen build graph one compilation produces.
// Files, targets and rules are sorted (by path or name); builds keep
// the order the evaluator added them in, which is itself deterministic,
// so two semantically identical compilations serialize identically.
type Dag struct {
	Files     []*File
	Rules     []*Rule
	Builds    []*Build
	Variables map[string]Value
	Targets   []*Target
}

// sortedFiles returns f sorted by Path, used both by Freeze and by
// backends that want a stable emission order.
func sortedFiles(files []*File) []*File {
	out := make([]*File, len(files))
	copy(out, files)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
