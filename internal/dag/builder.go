package dag

import (
	"fmt"
	"sort"

	"github.com/fabriquer/fabrique/internal/types"
)

// Builder accumulates DAG entities during evaluation and freezes them
// into an immutable Dag. It owns the File dedup table and the Build/
// Rule naming counters, matching spec.md §5 ("Shared resources:
// Builder owns growing state; Dag is read-only").
type Builder struct {
	files     map[string]*File
	rules     map[string]*Rule
	builds    []*Build
	variables map[string]Value
	targets   []*Target

	buildCounter map[string]int // rule name -> next synthesized build suffix
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		files:        make(map[string]*File),
		rules:        make(map[string]*Rule),
		variables:    make(map[string]Value),
		buildCounter: make(map[string]int),
	}
}

// File returns the single File entity for path, creating it on first
// use. A later call with the same path and additional attrs merges them
// into the existing entity rather than creating a duplicate (spec.md
// §5, "File identity is its fully-qualified path").
func (b *Builder) File(path string, ty *types.Type, attrs map[string]Value) *File {
	if f, ok := b.files[path]; ok {
		for k, v := range attrs {
			if _, exists := f.Attrs[k]; !exists {
				f.Attrs[k] = v
			}
		}
		return f
	}
	f := &File{base: base{Typ: ty}, Path: path, Attrs: attrs}
	if f.Attrs == nil {
		f.Attrs = make(map[string]Value)
	}
	b.files[path] = f
	return f
}

// LookupFile returns the already-built File for path, if any.
func (b *Builder) LookupFile(path string) (*File, bool) {
	f, ok := b.files[path]
	return f, ok
}

// Rule returns the Rule for a given name, creating it the first time an
// action() literal with that identity is evaluated. Subsequent calls to
// the same action() value share the Rule (spec.md §5).
func (b *Builder) Rule(name string, ty *types.Type, command string, params []Param, vars map[string]Value) *Rule {
	if r, ok := b.rules[name]; ok {
		return r
	}
	r := &Rule{base: base{Typ: ty}, RuleName: name, Command: command, Params: params, Vars: vars}
	b.rules[name] = r
	return r
}

// NextBuildName synthesizes a unique name for a new invocation of rule,
// following the teacher's "<rule>_<counter>" scheme. The Make backend
// does not use it: its multi-output pseudo-targets come from its own
// counter.
func (b *Builder) NextBuildName(ruleName string) string {
	n := b.buildCounter[ruleName]
	b.buildCounter[ruleName]++
	if n == 0 {
		return ruleName
	}
	return fmt.Sprintf("%s_%d", ruleName, n)
}

// AddBuild registers a new Build invocation.
func (b *Builder) AddBuild(build *Build) {
	b.builds = append(b.builds, build)
}

// SetVariable records a top-level named Value visible to backends that
// support free-standing variables (e.g. Make's `VAR = value` lines).
func (b *Builder) SetVariable(name string, v Value) {
	b.variables[name] = v
}

// AddTarget registers a named alias for one or more Files.
func (b *Builder) AddTarget(name string, files []*File) {
	b.targets = append(b.targets, &Target{Name: name, Files: files})
}

// Freeze produces the immutable Dag this Builder accumulated, with
// files, targets and rules sorted and builds left in insertion order.
func (b *Builder) Freeze() *Dag {
	files := make([]*File, 0, len(b.files))
	for _, f := range b.files {
		files = append(files, f)
	}
	files = sortedFiles(files)

	rules := make([]*Rule, 0, len(b.rules))
	for _, r := range b.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].RuleName < rules[j].RuleName })

	// Builds keep evaluation order (spec.md §5): unlike Files/Targets,
	// no sort key is specified for them.
	builds := make([]*Build, len(b.builds))
	copy(builds, b.builds)

	targets := make([]*Target, len(b.targets))
	copy(targets, b.targets)
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })

	variables := make(map[string]Value, len(b.variables))
	for k, v := range b.variables {
		variables[k] = v
	}

	return &Dag{Files: files, Rules: rules, Builds: builds, Variables: variables, Targets: targets}
}
