// Package plugin implements the registration contract SPEC_FULL.md §2
// item 9 describes: a small YAML manifest declares the name and type of
// values a host process has already loaded through its own
// (out-of-scope) native-plugin mechanism, and Seed binds each one into a
// Fabrique scope as an opaque builtin. No dynamic .so/.dll loading
// happens here -- only the declaration contract, grounded on the
// teacher's eval_harness use of gopkg.in/yaml.v3 for declarative spec
// files (models.go, spec.go).
package plugin

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fabriquer/fabrique/internal/ast"
	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/types"
)

// ValueSpec is one `name: type` entry in a plugin manifest.
type ValueSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Manifest lists the builtin values a host process makes available to
// user scripts, keyed by name.
type Manifest struct {
	Values []ValueSpec `yaml:"values"`
}

// ParseManifest reads a plugin manifest from its YAML form.
func ParseManifest(src []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(src, &m); err != nil {
		return nil, fmt.Errorf("parsing plugin manifest: %w", err)
	}
	return &m, nil
}

// Seed defines an ast.Value for each of manifest's entries in scope (so
// user scripts' NameReferences resolve to it) and returns the dag.Value
// each should evaluate to: whatever the host supplied in values for that
// name, or a zero value of the declared type when the host didn't supply
// one. Like the rest of evaluation (eval_expressions.go), this trusts
// the host to have supplied a value matching the manifest's declared
// type rather than re-checking it dynamically -- the manifest is the
// only place that type lives. The caller folds the returned map into its
// Context the same way internal/module seeds srcroot/buildroot/subdir/
// args (eval.Context.DefineBuiltin).
func Seed(scope *ast.Scope, manifest *Manifest, values map[string]dag.Value, tctx *types.Context) (map[*ast.Value]dag.Value, error) {
	seeded := make(map[*ast.Value]dag.Value, len(manifest.Values))
	for _, spec := range manifest.Values {
		ty, ok := tctx.Find(spec.Type, nil)
		if !ok {
			return nil, fmt.Errorf("plugin value %q: unknown type %q", spec.Name, spec.Type)
		}

		v := &ast.Value{Name: spec.Name, EffectiveType: ty}
		if _, redefined := scope.Define(v); redefined {
			return nil, fmt.Errorf("plugin value %q is already declared", spec.Name)
		}

		dv, ok := values[spec.Name]
		if !ok {
			dv = zeroValue(ty)
		}
		seeded[v] = dv
	}
	return seeded, nil
}

// zeroValue returns the empty DagValue of ty, used when a manifest
// declares a value the host didn't actually supply (e.g. while checking
// a script without running the host's plugin loader).
func zeroValue(ty *types.Type) dag.Value {
	switch ty.Kind() {
	case types.KindBool:
		return &dag.Primitive{Value: false}
	case types.KindInt:
		return &dag.Primitive{Value: int64(0)}
	case types.KindString:
		return &dag.Primitive{Value: ""}
	case types.KindList:
		return &dag.List{}
	default:
		return &dag.Primitive{Value: ""}
	}
}
