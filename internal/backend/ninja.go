package backend

import (
	"fmt"
	"sort"

	"github.com/fabriquer/fabrique/internal/dag"
)

// reservedRuleArgs are Ninja's special per-rule keys (spec.md §4.8):
// a rule parameter sharing one of these names collides with Ninja's
// own syntax and is worth a Warning, not an Error -- the generated
// file still parses, it just silently shadows the rule's real
// command/description.
var reservedRuleArgs = map[string]bool{
	"command":     true,
	"description": true,
	"generator":   true,
}

// Ninja renders a Dag as a `build.ninja` file: one block per variable,
// rule and build, phony targets for named DAG targets. Grounded on
// `original_source/lib/backend/Ninja.cc`'s block-by-block emission order;
// `other_examples/04c0a5f9_maruel-nin__ninja.go.go` (the `ninja` tool
// itself, a consumer rather than a writer of `.ninja` files) contributed
// only the direct-string-building texture, not the emission logic.
type Ninja struct {
	// Warn receives a message for each rule parameter shadowing a
	// reserved Ninja key. Nil discards warnings.
	Warn func(msg string)
}

func (n *Ninja) Name() string            { return "ninja" }
func (n *Ninja) DefaultFilename() string { return "build.ninja" }

func (n *Ninja) warn(format string, args ...interface{}) {
	if n.Warn != nil {
		n.Warn(fmt.Sprintf(format, args...))
	}
}

func (n *Ninja) Generate(d *dag.Dag, w *Writer) error {
	w.Line("#")
	w.Line("# Ninja file generated by Fabrique")
	w.Line("#")
	w.Blank()

	w.Line("#")
	w.Line("# Variables:")
	w.Line("#")
	for _, name := range sortedKeys(d.Variables) {
		w.Line("%s = %s", name, FormatValue(d.Variables[name]))
	}
	w.Blank()

	w.Line("#")
	w.Line("# Rules:")
	w.Line("#")
	for _, rule := range d.Rules {
		w.Line("rule %s", rule.RuleName)
		w.Line("  command = %s", rule.Command)
		if desc, ok := rule.Vars["description"]; ok {
			w.Line("  description = %s", FormatValue(desc))
		} else {
			w.Line("  description = %s", rule.RuleName)
		}
		if rule.RuleName == dag.RegenerationRuleName {
			w.Line("  generator = true")
		}

		for _, p := range rule.Params {
			if reservedRuleArgs[p.Name] {
				n.warn("rule %q: parameter %q has reserved meaning in Ninja", rule.RuleName, p.Name)
			}
		}

		for _, name := range sortedKeys(rule.Vars) {
			if name == "description" {
				continue
			}
			w.Line("  %s = %s", name, FormatValue(rule.Vars[name]))
		}
		w.Blank()
	}

	w.Line("#")
	w.Line("# Build steps:")
	w.Line("#")

	for _, t := range d.Targets {
		w.Line("build %s : phony %s", t.Name, joinFilePaths(t.Files))
	}
	w.Blank()

	for _, build := range d.Builds {
		outputs := joinStrings(build.OutputPaths())
		if len(build.ExtraOutputs) > 0 {
			outputs += " | " + joinFilePaths(build.ExtraOutputs)
		}
		inputs := prefixedJoin(build.InputPaths())
		if len(build.ExtraDeps) > 0 {
			inputs += " | " + joinFilePaths(build.ExtraDeps)
		}

		w.Line("build %s: %s%s", outputs, build.Rule.RuleName, inputs)
		for _, name := range sortedKeys(build.Vars) {
			w.Line("  %s = %s", name, FormatValue(build.Vars[name]))
		}
		w.Blank()
	}

	return nil
}

func sortedKeys(m map[string]dag.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinFilePaths(files []*dag.File) string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return joinStrings(paths)
}

func joinStrings(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

func prefixedJoin(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return " " + joinStrings(parts)
}
