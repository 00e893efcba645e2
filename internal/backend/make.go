package backend

import (
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fabriquer/fabrique/internal/dag"
)

// Flavour selects a Make dialect, which only changes the default
// output filename (spec.md §6, "Backend output files").
type Flavour int

const (
	POSIX Flavour = iota
	BSD
	GNU
)

// Make renders a Dag as a Makefile: variables, a clean rule, a
// per-directory mkdir rule, a synthesized pseudo-target for any build
// with more than one output, explicit-order directory dependencies,
// and recipes that echo a description before running the command.
// Grounded on `original_source/Backend/Make.cc`.
type Make struct {
	Flavour Flavour
}

func (m *Make) Name() string {
	switch m.Flavour {
	case BSD:
		return "make-bsd"
	case GNU:
		return "make-gnu"
	default:
		return "make"
	}
}

func (m *Make) DefaultFilename() string {
	switch m.Flavour {
	case BSD:
		return "BSDMakefile"
	case GNU:
		return "GNUMakefile"
	default:
		return "Makefile"
	}
}

func (m *Make) Generate(d *dag.Dag, w *Writer) error {
	w.Line("#")
	w.Line("# POSIX makefile generated by Fabrique")
	w.Line("#")
	w.Line(".POSIX:")
	w.Blank()

	w.Line("#")
	w.Line("# Variables:")
	w.Line("#")
	for _, name := range sortedKeys(d.Variables) {
		w.Line("%s=\t%s", name, FormatValue(d.Variables[name]))
	}
	w.Blank()

	// Explicitly-named pseudo-targets, reverse declaration order: Make
	// treats the first target as its automatic default, while a .fab
	// file's targets necessarily name subtargets before top-level ones.
	for i := len(d.Targets) - 1; i >= 0; i-- {
		t := d.Targets[i]
		w.Line("%s : %s", t.Name, joinFilePaths(t.Files))
	}
	w.Blank()

	w.Line("clean :")
	w.Line("\techo \"cleaning...\"")
	cleanLine := "\trm -rf"
	for _, f := range generatedFiles(d) {
		cleanLine += " " + f.Path
	}
	w.Line("%s", cleanLine)
	w.Blank()

	directories := outputDirectories(d)
	for _, f := range generatedFiles(d) {
		dir := filepath.Dir(f.Path)
		if dir == "." || dir == "" {
			continue
		}
		w.Line("%s : | %s", f.Path, dir)
	}
	w.Blank()

	w.Line("#")
	w.Line("# Build steps:")
	w.Line("#")

	for _, dir := range directories {
		w.Line("%s:", dir)
		w.Line("\tmkdir -p %s", dir)
		w.Blank()
	}

	buildID := 0
	for _, build := range d.Builds {
		outputs := allOutputPaths(build)

		if len(outputs) > 1 {
			buildID++
			pseudo := build.Rule.RuleName + "_" + strconv.Itoa(buildID)
			w.Line("%s : %s", pseudo, joinStrings(outputs))
		}

		// target1 target2 : input1 input2 | dependency1 dependency2
		prereqs := prefixedJoin(build.InputPaths())
		if len(build.ExtraDeps) > 0 {
			prereqs += " | " + joinFilePaths(build.ExtraDeps)
		}
		w.Line("%s :%s", joinStrings(outputs), prereqs)

		command := build.Command()
		desc := describeBuild(build)

		w.Blank()
		w.Line("\techo \"%s\"", desc)
		w.Line("\t%s", command)
		w.Blank()
	}

	return nil
}

func describeBuild(build *dag.Build) string {
	if desc, ok := build.Rule.Vars["description"]; ok {
		return FormatValue(desc)
	}
	return build.Rule.RuleName + " [ " + joinStrings(build.InputPaths()) + " ] => [ " + joinStrings(allOutputPaths(build)) + " ]"
}

// allOutputPaths is OutputPaths() plus any ExtraOutputs, matching
// `original_source/Backend/Make.cc`'s use of the full output set for
// both the multi-output pseudo-target and the main target line.
func allOutputPaths(build *dag.Build) []string {
	paths := build.OutputPaths()
	if len(build.ExtraOutputs) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths)+len(build.ExtraOutputs))
	out = append(out, paths...)
	for _, f := range build.ExtraOutputs {
		out = append(out, f.Path)
	}
	return out
}

func generatedFiles(d *dag.Dag) []*dag.File {
	var out []*dag.File
	for _, f := range d.Files {
		if f.GeneratedBy != nil {
			out = append(out, f)
		}
	}
	return out
}

func outputDirectories(d *dag.Dag) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range generatedFiles(d) {
		dir := filepath.Dir(f.Path)
		if dir == "." || dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

