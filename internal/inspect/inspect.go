// Package inspect implements the interactive DAG browser behind
// `fabrique inspect`: a small liner-backed command loop over an
// already-frozen *dag.Dag, grounded on the teacher's internal/repl
// (liner line editor, `:command` dispatch table, persistent history
// file). It queries the DAG; it does not re-run or re-evaluate
// anything.
package inspect

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/fabriquer/fabrique/internal/backend"
	"github.com/fabriquer/fabrique/internal/dag"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// Shell is an interactive session over one frozen Dag.
type Shell struct {
	dag *dag.Dag
}

// New returns a Shell inspecting d.
func New(d *dag.Dag) *Shell { return &Shell{dag: d} }

// Run starts the read-eval-print loop, reading lines with liner and
// writing results to out. It returns when the user quits or in hits
// EOF.
func (s *Shell) Run(out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".fabrique_inspect_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(partial string) (c []string) {
		for _, name := range commandNames {
			if strings.HasPrefix(name, partial) {
				c = append(c, name)
			}
		}
		return
	})

	fmt.Fprintf(out, "%s\n", bold("fabrique inspect"))
	fmt.Fprintln(out, dim("Type :help for commands, :quit to exit"))

	for {
		input, err := line.Prompt("dag> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if s.dispatch(input, out) {
			break
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	return nil
}

var commandNames = []string{
	":help", ":quit", ":targets", ":files", ":rules", ":variables", ":show",
}

// dispatch runs one command line, returning true when the session
// should end.
func (s *Shell) dispatch(input string, out io.Writer) bool {
	parts := strings.Fields(input)
	switch parts[0] {
	case ":help", ":h":
		s.printHelp(out)
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case ":targets", ":t":
		s.listTargets(out)
	case ":files", ":f":
		s.listFiles(out)
	case ":rules", ":r":
		s.listRules(out)
	case ":variables", ":v":
		s.listVariables(out)
	case ":show", ":s":
		if len(parts) < 2 {
			fmt.Fprintln(out, "usage: :show <name>")
			return false
		}
		s.show(parts[1], out)
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", red("error"), parts[0])
	}
	return false
}

func (s *Shell) printHelp(out io.Writer) {
	fmt.Fprintln(out, cyan(":help")+"       show this message")
	fmt.Fprintln(out, cyan(":targets")+"    list named targets")
	fmt.Fprintln(out, cyan(":files")+"      list files (source and generated)")
	fmt.Fprintln(out, cyan(":rules")+"      list rules")
	fmt.Fprintln(out, cyan(":variables")+"  list top-level variables")
	fmt.Fprintln(out, cyan(":show")+" NAME  show a target, file, rule or variable by name")
	fmt.Fprintln(out, cyan(":quit")+"       leave the shell")
}

func (s *Shell) listTargets(out io.Writer) {
	for _, t := range s.dag.Targets {
		fmt.Fprintf(out, "%s -> %s\n", t.Name, joinPaths(t.Files))
	}
}

func (s *Shell) listFiles(out io.Writer) {
	for _, f := range s.dag.Files {
		kind := "source"
		if f.GeneratedBy != nil {
			kind = "generated by " + f.GeneratedBy.BuildName
		}
		fmt.Fprintf(out, "%s (%s)\n", f.Path, dim(kind))
	}
}

func (s *Shell) listRules(out io.Writer) {
	for _, r := range s.dag.Rules {
		fmt.Fprintf(out, "%s: %s\n", r.RuleName, r.Command)
	}
}

func (s *Shell) listVariables(out io.Writer) {
	for _, name := range sortedVariableNames(s.dag.Variables) {
		fmt.Fprintf(out, "%s = %s\n", name, backend.FormatValue(s.dag.Variables[name]))
	}
}

func (s *Shell) show(name string, out io.Writer) {
	for _, t := range s.dag.Targets {
		if t.Name == name {
			fmt.Fprintf(out, "target %s\n  files: %s\n", t.Name, joinPaths(t.Files))
			return
		}
	}
	for _, f := range s.dag.Files {
		if f.Path == name {
			s.showFile(f, out)
			return
		}
	}
	for _, r := range s.dag.Rules {
		if r.RuleName == name {
			s.showRule(r, out)
			return
		}
	}
	if v, ok := s.dag.Variables[name]; ok {
		fmt.Fprintf(out, "%s = %s\n", name, backend.FormatValue(v))
		return
	}
	fmt.Fprintf(out, "%s: no target, file, rule or variable named %q\n", red("error"), name)
}

func (s *Shell) showFile(f *dag.File, out io.Writer) {
	fmt.Fprintf(out, "file %s\n", f.Path)
	if f.GeneratedBy != nil {
		b := f.GeneratedBy
		fmt.Fprintf(out, "  generated by: %s (rule %s)\n", b.BuildName, b.Rule.RuleName)
		fmt.Fprintf(out, "  inputs: %s\n", strings.Join(b.InputPaths(), " "))
	} else {
		fmt.Fprintln(out, "  source file")
	}
	for _, name := range sortedVariableNames(f.Attrs) {
		fmt.Fprintf(out, "  %s = %s\n", name, backend.FormatValue(f.Attrs[name]))
	}
}

func (s *Shell) showRule(r *dag.Rule, out io.Writer) {
	fmt.Fprintf(out, "rule %s\n  command: %s\n", r.RuleName, r.Command)
	for _, p := range r.Params {
		fmt.Fprintf(out, "  param %s (%s)\n", p.Name, p.Tag)
	}
	for _, name := range sortedVariableNames(r.Vars) {
		fmt.Fprintf(out, "  %s = %s\n", name, backend.FormatValue(r.Vars[name]))
	}
}

func joinPaths(files []*dag.File) string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return strings.Join(paths, " ")
}

func sortedVariableNames(m map[string]dag.Value) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
