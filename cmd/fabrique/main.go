// Command fabrique compiles a .fab build description into a backend
// build file (build/check) or browses an already-evaluated one
// (inspect). Grounded on the teacher's cmd/ailang/main.go: flag-based
// verb dispatch on os.Args[1], fatih/color SprintFunc helpers, a
// printHelp/printVersion pair, os.Exit(1) with a red("Error")-prefixed
// message on failure.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/fabriquer/fabrique/internal/backend"
	"github.com/fabriquer/fabrique/internal/dag"
	"github.com/fabriquer/fabrique/internal/diagnostics"
	"github.com/fabriquer/fabrique/internal/inspect"
	"github.com/fabriquer/fabrique/internal/module"
	"github.com/fabriquer/fabrique/internal/plugin"
	"github.com/fabriquer/fabrique/internal/types"
)

var (
	Version = "dev"

	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

type defList []string

func (d *defList) String() string { return strings.Join(*d, ",") }
func (d *defList) Set(v string) error {
	*d = append(*d, v)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "check":
		runCheck(os.Args[2:])
	case "inspect":
		runInspect(os.Args[2:])
	case "-version", "--version":
		printVersion()
	case "-help", "--help", "help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("fabrique %s\n", bold(Version))
}

func printHelp() {
	fmt.Println(bold("fabrique") + " - a declarative build description language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  fabrique <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file.fab>    compile and emit a backend build file\n", cyan("build"))
	fmt.Printf("  %s <file.fab>    parse, typecheck and evaluate; report diagnostics\n", cyan("check"))
	fmt.Printf("  %s <file.fab>  compile, then browse the build graph interactively\n", cyan("inspect"))
	fmt.Println()
	fmt.Println("Build flags:")
	fmt.Println("  -o <dir>            output directory for the generated build file (default: .)")
	fmt.Println("  -backend <name>     ninja, make, make-bsd or make-gnu (default: ninja)")
	fmt.Println("  -def name=value     define a string passed to the file's `args` record")
	fmt.Println("  -plugins <file>     plugin manifest (YAML) declaring host-supplied builtins")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s\n", cyan("fabrique build project.fab -backend ninja -o build/"))
	fmt.Printf("  %s\n", cyan("fabrique check project.fab"))
	fmt.Printf("  %s\n", cyan("fabrique inspect project.fab"))
}

// parseDefs turns "-def name=value" flags into the string-valued record
// fields SPEC_FULL.md §6 calls for: the entry file's `args` builtin.
func parseDefs(defs []string) (map[string]dag.Value, error) {
	out := make(map[string]dag.Value, len(defs))
	for _, d := range defs {
		name, value, ok := strings.Cut(d, "=")
		if !ok {
			return nil, fmt.Errorf("invalid -def %q, expected name=value", d)
		}
		out[name] = &dag.Primitive{Value: value}
	}
	return out, nil
}

func loadPlugins(path string) (*plugin.Manifest, map[string]dag.Value, error) {
	if path == "" {
		return nil, nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading plugin manifest %s: %w", path, err)
	}
	manifest, err := plugin.ParseManifest(src)
	if err != nil {
		return nil, nil, err
	}
	return manifest, map[string]dag.Value{}, nil
}

// compile runs the full pipeline (parse, typecheck, evaluate, freeze)
// for the .fab file at path, printing every accumulated diagnostic
// before returning. It exits the process on a hard failure so callers
// don't need their own error path.
func compile(path string, cliArgs map[string]dag.Value, pluginManifestPath string) (*dag.Dag, *diagnostics.Reporter) {
	manifest, pluginValues, err := loadPlugins(pluginManifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	tctx := types.NewContext()
	reporter := diagnostics.NewReporter()
	resolver := module.NewResolver("", "")
	loader := module.NewLoader(resolver, tctx, reporter)
	if manifest != nil {
		loader.WithPlugins(manifest, pluginValues)
	}

	_, _, d, err := loader.LoadEntry(path, cliArgs)
	printDiagnostics(reporter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	return d, reporter
}

func printDiagnostics(reporter *diagnostics.Reporter) {
	for _, r := range reporter.SortedByRange() {
		var label string
		switch r.Severity {
		case diagnostics.Error:
			label = red("error")
		case diagnostics.Warning:
			label = yellow("warning")
		default:
			label = cyan("note")
		}
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", r.Range, label, r.Message)
	}
}

func selectBackend(name string) backend.Backend {
	switch name {
	case "", "ninja":
		n := &backend.Ninja{}
		n.Warn = func(msg string) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", yellow("warning"), msg)
		}
		return n
	case "make":
		return &backend.Make{Flavour: backend.POSIX}
	case "make-bsd":
		return &backend.Make{Flavour: backend.BSD}
	case "make-gnu":
		return &backend.Make{Flavour: backend.GNU}
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown backend %q\n", red("Error"), name)
		os.Exit(1)
		return nil
	}
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	outDir := fs.String("o", ".", "output directory")
	backendName := fs.String("backend", "ninja", "backend: ninja, make, make-bsd, make-gnu")
	pluginManifest := fs.String("plugins", "", "plugin manifest (YAML)")
	var defs defList
	fs.Var(&defs, "def", "name=value, repeatable")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
		fmt.Println("Usage: fabrique build <file.fab> [-o dir] [-backend name] [-def name=value]...")
		os.Exit(1)
	}

	cliArgs, err := parseDefs(defs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	d, _ := compile(fs.Arg(0), cliArgs, *pluginManifest)

	b := selectBackend(*backendName)
	w := backend.NewWriter()
	if err := b.Generate(d, w); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	outPath := *outDir + string(os.PathSeparator) + b.DefaultFilename()
	if err := os.WriteFile(outPath, []byte(w.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	fmt.Printf("%s wrote %s\n", green("✓"), outPath)
}

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	pluginManifest := fs.String("plugins", "", "plugin manifest (YAML)")
	var defs defList
	fs.Var(&defs, "def", "name=value, repeatable")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
		fmt.Println("Usage: fabrique check <file.fab>")
		os.Exit(1)
	}

	cliArgs, err := parseDefs(defs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	_, reporter := compile(fs.Arg(0), cliArgs, *pluginManifest)
	if reporter.HasErrors() {
		os.Exit(1)
	}
	fmt.Printf("%s no errors found\n", green("✓"))
}

func runInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	pluginManifest := fs.String("plugins", "", "plugin manifest (YAML)")
	var defs defList
	fs.Var(&defs, "def", "name=value, repeatable")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
		fmt.Println("Usage: fabrique inspect <file.fab>")
		os.Exit(1)
	}

	cliArgs, err := parseDefs(defs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	d, _ := compile(fs.Arg(0), cliArgs, *pluginManifest)

	shell := inspect.New(d)
	if err := shell.Run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
}
