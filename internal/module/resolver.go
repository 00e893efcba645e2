// Package module implements the filesystem collaborator spec.md §4.7/§6
// describes: the `pathIsAbsolute`/`joinPath`/`directoryOf`/`findModule`
// primitives, a project-root-discovering Resolver, and a Loader that
// implements eval.ImportResolver by parsing and evaluating an imported
// .fab file against a fresh Context.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileExt = ".fab"

// pathIsAbsolute reports whether s is an absolute path on the host
// filesystem (spec.md §6, filesystem collaborator contract).
func pathIsAbsolute(s string) bool { return filepath.IsAbs(s) }

// joinPath joins a and b the way the host filesystem does.
func joinPath(a, b string) string { return filepath.Join(a, b) }

// directoryOf returns path's containing directory.
func directoryOf(path string) string { return filepath.Dir(path) }

// withExt appends the Fabrique source extension if name doesn't already
// carry one.
func withExt(name string) string {
	if strings.HasSuffix(name, fileExt) {
		return name
	}
	return name + fileExt
}

// Resolver locates project roots and module search paths on the host
// filesystem. Grounded on the teacher's internal/module/resolver.go
// (project-root marker search, PATH-style search-path env var), adapted
// to Fabrique's single srcroot/buildroot model (spec.md §6) rather than
// the teacher's stdlib/project-import distinction.
type Resolver struct {
	srcroot     string
	buildroot   string
	searchPaths []string
}

// NewResolver returns a Resolver rooted at srcroot/buildroot. An empty
// srcroot is discovered by walking up from the current working directory
// looking for a marker file (fabrique.yaml, .fabrique, go.mod, .git),
// matching the teacher's findProjectRoot; an empty buildroot defaults to
// srcroot.
func NewResolver(srcroot, buildroot string) *Resolver {
	if srcroot == "" {
		srcroot = findProjectRoot()
	}
	if buildroot == "" {
		buildroot = srcroot
	}
	return &Resolver{
		srcroot:     srcroot,
		buildroot:   buildroot,
		searchPaths: searchPathsFromEnv(),
	}
}

// Srcroot and Buildroot expose the roots this Resolver was configured
// with, for injecting the `srcroot`/`buildroot` builtins.
func (r *Resolver) Srcroot() string   { return r.srcroot }
func (r *Resolver) Buildroot() string { return r.buildroot }

var projectMarkers = []string{"fabrique.yaml", ".fabrique", "go.mod", ".git"}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	wd, _ := os.Getwd()
	return wd
}

// searchPathsFromEnv reads FABRIQUE_PATH (analogous to the teacher's
// AILANG_PATH), a host-PathListSeparator-delimited list of extra
// directories findModule falls back to once the srcroot search fails.
func searchPathsFromEnv() []string {
	var paths []string
	if v := os.Getenv("FABRIQUE_PATH"); v != "" {
		for _, p := range strings.Split(v, string(os.PathListSeparator)) {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// findModule resolves name to an existing, readable file (spec.md §6):
// it searches the current subdirectory first, then each ancestor
// directory up to srcroot, then the configured search paths. On miss it
// returns a user-visible error naming what was searched.
func (r *Resolver) findModule(subdir, name string) (string, error) {
	candidate := withExt(name)

	for _, dir := range ancestry(r.srcroot, subdir) {
		path := filepath.Join(dir, candidate)
		if fileExists(path) {
			return path, nil
		}
	}
	for _, dir := range r.searchPaths {
		path := filepath.Join(dir, candidate)
		if fileExists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("module %q not found under %s (subdir %q)", name, r.srcroot, subdir)
}

// ancestry lists subdir and each of its ancestors up to and including
// srcroot itself, each joined with srcroot, nearest first -- the
// "current subdirectory first, then upward under srcroot" search order.
func ancestry(srcroot, subdir string) []string {
	dirs := []string{filepath.Join(srcroot, subdir)}
	for subdir != "" && subdir != "." {
		subdir = filepath.Dir(subdir)
		if subdir == "." {
			break
		}
		dirs = append(dirs, filepath.Join(srcroot, subdir))
	}
	if last := dirs[len(dirs)-1]; last != srcroot {
		dirs = append(dirs, srcroot)
	}
	return dirs
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
