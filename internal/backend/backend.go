// Package backend turns a frozen *dag.Dag into build-tool source: a
// Ninja file (ninja.go) or a POSIX/BSD/GNU Makefile (make.go). Both
// emitters build their output directly with strings.Builder, the way
// the teacher's internal/eval_analysis/formatter.go renders reports --
// no templating engine sits between the DAG and the bytes written.
package backend

import (
	"fmt"
	"strings"

	"github.com/fabriquer/fabrique/internal/dag"
)

// Backend renders a Dag to w in one target build tool's syntax.
type Backend interface {
	// Name identifies the backend for CLI selection ("ninja", "make").
	Name() string
	// DefaultFilename is the conventional output filename this backend
	// writes to when the caller doesn't override it (e.g. "build.ninja").
	DefaultFilename() string
	// Generate writes dag's build description to w.
	Generate(d *dag.Dag, w *Writer) error
}

// Writer accumulates emitted text, tracking nothing beyond the
// underlying strings.Builder -- both backends write whole lines at a
// time, so no column/wrap bookkeeping is needed.
type Writer struct {
	sb strings.Builder
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Line writes format with args substituted, followed by a newline.
func (w *Writer) Line(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

// Raw writes s verbatim, with no trailing newline added.
func (w *Writer) Raw(s string) { w.sb.WriteString(s) }

// Blank writes an empty line.
func (w *Writer) Blank() { w.sb.WriteByte('\n') }

// String returns everything written so far.
func (w *Writer) String() string { return w.sb.String() }

// FormatValue renders a dag.Value in the textual form spec.md §4.8
// specifies for build-file substitution: booleans as true/false,
// integers in decimal, lists space-joined, strings verbatim, and
// functions/records as empty strings (they have no build-file
// representation). Ninja and Make both call this function directly;
// neither backend has a formatter of its own.
func FormatValue(v dag.Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case *dag.Primitive:
		if b, ok := val.Value.(bool); ok {
			if b {
				return "true"
			}
			return "false"
		}
		return fmt.Sprintf("%v", val.Value)
	case *dag.List:
		parts := make([]string, len(val.Elements))
		for i, e := range val.Elements {
			parts[i] = FormatValue(e)
		}
		return strings.Join(parts, " ")
	case *dag.File:
		return val.Path
	case *dag.Record, *dag.Function:
		return ""
	default:
		return ""
	}
}
