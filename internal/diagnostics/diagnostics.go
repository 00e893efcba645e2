// Package diagnostics accumulates structured error reports across the
// compilation pipeline instead of unwinding the stack on the first
// problem. Each stage keeps reporting into the same Reporter and the
// pipeline only stops at the end of a stage that produced an Error.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fabriquer/fabrique/internal/source"
)

// Severity classifies a Report.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Report is one diagnostic: a message, the range of source it concerns,
// and a severity. Data carries optional machine-readable detail (e.g. the
// two type strings in a mismatch) for tools that consume JSON output.
type Report struct {
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Range    source.Range   `json:"range"`
	Code     string         `json:"code,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

func (r Report) String() string {
	return fmt.Sprintf("%s: %s: %s", r.Range, r.Severity, r.Message)
}

// jsonReport is Report with Range flattened to strings, since source.Range
// does not itself carry json tags worth exposing to external tools.
type jsonReport struct {
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Range    string         `json:"range"`
	Code     string         `json:"code,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// ToJSON renders the report deterministically (sorted map keys, courtesy
// of encoding/json's default struct/map ordering).
func (r Report) ToJSON() (string, error) {
	jr := jsonReport{
		Severity: r.Severity.String(),
		Message:  r.Message,
		Range:    r.Range.String(),
		Code:     r.Code,
		Data:     r.Data,
	}
	b, err := json.Marshal(jr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Reporter accumulates Reports for one compilation.
type Reporter struct {
	reports []Report
}

// NewReporter returns an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report appends a new diagnostic.
func (r *Reporter) Report(severity Severity, rng source.Range, format string, args ...any) {
	r.reports = append(r.reports, Report{
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Range:    rng,
	})
}

// ReportCoded appends a diagnostic carrying a stable error code, e.g. for
// tooling that wants to filter by code.
func (r *Reporter) ReportCoded(severity Severity, code string, rng source.Range, format string, args ...any) {
	r.reports = append(r.reports, Report{
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Range:    rng,
		Code:     code,
	})
}

// Note, Warn and Err are shorthand for Report at a fixed severity.
func (r *Reporter) Note(rng source.Range, format string, args ...any) {
	r.Report(Note, rng, format, args...)
}
func (r *Reporter) Warn(rng source.Range, format string, args ...any) {
	r.Report(Warning, rng, format, args...)
}
func (r *Reporter) Err(rng source.Range, format string, args ...any) {
	r.Report(Error, rng, format, args...)
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (r *Reporter) HasErrors() bool {
	for _, rep := range r.reports {
		if rep.Severity == Error {
			return true
		}
	}
	return false
}

// Reports returns all accumulated reports in the order they were added.
func (r *Reporter) Reports() []Report {
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// SortedByRange returns the reports sorted by source position, stable on
// insertion order for reports at the same position.
func (r *Reporter) SortedByRange() []Report {
	out := r.Reports()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.Begin.Before(out[j].Range.Begin)
	})
	return out
}

// Merge appends another Reporter's reports into r, preserving order.
func (r *Reporter) Merge(other *Reporter) {
	if other == nil {
		return
	}
	r.reports = append(r.reports, other.reports...)
}
