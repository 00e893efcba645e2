package dag

import (
	"strings"
)

// Command renders the Rule's command template with this Build's actual
// bindings substituted in: ${in}/${out} become the space-joined, sorted
// paths of every primary input/output file, and ${paramName} for any
// other declared parameter (including one literally named "name")
// resolves to that specific file's path or, for an untagged parameter,
// its Vars value (spec.md §5). A parameter bound only to ExtraDeps or
// ExtraOutputs, or not bound at all, is replaced by the empty string.
func (b *Build) Command() string {
	cmd := b.Rule.Command
	cmd = strings.ReplaceAll(cmd, "${in}", joinFilePaths(sortedInputs(b.Inputs)))
	cmd = strings.ReplaceAll(cmd, "${out}", joinFilePaths(sortedOutputs(b.Outputs)))

	for _, p := range b.Rule.Params {
		placeholder := "${" + p.Name + "}"
		if !strings.Contains(cmd, placeholder) {
			continue
		}
		cmd = strings.ReplaceAll(cmd, placeholder, b.paramValue(p.Name))
	}
	return cmd
}

func (b *Build) paramValue(name string) string {
	if f, ok := b.Inputs[name]; ok {
		return f.Path
	}
	if f, ok := b.Outputs[name]; ok {
		return f.Path
	}
	if v, ok := b.Vars[name]; ok {
		return v.String()
	}
	if v, ok := b.Rule.Vars[name]; ok {
		return v.String()
	}
	return ""
}

func sortedInputs(m map[string]*File) []*File {
	files := make([]*File, 0, len(m))
	for _, f := range m {
		files = append(files, f)
	}
	return sortedFiles(files)
}

func sortedOutputs(m map[string]*File) []*File {
	return sortedInputs(m)
}

func joinFilePaths(files []*File) string {
	parts := make([]string, len(files))
	for i, f := range files {
		parts[i] = f.Path
	}
	return strings.Join(parts, " ")
}
