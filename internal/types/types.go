// Package types implements Fabrique's interned type system: every type
// used across a single compilation is a pointer into a TypeContext's
// intern table, so type equality is always pointer equality (see
// spec.md §3, "Invariants").
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the type variants.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindString
	KindFile
	KindList
	KindMaybe
	KindRecord
	KindFunction
	KindUser
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindFile:
		return "file"
	case KindList:
		return "list"
	case KindMaybe:
		return "maybe"
	case KindRecord:
		return "record"
	case KindFunction:
		return "function"
	case KindUser:
		return "user"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FileTag distinguishes an untagged file from one declared as an action's
// input or output parameter.
type FileTag int

const (
	Untagged FileTag = iota
	In
	Out
)

func (t FileTag) String() string {
	switch t {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return ""
	}
}

// Field is one named member of a Record type. Field order is significant:
// records are ordered, not just sets of named types.
type Field struct {
	Name string
	Type *Type
}

// Type is an interned type object. Two Types are equal iff they are the
// same pointer; never compare Types with reflect.DeepEqual or ==-on-value.
type Type struct {
	kind   Kind
	serial int // assignment order in the owning TypeContext; used for a
	// total order over types (see DESIGN.md, Open Question 2).

	// KindFile
	fileTag FileTag
	// fileAttrs records the argument-name -> type map a File DagValue
	// picks up from named arguments at its file(...) call site; nil for
	// a file type that hasn't been shaped by a call yet.
	fileAttrs []Field

	// KindList, KindMaybe
	elem *Type

	// KindRecord
	fields []Field

	// KindFunction
	params []*Type
	result *Type

	// KindUser
	name    string
	wrapped *Type // always KindRecord
}

// Kind reports the variant of t.
func (t *Type) Kind() Kind { return t.kind }

// Serial is t's assignment order within its owning TypeContext. It gives a
// strict total order over types when names tie (DESIGN.md Open Question 2).
func (t *Type) Serial() int { return t.serial }

// FileTag is valid when Kind() == KindFile.
func (t *Type) FileTag() FileTag { return t.fileTag }

// FileAttrs is the (possibly empty) ordered attribute map of a file type
// that has been shaped by a file(...) call's named arguments.
func (t *Type) FileAttrs() []Field { return t.fileAttrs }

// Elem is valid when Kind() is KindList or KindMaybe.
func (t *Type) Elem() *Type { return t.elem }

// Fields is valid when Kind() == KindRecord. Use the package-level Fields
// helper to also unwrap KindUser.
func (t *Type) Fields() []Field { return t.fields }

// Params and Result are valid when Kind() == KindFunction.
func (t *Type) Params() []*Type { return t.params }
func (t *Type) Result() *Type   { return t.result }

// Name is the declared alias name when Kind() == KindUser.
func (t *Type) Name() string { return t.name }

// Wrapped is the underlying record type when Kind() == KindUser.
func (t *Type) Wrapped() *Type { return t.wrapped }

// String renders the type the way Fabrique source spells it.
func (t *Type) String() string {
	switch t.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindFile:
		if t.fileTag == Untagged {
			return "file"
		}
		return fmt.Sprintf("file[%s]", t.fileTag)
	case KindList:
		return fmt.Sprintf("list[%s]", t.elem.String())
	case KindMaybe:
		return fmt.Sprintf("maybe[%s]", t.elem.String())
	case KindRecord:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = fmt.Sprintf("%s:%s", f.Name, f.Type.String())
		}
		return fmt.Sprintf("record[%s]", strings.Join(parts, ", "))
	case KindFunction:
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("(%s) => %s", strings.Join(parts, ", "), t.result.String())
	case KindUser:
		return t.name
	default:
		return "?"
	}
}

// Fields returns the ordered fields of a record, unwrapping a user-type
// alias to its underlying record. The second result is false for any
// type without fields.
func Fields(t *Type) ([]Field, bool) {
	switch t.kind {
	case KindRecord:
		return t.fields, true
	case KindUser:
		return t.wrapped.fields, true
	default:
		return nil, false
	}
}

// HasFields reports whether Fields(t) would succeed.
func HasFields(t *Type) bool {
	_, ok := Fields(t)
	return ok
}

// FieldType looks up a single field by name, unwrapping user types.
func FieldType(t *Type, name string) (*Type, bool) {
	fields, ok := Fields(t)
	if !ok {
		return nil, false
	}
	for _, f := range fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}
