package types

import (
	"fmt"
	"strings"
)

// Context is the single, append-only owner of every interned Type in one
// compilation (spec.md §5, "Shared resources"). Structurally identical
// types always resolve to the same *Type.
type Context struct {
	table  map[string]*Type
	named  map[string]*Type // user-type aliases, registered by declared name
	serial int
}

// NewContext returns an empty Context; primitive types are interned on
// first use.
func NewContext() *Context {
	c := &Context{
		table: make(map[string]*Type),
		named: make(map[string]*Type),
	}
	return c
}

func (c *Context) intern(key string, build func() *Type) *Type {
	if t, ok := c.table[key]; ok {
		return t
	}
	t := build()
	t.serial = c.serial
	c.serial++
	c.table[key] = t
	return t
}

// Nil, Bool, Int, String return the interned primitive types.
func (c *Context) Nil() *Type    { return c.intern("nil", func() *Type { return &Type{kind: KindNil} }) }
func (c *Context) Bool() *Type   { return c.intern("bool", func() *Type { return &Type{kind: KindBool} }) }
func (c *Context) Int() *Type    { return c.intern("int", func() *Type { return &Type{kind: KindInt} }) }
func (c *Context) String() *Type {
	return c.intern("string", func() *Type { return &Type{kind: KindString} })
}

// File returns the untagged file type (no attribute shaping).
func (c *Context) File() *Type { return c.FileTagged(Untagged) }

// InputFile and OutputFile return the file[in]/file[out] types.
func (c *Context) InputFile() *Type  { return c.FileTagged(In) }
func (c *Context) OutputFile() *Type { return c.FileTagged(Out) }

// FileTagged returns the (unshaped) file type for the given tag.
func (c *Context) FileTagged(tag FileTag) *Type {
	key := fmt.Sprintf("file[%s]", tag)
	return c.intern(key, func() *Type { return &Type{kind: KindFile, fileTag: tag} })
}

// FileWithAttrs returns the file type shaped by a file(...) call's named
// arguments. Field order matters for the key, matching ordered records.
func (c *Context) FileWithAttrs(tag FileTag, attrs []Field) *Type {
	var b strings.Builder
	fmt.Fprintf(&b, "file[%s]{", tag)
	for i, f := range attrs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%p", f.Name, f.Type)
	}
	b.WriteByte('}')
	key := b.String()
	return c.intern(key, func() *Type {
		cp := make([]Field, len(attrs))
		copy(cp, attrs)
		return &Type{kind: KindFile, fileTag: tag, fileAttrs: cp}
	})
}

// ListOf returns the interned list[elem] type.
func (c *Context) ListOf(elem *Type) *Type {
	key := fmt.Sprintf("list[%p]", elem)
	return c.intern(key, func() *Type { return &Type{kind: KindList, elem: elem} })
}

// MaybeOf returns the interned maybe[elem] type.
func (c *Context) MaybeOf(elem *Type) *Type {
	key := fmt.Sprintf("maybe[%p]", elem)
	return c.intern(key, func() *Type { return &Type{kind: KindMaybe, elem: elem} })
}

// RecordType returns the interned record type for an ordered field list.
// Field order is part of the type's identity: record[x:int,y:int] and
// record[y:int,x:int] intern to distinct types.
func (c *Context) RecordType(fields []Field) *Type {
	var b strings.Builder
	b.WriteString("record{")
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%p", f.Name, f.Type)
	}
	b.WriteByte('}')
	key := b.String()
	return c.intern(key, func() *Type {
		cp := make([]Field, len(fields))
		copy(cp, fields)
		return &Type{kind: KindRecord, fields: cp}
	})
}

// FunctionType returns the interned function type for a parameter vector
// and result type.
func (c *Context) FunctionType(params []*Type, result *Type) *Type {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%p", p)
	}
	fmt.Fprintf(&b, ")->%p", result)
	key := b.String()
	return c.intern(key, func() *Type {
		cp := make([]*Type, len(params))
		copy(cp, params)
		return &Type{kind: KindFunction, params: cp, result: result}
	})
}

// UserType declares (or re-fetches) a nominal alias over a record type.
// Two UserType calls with the same name are a redeclaration: the second
// call returns the original type so callers can detect and report the
// conflict themselves.
func (c *Context) UserType(name string, wrapped *Type) *Type {
	if existing, ok := c.named[name]; ok {
		return existing
	}
	key := fmt.Sprintf("usertype:%s", name)
	t := c.intern(key, func() *Type {
		return &Type{kind: KindUser, name: name, wrapped: wrapped}
	})
	c.named[name] = t
	return t
}

// LookupNamed finds a previously declared user type by name.
func (c *Context) LookupNamed(name string) (*Type, bool) {
	t, ok := c.named[name]
	return t, ok
}

// Find resolves a builtin type spelling plus optional type parameters,
// e.g. Find("list", []*Type{intType}) or Find("file", []*Type{}), which
// yields the untagged file type. Find has no tagged-file form: the parser
// resolves file[in]/file[out] through FileTagged (see parser_type.go).
func (c *Context) Find(name string, params []*Type) (*Type, bool) {
	switch name {
	case "nil":
		return c.Nil(), len(params) == 0
	case "bool":
		return c.Bool(), len(params) == 0
	case "int":
		return c.Int(), len(params) == 0
	case "string":
		return c.String(), len(params) == 0
	case "file":
		if len(params) == 0 {
			return c.File(), true
		}
		return nil, false
	case "list":
		if len(params) == 1 {
			return c.ListOf(params[0]), true
		}
		return nil, false
	case "maybe":
		if len(params) == 1 {
			return c.MaybeOf(params[0]), true
		}
		return nil, false
	default:
		if t, ok := c.named[name]; ok && len(params) == 0 {
			return t, true
		}
		return nil, false
	}
}

// FindTaggedFile resolves file[in] / file[out] / file, the one builtin
// spelling whose "type parameter" is a tag keyword rather than a type.
func (c *Context) FindTaggedFile(tag FileTag) *Type {
	return c.FileTagged(tag)
}

// Len reports how many distinct types have been interned, for diagnostics
// and tests that want to assert on intern-table growth.
func (c *Context) Len() int { return len(c.table) }
