package types

// IsSubtype reports whether s is assignable where t is expected
// (spec.md §3, "Invariants"). It is reflexive, and:
//
//   - Nil is a subtype only of itself.
//   - list[S] <= list[T] iff S <= T (covariant); likewise maybe.
//   - file[in] and file[out] are both subtypes of the untagged file type;
//     neither is a subtype of the other.
//   - a wider record (superset of fields, each depth-subtyping) is a
//     subtype of a narrower one.
//   - function types are contravariant in parameters, covariant in result.
//   - user types are nominal: only identical interned user types relate.
func IsSubtype(s, t *Type) bool {
	if s == t {
		return true
	}
	if s == nil || t == nil {
		return false
	}
	if s.kind != t.kind {
		return false
	}

	switch s.kind {
	case KindNil, KindBool, KindInt, KindString:
		// Same kind and not the same interned pointer can only happen if
		// the caller mixed two TypeContexts; treat as incompatible.
		return false

	case KindFile:
		if t.fileTag != Untagged && s.fileTag != t.fileTag {
			return false
		}
		return attrsCompatible(s.fileAttrs, t.fileAttrs)

	case KindList, KindMaybe:
		return IsSubtype(s.elem, t.elem)

	case KindRecord:
		for _, want := range t.fields {
			got, ok := FieldType(s, want.Name)
			if !ok || !IsSubtype(got, want.Type) {
				return false
			}
		}
		return true

	case KindFunction:
		if len(s.params) != len(t.params) {
			return false
		}
		for i := range s.params {
			// contravariant: t's param must be acceptable where s expects
			// its own, i.e. t.params[i] <= s.params[i].
			if !IsSubtype(t.params[i], s.params[i]) {
				return false
			}
		}
		return IsSubtype(s.result, t.result)

	case KindUser:
		return false // nominal; only pointer equality (handled above) relates

	default:
		return false
	}
}

// attrsCompatible checks that every attribute t requires is present on s
// with a compatible (subtype) type; s may carry extra attributes.
func attrsCompatible(s, t []Field) bool {
	for _, want := range t {
		found := false
		for _, have := range s {
			if have.Name == want.Name {
				if !IsSubtype(have.Type, want.Type) {
					return false
				}
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// IsSupertype is the mirror of IsSubtype.
func IsSupertype(t, s *Type) bool { return IsSubtype(s, t) }

// Supertype returns the least common supertype of a and b, or nil when
// neither is a subtype of the other (spec.md §4.2, "Tie-break rule").
// Callers must treat a nil result as "incompatible" and report an Error.
func Supertype(a, b *Type) *Type {
	if IsSubtype(a, b) {
		return b
	}
	if IsSubtype(b, a) {
		return a
	}
	return nil
}

// RequireFileParam reports whether t is a legal type for an action's file
// parameter: it must be file[in] or file[out], never the untagged file
// type (DESIGN.md Open Question 1 -- the stricter, current policy).
func RequireFileParam(t *Type) bool {
	return t.kind == KindFile && t.fileTag != Untagged
}
