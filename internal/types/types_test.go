package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterningIsPointerEqual(t *testing.T) {
	c := NewContext()

	a := c.ListOf(c.Int())
	b := c.ListOf(c.Int())
	assert.True(t, a == b, "structurally identical types must intern to the same pointer")

	r1 := c.RecordType([]Field{{Name: "x", Type: c.Int()}, {Name: "y", Type: c.String()}})
	r2 := c.RecordType([]Field{{Name: "x", Type: c.Int()}, {Name: "y", Type: c.String()}})
	assert.True(t, r1 == r2)

	// field order is part of identity
	r3 := c.RecordType([]Field{{Name: "y", Type: c.String()}, {Name: "x", Type: c.Int()}})
	assert.False(t, r1 == r3)
}

func TestReflexivity(t *testing.T) {
	c := NewContext()
	for _, ty := range []*Type{c.Bool(), c.Int(), c.String(), c.Nil(), c.File(), c.InputFile(), c.ListOf(c.Int())} {
		assert.True(t, IsSubtype(ty, ty), "%s <= %s", ty, ty)
	}
}

func TestTransitivityViaListCovariance(t *testing.T) {
	c := NewContext()
	rNarrow := c.RecordType([]Field{{Name: "x", Type: c.Int()}})
	rMid := c.RecordType([]Field{{Name: "x", Type: c.Int()}, {Name: "y", Type: c.Int()}})
	rWide := c.RecordType([]Field{{Name: "x", Type: c.Int()}, {Name: "y", Type: c.Int()}, {Name: "z", Type: c.Int()}})

	require.True(t, IsSubtype(rMid, rNarrow))
	require.True(t, IsSubtype(rWide, rMid))
	assert.True(t, IsSubtype(rWide, rNarrow), "S<=T and T<=U must imply S<=U")

	assert.True(t, IsSubtype(c.ListOf(rWide), c.ListOf(rNarrow)))
}

func TestListCovarianceLaw(t *testing.T) {
	c := NewContext()
	rNarrow := c.RecordType([]Field{{Name: "x", Type: c.Int()}})
	rWide := c.RecordType([]Field{{Name: "x", Type: c.Int()}, {Name: "y", Type: c.Int()}})

	assert.True(t, IsSubtype(c.ListOf(rWide), c.ListOf(rNarrow)))
	assert.False(t, IsSubtype(c.ListOf(rNarrow), c.ListOf(rWide)))
}

func TestFunctionSubtypingVariance(t *testing.T) {
	c := NewContext()
	rNarrow := c.RecordType([]Field{{Name: "x", Type: c.Int()}})
	rWide := c.RecordType([]Field{{Name: "x", Type: c.Int()}, {Name: "y", Type: c.Int()}})

	// (narrow) => wide   <=   (wide) => narrow
	// requires: wide <= narrow (contravariant param) and wide <= narrow (covariant result)
	f1 := c.FunctionType([]*Type{rNarrow}, rWide)
	f2 := c.FunctionType([]*Type{rWide}, rNarrow)
	assert.True(t, IsSubtype(f1, f2))
	assert.False(t, IsSubtype(f2, f1))
}

func TestFileTagSubtyping(t *testing.T) {
	c := NewContext()
	assert.True(t, IsSubtype(c.InputFile(), c.File()))
	assert.True(t, IsSubtype(c.OutputFile(), c.File()))
	assert.False(t, IsSubtype(c.InputFile(), c.OutputFile()))
	assert.False(t, IsSubtype(c.File(), c.InputFile()), "untagged file is a supertype, not interchangeable")
}

func TestRequireFileParamRejectsUntagged(t *testing.T) {
	c := NewContext()
	assert.False(t, RequireFileParam(c.File()))
	assert.True(t, RequireFileParam(c.InputFile()))
	assert.True(t, RequireFileParam(c.OutputFile()))
}

func TestSupertypeTieBreak(t *testing.T) {
	c := NewContext()
	assert.Nil(t, Supertype(c.Int(), c.String()), "incompatible types must yield nil, not a guess")
	assert.Equal(t, c.File(), Supertype(c.InputFile(), c.File()))
}

func TestUserTypeIsNominal(t *testing.T) {
	c := NewContext()
	rec := c.RecordType([]Field{{Name: "x", Type: c.Int()}})
	u1 := c.UserType("Point", rec)
	u2, _ := c.LookupNamed("Point")
	assert.True(t, u1 == u2)
	assert.False(t, IsSubtype(rec, u1), "a structural record is not a subtype of a nominal alias")
	assert.False(t, IsSubtype(u1, rec))
}

func TestFieldsUnwrapsUserType(t *testing.T) {
	c := NewContext()
	rec := c.RecordType([]Field{{Name: "x", Type: c.Int()}})
	u := c.UserType("Point", rec)

	fields, ok := Fields(u)
	require.True(t, ok)
	assert.Len(t, fields, 1)
	assert.Equal(t, "x", fields[0].Name)
}
