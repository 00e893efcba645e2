package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverEnclosesBoth(t *testing.T) {
	a := Range{Begin: Location{"f.fab", 1, 1}, End: Location{"f.fab", 1, 5}}
	b := Range{Begin: Location{"f.fab", 2, 1}, End: Location{"f.fab", 2, 10}}

	got := Over(a, b)
	assert.Equal(t, Location{"f.fab", 1, 1}, got.Begin)
	assert.Equal(t, Location{"f.fab", 2, 10}, got.End)
}

func TestLocationBefore(t *testing.T) {
	a := Location{"f.fab", 1, 5}
	b := Location{"f.fab", 2, 1}
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
}

func TestRangeString(t *testing.T) {
	r := Range{Begin: Location{"f.fab", 3, 1}, End: Location{"f.fab", 3, 8}}
	assert.Equal(t, "f.fab:3:1-8", r.String())
}
