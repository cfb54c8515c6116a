package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, NewAddress("example.org", "/").Validate())

	bad := NewAddress("", "/")
	assert.Error(t, bad.Validate())

	bad = NewAddress("example.org", "/")
	bad.Port = 70000
	assert.Error(t, bad.Validate())

	bad = NewAddress("example.org", "/")
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = NewAddress("example.org", "/")
	bad.Type = 0
	assert.Error(t, bad.Validate())
}

func TestWithQuery(t *testing.T) {
	a := NewAddress("example.org", "/v2/vs")
	a.Type = TypeSearch

	q := a.WithQuery("cats")
	assert.Equal(t, TypeMenu, q.Type)
	assert.Equal(t, "cats", q.Query)
	assert.True(t, q.HasQuery)
	assert.False(t, a.HasQuery, "original untouched")
}

func TestSameDestination(t *testing.T) {
	a := NewAddress("example.org", "/a")
	b := a.WithQuery("x")
	c := a.WithQuery("y")
	assert.True(t, b.SameDestination(c))

	d := a
	d.Port = 7070
	assert.False(t, a.SameDestination(d))

	e := a
	e.DisplayName = "Label"
	assert.True(t, a.SameDestination(e))
}

func TestString(t *testing.T) {
	a := NewAddress("example.org", "/docs")
	assert.Equal(t, "example.org:70/docs", a.String())
	assert.Equal(t, "example.org:70", a.HostPort())

	a.Scheme = SchemeSecure
	assert.Equal(t, "gophers://example.org:70/docs", a.String())
}

func TestLabel(t *testing.T) {
	a := NewAddress("example.org", "")
	assert.Equal(t, "example.org:70", a.Label())

	assert.Equal(t, "example.org:70 ?cats", a.WithQuery("cats").Label())

	a.DisplayName = "Home"
	assert.Equal(t, "Home", a.Label())
}

func TestItemType(t *testing.T) {
	assert.Equal(t, "1", TypeMenu.String())
	assert.True(t, TypePNG.IsImage())
	assert.False(t, TypeText.IsImage())
}
