package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinkCode(t *testing.T) {
	a, err := NewLinkCode()
	require.NoError(t, err)
	b, err := NewLinkCode()
	require.NoError(t, err)

	assert.Len(t, a, LinkCodeLen)
	assert.Equal(t, strings.ToUpper(a), a)
	assert.NotEqual(t, a, b)

	got, ok := NormalizeLinkCode(a)
	assert.True(t, ok)
	assert.Equal(t, a, got)
}

func TestNormalizeLinkCode(t *testing.T) {
	const code = "0123456789ABCDEF0123456789ABCDEF"
	cases := []struct {
		in string
		ok bool
	}{
		{code, true},
		{strings.ToLower(code), true},
		{"  «" + code + "».", true},
		{"<" + code + ">", true},
		{code[:31], false},
		{code + "0", false},
		{"", false},
	}
	for _, c := range cases {
		got, ok := NormalizeLinkCode(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.Equal(t, code, got)
		}
	}
}

func TestRandomHex(t *testing.T) {
	s, err := RandomHex(4)
	require.NoError(t, err)
	assert.Len(t, s, 8)

	s, err = RandomHex(0)
	require.NoError(t, err)
	assert.Len(t, s, 64)
}
