package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnchorType(t *testing.T) {
	for _, at := range AnchorTypes() {
		got, err := ParseAnchorType(string(at))
		require.NoError(t, err)
		assert.Equal(t, at, got)
	}

	_, err := ParseAnchorType("teleport")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSpanEmpty(t *testing.T) {
	assert.True(t, Span{From: 3, To: 3}.Empty())
	assert.True(t, Span{From: 5, To: 2}.Empty())
	assert.False(t, Span{From: 2, To: 5}.Empty())
}

func TestPathRoundTrip(t *testing.T) {
	steps := []PathStep{
		{Tag: "ul", Index: 2},
		{Tag: "li", Index: 1},
		{Tag: "p", Index: 1},
	}

	s := FormatPath(steps)
	assert.Equal(t, "ul:nth-child(2) > li:nth-child(1) > p:nth-child(1)", s)

	parsed, err := ParsePath(s)
	require.NoError(t, err)
	assert.Equal(t, steps, parsed)
}

func TestParsePathWholeDocument(t *testing.T) {
	steps, err := ParsePath("")
	require.NoError(t, err)
	assert.Nil(t, steps)
	assert.Equal(t, "", FormatPath(steps))
}

func TestParsePathMalformed(t *testing.T) {
	for _, bad := range []string{
		"p",
		"p:nth-child(x)",
		"p:nth-child(0)",
		":nth-child(1)",
		"p:nth-child(2",
	} {
		_, err := ParsePath(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "path %q", bad)
	}
}

func TestOrphanTransition(t *testing.T) {
	c := NewComment("ada", "check this", &OffsetAnchor{From: 4, To: 9, TextFragment: "hello"})
	require.Equal(t, ValidityBound, c.Validity)
	require.False(t, c.Orphaned())

	c.Orphan()

	assert.True(t, c.Orphaned())
	oa := c.Anchor.(*OffsetAnchor)
	assert.Equal(t, 0, oa.From)
	assert.Equal(t, 0, oa.To)
	assert.Equal(t, OrphanedFragmentPrefix+"hello", oa.TextFragment)

	// The transition is one-way and idempotent.
	c.Orphan()
	assert.Equal(t, OrphanedFragmentPrefix+"hello", c.Anchor.Fragment())
}

func TestOrphanIgnoresOtherStrategies(t *testing.T) {
	c := NewComment("ada", "note", &NodePathAnchor{StartOffset: 0, EndOffset: 3, TextFragment: "x"})
	c.Orphan()
	assert.False(t, c.Orphaned())
}
