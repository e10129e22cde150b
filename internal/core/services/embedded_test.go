package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/doctree"
)

func TestEmbeddedComputeResolve(t *testing.T) {
	doc := testDoc()
	var s EmbeddedSpanStrategy

	anchor, err := s.Compute(doc, "c1", 1, 6)
	require.NoError(t, err)
	assert.Equal(t, "hello", anchor.TextFragment)

	span, ok := s.Resolve(doc, "c1")
	require.True(t, ok)
	assert.Equal(t, domain.Span{From: 1, To: 6}, span)

	// The marker survives serialization: position and content are the
	// same artifact.
	data, err := doc.Serialize()
	require.NoError(t, err)
	reparsed, err := doctree.Parse(doctree.DefaultSchema(), data)
	require.NoError(t, err)
	span, ok = s.Resolve(reparsed, "c1")
	require.True(t, ok)
	assert.Equal(t, domain.Span{From: 1, To: 6}, span)
}

func TestEmbeddedComputeEmptySelection(t *testing.T) {
	_, err := EmbeddedSpanStrategy{}.Compute(testDoc(), "c1", 3, 3)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestEmbeddedComputeWithoutCapability(t *testing.T) {
	doc := doctree.NewWithSchema(doctree.NewSchema(doctree.MarkStrong),
		doctree.Paragraph(doctree.Text("hello")))

	_, err := EmbeddedSpanStrategy{}.Compute(doc, "c1", 1, 4)
	assert.ErrorIs(t, err, domain.ErrMarkerCapabilityMissing)
}

func TestEmbeddedDetach(t *testing.T) {
	doc := testDoc()
	var s EmbeddedSpanStrategy

	_, err := s.Compute(doc, "c1", 1, 6)
	require.NoError(t, err)
	_, err = s.Compute(doc, "c2", 7, 12)
	require.NoError(t, err)

	s.Detach(doc, "c1")

	_, ok := s.Resolve(doc, "c1")
	assert.False(t, ok)
	span, ok := s.Resolve(doc, "c2")
	require.True(t, ok)
	assert.Equal(t, domain.Span{From: 7, To: 12}, span)
	assert.Equal(t, "hello worldsecond", doc.TextContent())
}
