package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostholm/marginalia/internal/adapters/driven/storage/memory"
	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/doctree"
)

func newTestSession(t *testing.T) (*Session, *memory.KVStore) {
	t.Helper()
	kv := memory.NewKVStore()
	return NewSession(testDoc(), kv, "/notes/draft.json"), kv
}

func TestSessionSelect(t *testing.T) {
	s, _ := newTestSession(t)

	require.NoError(t, s.Select(1, 6))
	assert.Equal(t, domain.Span{From: 1, To: 6}, s.Selection())

	assert.ErrorIs(t, s.Select(-1, 3), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Select(6, 1), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Select(0, 99), domain.ErrInvalidInput)
}

func TestSessionAddCommentOffset(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)

	require.NoError(t, s.Select(1, 6))
	c, err := s.AddComment(ctx, "ada", "typo here", domain.AnchorOffset)
	require.NoError(t, err)

	span, err := s.ResolveAnchor(c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Span{From: 1, To: 6}, span)
	assert.Equal(t, "hello", c.Anchor.Fragment())

	// Persisted under the scope's offset namespace.
	_, ok, err := kv.Get(ctx, "/notes/draft.json/comments/offset")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionAddCommentEmptySelection(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Select(4, 4))
	for _, strategy := range domain.AnchorTypes() {
		_, err := s.AddComment(ctx, "ada", "x", strategy)
		assert.ErrorIs(t, err, domain.ErrEmptySelection, "strategy %s", strategy)
	}
}

func TestSessionAddCommentNodePath(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Select(14, 17))
	c, err := s.AddComment(ctx, "ada", "restructure", domain.AnchorNodePath)
	require.NoError(t, err)

	a := c.Anchor.(*domain.NodePathAnchor)
	assert.Equal(t, "p:nth-child(2)", domain.FormatPath(a.Path))

	// The anchor covers the whole paragraph, not the selection.
	span, err := s.ResolveAnchor(c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Span{From: 13, To: 21}, span)

	// No marker was written into the document.
	assert.Empty(t, CollectCommentSpans(s.Document()))
}

func TestSessionAddCommentEmbedded(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Select(1, 6))
	c, err := s.AddComment(ctx, "ada", "inline note", domain.AnchorEmbeddedSpan)
	require.NoError(t, err)

	// The marker lives in the serialized body.
	body, err := s.DocumentJSON()
	require.NoError(t, err)
	assert.Contains(t, body, c.ID)

	// The clean projection strips it without touching text or structure.
	clean, err := s.CleanDocumentJSON()
	require.NoError(t, err)
	assert.NotContains(t, clean, c.ID)
	parsed, err := doctree.Parse(doctree.DefaultSchema(), clean)
	require.NoError(t, err)
	assert.Equal(t, s.Document().TextContent(), parsed.TextContent())

	span, err := s.ResolveAnchor(c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Span{From: 1, To: 6}, span)
}

func TestSessionInsertTextMovesOffsetComment(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Select(14, 20))
	c, err := s.AddComment(ctx, "ada", "note", domain.AnchorOffset)
	require.NoError(t, err)

	require.NoError(t, s.InsertText(ctx, 3, "XY"))

	// The synchronizer updated the stored coordinates.
	stored := s.Comments(domain.AnchorOffset)
	require.Len(t, stored, 1)
	a := stored[0].Anchor.(*domain.OffsetAnchor)
	assert.Equal(t, 16, a.From)
	assert.Equal(t, 22, a.To)
	assert.Equal(t, "second", a.TextFragment)

	span, err := s.ResolveAnchor(c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Span{From: 16, To: 22}, span)

	// The selection rode along too.
	assert.Equal(t, domain.Span{From: 16, To: 22}, s.Selection())
}

func TestSessionDeleteRangeOrphansComment(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Select(1, 6))
	c, err := s.AddComment(ctx, "ada", "doomed", domain.AnchorOffset)
	require.NoError(t, err)

	require.NoError(t, s.DeleteRange(ctx, 1, 6))

	stored := s.Comments(domain.AnchorOffset)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Orphaned())
	assert.Equal(t, domain.OrphanedFragmentPrefix+"hello", stored[0].Anchor.Fragment())

	_, err = s.ResolveAnchor(c.ID)
	assert.ErrorIs(t, err, domain.ErrAnchorResolution)
}

func TestSessionDeleteCommentIsIsolated(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Select(1, 6))
	first, err := s.AddComment(ctx, "ada", "first", domain.AnchorOffset)
	require.NoError(t, err)
	require.NoError(t, s.Select(7, 12))
	second, err := s.AddComment(ctx, "bob", "second", domain.AnchorOffset)
	require.NoError(t, err)

	require.NoError(t, s.DeleteComment(ctx, first.ID))

	// Exactly one record and one marker gone.
	stored := s.Comments(domain.AnchorOffset)
	require.Len(t, stored, 1)
	assert.Equal(t, second.ID, stored[0].ID)

	spans := CollectCommentSpans(s.Document())
	assert.NotContains(t, spans, first.ID)
	assert.Equal(t, domain.Span{From: 7, To: 12}, spans[second.ID])

	// The text itself is untouched.
	assert.Equal(t, "hello worldsecond", s.Document().TextContent())

	assert.ErrorIs(t, s.DeleteComment(ctx, first.ID), domain.ErrNotFound)
}

func TestSessionPasteNormalizesSpaces(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Paste(ctx, 6, `{"type":"text","text":"x   y"}`))

	text := s.Document().TextContent()
	assert.Contains(t, text, "x   y")
	assert.Equal(t, 3, strings.Count(text, " "))
	assert.NotContains(t, text, "  ")
}

func TestSessionPasteKeepsSingleSpaces(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Paste(ctx, 6, `{"type":"text","text":" one two"}`))

	text := s.Document().TextContent()
	assert.Equal(t, "hello one two worldsecond", text)
	assert.NotContains(t, text, " ")
}

func TestSessionPasteRejectsMalformedFragment(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	err := s.Paste(ctx, 6, `{broken`)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionReplyAndResolve(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Select(1, 6))
	c, err := s.AddComment(ctx, "ada", "question", domain.AnchorOffset)
	require.NoError(t, err)

	require.NoError(t, s.Reply(ctx, c.ID, "bob", "answer"))
	require.NoError(t, s.ToggleResolved(ctx, c.ID))

	stored := s.Comments(domain.AnchorOffset)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Resolved)
	require.Len(t, stored[0].Replies, 1)
	assert.Equal(t, "answer", stored[0].Replies[0].Text)

	require.NoError(t, s.ToggleResolved(ctx, c.ID))
	assert.False(t, s.Comments(domain.AnchorOffset)[0].Resolved)

	assert.ErrorIs(t, s.Reply(ctx, "ghost", "x", "y"), domain.ErrNotFound)
}

func TestSessionLoadRestoresAnchors(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()

	first := NewSession(testDoc(), kv, "/notes/draft.json")
	require.NoError(t, first.Select(1, 6))
	offset, err := first.AddComment(ctx, "ada", "offset note", domain.AnchorOffset)
	require.NoError(t, err)
	require.NoError(t, first.Select(14, 17))
	nodePath, err := first.AddComment(ctx, "ada", "path note", domain.AnchorNodePath)
	require.NoError(t, err)

	// Cold start: a fresh document built from the same source, a fresh
	// session over the same storage scope.
	second := NewSession(testDoc(), kv, "/notes/draft.json")
	require.NoError(t, second.Load(ctx))

	span, err := second.ResolveAnchor(offset.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Span{From: 1, To: 6}, span)

	span, err = second.ResolveAnchor(nodePath.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Span{From: 13, To: 21}, span)
}

func TestSessionLoadToleratesStaleOffsets(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()

	first := NewSession(testDoc(), kv, "/notes/draft.json")
	require.NoError(t, first.Select(14, 20))
	c, err := first.AddComment(ctx, "ada", "note", domain.AnchorOffset)
	require.NoError(t, err)

	// The document shrank since the comment was saved.
	tiny := doctree.NewWithSchema(doctree.DefaultSchema(),
		doctree.Paragraph(doctree.Text("hi")))
	second := NewSession(tiny, kv, "/notes/draft.json")
	require.NoError(t, second.Load(ctx), "a bad record never fails the batch")

	_, err = second.ResolveAnchor(c.ID)
	assert.ErrorIs(t, err, domain.ErrAnchorResolution)
}
