package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostholm/marginalia/internal/adapters/driven/storage/memory"
	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/doctree"
)

func TestCollectCommentSpans(t *testing.T) {
	doc := testDoc()
	require.NoError(t, doc.AddMark(1, 6, doctree.CommentMark("a")))
	require.NoError(t, doc.AddMark(3, 9, doctree.CommentMark("b")))

	spans := CollectCommentSpans(doc)
	assert.Equal(t, domain.Span{From: 1, To: 6}, spans["a"])
	assert.Equal(t, domain.Span{From: 3, To: 9}, spans["b"])
}

func TestCollectCommentSpansCoalescesRuns(t *testing.T) {
	doc := testDoc()
	// The same comment's marker in two disjoint runs.
	require.NoError(t, doc.AddMark(1, 4, doctree.CommentMark("a")))
	require.NoError(t, doc.AddMark(7, 9, doctree.CommentMark("a")))

	spans := CollectCommentSpans(doc)
	assert.Equal(t, domain.Span{From: 1, To: 9}, spans["a"])
}

func TestCollectCommentSpansEmpty(t *testing.T) {
	assert.Empty(t, CollectCommentSpans(testDoc()))
}

// syncFixture wires a document, an offset comment store and a synchronizer
// with one attached comment over "hello" at [1, 6).
func syncFixture(t *testing.T) (*doctree.Document, *CommentStore, *Synchronizer, domain.Comment) {
	t.Helper()
	ctx := context.Background()
	doc := testDoc()
	store := NewCommentStore(memory.NewKVStore(), "/doc/comments/offset")

	var s OffsetStrategy
	anchor, err := s.Compute(doc, 1, 6)
	require.NoError(t, err)
	c := domain.NewComment("ada", "note", anchor)
	require.NoError(t, s.Attach(doc, c.ID, 1, 6))
	require.NoError(t, store.Add(ctx, c))

	return doc, store, NewSynchronizer(store), c
}

func TestSyncUpdatesMovedAnchor(t *testing.T) {
	ctx := context.Background()
	doc := testDoc()
	store := NewCommentStore(memory.NewKVStore(), "/doc/comments/offset")
	sync := NewSynchronizer(store)

	// Comment over "second" at [14, 20).
	var s OffsetStrategy
	anchor, err := s.Compute(doc, 14, 20)
	require.NoError(t, err)
	c := domain.NewComment("ada", "note", anchor)
	require.NoError(t, s.Attach(doc, c.ID, 14, 20))
	require.NoError(t, store.Add(ctx, c))

	// Text inserted before the marker shifts it right.
	_, err = doc.InsertText(3, "XY")
	require.NoError(t, err)

	n, err := sync.Sync(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok := store.Get(c.ID)
	require.True(t, ok)
	a := got.Anchor.(*domain.OffsetAnchor)
	assert.Equal(t, 16, a.From)
	assert.Equal(t, 22, a.To)
	assert.Equal(t, "second", a.TextFragment)
	assert.False(t, got.Orphaned())
}

func TestSyncUpdatesFragmentOnEdit(t *testing.T) {
	ctx := context.Background()
	doc, store, sync, c := syncFixture(t)

	// Typing inside the marked range grows the span and changes the text.
	_, err := doc.InsertText(3, "LL")
	require.NoError(t, err)

	n, err := sync.Sync(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := store.Get(c.ID)
	a := got.Anchor.(*domain.OffsetAnchor)
	assert.Equal(t, 1, a.From)
	assert.Equal(t, 8, a.To)
	assert.Equal(t, "heLLllo", a.TextFragment)
}

func TestSyncIdempotent(t *testing.T) {
	ctx := context.Background()
	doc, _, sync, _ := syncFixture(t)

	// Unchanged document: nothing to update, twice over.
	n, err := sync.Sync(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = sync.Sync(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSyncOrphansOnMarkerLoss(t *testing.T) {
	ctx := context.Background()
	doc, store, sync, c := syncFixture(t)

	// Deleting exactly the anchored range removes the whole marker.
	_, err := doc.DeleteRange(1, 6)
	require.NoError(t, err)

	n, err := sync.Sync(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok := store.Get(c.ID)
	require.True(t, ok, "the comment record survives orphaning")
	assert.True(t, got.Orphaned())
	a := got.Anchor.(*domain.OffsetAnchor)
	assert.Equal(t, 0, a.From)
	assert.Equal(t, 0, a.To)
	assert.Equal(t, domain.OrphanedFragmentPrefix+"hello", a.TextFragment)

	// Orphaning is one-way: the next scan leaves it alone.
	n, err = sync.Sync(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSyncNeverRebindsOrphan(t *testing.T) {
	ctx := context.Background()
	doc, store, sync, c := syncFixture(t)

	_, err := doc.DeleteRange(1, 6)
	require.NoError(t, err)
	_, err = sync.Sync(ctx, doc)
	require.NoError(t, err)

	// Identical text reappearing elsewhere does not resurrect the anchor.
	_, err = doc.InsertText(1, "hello")
	require.NoError(t, err)
	_, err = sync.Sync(ctx, doc)
	require.NoError(t, err)

	got, _ := store.Get(c.ID)
	assert.True(t, got.Orphaned())
}
