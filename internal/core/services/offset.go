package services

import (
	"errors"
	"fmt"

	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/doctree"
	"github.com/frostholm/marginalia/internal/logger"
)

// OffsetStrategy anchors comments by absolute positions backed by a live
// marker. The editor's own edit-mapping carries the marker through typing;
// the strategy itself never does coordinate arithmetic during edits, only
// a post-hoc scan.
type OffsetStrategy struct{}

// Compute builds an offset anchor for a non-empty selection, snapshotting
// the covered text.
func (OffsetStrategy) Compute(doc *doctree.Document, from, to int) (*domain.OffsetAnchor, error) {
	if from >= to {
		return nil, domain.ErrEmptySelection
	}
	fragment, err := doc.TextBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("computing offset anchor: %w", err)
	}
	return &domain.OffsetAnchor{From: from, To: to, TextFragment: fragment}, nil
}

// Attach applies the comment's marker over [from, to). The document is
// left unchanged if its schema lacks the comment mark.
func (OffsetStrategy) Attach(doc *doctree.Document, commentID string, from, to int) error {
	err := doc.AddMark(from, to, doctree.CommentMark(commentID))
	if errors.Is(err, doctree.ErrMarkUnsupported) {
		return domain.ErrMarkerCapabilityMissing
	}
	return err
}

// Resolve locates the comment's live range by scanning the document's
// text leaves for its marker and coalescing all runs sharing the id to
// [min(from), max(to)). ok is false when no marker survives.
func (OffsetStrategy) Resolve(doc *doctree.Document, commentID string) (domain.Span, bool) {
	span, ok := CollectCommentSpans(doc)[commentID]
	return span, ok
}

// Restore re-attaches a saved comment's marker after a cold reload. Saved
// bounds that no longer fit the document fail that comment only; the
// failure is logged, never fatal to the batch.
func (s OffsetStrategy) Restore(doc *doctree.Document, c *domain.Comment) error {
	a, ok := c.Anchor.(*domain.OffsetAnchor)
	if !ok {
		return fmt.Errorf("%w: not an offset anchor", domain.ErrInvalidInput)
	}
	if c.Orphaned() {
		return nil
	}
	if a.From < 0 || a.From >= a.To || a.To > doc.ContentSize() {
		logger.Warn("offset restore: comment %s has invalid range [%d, %d) for document of size %d",
			c.ID, a.From, a.To, doc.ContentSize())
		return fmt.Errorf("%w: saved range [%d, %d) out of bounds", domain.ErrAnchorResolution, a.From, a.To)
	}
	return s.Attach(doc, c.ID, a.From, a.To)
}
