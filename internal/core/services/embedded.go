package services

import (
	"errors"
	"fmt"

	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/doctree"
)

// EmbeddedSpanStrategy keeps a comment's identity entirely inside the
// document body: the marker rides along in the persisted serialization, so
// content and position are the same artifact. No coordinates are stored and
// no orphan detection exists; if the marker disappears, the comment simply
// has no addressable location. The simplest and most robust of the three
// strategies, and the least diagnosable.
type EmbeddedSpanStrategy struct{}

// Compute embeds the comment's marker over a non-empty selection and
// returns the snapshot-only anchor.
func (EmbeddedSpanStrategy) Compute(doc *doctree.Document, commentID string, from, to int) (*domain.EmbeddedSpanAnchor, error) {
	if from >= to {
		return nil, domain.ErrEmptySelection
	}
	fragment, err := doc.TextBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("computing embedded span anchor: %w", err)
	}
	err = doc.AddMark(from, to, doctree.CommentMark(commentID))
	if errors.Is(err, doctree.ErrMarkUnsupported) {
		return nil, domain.ErrMarkerCapabilityMissing
	}
	if err != nil {
		return nil, err
	}
	return &domain.EmbeddedSpanAnchor{TextFragment: fragment}, nil
}

// Resolve locates the embedded marker transiently, for display or to find
// what to remove on delete. The result is never persisted as coordinates.
func (EmbeddedSpanStrategy) Resolve(doc *doctree.Document, commentID string) (domain.Span, bool) {
	span, ok := CollectCommentSpans(doc)[commentID]
	return span, ok
}

// Detach removes every marker bearing the comment's id from the document.
func (EmbeddedSpanStrategy) Detach(doc *doctree.Document, commentID string) {
	doc.RemoveCommentMarks(commentID)
}

// Clean returns the derived read-only projection: marker wrappers are
// stripped with their children re-parented in place, preserving document
// order and all surrounding structure exactly.
func (EmbeddedSpanStrategy) Clean(doc *doctree.Document) *doctree.Document {
	return doc.CleanProjection()
}
