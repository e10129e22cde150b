package services

import (
	"fmt"

	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/doctree"
	"github.com/frostholm/marginalia/internal/logger"
)

// NodePathStrategy anchors comments by a structural path from the document
// root to the target node. Identity is purely structural: no marker, no
// per-edit update step. Resolution is recomputed fully on demand, and if
// sibling order or nesting changed since creation the path may resolve to
// the wrong node or fail outright. That is the accepted cost of content-
// independent addressing.
type NodePathStrategy struct{}

// Compute builds a node path anchor for the position. The position's
// nearest element ancestor becomes the target (a position inside a text
// leaf resolves to the leaf's parent), and the anchor always covers that
// node's entire subtree, not the original selection. A position with no
// element ancestor yields the whole-document sentinel (empty path).
func (NodePathStrategy) Compute(doc *doctree.Document, pos int) (*domain.NodePathAnchor, error) {
	chain, err := doc.AncestorsOf(pos)
	if err != nil {
		return nil, fmt.Errorf("computing node path anchor: %w", err)
	}
	if len(chain) == 0 {
		if doc.ContentSize() == 0 {
			return nil, fmt.Errorf("%w: empty document", domain.ErrAnchorResolution)
		}
		fragment := doc.TextContent()
		return &domain.NodePathAnchor{StartOffset: 0, EndOffset: doc.ContentSize(), TextFragment: fragment}, nil
	}

	steps := make([]domain.PathStep, len(chain))
	for i, a := range chain {
		steps[i] = domain.PathStep{Tag: a.Node.Tag(), Index: a.Index}
	}
	target := chain[len(chain)-1]
	return &domain.NodePathAnchor{
		Path:         steps,
		StartOffset:  target.Start,
		EndOffset:    target.Start + target.Node.Size(),
		TextFragment: target.Node.TextContent(),
	}, nil
}

// Restore maps a node path anchor to a live range by descending the
// current tree segment by segment. The structural index is authoritative:
// a tag name mismatch is logged but does not abort. Malformed segments,
// out-of-range indexes, or a resulting range outside the document fail
// resolution for that comment only; nothing is retried.
func (NodePathStrategy) Restore(doc *doctree.Document, a *domain.NodePathAnchor) (domain.Span, error) {
	if a.WholeDocument() {
		if doc.ContentSize() == 0 {
			return domain.Span{}, fmt.Errorf("%w: whole-document anchor on an empty document", domain.ErrAnchorResolution)
		}
		return domain.Span{From: 0, To: doc.ContentSize()}, nil
	}

	cur := doc.Root
	contentStart := 0
	start := 0
	var node *doctree.Node
	for depth, step := range a.Path {
		if step.Index < 1 || step.Index > len(cur.Children) {
			return domain.Span{}, fmt.Errorf("%w: segment %d index %d out of range (%d children)",
				domain.ErrAnchorResolution, depth, step.Index, len(cur.Children))
		}
		start = contentStart
		for i := 0; i < step.Index-1; i++ {
			start += cur.Children[i].Size()
		}
		node = cur.Children[step.Index-1]
		if got := node.Tag(); got != step.Tag {
			logger.Warn("node path restore: segment %d expected tag %q, found %q; structural index wins",
				depth, step.Tag, got)
		}
		cur = node
		contentStart = start + 1
	}

	span := domain.Span{From: start, To: start + node.Size()}
	if span.From < 0 || span.To > doc.ContentSize() {
		return domain.Span{}, fmt.Errorf("%w: resolved range [%d, %d) outside document of size %d",
			domain.ErrAnchorResolution, span.From, span.To, doc.ContentSize())
	}
	return span, nil
}

// Verify resolves the anchor and compares the live text against the
// stored fragment. A mismatch is logged, never failed on.
func (s NodePathStrategy) Verify(doc *doctree.Document, c *domain.Comment) (domain.Span, error) {
	a, ok := c.Anchor.(*domain.NodePathAnchor)
	if !ok {
		return domain.Span{}, fmt.Errorf("%w: not a node path anchor", domain.ErrInvalidInput)
	}
	span, err := s.Restore(doc, a)
	if err != nil {
		return domain.Span{}, err
	}
	if text, terr := doc.TextBetween(span.From, span.To); terr == nil && text != a.TextFragment {
		logger.Warn("node path restore: comment %s text drifted from stored fragment", c.ID)
	}
	return span, nil
}
